package models

// FeeStructure is one fee component for a programme, effective between
// EffectiveFrom and EffectiveTo (open-ended when empty).
type FeeStructure struct {
	FeeID         string  `json:"fee_id"`
	ProgrammeID   string  `json:"programme_id"`
	Component     string  `json:"component"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	EffectiveFrom string  `json:"effective_from"`
	EffectiveTo   string  `json:"effective_to"`
	Category      string  `json:"category"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// Transaction is a ledger entry for a payment. FeeID and Currency are a
// snapshot of what the payment was charged against.
type Transaction struct {
	TxnID         string  `json:"txn_id"`
	StudentID     string  `json:"student_id"`
	AdmissionID   string  `json:"admission_id"`
	FeeID         string  `json:"fee_id"`
	Date          string  `json:"date"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	PaymentMode   string  `json:"payment_mode"`
	GatewayRef    string  `json:"gateway_ref"`
	PaymentStatus string  `json:"payment_status"`
	ReceiptID     string  `json:"receipt_id"`
	CreatedBy     string  `json:"created_by"`
	CreatedAt     string  `json:"created_at"`
	Notes         string  `json:"notes"`
}

// Receipt acknowledges exactly one Transaction.
type Receipt struct {
	ReceiptID      string `json:"receipt_id"`
	TxnID          string `json:"txn_id"`
	IssuedBy       string `json:"issued_by"`
	IssuedOn       string `json:"issued_on"`
	PdfDriveFileID string `json:"pdf_drive_file_id"`
	EmailSent      bool   `json:"email_sent"`
	CreatedAt      string `json:"created_at"`
}

// Payment is the result of createPayment: the transaction and, when one was
// requested, its receipt.
type Payment struct {
	Transaction *Transaction `json:"transaction"`
	Receipt     *Receipt     `json:"receipt,omitempty"`
}

// FeeSummary is a student's paid and outstanding totals.
type FeeSummary struct {
	StudentID       string         `json:"student_id"`
	TotalPaid       float64        `json:"total_paid"`
	TotalRequired   float64        `json:"total_required"`
	TotalPending    float64        `json:"total_pending"`
	LastPaymentDate string         `json:"last_payment_date"`
	PaymentCount    int            `json:"payment_count"`
	Payments        []*Transaction `json:"payments"`
}

// FeeStats aggregates completed payments.
type FeeStats struct {
	TotalCollected    float64            `json:"total_collected"`
	TotalTransactions int                `json:"total_transactions"`
	ByPaymentMode     map[string]float64 `json:"by_payment_mode"`
	MonthlyCollection map[string]float64 `json:"monthly_collection"`
}
