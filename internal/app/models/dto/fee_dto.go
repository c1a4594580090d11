package dto

import "github.com/yigit/collegeerp/internal/app/models"

// CreateFeeStructureRequest is the payload for a new fee component.
type CreateFeeStructureRequest struct {
	FeeID         string  `json:"fee_id" validate:"required,notblank"`
	ProgrammeID   string  `json:"programme_id"`
	Component     string  `json:"component" validate:"required,notblank"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Currency      string  `json:"currency" validate:"omitempty,len=3"`
	EffectiveFrom string  `json:"effective_from" validate:"isodate"`
	EffectiveTo   string  `json:"effective_to" validate:"isodate"`
	Category      string  `json:"category"`
}

// UpdateFeeStructureRequest lists the mutable fee structure fields.
type UpdateFeeStructureRequest struct {
	ProgrammeID   *string  `json:"programme_id"`
	Component     *string  `json:"component" validate:"omitempty,notblank"`
	Amount        *float64 `json:"amount" validate:"omitempty,gt=0"`
	Currency      *string  `json:"currency" validate:"omitempty,len=3"`
	EffectiveFrom *string  `json:"effective_from" validate:"omitempty,isodate"`
	EffectiveTo   *string  `json:"effective_to" validate:"omitempty,isodate"`
	Category      *string  `json:"category"`
}

// Apply copies the set fields onto f.
func (r *UpdateFeeStructureRequest) Apply(f *models.FeeStructure) {
	set(&f.ProgrammeID, r.ProgrammeID)
	set(&f.Component, r.Component)
	set(&f.Amount, r.Amount)
	set(&f.Currency, r.Currency)
	set(&f.EffectiveFrom, r.EffectiveFrom)
	set(&f.EffectiveTo, r.EffectiveTo)
	set(&f.Category, r.Category)
}

// FeeStructureFilter narrows the effective fee structures.
type FeeStructureFilter struct {
	ProgrammeID string `form:"programme_id"`
	Category    string `form:"category"`
}

// CreatePaymentRequest records a payment. When GenerateReceipt is set a
// receipt is issued in the same operation.
type CreatePaymentRequest struct {
	StudentID       string  `json:"student_id" validate:"required,notblank"`
	Amount          float64 `json:"amount" validate:"required,gt=0"`
	PaymentMode     string  `json:"payment_mode" validate:"required,notblank"`
	AdmissionID     string  `json:"admission_id"`
	FeeID           string  `json:"fee_id"`
	Currency        string  `json:"currency" validate:"omitempty,len=3"`
	Date            string  `json:"date" validate:"isodate"`
	GatewayRef      string  `json:"gateway_ref"`
	CreatedBy       string  `json:"created_by"`
	Notes           string  `json:"notes"`
	GenerateReceipt bool    `json:"generate_receipt"`
	IssuedBy        string  `json:"issued_by"`
}

// PaymentFilter narrows a payment listing; From and To bound the payment date.
type PaymentFilter struct {
	StudentID     string `form:"student_id"`
	PaymentStatus string `form:"payment_status"`
	PaymentMode   string `form:"payment_mode"`
	From          string `form:"start_date"`
	To            string `form:"end_date"`
}

// IssueReceiptRequest issues a receipt for an existing transaction.
type IssueReceiptRequest struct {
	IssuedBy string `json:"issued_by"`
}

// ReceiptFilter narrows a receipt listing.
type ReceiptFilter struct {
	TxnID    string `form:"txn_id"`
	IssuedBy string `form:"issued_by"`
}
