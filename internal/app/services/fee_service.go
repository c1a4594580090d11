package services

import (
	"context"
	"sort"
	"time"

	"github.com/yigit/collegeerp/internal/app/models"
	"github.com/yigit/collegeerp/internal/app/models/dto"
	"github.com/yigit/collegeerp/internal/pkg/apperrors"
	"github.com/yigit/collegeerp/internal/pkg/helpers"
	"github.com/yigit/collegeerp/internal/pkg/validation"
	"github.com/yigit/collegeerp/internal/store"
)

// ActionLinkReceipt is the audit action of a receipt issued after payment.
const ActionLinkReceipt = "link_receipt"

// FeeService manages fee structures and the payment ledger. A transaction
// and its receipt always reference each other.
type FeeService struct {
	base
	currency string
}

func feeLock(id string) string { return store.LockKey("fee", id) }
func txnLock(id string) string { return store.LockKey("txn", id) }

// effectiveAt reports whether f's window contains t. An empty bound is open.
func effectiveAt(f *models.FeeStructure, t time.Time) bool {
	if from, ok := helpers.ParseTime(f.EffectiveFrom); ok && t.Before(from) {
		return false
	}
	if f.EffectiveTo != "" && !helpers.InRange(helpers.Timestamp(t), "", f.EffectiveTo) {
		return false
	}
	return true
}

// CreateFeeStructure adds a fee component.
func (s *FeeService) CreateFeeStructure(ctx context.Context, req dto.CreateFeeStructureRequest) (*models.FeeStructure, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	f := &models.FeeStructure{
		FeeID:         req.FeeID,
		ProgrammeID:   req.ProgrammeID,
		Component:     req.Component,
		Amount:        req.Amount,
		Currency:      req.Currency,
		EffectiveFrom: req.EffectiveFrom,
		EffectiveTo:   req.EffectiveTo,
		Category:      req.Category,
	}
	if f.Currency == "" {
		f.Currency = s.currency
	}
	err := s.store.Update(ctx, []string{feeLock(f.FeeID)}, func(tx *store.Tx) error {
		return s.repos.FeeStructures.Create(tx, f)
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// GetFeeStructure returns one fee structure, effective or not.
func (s *FeeService) GetFeeStructure(ctx context.Context, id string) (*models.FeeStructure, error) {
	var f *models.FeeStructure
	err := s.store.View(ctx, func(tx *store.Tx) (err error) {
		f, err = s.repos.FeeStructures.Get(tx, id)
		return err
	})
	return f, err
}

// ListFeeStructures returns the structures in effect now that match the filter.
func (s *FeeService) ListFeeStructures(ctx context.Context, f dto.FeeStructureFilter) ([]*models.FeeStructure, error) {
	now := s.repos.Clock()
	var out []*models.FeeStructure
	err := s.store.View(ctx, func(tx *store.Tx) (err error) {
		out, err = s.repos.FeeStructures.List(tx, func(fs *models.FeeStructure) bool {
			return effectiveAt(fs, now) &&
				(f.ProgrammeID == "" || fs.ProgrammeID == f.ProgrammeID) &&
				(f.Category == "" || fs.Category == f.Category)
		})
		return err
	})
	return out, err
}

// UpdateFeeStructure applies a patch to a fee structure.
func (s *FeeService) UpdateFeeStructure(ctx context.Context, id string, req dto.UpdateFeeStructureRequest) (*models.FeeStructure, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	var updated *models.FeeStructure
	err := s.store.Update(ctx, []string{feeLock(id)}, func(tx *store.Tx) error {
		f, err := s.repos.FeeStructures.Get(tx, id)
		if err != nil {
			return err
		}
		req.Apply(f)
		if err := s.repos.FeeStructures.Update(tx, id, f, "", ""); err != nil {
			return err
		}
		updated = f
		return nil
	})
	return updated, err
}

// DeleteFeeStructure removes a fee structure. Transactions keep their own
// fee_id and currency, so no dependent check is needed.
func (s *FeeService) DeleteFeeStructure(ctx context.Context, id string) error {
	return s.store.Update(ctx, []string{feeLock(id)}, func(tx *store.Tx) error {
		return s.repos.FeeStructures.Delete(tx, id, "")
	})
}

// CreatePayment records a completed payment, and its receipt when asked.
func (s *FeeService) CreatePayment(ctx context.Context, req dto.CreatePaymentRequest) (*models.Payment, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var payment *models.Payment
	err := s.store.Update(ctx, []string{studentLock(req.StudentID)}, func(tx *store.Tx) error {
		if _, err := s.repos.Students.Get(tx, req.StudentID); err != nil {
			return err
		}
		currency := req.Currency
		if req.FeeID != "" {
			fee, err := s.repos.FeeStructures.Get(tx, req.FeeID)
			if err != nil {
				return err
			}
			if currency == "" {
				currency = fee.Currency
			}
		}
		if currency == "" {
			currency = s.currency
		}

		t := &models.Transaction{
			TxnID:         s.repos.Transactions.NewID(),
			StudentID:     req.StudentID,
			AdmissionID:   req.AdmissionID,
			FeeID:         req.FeeID,
			Date:          req.Date,
			Amount:        req.Amount,
			Currency:      currency,
			PaymentMode:   req.PaymentMode,
			GatewayRef:    req.GatewayRef,
			PaymentStatus: models.PaymentCompleted,
			CreatedBy:     req.CreatedBy,
			Notes:         req.Notes,
		}
		var rc *models.Receipt
		if req.GenerateReceipt {
			rc = &models.Receipt{
				ReceiptID: s.repos.Receipts.NewID(),
				TxnID:     t.TxnID,
				IssuedBy:  req.IssuedBy,
			}
			t.ReceiptID = rc.ReceiptID
		}
		if err := s.repos.Transactions.Create(tx, t); err != nil {
			return err
		}
		if rc != nil {
			if err := s.repos.Receipts.Create(tx, rc); err != nil {
				return err
			}
		}
		payment = &models.Payment{Transaction: t, Receipt: rc}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("txn_id", payment.Transaction.TxnID).Str("student_id", req.StudentID).
		Float64("amount", req.Amount).Bool("receipt", payment.Receipt != nil).Msg("Payment recorded")
	return payment, nil
}

// GetPayment returns one transaction.
func (s *FeeService) GetPayment(ctx context.Context, id string) (*models.Transaction, error) {
	var t *models.Transaction
	err := s.store.View(ctx, func(tx *store.Tx) (err error) {
		t, err = s.repos.Transactions.Get(tx, id)
		return err
	})
	return t, err
}

// ListPayments returns transactions matching the filter, newest first.
func (s *FeeService) ListPayments(ctx context.Context, f dto.PaymentFilter) ([]*models.Transaction, error) {
	keep := func(t *models.Transaction) bool {
		return (f.StudentID == "" || t.StudentID == f.StudentID) &&
			(f.PaymentStatus == "" || t.PaymentStatus == f.PaymentStatus) &&
			(f.PaymentMode == "" || t.PaymentMode == f.PaymentMode) &&
			helpers.InRange(t.Date, f.From, f.To)
	}
	var out []*models.Transaction
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		if f.StudentID != "" {
			out, err = s.repos.Transactions.FindAll(tx, "student_id", f.StudentID)
			if err == nil {
				out = filter(out, keep)
			}
			return err
		}
		out, err = s.repos.Transactions.List(tx, keep)
		return err
	})
	sortByDateDesc(out)
	return out, err
}

// StudentFees returns every payment of a student, newest first.
func (s *FeeService) StudentFees(ctx context.Context, studentID string) ([]*models.Transaction, error) {
	var out []*models.Transaction
	err := s.store.View(ctx, func(tx *store.Tx) error {
		if _, err := s.repos.Students.Get(tx, studentID); err != nil {
			return err
		}
		var err error
		out, err = s.repos.Transactions.FindAll(tx, "student_id", studentID)
		return err
	})
	sortByDateDesc(out)
	return out, err
}

// IssueReceipt issues the receipt of a completed transaction that has none.
func (s *FeeService) IssueReceipt(ctx context.Context, txnID string, req dto.IssueReceiptRequest) (*models.Receipt, error) {
	var rc *models.Receipt
	err := s.store.Update(ctx, []string{txnLock(txnID)}, func(tx *store.Tx) error {
		t, err := s.repos.Transactions.Get(tx, txnID)
		if err != nil {
			return err
		}
		if t.ReceiptID != "" {
			return apperrors.NewConflictError("Transaction already has a receipt")
		}
		if t.PaymentStatus != models.PaymentCompleted {
			return apperrors.NewPreconditionError("Receipts can only be issued for completed payments")
		}
		r := &models.Receipt{TxnID: txnID, IssuedBy: req.IssuedBy}
		if err := s.repos.Receipts.Create(tx, r); err != nil {
			return err
		}
		t.ReceiptID = r.ReceiptID
		if err := s.repos.Transactions.Update(tx, txnID, t, ActionLinkReceipt, r.ReceiptID); err != nil {
			return err
		}
		rc = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rc, nil
}

// GetReceipt returns one receipt.
func (s *FeeService) GetReceipt(ctx context.Context, id string) (*models.Receipt, error) {
	var rc *models.Receipt
	err := s.store.View(ctx, func(tx *store.Tx) (err error) {
		rc, err = s.repos.Receipts.Get(tx, id)
		return err
	})
	return rc, err
}

// ListReceipts returns receipts matching every non-empty filter field.
func (s *FeeService) ListReceipts(ctx context.Context, f dto.ReceiptFilter) ([]*models.Receipt, error) {
	var out []*models.Receipt
	err := s.store.View(ctx, func(tx *store.Tx) (err error) {
		out, err = s.repos.Receipts.List(tx, func(r *models.Receipt) bool {
			return (f.TxnID == "" || r.TxnID == f.TxnID) &&
				(f.IssuedBy == "" || r.IssuedBy == f.IssuedBy)
		})
		return err
	})
	return out, err
}

// StudentFeeSummary totals what a student has paid against the fee
// structures in effect for their programme (or for every programme).
// Only completed payments count.
func (s *FeeService) StudentFeeSummary(ctx context.Context, studentID string) (*models.FeeSummary, error) {
	now := s.repos.Clock()
	summary := &models.FeeSummary{StudentID: studentID}
	err := s.store.View(ctx, func(tx *store.Tx) error {
		student, err := s.repos.Students.Get(tx, studentID)
		if err != nil {
			return err
		}
		fees, err := s.repos.FeeStructures.List(tx, func(f *models.FeeStructure) bool {
			return effectiveAt(f, now) && (f.ProgrammeID == "" || f.ProgrammeID == student.ProgrammeID)
		})
		if err != nil {
			return err
		}
		for _, f := range fees {
			summary.TotalRequired += f.Amount
		}

		payments, err := s.repos.Transactions.FindAll(tx, "student_id", studentID)
		if err != nil {
			return err
		}
		sortByDateDesc(payments)
		summary.Payments = payments
		for _, t := range payments {
			if t.PaymentStatus != models.PaymentCompleted {
				continue
			}
			summary.TotalPaid += t.Amount
			summary.PaymentCount++
			if summary.LastPaymentDate == "" {
				summary.LastPaymentDate = t.Date
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	summary.TotalPaid = round2(summary.TotalPaid)
	summary.TotalRequired = round2(summary.TotalRequired)
	if pending := summary.TotalRequired - summary.TotalPaid; pending > 0 {
		summary.TotalPending = round2(pending)
	}
	return summary, nil
}

// Stats aggregates completed payments by mode and by month.
func (s *FeeService) Stats(ctx context.Context) (*models.FeeStats, error) {
	stats := &models.FeeStats{
		ByPaymentMode:     make(map[string]float64),
		MonthlyCollection: make(map[string]float64),
	}
	err := s.store.View(ctx, func(tx *store.Tx) error {
		completed, err := s.repos.Transactions.List(tx, func(t *models.Transaction) bool {
			return t.PaymentStatus == models.PaymentCompleted
		})
		if err != nil {
			return err
		}
		for _, t := range completed {
			stats.TotalCollected += t.Amount
			stats.TotalTransactions++
			stats.ByPaymentMode[t.PaymentMode] += t.Amount
			if d, ok := helpers.ParseTime(t.Date); ok {
				stats.MonthlyCollection[d.Format("2006-01")] += t.Amount
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	stats.TotalCollected = round2(stats.TotalCollected)
	for k, v := range stats.ByPaymentMode {
		stats.ByPaymentMode[k] = round2(v)
	}
	for k, v := range stats.MonthlyCollection {
		stats.MonthlyCollection[k] = round2(v)
	}
	return stats, nil
}

func sortByDateDesc(ts []*models.Transaction) {
	sort.SliceStable(ts, func(i, j int) bool {
		a, _ := helpers.ParseTime(ts[i].Date)
		b, _ := helpers.ParseTime(ts[j].Date)
		return a.After(b)
	})
}
