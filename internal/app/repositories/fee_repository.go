package repositories

import (
	"fmt"

	"github.com/yigit/collegeerp/internal/app/models"
	"github.com/yigit/collegeerp/internal/audit"
	"github.com/yigit/collegeerp/internal/pkg/apperrors"
	"github.com/yigit/collegeerp/internal/pkg/helpers"
	"github.com/yigit/collegeerp/internal/pkg/idgen"
	"github.com/yigit/collegeerp/internal/store"
)

// FeeStructureRepository handles the FeeMaster table.
type FeeStructureRepository struct {
	tableRepo[models.FeeStructure]
}

// NewFeeStructureRepository creates a new FeeStructureRepository
func NewFeeStructureRepository(log *audit.Logger, clock helpers.Clock) *FeeStructureRepository {
	return &FeeStructureRepository{tableRepo[models.FeeStructure]{
		table:  store.FeeMaster,
		entity: "Fee structure",
		audit:  log,
		clock:  clock,
		touch:  func(f *models.FeeStructure, now string) { f.UpdatedAt = now },
	}}
}

// Create stores a new fee structure.
func (r *FeeStructureRepository) Create(tx *store.Tx, f *models.FeeStructure) error {
	exists, err := r.Exists(tx, f.FeeID)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.NewConflictError(fmt.Sprintf("Fee structure %s already exists", f.FeeID))
	}
	f.CreatedAt = r.now()
	f.UpdatedAt = f.CreatedAt
	return r.insert(tx, f.FeeID, f, "", "")
}

// TransactionRepository handles the Transactions table.
type TransactionRepository struct {
	tableRepo[models.Transaction]
	ids idgen.Generator
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(log *audit.Logger, ids idgen.Generator, clock helpers.Clock) *TransactionRepository {
	return &TransactionRepository{
		tableRepo: tableRepo[models.Transaction]{
			table:  store.Transactions,
			entity: "Transaction",
			audit:  log,
			clock:  clock,
		},
		ids: ids,
	}
}

// NewID reserves a transaction id, so a receipt can reference it before the
// transaction is stored.
func (r *TransactionRepository) NewID() string {
	return r.ids.NewID(idgen.Transaction)
}

// Create stores a ledger entry.
func (r *TransactionRepository) Create(tx *store.Tx, t *models.Transaction) error {
	if t.TxnID == "" {
		t.TxnID = r.NewID()
	}
	t.CreatedAt = r.now()
	if t.Date == "" {
		t.Date = t.CreatedAt
	}
	return r.insert(tx, t.TxnID, t, "", "")
}

// ReceiptRepository handles the Receipts table.
type ReceiptRepository struct {
	tableRepo[models.Receipt]
	ids idgen.Generator
}

// NewReceiptRepository creates a new ReceiptRepository
func NewReceiptRepository(log *audit.Logger, ids idgen.Generator, clock helpers.Clock) *ReceiptRepository {
	return &ReceiptRepository{
		tableRepo: tableRepo[models.Receipt]{
			table:  store.Receipts,
			entity: "Receipt",
			audit:  log,
			clock:  clock,
		},
		ids: ids,
	}
}

// NewID reserves a receipt id.
func (r *ReceiptRepository) NewID() string {
	return r.ids.NewID(idgen.Receipt)
}

// Create stores a receipt for txnID. Only one receipt may exist per transaction.
func (r *ReceiptRepository) Create(tx *store.Tx, rc *models.Receipt) error {
	existing, err := r.ForTransaction(tx, rc.TxnID)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperrors.NewConflictError("Transaction already has a receipt")
	}
	if rc.ReceiptID == "" {
		rc.ReceiptID = r.NewID()
	}
	rc.CreatedAt = r.now()
	if rc.IssuedOn == "" {
		rc.IssuedOn = rc.CreatedAt
	}
	return r.insert(tx, rc.ReceiptID, rc, "", "")
}

// ForTransaction returns the receipt of a transaction, or nil.
func (r *ReceiptRepository) ForTransaction(tx *store.Tx, txnID string) (*models.Receipt, error) {
	return r.findOne(tx, "txn_id", txnID)
}
