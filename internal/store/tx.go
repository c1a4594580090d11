package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/yigit/collegeerp/internal/pkg/apperrors"
)

// ErrNoRow is returned by lookups that match nothing.
var ErrNoRow = errors.New("row not found")

var errReadOnly = errors.New("write attempted in a read-only transaction")

const scanCheckEvery = 256

// change is the net effect of a transaction on one row.
type change struct {
	table       string
	key         string
	existed     bool
	baseVersion uint64
	before      Record
	after       Record
}

// Tx is a unit of work over a consistent snapshot. Reads see the snapshot
// plus the transaction's own writes; nothing is visible to other
// transactions until the store commits it. Writes derive new table versions
// that share structure with the snapshot, so no table is ever copied whole.
type Tx struct {
	ctx      context.Context
	base     *snapshot
	working  map[string]*table
	changes  map[string]*change
	order    []string
	readOnly bool
}

func newTx(ctx context.Context, base *snapshot, readOnly bool) *Tx {
	return &Tx{
		ctx:      ctx,
		base:     base,
		working:  make(map[string]*table),
		changes:  make(map[string]*change),
		readOnly: readOnly,
	}
}

// Context returns the context bounding the transaction.
func (tx *Tx) Context() context.Context {
	return tx.ctx
}

func (tx *Tx) table(name string) (*table, error) {
	if t, ok := tx.working[name]; ok {
		return t, nil
	}
	t, ok := tx.base.tables[name]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("Table %s not found", name))
	}
	return t, nil
}

func (tx *Tx) writable(name string) (*table, error) {
	if tx.readOnly {
		return nil, errReadOnly
	}
	return tx.table(name)
}

func (tx *Tx) track(name, key string, prev *row) *change {
	id := name + "\x00" + key
	if c, ok := tx.changes[id]; ok {
		return c
	}
	c := &change{table: name, key: key}
	if prev != nil {
		c.existed = true
		c.baseVersion = prev.version
		c.before = prev.rec
	}
	tx.changes[id] = c
	tx.order = append(tx.order, id)
	return c
}

// Table returns the schema handle for name, or a not-found error.
func (tx *Tx) Table(name string) (*TableSchema, error) {
	t, err := tx.table(name)
	if err != nil {
		return nil, err
	}
	return t.schema, nil
}

// Len returns the number of rows in the table.
func (tx *Tx) Len(name string) (int, error) {
	t, err := tx.table(name)
	if err != nil {
		return 0, err
	}
	return t.size, nil
}

// Get looks a row up by primary key.
func (tx *Tx) Get(name, key string) (Record, int, error) {
	t, err := tx.table(name)
	if err != nil {
		return nil, -1, err
	}
	r, ok := t.lookup(key)
	if !ok {
		return nil, -1, ErrNoRow
	}
	return r.rec.Clone(), t.position(r), nil
}

// FindByKey returns the first row whose column equals value and its position.
func (tx *Tx) FindByKey(name, column, value string) (Record, int, error) {
	t, err := tx.table(name)
	if err != nil {
		return nil, -1, err
	}
	if !t.schema.HasColumn(column) {
		return nil, -1, apperrors.NewValidationError(fmt.Sprintf("Unknown column %s for table %s", column, name))
	}
	hits := t.matches(column, value)
	if len(hits) == 0 {
		return nil, -1, ErrNoRow
	}
	return hits[0].rec.Clone(), t.position(hits[0]), nil
}

// FindAll returns every row whose column equals value, in table order.
func (tx *Tx) FindAll(name, column, value string) ([]Record, error) {
	t, err := tx.table(name)
	if err != nil {
		return nil, err
	}
	if !t.schema.HasColumn(column) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Unknown column %s for table %s", column, name))
	}
	hits := t.matches(column, value)
	out := make([]Record, 0, len(hits))
	for _, r := range hits {
		out = append(out, r.rec.Clone())
	}
	return out, nil
}

// Scan returns the rows accepted by keep, in table order. A nil keep returns
// all rows. A scan stops early once the transaction's context is done.
func (tx *Tx) Scan(name string, keep func(Record) bool) ([]Record, error) {
	t, err := tx.table(name)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, t.size)
	seen := 0
	t.each(func(r *row) bool {
		if seen++; seen%scanCheckEvery == 0 && tx.ctx.Err() != nil {
			err = tx.ctx.Err()
			return false
		}
		if keep == nil || keep(r.rec) {
			out = append(out, r.rec.Clone())
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Insert appends rec. The primary key must be set and unused.
func (tx *Tx) Insert(name string, rec Record) error {
	t, err := tx.writable(name)
	if err != nil {
		return err
	}
	norm, err := normalize(t.schema, rec)
	if err != nil {
		return err
	}
	key := norm[t.schema.Key()]
	if key == "" {
		return apperrors.NewMissingFieldsError(t.schema.Key())
	}
	if _, exists := t.lookup(key); exists {
		return apperrors.NewConflictError(fmt.Sprintf("%s %s already exists", name, key))
	}
	c := tx.track(name, key, nil)
	c.after = norm
	tx.working[name] = t.insert(norm, 0)
	return nil
}

// UpdateAt replaces the row at pos. The primary key cannot change.
func (tx *Tx) UpdateAt(name string, pos int, rec Record) error {
	t, err := tx.writable(name)
	if err != nil {
		return err
	}
	prev, ok := t.at(pos)
	if !ok {
		return fmt.Errorf("%s position %d: %w", name, pos, ErrNoRow)
	}
	norm, err := normalize(t.schema, rec)
	if err != nil {
		return err
	}
	key := prev.rec[t.schema.Key()]
	if norm[t.schema.Key()] != key {
		return apperrors.NewValidationError(fmt.Sprintf("%s cannot be changed", t.schema.Key()))
	}
	c := tx.track(name, key, prev)
	c.after = norm
	tx.working[name] = t.replace(prev, norm, prev.version)
	return nil
}

// DeleteAt removes the row at pos. Later rows shift down by one.
func (tx *Tx) DeleteAt(name string, pos int) error {
	t, err := tx.writable(name)
	if err != nil {
		return err
	}
	prev, ok := t.at(pos)
	if !ok {
		return fmt.Errorf("%s position %d: %w", name, pos, ErrNoRow)
	}
	c := tx.track(name, prev.rec[t.schema.Key()], prev)
	c.after = nil
	tx.working[name] = t.remove(prev)
	return nil
}

// Dirty reports whether the transaction has pending writes.
func (tx *Tx) Dirty() bool {
	return len(tx.order) > 0
}

// normalize maps rec onto the header, rejecting columns the table lacks.
func normalize(schema *TableSchema, rec Record) (Record, error) {
	var unknown []string
	for k := range rec {
		if !schema.HasColumn(k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, apperrors.NewValidationError(fmt.Sprintf("Unknown columns for table %s: %v", schema.Name, unknown))
	}
	out := make(Record, len(schema.Headers))
	for _, h := range schema.Headers {
		out[h] = rec[h]
	}
	return out, nil
}
