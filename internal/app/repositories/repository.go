package repositories

import (
	"errors"
	"fmt"

	"github.com/yigit/collegeerp/internal/audit"
	"github.com/yigit/collegeerp/internal/pkg/apperrors"
	"github.com/yigit/collegeerp/internal/pkg/helpers"
	"github.com/yigit/collegeerp/internal/store"
)

// tableRepo holds the typed CRUD shared by every entity repository. Each
// mutation writes its audit entry through the same transaction.
type tableRepo[T any] struct {
	table  string
	entity string
	audit  *audit.Logger
	clock  helpers.Clock
	// touch stamps the entity's updated_at column, when it has one.
	touch func(v *T, now string)
}

func (r *tableRepo[T]) now() string {
	return helpers.Timestamp(r.clock())
}

func (r *tableRepo[T]) notFound() error {
	return apperrors.NewResourceNotFoundError(r.entity + " not found")
}

func (r *tableRepo[T]) decode(rec store.Record) (*T, error) {
	v := new(T)
	if err := store.Decode(rec, v); err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("Corrupt %s record", r.entity), err)
	}
	return v, nil
}

func (r *tableRepo[T]) decodeAll(recs []store.Record, keep func(*T) bool) ([]*T, error) {
	out := make([]*T, 0, len(recs))
	for _, rec := range recs {
		v, err := r.decode(rec)
		if err != nil {
			return nil, err
		}
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// Get returns the entity with the given primary key.
func (r *tableRepo[T]) Get(tx *store.Tx, id string) (*T, error) {
	if id == "" {
		return nil, r.notFound()
	}
	rec, _, err := tx.Get(r.table, id)
	if errors.Is(err, store.ErrNoRow) {
		return nil, r.notFound()
	}
	if err != nil {
		return nil, err
	}
	return r.decode(rec)
}

// Exists reports whether id is present.
func (r *tableRepo[T]) Exists(tx *store.Tx, id string) (bool, error) {
	_, err := r.Get(tx, id)
	if errors.Is(err, apperrors.ErrResourceNotFound) {
		return false, nil
	}
	return err == nil, err
}

// findOne returns the first entity whose column equals value, or nil.
func (r *tableRepo[T]) findOne(tx *store.Tx, column, value string) (*T, error) {
	rec, _, err := tx.FindByKey(r.table, column, value)
	if errors.Is(err, store.ErrNoRow) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.decode(rec)
}

// FindAll returns every entity whose column equals value, in table order.
func (r *tableRepo[T]) FindAll(tx *store.Tx, column, value string) ([]*T, error) {
	recs, err := tx.FindAll(r.table, column, value)
	if err != nil {
		return nil, err
	}
	return r.decodeAll(recs, nil)
}

// List returns the entities accepted by keep, in table order. A nil keep
// returns everything.
func (r *tableRepo[T]) List(tx *store.Tx, keep func(*T) bool) ([]*T, error) {
	recs, err := tx.Scan(r.table, nil)
	if err != nil {
		return nil, err
	}
	return r.decodeAll(recs, keep)
}

func (r *tableRepo[T]) insert(tx *store.Tx, id string, v *T, action, notes string) error {
	rec, err := store.Encode(v)
	if err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("Failed to encode %s", r.entity), err)
	}
	if err := tx.Insert(r.table, rec); err != nil {
		return err
	}
	if action == "" {
		action = audit.ActionCreate
	}
	return r.audit.Record(tx, audit.Entry{Table: r.table, EntityID: id, Action: action, Notes: notes, After: rec})
}

// Update stores v over the entity with the given id. action defaults to
// "update"; workflows pass their own, e.g. "allocate".
func (r *tableRepo[T]) Update(tx *store.Tx, id string, v *T, action, notes string) error {
	before, pos, err := tx.Get(r.table, id)
	if errors.Is(err, store.ErrNoRow) {
		return r.notFound()
	}
	if err != nil {
		return err
	}
	if r.touch != nil {
		r.touch(v, r.now())
	}
	after, err := store.Encode(v)
	if err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("Failed to encode %s", r.entity), err)
	}
	if err := tx.UpdateAt(r.table, pos, after); err != nil {
		return err
	}
	if action == "" {
		action = audit.ActionUpdate
	}
	return r.audit.Record(tx, audit.Entry{Table: r.table, EntityID: id, Action: action, Notes: notes, Before: before, After: after})
}

// Delete removes the entity with the given id.
func (r *tableRepo[T]) Delete(tx *store.Tx, id, notes string) error {
	before, pos, err := tx.Get(r.table, id)
	if errors.Is(err, store.ErrNoRow) {
		return r.notFound()
	}
	if err != nil {
		return err
	}
	if err := tx.DeleteAt(r.table, pos); err != nil {
		return err
	}
	return r.audit.Record(tx, audit.Entry{Table: r.table, EntityID: id, Action: audit.ActionDelete, Notes: notes, Before: before})
}
