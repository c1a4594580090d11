// Package store is the table store accessor: named tables with a header
// schema, held in memory as immutable snapshots and persisted through a
// pluggable Backend. All reads and writes go through View and Update.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/collegeerp/internal/pkg/apperrors"
)

// WriteConflictError reports a row changed by another transaction after
// this one read it.
type WriteConflictError struct {
	Table string
	Key   string
}

func (e *WriteConflictError) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently, please retry", e.Table, e.Key)
}

func (e *WriteConflictError) Unwrap() error {
	return apperrors.ErrConflict
}

// Options tunes a Store.
type Options struct {
	// LockTimeout bounds the wait for each entity lock.
	LockTimeout time.Duration
	// TxTimeout bounds a whole View or Update call, lock waits included.
	TxTimeout time.Duration
	// Retries is how many times Update re-runs fn after a write conflict.
	Retries int
	Logger  zerolog.Logger
}

func (o *Options) setDefaults() {
	if o.LockTimeout <= 0 {
		o.LockTimeout = 2 * time.Second
	}
	if o.TxTimeout <= 0 {
		o.TxTimeout = 10 * time.Second
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
}

type snapshot struct {
	seq    uint64
	tables map[string]*table
}

// Store owns the committed snapshot and serializes commits.
type Store struct {
	schemas []*TableSchema
	backend Backend
	locks   *lockManager
	opts    Options
	log     zerolog.Logger

	// rewrites is set when the backend wants full tables with every batch.
	rewrites bool

	mu   sync.RWMutex
	snap *snapshot

	commitMu sync.Mutex
}

// Open loads every table in schemas from the backend.
func Open(ctx context.Context, backend Backend, schemas []*TableSchema, opts Options) (*Store, error) {
	opts.setDefaults()
	loaded, err := backend.Load(ctx, schemas)
	if err != nil {
		return nil, fmt.Errorf("failed to load tables: %w", err)
	}

	s := &Store{
		schemas: schemas,
		backend: backend,
		locks:   newLockManager(),
		opts:    opts,
		log:     opts.Logger.With().Str("component", "store").Logger(),
	}

	snap := &snapshot{seq: loaded.Seq, tables: make(map[string]*table, len(schemas))}
	for _, schema := range schemas {
		stored := loaded.Tables[schema.Name]
		rows := make([]*row, 0, len(stored))
		seen := make(map[string]struct{}, len(stored))
		for _, rec := range stored {
			norm := make(Record, len(schema.Headers))
			for _, h := range schema.Headers {
				norm[h] = rec[h]
			}
			key := norm[schema.Key()]
			if key == "" {
				s.log.Warn().Str("table", schema.Name).Msg("Skipping stored row without primary key")
				continue
			}
			if _, dup := seen[key]; dup {
				return nil, fmt.Errorf("table %s: duplicate %s %q in stored data", schema.Name, schema.Key(), key)
			}
			seen[key] = struct{}{}
			rows = append(rows, &row{rec: norm, version: snap.seq})
		}
		snap.tables[schema.Name] = newTable(schema, rows)
		s.log.Debug().Str("table", schema.Name).Int("rows", len(rows)).Msg("Table loaded")
	}
	s.snap = snap
	if rw, ok := backend.(TableRewriter); ok {
		s.rewrites = rw.RewritesTables()
	}
	s.log.Info().Uint64("seq", snap.seq).Int("tables", len(schemas)).Msg("Store opened")

	return s, nil
}

// Schemas returns the table definitions the store was opened with.
func (s *Store) Schemas() []*TableSchema {
	return s.schemas
}

func (s *Store) current() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// View runs fn against the latest committed snapshot. Writes are rejected.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.TxTimeout)
	defer cancel()

	err := fn(newTx(ctx, s.current(), true))
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.NewBusyError("Operation timed out, please retry")
	}
	return err
}

// Update runs fn as one unit of work while holding the entity locks named in
// locks. Either every write made by fn is committed and persisted, or none is.
// fn may be re-run from a fresh snapshot when a concurrent commit touched the
// same rows, so it must not have side effects outside tx.
func (s *Store) Update(ctx context.Context, locks []string, fn func(tx *Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.TxTimeout)
	defer cancel()

	release, err := s.locks.acquire(ctx, s.opts.LockTimeout, locks)
	if err != nil {
		return err
	}
	defer release()

	for attempt := 0; ; attempt++ {
		tx := newTx(ctx, s.current(), false)
		if err := fn(tx); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return apperrors.NewBusyError("Operation timed out, please retry")
			}
			return err
		}

		err := s.commit(ctx, tx)
		var wc *WriteConflictError
		if errors.As(err, &wc) && attempt < s.opts.Retries {
			s.log.Debug().Str("table", wc.Table).Str("key", wc.Key).Int("attempt", attempt+1).Msg("Retrying after write conflict")
			continue
		}
		return err
	}
}

func (s *Store) commit(ctx context.Context, tx *Tx) error {
	if !tx.Dirty() {
		return nil
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	cur := s.current()
	seq := cur.seq + 1
	next := make(map[string]*table)
	batch := &Batch{Seq: seq}

	// Changes are replayed onto the latest versions, so the cost of a commit
	// follows the number of changed rows rather than the size of the tables.
	for _, id := range tx.order {
		c := tx.changes[id]
		t, ok := next[c.table]
		if !ok {
			t = cur.tables[c.table]
		}

		existing, found := t.lookup(c.key)
		switch {
		case !c.existed && c.after == nil:
			// inserted and deleted within the same transaction
			continue
		case c.existed && (!found || existing.version != c.baseVersion):
			return &WriteConflictError{Table: c.table, Key: c.key}
		case !c.existed && found:
			return &WriteConflictError{Table: c.table, Key: c.key}
		case c.existed && c.after == nil:
			t = t.remove(existing)
			batch.Changes = append(batch.Changes, Change{Table: c.table, Key: c.key, Op: OpDelete})
		case c.existed:
			t = t.replace(existing, c.after, seq)
			batch.Changes = append(batch.Changes, Change{Table: c.table, Key: c.key, Op: OpUpdate, Record: c.after})
		default:
			t = t.insert(c.after, seq)
			batch.Changes = append(batch.Changes, Change{Table: c.table, Key: c.key, Op: OpInsert, Record: c.after})
		}
		next[c.table] = t
	}

	if len(batch.Changes) == 0 {
		return nil
	}
	if s.rewrites {
		batch.Tables = make(map[string][]Record, len(next))
		for name, t := range next {
			batch.Tables[name] = t.records()
		}
	}

	if err := s.backend.Commit(ctx, batch); err != nil {
		s.log.Error().Err(err).Uint64("seq", seq).Msg("Backend commit failed")
		if errors.Is(err, apperrors.ErrBusy) {
			return err
		}
		return apperrors.NewInternalError("Failed to persist changes", err)
	}

	tables := make(map[string]*table, len(cur.tables))
	for name, t := range cur.tables {
		tables[name] = t
	}
	for name, t := range next {
		tables[name] = t
	}

	s.mu.Lock()
	s.snap = &snapshot{seq: seq, tables: tables}
	s.mu.Unlock()

	s.log.Debug().Uint64("seq", seq).Int("changes", len(batch.Changes)).Int("tables", len(next)).Msg("Committed")
	return nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
