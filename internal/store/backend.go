package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Op is the kind of a committed row change.
type Op int

const (
	OpInsert Op = iota + 1
	OpUpdate
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Change is one row written by a commit. Record is nil for deletes.
type Change struct {
	Table  string
	Key    string
	Op     Op
	Record Record
}

// Batch is everything one commit writes. Tables is only filled for
// backends that implement TableRewriter; it then holds the full post-commit
// contents of every table the batch touches.
type Batch struct {
	Seq     uint64
	Changes []Change
	Tables  map[string][]Record
}

// TableNames returns the sorted names of the tables the batch changes.
func (b *Batch) TableNames() []string {
	seen := make(map[string]struct{})
	for _, c := range b.Changes {
		seen[c.Table] = struct{}{}
	}
	for name := range b.Tables {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Loaded is the persisted state a store starts from. Seq is the sequence of
// the last commit the backend applied, zero for a fresh backend.
type Loaded struct {
	Seq    uint64
	Tables map[string][]Record
}

// Backend is the physical store behind the in-memory tables. Commit must
// apply the whole batch or nothing.
type Backend interface {
	Load(ctx context.Context, schemas []*TableSchema) (*Loaded, error)
	Commit(ctx context.Context, batch *Batch) error
	Close() error
}

// TableRewriter marks a backend that persists whole tables rather than row
// changes. The store fills Batch.Tables only for such backends.
type TableRewriter interface {
	RewritesTables() bool
}

// MemoryBackend keeps committed rows in process memory only. Commits are
// journaled and folded into the tables on the next read.
type MemoryBackend struct {
	mu      sync.Mutex
	seq     uint64
	key     map[string]string
	tables  map[string][]Record
	pending []Change
}

// NewMemoryBackend returns a backend, optionally pre-populated with rows.
func NewMemoryBackend(initial map[string][]Record) *MemoryBackend {
	b := &MemoryBackend{key: make(map[string]string), tables: make(map[string][]Record)}
	for name, rows := range initial {
		b.tables[name] = rows
	}
	return b
}

func (b *MemoryBackend) Load(_ context.Context, schemas []*TableSchema) (*Loaded, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, schema := range schemas {
		b.key[schema.Name] = schema.Key()
	}
	b.compact()
	out := make(map[string][]Record, len(b.tables))
	for name, rows := range b.tables {
		out[name] = rows
	}
	return &Loaded{Seq: b.seq, Tables: out}, nil
}

func (b *MemoryBackend) Commit(_ context.Context, batch *Batch) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if batch.Seq <= b.seq {
		return fmt.Errorf("commit %d is not after %d", batch.Seq, b.seq)
	}
	b.seq = batch.Seq
	b.pending = append(b.pending, batch.Changes...)
	return nil
}

func (b *MemoryBackend) Close() error { return nil }

// Seq returns the sequence of the last applied commit.
func (b *MemoryBackend) Seq() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}

// Rows returns the last committed rows of a table.
func (b *MemoryBackend) Rows(name string) []Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.compact()
	return b.tables[name]
}

func (b *MemoryBackend) compact() {
	if len(b.pending) == 0 {
		return
	}
	touched := make(map[string][]Change)
	for _, c := range b.pending {
		touched[c.Table] = append(touched[c.Table], c)
	}
	for name, changes := range touched {
		key := b.key[name]
		rows := b.tables[name]
		pos := make(map[string]int, len(rows))
		for i, rec := range rows {
			pos[rec[key]] = i
		}
		out := make([]Record, len(rows))
		copy(out, rows)
		for _, c := range changes {
			switch c.Op {
			case OpInsert:
				pos[c.Key] = len(out)
				out = append(out, c.Record)
			case OpUpdate:
				out[pos[c.Key]] = c.Record
			case OpDelete:
				out[pos[c.Key]] = nil
				delete(pos, c.Key)
			}
		}
		kept := out[:0]
		for _, rec := range out {
			if rec != nil {
				kept = append(kept, rec)
			}
		}
		b.tables[name] = kept
	}
	b.pending = nil
}
