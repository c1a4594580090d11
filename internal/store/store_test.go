package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/collegeerp/internal/pkg/apperrors"
)

var testSchemas = []*TableSchema{
	{Name: "Rooms", Headers: []string{"room_id", "status", "occupant"}, Indexes: []string{"status"}},
	{Name: "Log", Headers: []string{"log_id", "entity_id"}, Indexes: []string{"entity_id"}},
}

func openTestStore(t *testing.T, backend Backend, opts Options) *Store {
	t.Helper()
	if backend == nil {
		backend = NewMemoryBackend(nil)
	}
	s, err := Open(context.Background(), backend, testSchemas, opts)
	require.NoError(t, err)
	return s
}

func insertRoom(t *testing.T, s *Store, id, status string) {
	t.Helper()
	require.NoError(t, s.Update(context.Background(), nil, func(tx *Tx) error {
		return tx.Insert("Rooms", Record{"room_id": id, "status": status})
	}))
}

func TestAccessorCRUD(t *testing.T) {
	s := openTestStore(t, nil, Options{})
	ctx := context.Background()

	insertRoom(t, s, "R1", "available")
	insertRoom(t, s, "R2", "available")
	insertRoom(t, s, "R3", "maintenance")

	err := s.Update(ctx, []string{"room:R2"}, func(tx *Tx) error {
		rec, pos, err := tx.FindByKey("Rooms", "room_id", "R2")
		if err != nil {
			return err
		}
		assert.Equal(t, 1, pos)
		assert.Equal(t, "", rec["occupant"], "absent fields read as empty")
		rec["status"] = "occupied"
		rec["occupant"] = "S1"
		return tx.UpdateAt("Rooms", pos, rec)
	})
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, nil, func(tx *Tx) error {
		_, pos, err := tx.Get("Rooms", "R1")
		if err != nil {
			return err
		}
		return tx.DeleteAt("Rooms", pos)
	}))

	require.NoError(t, s.View(ctx, func(tx *Tx) error {
		n, err := tx.Len("Rooms")
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		rec, pos, err := tx.Get("Rooms", "R2")
		require.NoError(t, err)
		assert.Equal(t, 0, pos, "positions shift after delete")
		assert.Equal(t, "occupied", rec["status"])

		avail, err := tx.FindAll("Rooms", "status", "available")
		require.NoError(t, err)
		assert.Empty(t, avail)

		maint, err := tx.FindAll("Rooms", "status", "maintenance")
		require.NoError(t, err)
		require.Len(t, maint, 1)
		assert.Equal(t, "R3", maint[0]["room_id"])

		byOccupant, err := tx.FindAll("Rooms", "occupant", "S1")
		require.NoError(t, err)
		assert.Len(t, byOccupant, 1, "non-indexed column falls back to a scan")

		_, _, err = tx.Get("Rooms", "R1")
		assert.ErrorIs(t, err, ErrNoRow)
		return nil
	}))
}

func TestAccessorValidation(t *testing.T) {
	s := openTestStore(t, nil, Options{})
	ctx := context.Background()
	insertRoom(t, s, "R1", "available")

	tests := []struct {
		name    string
		fn      func(tx *Tx) error
		wantErr error
	}{
		{
			name:    "unknown table",
			fn:      func(tx *Tx) error { _, err := tx.Table("Nope"); return err },
			wantErr: apperrors.ErrResourceNotFound,
		},
		{
			name:    "unknown column",
			fn:      func(tx *Tx) error { return tx.Insert("Rooms", Record{"room_id": "R9", "colour": "red"}) },
			wantErr: apperrors.ErrValidationFailed,
		},
		{
			name:    "missing key",
			fn:      func(tx *Tx) error { return tx.Insert("Rooms", Record{"status": "available"}) },
			wantErr: apperrors.ErrValidationFailed,
		},
		{
			name:    "duplicate key",
			fn:      func(tx *Tx) error { return tx.Insert("Rooms", Record{"room_id": "R1"}) },
			wantErr: apperrors.ErrConflict,
		},
		{
			name: "key change",
			fn: func(tx *Tx) error {
				return tx.UpdateAt("Rooms", 0, Record{"room_id": "R2"})
			},
			wantErr: apperrors.ErrValidationFailed,
		},
		{
			name:    "bad position",
			fn:      func(tx *Tx) error { return tx.DeleteAt("Rooms", 7) },
			wantErr: ErrNoRow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Update(ctx, nil, tt.fn)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdateRollsBackOnError(t *testing.T) {
	backend := NewMemoryBackend(nil)
	s := openTestStore(t, backend, Options{})
	ctx := context.Background()
	insertRoom(t, s, "R1", "available")

	boom := errors.New("boom")
	err := s.Update(ctx, nil, func(tx *Tx) error {
		rec, pos, err := tx.Get("Rooms", "R1")
		require.NoError(t, err)
		rec["status"] = "occupied"
		require.NoError(t, tx.UpdateAt("Rooms", pos, rec))
		require.NoError(t, tx.Insert("Log", Record{"log_id": "L1", "entity_id": "R1"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	require.NoError(t, s.View(ctx, func(tx *Tx) error {
		rec, _, err := tx.Get("Rooms", "R1")
		require.NoError(t, err)
		assert.Equal(t, "available", rec["status"])
		n, _ := tx.Len("Log")
		assert.Zero(t, n)
		return nil
	}))
	assert.Empty(t, backend.Rows("Log"))
}

type failingBackend struct {
	*MemoryBackend
	fail bool
}

func (b *failingBackend) Commit(ctx context.Context, batch *Batch) error {
	if b.fail {
		return errors.New("disk full")
	}
	return b.MemoryBackend.Commit(ctx, batch)
}

func TestBackendFailureIsInternalAndInvisible(t *testing.T) {
	backend := &failingBackend{MemoryBackend: NewMemoryBackend(nil)}
	s := openTestStore(t, backend, Options{})
	insertRoom(t, s, "R1", "available")

	backend.fail = true
	err := s.Update(context.Background(), nil, func(tx *Tx) error {
		return tx.Insert("Rooms", Record{"room_id": "R2"})
	})
	assert.ErrorIs(t, err, apperrors.ErrInternal)

	require.NoError(t, s.View(context.Background(), func(tx *Tx) error {
		_, _, err := tx.Get("Rooms", "R2")
		assert.ErrorIs(t, err, ErrNoRow)
		return nil
	}))
}

func TestViewIsReadOnlyAndIsolated(t *testing.T) {
	s := openTestStore(t, nil, Options{})
	ctx := context.Background()
	insertRoom(t, s, "R1", "available")

	err := s.View(ctx, func(tx *Tx) error {
		return tx.Insert("Rooms", Record{"room_id": "R2"})
	})
	assert.Error(t, err)

	// a reader that started before a commit keeps its snapshot
	started := make(chan struct{})
	proceed := make(chan struct{})
	done := make(chan string)
	go func() {
		_ = s.View(ctx, func(tx *Tx) error {
			close(started)
			<-proceed
			rec, _, _ := tx.Get("Rooms", "R1")
			done <- rec["status"]
			return nil
		})
	}()
	<-started
	require.NoError(t, s.Update(ctx, nil, func(tx *Tx) error {
		rec, pos, err := tx.Get("Rooms", "R1")
		if err != nil {
			return err
		}
		rec["status"] = "occupied"
		return tx.UpdateAt("Rooms", pos, rec)
	}))
	close(proceed)
	assert.Equal(t, "available", <-done)
}

func TestLockTimeoutReturnsBusy(t *testing.T) {
	s := openTestStore(t, nil, Options{LockTimeout: 50 * time.Millisecond})
	ctx := context.Background()

	holding := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = s.Update(ctx, []string{"room:R1"}, func(tx *Tx) error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	err := s.Update(ctx, []string{"student:S1", "room:R1"}, func(tx *Tx) error { return nil })
	close(release)
	assert.ErrorIs(t, err, apperrors.ErrBusy)

	// the lock is free again once the holder finishes
	assert.Eventually(t, func() bool {
		return s.Update(ctx, []string{"room:R1"}, func(tx *Tx) error { return nil }) == nil
	}, time.Second, 10*time.Millisecond)
}

func TestConcurrentWritersOnDifferentRowsBothCommit(t *testing.T) {
	s := openTestStore(t, nil, Options{Retries: 3})
	ctx := context.Background()
	insertRoom(t, s, "R1", "available")
	insertRoom(t, s, "R2", "available")

	var wg sync.WaitGroup
	for _, id := range []string{"R1", "R2"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			err := s.Update(ctx, []string{"room:" + id}, func(tx *Tx) error {
				rec, pos, err := tx.Get("Rooms", id)
				if err != nil {
					return err
				}
				rec["status"] = "occupied"
				if err := tx.UpdateAt("Rooms", pos, rec); err != nil {
					return err
				}
				return tx.Insert("Log", Record{"log_id": id + "-log", "entity_id": id})
			})
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	require.NoError(t, s.View(ctx, func(tx *Tx) error {
		occupied, _ := tx.FindAll("Rooms", "status", "occupied")
		assert.Len(t, occupied, 2)
		n, _ := tx.Len("Log")
		assert.Equal(t, 2, n)
		return nil
	}))
}

func TestUnlockedWriteConflictIsRetried(t *testing.T) {
	s := openTestStore(t, nil, Options{Retries: 2})
	ctx := context.Background()
	insertRoom(t, s, "R1", "available")

	var calls atomic.Int32
	err := s.Update(ctx, nil, func(tx *Tx) error {
		n := calls.Add(1)
		rec, pos, err := tx.Get("Rooms", "R1")
		if err != nil {
			return err
		}
		if n == 1 {
			// a competing commit lands between our read and our commit
			require.NoError(t, s.Update(ctx, nil, func(other *Tx) error {
				r, p, _ := other.Get("Rooms", "R1")
				r["occupant"] = "S9"
				return other.UpdateAt("Rooms", p, r)
			}))
		}
		rec["status"] = "maintenance"
		return tx.UpdateAt("Rooms", pos, rec)
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())

	require.NoError(t, s.View(ctx, func(tx *Tx) error {
		rec, _, _ := tx.Get("Rooms", "R1")
		assert.Equal(t, "maintenance", rec["status"])
		assert.Equal(t, "S9", rec["occupant"], "the competing write is not lost")
		return nil
	}))
}

func TestWriteConflictWithoutRetries(t *testing.T) {
	s := openTestStore(t, nil, Options{})
	ctx := context.Background()
	insertRoom(t, s, "R1", "available")

	err := s.Update(ctx, nil, func(tx *Tx) error {
		_, pos, _ := tx.Get("Rooms", "R1")
		require.NoError(t, s.Update(ctx, nil, func(other *Tx) error {
			_, p, _ := other.Get("Rooms", "R1")
			return other.DeleteAt("Rooms", p)
		}))
		return tx.UpdateAt("Rooms", pos, Record{"room_id": "R1", "status": "occupied"})
	})
	var wc *WriteConflictError
	require.ErrorAs(t, err, &wc)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, "R1", wc.Key)
}

func TestOpenNormalizesLoadedRows(t *testing.T) {
	backend := NewMemoryBackend(map[string][]Record{
		"Rooms": {
			{"room_id": "R1", "status": "available", "legacy": "x"},
			{"room_id": "", "status": "available"},
		},
	})
	s := openTestStore(t, backend, Options{})
	require.NoError(t, s.View(context.Background(), func(tx *Tx) error {
		n, _ := tx.Len("Rooms")
		assert.Equal(t, 1, n)
		rec, _, err := tx.Get("Rooms", "R1")
		require.NoError(t, err)
		_, hasLegacy := rec["legacy"]
		assert.False(t, hasLegacy)
		return nil
	}))

	dup := NewMemoryBackend(map[string][]Record{
		"Rooms": {{"room_id": "R1"}, {"room_id": "R1"}},
	})
	_, err := Open(context.Background(), dup, testSchemas, Options{})
	assert.Error(t, err)
}

type seqRecorder struct {
	*MemoryBackend
	mu      sync.Mutex
	seqs    []uint64
	batches []*Batch
}

func (b *seqRecorder) Commit(ctx context.Context, batch *Batch) error {
	b.mu.Lock()
	b.seqs = append(b.seqs, batch.Seq)
	b.batches = append(b.batches, batch)
	b.mu.Unlock()
	return b.MemoryBackend.Commit(ctx, batch)
}

func TestSequenceContinuesAfterReopen(t *testing.T) {
	backend := &seqRecorder{MemoryBackend: NewMemoryBackend(nil)}
	ctx := context.Background()

	first := openTestStore(t, backend, Options{})
	insertRoom(t, first, "R1", "available")
	insertRoom(t, first, "R2", "available")
	require.NoError(t, first.Close())

	second := openTestStore(t, backend, Options{})
	insertRoom(t, second, "R3", "available")
	require.NoError(t, second.Update(ctx, nil, func(tx *Tx) error {
		rec, pos, err := tx.Get("Rooms", "R1")
		if err != nil {
			return err
		}
		rec["status"] = "occupied"
		return tx.UpdateAt("Rooms", pos, rec)
	}))

	assert.Equal(t, []uint64{1, 2, 3, 4}, backend.seqs)
	assert.Equal(t, uint64(4), backend.Seq())
	rows := backend.Rows("Rooms")
	require.Len(t, rows, 3)
	assert.Equal(t, "occupied", rows[0]["status"])
}

func TestMemoryBackendRejectsStaleSequence(t *testing.T) {
	backend := NewMemoryBackend(nil)
	ctx := context.Background()
	require.NoError(t, backend.Commit(ctx, &Batch{Seq: 3}))
	assert.Error(t, backend.Commit(ctx, &Batch{Seq: 3}))
	assert.Error(t, backend.Commit(ctx, &Batch{Seq: 2}))
}

func TestViewTimeoutReturnsBusy(t *testing.T) {
	s := openTestStore(t, nil, Options{TxTimeout: 20 * time.Millisecond})

	err := s.View(context.Background(), func(tx *Tx) error {
		<-tx.Context().Done()
		_, err := tx.Scan("Rooms", nil)
		if err != nil {
			return err
		}
		return tx.Context().Err()
	})
	assert.ErrorIs(t, err, apperrors.ErrBusy)
}

func TestScanStopsWhenContextEnds(t *testing.T) {
	s := openTestStore(t, nil, Options{})
	ctx := context.Background()
	require.NoError(t, s.Update(ctx, nil, func(tx *Tx) error {
		for i := 0; i < scanCheckEvery*2; i++ {
			if err := tx.Insert("Log", Record{"log_id": fmt.Sprintf("L%04d", i)}); err != nil {
				return err
			}
		}
		return nil
	}))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err := s.View(cancelled, func(tx *Tx) error {
		_, err := tx.Scan("Log", nil)
		return err
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCommitSharesUntouchedRows(t *testing.T) {
	backend := &seqRecorder{MemoryBackend: NewMemoryBackend(nil)}
	s := openTestStore(t, backend, Options{})
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, nil, func(tx *Tx) error {
		for i := 0; i < chunkSize*8; i++ {
			if err := tx.Insert("Log", Record{"log_id": fmt.Sprintf("L%05d", i), "entity_id": "R1"}); err != nil {
				return err
			}
		}
		return nil
	}))
	before := s.current().tables["Log"]

	insertRoom(t, s, "R1", "available")
	require.NoError(t, s.Update(ctx, nil, func(tx *Tx) error {
		return tx.Insert("Log", Record{"log_id": "L-new", "entity_id": "R1"})
	}))

	after := s.current().tables["Log"]
	assert.Equal(t, before.size+1, after.size)
	for i := range before.chunks {
		assert.True(t, &before.chunks[i][0] == &after.chunks[i][0], "chunk %d copied", i)
	}
	assert.Equal(t, chunkSize*8, before.size, "published versions are never modified")

	for _, b := range backend.batches {
		assert.Nil(t, b.Tables, "row-level backends are not sent whole tables")
	}
	require.NoError(t, s.View(ctx, func(tx *Tx) error {
		all, err := tx.FindAll("Log", "entity_id", "R1")
		require.NoError(t, err)
		require.Len(t, all, chunkSize*8+1)
		assert.Equal(t, "L-new", all[len(all)-1]["log_id"])
		return nil
	}))
}

type rewriterBackend struct {
	*seqRecorder
}

func (rewriterBackend) RewritesTables() bool { return true }

func TestRewriterBackendGetsTouchedTables(t *testing.T) {
	backend := rewriterBackend{&seqRecorder{MemoryBackend: NewMemoryBackend(nil)}}
	s := openTestStore(t, backend, Options{})
	insertRoom(t, s, "R1", "available")
	insertRoom(t, s, "R2", "available")

	require.Len(t, backend.batches, 2)
	last := backend.batches[1]
	assert.Equal(t, []string{"Rooms"}, last.TableNames())
	assert.Len(t, last.Tables["Rooms"], 2)
}
