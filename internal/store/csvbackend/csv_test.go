package csvbackend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/collegeerp/internal/pkg/apperrors"
	"github.com/yigit/collegeerp/internal/store"
)

var schemas = []*store.TableSchema{
	{Name: "Rooms", Headers: []string{"room_id", "status", "notes"}},
}

func TestRoundTripThroughStore(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	backend, err := New(dir, zerolog.Nop())
	require.NoError(t, err)
	s, err := store.Open(ctx, backend, schemas, store.Options{})
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, nil, func(tx *store.Tx) error {
		if err := tx.Insert("Rooms", store.Record{"room_id": "R1", "status": "available", "notes": "corner, quiet"}); err != nil {
			return err
		}
		return tx.Insert("Rooms", store.Record{"room_id": "R2", "status": "occupied"})
	}))
	require.NoError(t, s.Update(ctx, nil, func(tx *store.Tx) error {
		_, pos, err := tx.Get("Rooms", "R2")
		if err != nil {
			return err
		}
		return tx.DeleteAt("Rooms", pos)
	}))

	raw, err := os.ReadFile(filepath.Join(dir, "Rooms.csv"))
	require.NoError(t, err)
	assert.Equal(t, "room_id,status,notes\nR1,available,\"corner, quiet\"\n", string(raw))

	reopened, err := New(dir, zerolog.Nop())
	require.NoError(t, err)
	s2, err := store.Open(ctx, reopened, schemas, store.Options{})
	require.NoError(t, err)
	require.NoError(t, s2.View(ctx, func(tx *store.Tx) error {
		rec, _, err := tx.Get("Rooms", "R1")
		require.NoError(t, err)
		assert.Equal(t, "corner, quiet", rec["notes"])
		n, _ := tx.Len("Rooms")
		assert.Equal(t, 1, n)
		return nil
	}))

	assertClean(t, dir)
}

func TestLoadMatchesColumnsByHeader(t *testing.T) {
	dir := t.TempDir()
	body := "status,room_id,legacy\navailable,R7,x\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Rooms.csv"), []byte(body), 0o644))

	backend, err := New(dir, zerolog.Nop())
	require.NoError(t, err)
	loaded, err := backend.Load(context.Background(), schemas)
	require.NoError(t, err)
	assert.Zero(t, loaded.Seq)
	rows := loaded.Tables["Rooms"]
	require.Len(t, rows, 1)
	assert.Equal(t, "R7", rows[0]["room_id"])
	assert.Equal(t, "available", rows[0]["status"])
}

func TestCommitUnknownTable(t *testing.T) {
	backend, err := New(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	err = backend.Commit(context.Background(), &store.Batch{Tables: map[string][]store.Record{"Ghost": nil}})
	assert.Error(t, err)
}

var ledgerSchemas = []*store.TableSchema{
	{Name: "AuditLog", Headers: []string{"audit_id", "entity_id"}},
	{Name: "Rooms", Headers: []string{"room_id", "status"}},
}

func assertClean(t *testing.T, dir string) {
	t.Helper()
	for _, pattern := range []string{"*.tmp", "*.bak", manifestFile} {
		leftovers, err := filepath.Glob(filepath.Join(dir, pattern))
		require.NoError(t, err)
		assert.Empty(t, leftovers, pattern)
	}
}

func readFiles(t *testing.T, dir string, names ...string) map[string]string {
	t.Helper()
	out := make(map[string]string, len(names))
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		out[name] = string(raw)
	}
	return out
}

func insertAudited(s *store.Store, room, audit string) error {
	return s.Update(context.Background(), nil, func(tx *store.Tx) error {
		if err := tx.Insert("Rooms", store.Record{"room_id": room, "status": "available"}); err != nil {
			return err
		}
		return tx.Insert("AuditLog", store.Record{"audit_id": audit, "entity_id": room})
	})
}

func TestFailedReplaceRestoresEveryFile(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	backend, err := New(dir, zerolog.Nop())
	require.NoError(t, err)
	s, err := store.Open(ctx, backend, ledgerSchemas, store.Options{})
	require.NoError(t, err)
	require.NoError(t, insertAudited(s, "R1", "A1"))

	before := readFiles(t, dir, "AuditLog.csv", "Rooms.csv", stateFile)

	// AuditLog.csv is swapped before Rooms.csv, so it must be put back
	backend.rename = func(oldpath, newpath string) error {
		if strings.HasSuffix(oldpath, ".tmp") && filepath.Base(newpath) == "Rooms.csv" {
			return errors.New("device busy")
		}
		return os.Rename(oldpath, newpath)
	}
	err = insertAudited(s, "R2", "A2")
	assert.ErrorIs(t, err, apperrors.ErrInternal)

	assert.Equal(t, before, readFiles(t, dir, "AuditLog.csv", "Rooms.csv", stateFile))
	assertClean(t, dir)
	require.NoError(t, s.View(ctx, func(tx *store.Tx) error {
		_, _, err := tx.Get("AuditLog", "A2")
		assert.ErrorIs(t, err, store.ErrNoRow)
		return nil
	}))

	backend.rename = os.Rename
	require.NoError(t, insertAudited(s, "R3", "A3"))

	reopened, err := New(dir, zerolog.Nop())
	require.NoError(t, err)
	loaded, err := reopened.Load(ctx, ledgerSchemas)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), loaded.Seq)
	assert.Equal(t, []store.Record{
		{"audit_id": "A1", "entity_id": "R1"},
		{"audit_id": "A3", "entity_id": "R3"},
	}, loaded.Tables["AuditLog"])
}

func TestLoadUndoesInterruptedCommit(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	backend, err := New(dir, zerolog.Nop())
	require.NoError(t, err)
	s, err := store.Open(ctx, backend, ledgerSchemas, store.Options{})
	require.NoError(t, err)
	require.NoError(t, s.Update(ctx, nil, func(tx *store.Tx) error {
		return tx.Insert("Rooms", store.Record{"room_id": "R1", "status": "available"})
	}))
	before := readFiles(t, dir, "Rooms.csv", stateFile)

	// every file is swapped but the process dies before the manifest goes
	m, err := backend.prepare(&store.Batch{
		Seq: 2,
		Tables: map[string][]store.Record{
			"AuditLog": {{"audit_id": "A1", "entity_id": "R1"}},
			"Rooms":    {},
		},
	})
	require.NoError(t, err)
	require.NoError(t, backend.writeManifest(m))
	require.NoError(t, backend.swap(m))

	reopened, err := New(dir, zerolog.Nop())
	require.NoError(t, err)
	loaded, err := reopened.Load(ctx, ledgerSchemas)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), loaded.Seq)
	assert.Empty(t, loaded.Tables["AuditLog"])
	assert.Len(t, loaded.Tables["Rooms"], 1)

	assert.Equal(t, before, readFiles(t, dir, "Rooms.csv", stateFile))
	_, err = os.Stat(filepath.Join(dir, "AuditLog.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist, "a table created by the undone commit is removed")
	assertClean(t, dir)
}

func TestSequenceContinuesAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	for round, ids := range [][]string{{"R1", "R2"}, {"R3", "R4"}} {
		backend, err := New(dir, zerolog.Nop())
		require.NoError(t, err)
		s, err := store.Open(ctx, backend, ledgerSchemas, store.Options{})
		require.NoError(t, err, "round %d", round)
		for _, id := range ids {
			require.NoError(t, insertAudited(s, id, "A-"+id), "round %d", round)
		}
		require.NoError(t, s.Close())
	}

	backend, err := New(dir, zerolog.Nop())
	require.NoError(t, err)
	loaded, err := backend.Load(ctx, ledgerSchemas)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), loaded.Seq)
	assert.Len(t, loaded.Tables["AuditLog"], 4)
}
