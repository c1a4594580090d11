// Package csvbackend persists tables as one CSV file per table, header row
// first, matching the spreadsheet layout the records are exported to.
package csvbackend

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/yigit/collegeerp/internal/store"
)

const (
	stateFile    = "_state.json"
	manifestFile = "_commit.json"
	backupSuffix = ".bak"
)

// Backend stores each table in <dir>/<Table>.csv and the last commit
// sequence in <dir>/_state.json.
type Backend struct {
	dir     string
	schemas map[string]*store.TableSchema
	mu      sync.Mutex
	log     zerolog.Logger
	rename  func(oldpath, newpath string) error
	// broken holds the error of a commit that could not be undone. Commits
	// are refused until a Load has restored the directory.
	broken error
}

type state struct {
	Seq uint64 `json:"seq"`
}

// manifest lists the files one commit swaps into place. While it exists on
// disk the commit is incomplete and is undone by the next Load.
type manifest struct {
	Seq   uint64         `json:"seq"`
	Files []manifestEntry `json:"files"`
}

type manifestEntry struct {
	Target  string `json:"target"`
	Temp    string `json:"temp"`
	Existed bool   `json:"existed"`
}

// New creates the data directory if needed.
func New(dir string, log zerolog.Logger) (*Backend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &Backend{
		dir:     dir,
		schemas: make(map[string]*store.TableSchema),
		log:     log.With().Str("component", "csvbackend").Logger(),
		rename:  os.Rename,
	}, nil
}

func (b *Backend) path(table string) string {
	return filepath.Join(b.dir, table+".csv")
}

// RewritesTables reports that commits need full table contents.
func (b *Backend) RewritesTables() bool {
	return true
}

// Load reads every table file. Missing files are empty tables. Columns are
// matched by header name, so files with reordered or extra columns load.
// A commit interrupted before it completed is undone first.
func (b *Backend) Load(_ context.Context, schemas []*store.TableSchema) (*store.Loaded, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.recover(); err != nil {
		return nil, err
	}
	st, err := b.readState()
	if err != nil {
		return nil, err
	}

	out := make(map[string][]store.Record, len(schemas))
	for _, schema := range schemas {
		b.schemas[schema.Name] = schema
		rows, err := b.readTable(schema)
		if err != nil {
			return nil, err
		}
		out[schema.Name] = rows
	}
	return &store.Loaded{Seq: st.Seq, Tables: out}, nil
}

func (b *Backend) recover() error {
	m, err := b.readManifest()
	if err != nil {
		return err
	}
	if m != nil {
		if err := b.undo(m); err != nil {
			return fmt.Errorf("failed to undo interrupted commit %d: %w", m.Seq, err)
		}
		b.log.Warn().Uint64("seq", m.Seq).Msg("Undid interrupted commit")
	}
	b.broken = nil

	for _, pattern := range []string{"*.tmp", "*" + backupSuffix} {
		stray, err := filepath.Glob(filepath.Join(b.dir, pattern))
		if err != nil {
			return err
		}
		for _, path := range stray {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to remove %s: %w", path, err)
			}
		}
	}
	return nil
}

func (b *Backend) readState() (state, error) {
	var st state
	raw, err := os.ReadFile(filepath.Join(b.dir, stateFile))
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("failed to read %s: %w", stateFile, err)
	}
	if err := json.Unmarshal(raw, &st); err != nil {
		return st, fmt.Errorf("corrupt %s: %w", stateFile, err)
	}
	return st, nil
}

func (b *Backend) readManifest() (*manifest, error) {
	raw, err := os.ReadFile(filepath.Join(b.dir, manifestFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", manifestFile, err)
	}
	m := &manifest{}
	if err := json.Unmarshal(raw, m); err != nil {
		return nil, fmt.Errorf("corrupt %s: %w", manifestFile, err)
	}
	return m, nil
}

func (b *Backend) readTable(schema *store.TableSchema) ([]store.Record, error) {
	f, err := os.Open(b.path(schema.Name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", schema.Name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s header: %w", schema.Name, err)
	}

	var rows []store.Record
	for {
		cells, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", schema.Name, err)
		}
		rec := make(store.Record, len(header))
		for i, col := range header {
			if i < len(cells) {
				rec[col] = cells[i]
			}
		}
		rows = append(rows, rec)
	}
	b.log.Debug().Str("table", schema.Name).Int("rows", len(rows)).Msg("Loaded table file")
	return rows, nil
}

// Commit rewrites every table touched by the batch plus the state file.
// New contents go to temporary siblings, a manifest naming them is written,
// then each target is moved to a backup and replaced. Removing the manifest
// is the commit point. Any failure before it restores the backups, so either
// every file changes or none does.
func (b *Backend) Commit(_ context.Context, batch *store.Batch) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.broken != nil {
		return fmt.Errorf("data directory needs recovery: %w", b.broken)
	}

	m, err := b.prepare(batch)
	if err != nil {
		return err
	}
	if err := b.writeManifest(m); err != nil {
		b.discard(m)
		return err
	}
	if err := b.swap(m); err != nil {
		b.abort(m)
		return err
	}
	if err := os.Remove(filepath.Join(b.dir, manifestFile)); err != nil {
		b.abort(m)
		return fmt.Errorf("failed to complete commit %d: %w", m.Seq, err)
	}

	for _, f := range m.Files {
		if err := os.Remove(filepath.Join(b.dir, f.Target+backupSuffix)); err != nil && !errors.Is(err, os.ErrNotExist) {
			b.log.Warn().Err(err).Str("file", f.Target).Msg("Failed to remove backup")
		}
	}
	b.log.Debug().Uint64("seq", batch.Seq).Int("files", len(m.Files)).Msg("Table files rewritten")
	return nil
}

// prepare writes the new contents of every file to temporaries.
func (b *Backend) prepare(batch *store.Batch) (*manifest, error) {
	names := make([]string, 0, len(batch.Tables))
	for name := range batch.Tables {
		names = append(names, name)
	}
	sort.Strings(names)

	m := &manifest{Seq: batch.Seq}
	for _, name := range names {
		schema, ok := b.schemas[name]
		if !ok {
			b.discard(m)
			return nil, fmt.Errorf("table %s was not loaded", name)
		}
		rows := batch.Tables[name]
		tmp, err := b.writeTemp(name, func(w io.Writer) error { return writeRows(w, schema, rows) })
		if err != nil {
			b.discard(m)
			return nil, err
		}
		m.Files = append(m.Files, manifestEntry{Target: name + ".csv", Temp: tmp})
	}
	tmp, err := b.writeTemp("_state", func(w io.Writer) error {
		return json.NewEncoder(w).Encode(state{Seq: batch.Seq})
	})
	if err != nil {
		b.discard(m)
		return nil, err
	}
	m.Files = append(m.Files, manifestEntry{Target: stateFile, Temp: tmp})

	for i := range m.Files {
		_, err := os.Stat(filepath.Join(b.dir, m.Files[i].Target))
		m.Files[i].Existed = err == nil
	}
	return m, nil
}

func (b *Backend) writeManifest(m *manifest) error {
	tmp, err := b.writeTemp("_commit", func(w io.Writer) error { return json.NewEncoder(w).Encode(m) })
	if err != nil {
		return err
	}
	if err := b.rename(filepath.Join(b.dir, tmp), filepath.Join(b.dir, manifestFile)); err != nil {
		_ = os.Remove(filepath.Join(b.dir, tmp))
		return fmt.Errorf("failed to write %s: %w", manifestFile, err)
	}
	return nil
}

// swap moves each target aside and its temporary into place.
func (b *Backend) swap(m *manifest) error {
	for _, f := range m.Files {
		target := filepath.Join(b.dir, f.Target)
		if f.Existed {
			if err := b.rename(target, target+backupSuffix); err != nil {
				return fmt.Errorf("failed to back up %s: %w", f.Target, err)
			}
		}
		if err := b.rename(filepath.Join(b.dir, f.Temp), target); err != nil {
			return fmt.Errorf("failed to replace %s: %w", f.Target, err)
		}
	}
	return nil
}

// undo restores every target of m to its pre-commit contents and removes
// the manifest. It is safe to repeat after a partial undo.
func (b *Backend) undo(m *manifest) error {
	var errs []error
	for _, f := range m.Files {
		target := filepath.Join(b.dir, f.Target)
		err := b.rename(target+backupSuffix, target)
		switch {
		case err == nil:
		case !errors.Is(err, os.ErrNotExist):
			errs = append(errs, err)
		case !f.Existed:
			// the target is new to this commit
			if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, err)
			}
		}
		if err := os.Remove(filepath.Join(b.dir, f.Temp)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(b.dir, manifestFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (b *Backend) abort(m *manifest) {
	if err := b.undo(m); err != nil {
		b.broken = err
		b.log.Error().Err(err).Uint64("seq", m.Seq).Msg("Failed to undo commit, reload required")
		return
	}
	b.log.Warn().Uint64("seq", m.Seq).Msg("Commit undone")
}

// discard removes the temporaries of a commit that never wrote its manifest.
func (b *Backend) discard(m *manifest) {
	for _, f := range m.Files {
		_ = os.Remove(filepath.Join(b.dir, f.Temp))
	}
}

// writeTemp writes a synced temporary file in the data directory and
// returns its base name.
func (b *Backend) writeTemp(prefix string, write func(w io.Writer) error) (string, error) {
	f, err := os.CreateTemp(b.dir, prefix+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file for %s: %w", prefix, err)
	}

	err = write(f)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write %s: %w", prefix, err)
	}
	return filepath.Base(f.Name()), nil
}

func writeRows(w io.Writer, schema *store.TableSchema, rows []store.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(schema.Headers); err != nil {
		return err
	}
	cells := make([]string, len(schema.Headers))
	for _, rec := range rows {
		for i, h := range schema.Headers {
			cells[i] = rec[h]
		}
		if err := cw.Write(cells); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Close is a no-op; files are closed after every commit.
func (b *Backend) Close() error {
	return nil
}
