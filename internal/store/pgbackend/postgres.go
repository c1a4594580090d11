// Package pgbackend persists tables in PostgreSQL, one JSONB row per record.
package pgbackend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/yigit/collegeerp/internal/db"
	"github.com/yigit/collegeerp/internal/pkg/apperrors"
	"github.com/yigit/collegeerp/internal/pkg/dberrors"
	"github.com/yigit/collegeerp/internal/store"
)

const (
	rowsTable    = "sheet_rows"
	commitsTable = "sheet_commits"
)

// Backend applies store commits inside one PostgreSQL transaction each.
type Backend struct {
	db  *db.PostgresDB
	sb  squirrel.StatementBuilderType
	log zerolog.Logger
}

// New wraps an open connection pool. Migrations must already be applied.
func New(database *db.PostgresDB, log zerolog.Logger) *Backend {
	return &Backend{
		db:  database,
		sb:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		log: log.With().Str("component", "pgbackend").Logger(),
	}
}

func (b *Backend) loadQuery(schemas []*store.TableSchema) (string, []interface{}, error) {
	names := make([]string, 0, len(schemas))
	for _, s := range schemas {
		names = append(names, s.Name)
	}
	return b.sb.Select("table_name", "data").
		From(rowsTable).
		Where(squirrel.Eq{"table_name": names}).
		OrderBy("table_name ASC", "seq ASC").
		ToSql()
}

func (b *Backend) seqQuery() (string, []interface{}, error) {
	return b.sb.Select("COALESCE(MAX(seq), 0)").From(commitsTable).ToSql()
}

// Load reads every stored record of the given tables in insertion order,
// along with the sequence of the last journaled commit.
func (b *Backend) Load(ctx context.Context, schemas []*store.TableSchema) (*store.Loaded, error) {
	sql, args, err := b.seqQuery()
	if err != nil {
		return nil, fmt.Errorf("failed to build sequence query: %w", err)
	}
	var seq int64
	if err := b.db.Pool.QueryRow(ctx, sql, args...).Scan(&seq); err != nil {
		b.log.Error().Err(err).Msg("Error reading last commit sequence")
		return nil, fmt.Errorf("error reading last commit sequence: %w", err)
	}

	sql, args, err = b.loadQuery(schemas)
	if err != nil {
		return nil, fmt.Errorf("failed to build load query: %w", err)
	}

	rows, err := b.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		b.log.Error().Err(err).Msg("Error executing load query")
		return nil, fmt.Errorf("error loading rows: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]store.Record, len(schemas))
	for rows.Next() {
		var (
			name string
			data []byte
		)
		if err := rows.Scan(&name, &data); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		rec := store.Record{}
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("table %s: corrupt row data: %w", name, err)
		}
		out[name] = append(out[name], rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return &store.Loaded{Seq: uint64(seq), Tables: out}, nil
}

// statement builds the SQL for one row change.
func (b *Backend) statement(seq uint64, c store.Change) (string, []interface{}, error) {
	switch c.Op {
	case store.OpInsert:
		data, err := json.Marshal(c.Record)
		if err != nil {
			return "", nil, err
		}
		return b.sb.Insert(rowsTable).
			Columns("table_name", "row_key", "version", "data").
			Values(c.Table, c.Key, seq, data).
			ToSql()
	case store.OpUpdate:
		data, err := json.Marshal(c.Record)
		if err != nil {
			return "", nil, err
		}
		return b.sb.Update(rowsTable).
			Set("data", data).
			Set("version", seq).
			Set("updated_at", squirrel.Expr("CURRENT_TIMESTAMP")).
			Where(squirrel.Eq{"table_name": c.Table, "row_key": c.Key}).
			ToSql()
	case store.OpDelete:
		return b.sb.Delete(rowsTable).
			Where(squirrel.Eq{"table_name": c.Table, "row_key": c.Key}).
			ToSql()
	default:
		return "", nil, fmt.Errorf("unknown change op %d", c.Op)
	}
}

func (b *Backend) journalStatement(batch *store.Batch) (string, []interface{}, error) {
	return b.sb.Insert(commitsTable).
		Columns("seq", "change_count", "tables").
		Values(batch.Seq, len(batch.Changes), strings.Join(batch.TableNames(), ",")).
		ToSql()
}

// Commit applies the batch's row changes and its journal entry atomically.
func (b *Backend) Commit(ctx context.Context, batch *store.Batch) error {
	err := b.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, c := range batch.Changes {
			sql, args, err := b.statement(batch.Seq, c)
			if err != nil {
				return fmt.Errorf("failed to build %s for %s/%s: %w", c.Op, c.Table, c.Key, err)
			}
			tag, err := tx.Exec(ctx, sql, args...)
			if err != nil {
				if dberrors.IsUniqueViolation(err) {
					return fmt.Errorf("%s/%s already stored: %w", c.Table, c.Key, err)
				}
				b.log.Error().Err(err).Str("table", c.Table).Str("key", c.Key).Msg("Error applying change")
				return fmt.Errorf("error applying %s to %s/%s: %w", c.Op, c.Table, c.Key, err)
			}
			if c.Op != store.OpInsert && tag.RowsAffected() == 0 {
				return fmt.Errorf("%s/%s missing from database during %s", c.Table, c.Key, c.Op)
			}
		}

		sql, args, err := b.journalStatement(batch)
		if err != nil {
			return fmt.Errorf("failed to build journal entry: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error writing journal entry: %w", err)
		}
		return nil
	})
	if dberrors.IsRetryable(err) {
		b.log.Warn().Err(err).Uint64("seq", batch.Seq).Msg("Commit hit a serialization conflict")
		return apperrors.NewBusyError("Database is busy, please retry")
	}
	return err
}

// Close closes the connection pool.
func (b *Backend) Close() error {
	b.db.Close()
	return nil
}
