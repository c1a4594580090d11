// Package audit writes the append-only AuditLog table. Entries are written
// through the caller's transaction, so an entry commits if and only if the
// mutation it describes commits.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/yigit/collegeerp/internal/pkg/helpers"
	"github.com/yigit/collegeerp/internal/pkg/idgen"
	"github.com/yigit/collegeerp/internal/store"
)

// Common actions. Workflows add their own, e.g. "convert_to_student".
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// SystemUser is recorded when no acting user is known.
const SystemUser = "system"

type userKey struct{}

// WithUser returns a context carrying the acting user's id. Entries recorded
// through a transaction opened with that context default to this user.
func WithUser(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, userKey{}, userID)
}

// UserFrom returns the acting user stored by WithUser, or SystemUser.
func UserFrom(ctx context.Context) string {
	if ctx != nil {
		if id, ok := ctx.Value(userKey{}).(string); ok && id != "" {
			return id
		}
	}
	return SystemUser
}

// Entry describes one mutation.
type Entry struct {
	Table    string
	EntityID string
	Action   string
	UserID   string
	Notes    string
	Before   store.Record
	After    store.Record
}

// Log is a stored audit entry.
type Log struct {
	LogID     string `json:"log_id"`
	TableName string `json:"table_name"`
	EntityID  string `json:"entity_id"`
	Action    string `json:"action"`
	UserID    string `json:"user_id"`
	Timestamp string `json:"timestamp"`
	Before    string `json:"before"`
	After     string `json:"after"`
	Diff      string `json:"diff"`
	Notes     string `json:"notes"`
}

// Filter narrows List. Empty fields match everything; From/To bound the
// timestamp inclusively.
type Filter struct {
	TableName string `form:"table_name"`
	EntityID  string `form:"entity_id"`
	Action    string `form:"action"`
	UserID    string `form:"user_id"`
	From      string `form:"start_date"`
	To        string `form:"end_date"`
}

// Logger records audit entries.
type Logger struct {
	ids   idgen.Generator
	clock helpers.Clock
}

// NewLogger creates a Logger.
func NewLogger(ids idgen.Generator, clock helpers.Clock) *Logger {
	return &Logger{ids: ids, clock: clock}
}

// Record appends e to the AuditLog inside tx.
func (l *Logger) Record(tx *store.Tx, e Entry) error {
	if e.Table == "" || e.EntityID == "" || e.Action == "" {
		return fmt.Errorf("audit entry needs table, entity and action")
	}
	user := e.UserID
	if user == "" {
		user = UserFrom(tx.Context())
	}

	before, err := marshal(e.Before)
	if err != nil {
		return err
	}
	after, err := marshal(e.After)
	if err != nil {
		return err
	}

	entry := Log{
		LogID:     l.ids.NewID(idgen.AuditLog),
		TableName: e.Table,
		EntityID:  e.EntityID,
		Action:    e.Action,
		UserID:    user,
		Timestamp: helpers.Timestamp(l.clock()),
		Before:    before,
		After:     after,
		Diff:      Diff(e.Before, e.After),
		Notes:     e.Notes,
	}
	rec, err := store.Encode(entry)
	if err != nil {
		return err
	}
	if err := tx.Insert(store.AuditLog, rec); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// List returns entries matching f, newest first.
func (l *Logger) List(tx *store.Tx, f Filter) ([]Log, error) {
	var (
		recs []store.Record
		err  error
	)
	if f.EntityID != "" {
		recs, err = tx.FindAll(store.AuditLog, "entity_id", f.EntityID)
	} else {
		recs, err = tx.Scan(store.AuditLog, nil)
	}
	if err != nil {
		return nil, err
	}

	out := make([]Log, 0, len(recs))
	for _, rec := range recs {
		var entry Log
		if err := store.Decode(rec, &entry); err != nil {
			return nil, err
		}
		if f.TableName != "" && entry.TableName != f.TableName {
			continue
		}
		if f.Action != "" && entry.Action != f.Action {
			continue
		}
		if f.UserID != "" && entry.UserID != f.UserID {
			continue
		}
		if !helpers.InRange(entry.Timestamp, f.From, f.To) {
			continue
		}
		out = append(out, entry)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].LogID > out[j].LogID
	})
	return out, nil
}

func marshal(rec store.Record) (string, error) {
	if rec == nil {
		return "", nil
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to encode audit snapshot: %w", err)
	}
	return string(b), nil
}

// Diff lists the columns that differ between before and after as
// "key: old -> new" pairs joined by "; ", in column name order. It is empty
// unless both sides are present.
func Diff(before, after store.Record) string {
	if before == nil || after == nil {
		return ""
	}
	keys := make(map[string]struct{}, len(after))
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}
	names := make([]string, 0, len(keys))
	for k := range keys {
		if before[k] != after[k] {
			names = append(names, k)
		}
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, k := range names {
		parts = append(parts, fmt.Sprintf("%s: %s -> %s", k, before[k], after[k]))
	}
	return strings.Join(parts, "; ")
}
