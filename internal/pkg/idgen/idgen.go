// Package idgen produces entity identifiers of the form PREFIX-SUFFIX.
package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// Entity prefixes
const (
	Admission    = "ADM"
	Application  = "APP"
	Student      = "STD"
	Allocation   = "ALLOC"
	Transaction  = "TXN"
	Receipt      = "RCP"
	Marks        = "MRK"
	Enrollment   = "ENR"
	AuditLog     = "LOG"
	Notification = "NOTIF"
)

// Generator creates identifiers for a type prefix.
type Generator interface {
	NewID(prefix string) string
}

// UUIDGenerator derives suffixes from time-ordered UUIDv7 values, so ids sort
// by creation time and stay unique across concurrent callers.
type UUIDGenerator struct{}

// NewID returns "{prefix}-{suffix}".
func (UUIDGenerator) NewID(prefix string) string {
	return New(prefix)
}

// New returns a fresh identifier for prefix.
func New(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does; fall back to v4.
		id = uuid.New()
	}
	suffix := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
	return prefix + "-" + suffix
}
