package services

import (
	"context"

	"github.com/yigit/collegeerp/internal/audit"
	"github.com/yigit/collegeerp/internal/store"
)

// AuditService reads the audit trail.
type AuditService struct {
	base
}

// List returns audit entries matching the filter, newest first.
func (s *AuditService) List(ctx context.Context, f audit.Filter) ([]audit.Log, error) {
	var out []audit.Log
	err := s.store.View(ctx, func(tx *store.Tx) (err error) {
		out, err = s.repos.Audit.List(tx, f)
		return err
	})
	return out, err
}
