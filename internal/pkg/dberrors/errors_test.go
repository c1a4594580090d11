package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "sheet_rows_pkey"})
	assert.True(t, IsUniqueViolation(dup))
	assert.True(t, IsDuplicateConstraintError(dup, "sheet_rows_pkey"))
	assert.False(t, IsDuplicateConstraintError(dup, "other"))
	assert.False(t, IsRetryable(dup))

	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40P01"}))

	plain := errors.New("connection refused")
	assert.False(t, IsUniqueViolation(plain))
	assert.False(t, IsRetryable(plain))
}
