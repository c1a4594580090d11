package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/collegeerp/internal/pkg/apperrors"
)

type applicant struct {
	FirstName string  `json:"first_name" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Status    string  `json:"status" validate:"omitempty,oneof=pending approved"`
	Applied   string  `json:"applied_on" validate:"isodate"`
	Phone     *string `json:"phone" validate:"omitempty,notblank"`
}

func TestStructMissingFields(t *testing.T) {
	err := Struct(applicant{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
	assert.Equal(t, "Missing required fields: first_name, email", err.Error())
}

func TestStructInvalidValues(t *testing.T) {
	blank := "  "
	tests := []struct {
		name  string
		input applicant
		field string
	}{
		{"bad email", applicant{FirstName: "A", Email: "nope"}, "email"},
		{"bad enum", applicant{FirstName: "A", Email: "a@x.com", Status: "admitted"}, "status"},
		{"bad date", applicant{FirstName: "A", Email: "a@x.com", Applied: "yesterday"}, "applied_on"},
		{"blank pointer", applicant{FirstName: "A", Email: "a@x.com", Phone: &blank}, "phone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

			var ce *apperrors.CustomError
			require.True(t, errors.As(err, &ce))
			assert.Contains(t, ce.Details, tt.field)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestStructValid(t *testing.T) {
	phone := "555"
	assert.NoError(t, Struct(applicant{FirstName: "A", Email: "a@x.com", Status: "pending", Applied: "2025-01-02", Phone: &phone}))
}

func TestDecodeStrict(t *testing.T) {
	var out struct {
		Phone *string `json:"phone"`
	}

	require.NoError(t, DecodeStrict(strings.NewReader(`{"phone":"555"}`), &out))
	require.NotNil(t, out.Phone)
	assert.Equal(t, "555", *out.Phone)

	err := DecodeStrict(strings.NewReader(`{"status":"admitted"}`), &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
	assert.Equal(t, "Field status cannot be updated", err.Error())

	err = DecodeStrict(strings.NewReader(``), &out)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	err = DecodeStrict(strings.NewReader(`{"phone":`), &out)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}
