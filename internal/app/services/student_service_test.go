package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/collegeerp/internal/app/models"
	"github.com/yigit/collegeerp/internal/app/models/dto"
	"github.com/yigit/collegeerp/internal/pkg/apperrors"
	"github.com/yigit/collegeerp/internal/store"
)

func linkedStudent(id, admissionID string) dto.CreateStudentRequest {
	return dto.CreateStudentRequest{
		StudentID:   id,
		AdmissionID: admissionID,
		FirstName:   "Asha",
		LastName:    "Rao",
		Email:       "asha@college.test",
	}
}

func admitted(t *testing.T, f *fixture, email, studentID string) *models.Admission {
	t.Helper()
	ctx := context.Background()
	a, err := f.svc.Admissions.Create(ctx, newAdmission(email))
	require.NoError(t, err)
	_, err = f.svc.Admissions.UpdateStatus(ctx, a.AdmissionID, dto.UpdateAdmissionStatusRequest{Status: models.AdmissionApproved})
	require.NoError(t, err)
	_, err = f.svc.Admissions.AdmitStudent(ctx, a.AdmissionID, dto.AdmitStudentRequest{StudentID: studentID})
	require.NoError(t, err)
	return a
}

func TestCreateStudentRejectsForeignAdmissionLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending, err := f.svc.Admissions.Create(ctx, newAdmission("p@x.com"))
	require.NoError(t, err)
	a := admitted(t, f, "a@x.com", "STD-A")

	tests := []struct {
		name    string
		req     dto.CreateStudentRequest
		wantErr error
	}{
		{name: "unknown admission", req: linkedStudent("STD-1", "ADM-missing"), wantErr: apperrors.ErrResourceNotFound},
		{name: "admission not admitted", req: linkedStudent("STD-2", pending.AdmissionID), wantErr: apperrors.ErrPreconditionFailed},
		{name: "admitted as another student", req: linkedStudent("STD-3", a.AdmissionID), wantErr: apperrors.ErrPreconditionFailed},
		{name: "link already held", req: linkedStudent("STD-A", a.AdmissionID), wantErr: apperrors.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Students.Create(ctx, tt.req)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			_, err = f.svc.Students.Get(ctx, tt.req.StudentID)
			if tt.req.StudentID != "STD-A" {
				assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
			}
		})
	}

	require.NoError(t, f.store.View(ctx, func(tx *store.Tx) error {
		linked, err := tx.FindAll(store.Students, "admission_id", a.AdmissionID)
		require.NoError(t, err)
		assert.Len(t, linked, 1)
		return nil
	}))
	assertAdmissionInvariant(t, f)
}

func TestCreateStudentRestoresMissingAdmittedRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := admitted(t, f, "a@x.com", "STD-A")

	// the admitted student's row went missing, e.g. lost in a sheet import
	require.NoError(t, f.store.Update(ctx, nil, func(tx *store.Tx) error {
		_, pos, err := tx.Get(store.Students, "STD-A")
		if err != nil {
			return err
		}
		return tx.DeleteAt(store.Students, pos)
	}))

	st, err := f.svc.Students.Create(ctx, linkedStudent("STD-A", a.AdmissionID))
	require.NoError(t, err)
	assert.Equal(t, a.AdmissionID, st.AdmissionID)
	assertAdmissionInvariant(t, f)
}

func TestCreateStudentWithoutAdmission(t *testing.T) {
	f := newFixture(t)
	st := f.student(t, "STD-9")
	assert.Empty(t, st.AdmissionID)
	assert.Equal(t, models.StudentActive, st.EnrollmentStatus)
}
