package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/collegeerp/internal/app/models"
	"github.com/yigit/collegeerp/internal/app/models/dto"
	"github.com/yigit/collegeerp/internal/pkg/apperrors"
	"github.com/yigit/collegeerp/internal/pkg/helpers"
	"github.com/yigit/collegeerp/internal/pkg/validation"
	"github.com/yigit/collegeerp/internal/store"
)

// ActionConvertToStudent is the audit action of a successful admit.
const ActionConvertToStudent = "convert_to_student"

// ActionUpdateStatus is the audit action of an admission status change.
const ActionUpdateStatus = "update_status"

// AdmissionService runs the admission lifecycle:
// pending -> under_review -> approved -> rejected | admitted.
type AdmissionService struct {
	base
}

func admissionLock(id string) string { return store.LockKey("admission", id) }

// Create files a new application in the pending state.
func (s *AdmissionService) Create(ctx context.Context, req dto.CreateAdmissionRequest) (*models.Admission, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var created *models.Admission
	err := s.store.Update(ctx, []string{store.LockKey("admission-email", email)}, func(tx *store.Tx) error {
		a := &models.Admission{
			FirstName:         strings.TrimSpace(req.FirstName),
			LastName:          strings.TrimSpace(req.LastName),
			Email:             email,
			Phone:             req.Phone,
			ProgrammeApplied:  req.ProgrammeApplied,
			Documents:         req.Documents,
			AppliedOn:         req.AppliedOn,
			AssignedOfficerID: req.AssignedOfficerID,
			VerifierNotes:     req.VerifierNotes,
		}
		if err := s.repos.Admissions.Create(tx, a); err != nil {
			return err
		}
		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("admission_id", created.AdmissionID).Str("programme", created.ProgrammeApplied).Msg("Admission created")
	return created, nil
}

// Get returns one admission.
func (s *AdmissionService) Get(ctx context.Context, id string) (*models.Admission, error) {
	var a *models.Admission
	err := s.store.View(ctx, func(tx *store.Tx) (err error) {
		a, err = s.repos.Admissions.Get(tx, id)
		return err
	})
	return a, err
}

// List returns admissions matching every non-empty filter field.
func (s *AdmissionService) List(ctx context.Context, f dto.AdmissionFilter) ([]*models.Admission, error) {
	keep := func(a *models.Admission) bool {
		return (f.Status == "" || a.Status == f.Status) &&
			(f.ProgrammeApplied == "" || a.ProgrammeApplied == f.ProgrammeApplied)
	}

	var out []*models.Admission
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		if f.Email != "" {
			out, err = s.repos.Admissions.FindByEmail(tx, f.Email)
			if err == nil {
				out = filter(out, keep)
			}
			return err
		}
		out, err = s.repos.Admissions.List(tx, keep)
		return err
	})
	return out, err
}

// ListByEmail returns the applications filed under an email address.
func (s *AdmissionService) ListByEmail(ctx context.Context, email string) ([]*models.Admission, error) {
	if strings.TrimSpace(email) == "" {
		return nil, apperrors.NewMissingFieldsError("email")
	}
	return s.List(ctx, dto.AdmissionFilter{Email: email})
}

// Update applies a patch of the applicant's details.
func (s *AdmissionService) Update(ctx context.Context, id string, req dto.UpdateAdmissionRequest) (*models.Admission, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	var updated *models.Admission
	err := s.store.Update(ctx, []string{admissionLock(id)}, func(tx *store.Tx) error {
		a, err := s.repos.Admissions.Get(tx, id)
		if err != nil {
			return err
		}
		req.Apply(a)
		if err := s.repos.Admissions.Update(tx, id, a, "", ""); err != nil {
			return err
		}
		updated = a
		return nil
	})
	return updated, err
}

// UpdateStatus moves an admission to another review state. "admitted" is
// only reachable through AdmitStudent, and an admitted application is final.
func (s *AdmissionService) UpdateStatus(ctx context.Context, id string, req dto.UpdateAdmissionStatusRequest) (*models.Admission, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if req.Status == models.AdmissionAdmitted {
		return nil, apperrors.NewPreconditionError("Admissions can only be marked admitted by admitting the student")
	}

	var updated *models.Admission
	err := s.store.Update(ctx, []string{admissionLock(id)}, func(tx *store.Tx) error {
		a, err := s.repos.Admissions.Get(tx, id)
		if err != nil {
			return err
		}
		if a.Status == models.AdmissionAdmitted {
			return apperrors.NewPreconditionError("Admission has already been converted to a student")
		}
		from := a.Status
		a.Status = req.Status
		if req.Notes != "" {
			a.VerifierNotes = req.Notes
		}
		if req.OfficerID != "" {
			a.AssignedOfficerID = req.OfficerID
		}
		notes := fmt.Sprintf("%s -> %s", from, req.Status)
		if err := s.repos.Admissions.Update(tx, id, a, ActionUpdateStatus, notes); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("admission_id", id).Str("status", updated.Status).Msg("Admission status updated")
	return updated, nil
}

// AdmitStudent converts an approved admission into a Student. The student is
// created and the admission marked admitted in one transaction.
func (s *AdmissionService) AdmitStudent(ctx context.Context, id string, req dto.AdmitStudentRequest) (*models.Student, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var student *models.Student
	locks := []string{admissionLock(id), studentLock(req.StudentID)}
	err := s.store.Update(ctx, locks, func(tx *store.Tx) error {
		a, err := s.repos.Admissions.Get(tx, id)
		if err != nil {
			return err
		}
		if a.Status != models.AdmissionApproved {
			return apperrors.NewPreconditionError(fmt.Sprintf("Admission must be approved before admitting, current status is %s", a.Status))
		}

		st := &models.Student{
			StudentID:        req.StudentID,
			AdmissionID:      a.AdmissionID,
			FirstName:        a.FirstName,
			LastName:         a.LastName,
			FatherName:       req.FatherName,
			MotherName:       req.MotherName,
			DOB:              req.DOB,
			Gender:           req.Gender,
			Email:            a.Email,
			Phone:            a.Phone,
			Address:          req.Address,
			ProgrammeID:      req.ProgrammeID,
			ProgrammeName:    a.ProgrammeApplied,
			AdmissionDate:    req.AdmissionDate,
			EnrollmentStatus: models.StudentActive,
			YearOfStudy:      1,
		}
		if st.ProgrammeID == "" {
			st.ProgrammeID = a.ProgrammeApplied
		}
		if err := s.repos.Students.Create(tx, st, ""); err != nil {
			return err
		}

		a.Status = models.AdmissionAdmitted
		a.StudentID = st.StudentID
		a.AdmittedOn = helpers.Timestamp(s.repos.Clock())
		if err := s.repos.Admissions.Update(tx, id, a, ActionConvertToStudent, "student "+st.StudentID); err != nil {
			return err
		}
		student = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("admission_id", id).Str("student_id", student.StudentID).Msg("Admission converted to student")
	return student, nil
}

// Delete removes an admission in any state. A student created from it is kept.
func (s *AdmissionService) Delete(ctx context.Context, id string) error {
	return s.store.Update(ctx, []string{admissionLock(id)}, func(tx *store.Tx) error {
		return s.repos.Admissions.Delete(tx, id, "")
	})
}

// Stats counts admissions per status.
func (s *AdmissionService) Stats(ctx context.Context) (*models.AdmissionStats, error) {
	stats := &models.AdmissionStats{ByStatus: make(map[string]int, len(models.AdmissionStatuses))}
	for _, st := range models.AdmissionStatuses {
		stats.ByStatus[st] = 0
	}
	err := s.store.View(ctx, func(tx *store.Tx) error {
		all, err := s.repos.Admissions.List(tx, nil)
		if err != nil {
			return err
		}
		stats.Total = len(all)
		for _, a := range all {
			stats.ByStatus[a.Status]++
		}
		return nil
	})
	return stats, err
}

// filter keeps the elements accepted by keep.
func filter[T any](in []*T, keep func(*T) bool) []*T {
	out := in[:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
