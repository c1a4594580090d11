package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/yigit/collegeerp/internal/app/models"
	"github.com/yigit/collegeerp/internal/app/models/dto"
	"github.com/yigit/collegeerp/internal/audit"
	"github.com/yigit/collegeerp/internal/pkg/apperrors"
	"github.com/yigit/collegeerp/internal/pkg/validation"
	"github.com/yigit/collegeerp/internal/store"
)

// StudentService manages student records.
type StudentService struct {
	base
}

// Create registers a student.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	st := req.Student()
	locks := []string{studentLock(st.StudentID)}
	if st.AdmissionID != "" {
		locks = append(locks, admissionLock(st.AdmissionID))
	}
	err := s.store.Update(ctx, locks, func(tx *store.Tx) error {
		if err := s.checkAdmissionLink(tx, st); err != nil {
			return err
		}
		return s.repos.Students.Create(tx, st, "")
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// checkAdmissionLink keeps each admission linked to at most one student.
// A student may name an admission only when that admission was admitted as
// this student and no student record holds the link yet.
func (s *StudentService) checkAdmissionLink(tx *store.Tx, st *models.Student) error {
	if st.AdmissionID == "" {
		return nil
	}
	a, err := s.repos.Admissions.Get(tx, st.AdmissionID)
	if err != nil {
		return err
	}
	if a.Status != models.AdmissionAdmitted || a.StudentID != st.StudentID {
		return apperrors.NewPreconditionError(fmt.Sprintf("Admission %s was not admitted as student %s", a.AdmissionID, st.StudentID))
	}
	linked, err := s.repos.Students.FindByAdmission(tx, st.AdmissionID)
	if err != nil {
		return err
	}
	if linked != nil {
		return apperrors.NewConflictError(fmt.Sprintf("Admission %s is already linked to student %s", a.AdmissionID, linked.StudentID))
	}
	return nil
}

// Get returns one student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	var st *models.Student
	err := s.store.View(ctx, func(tx *store.Tx) (err error) {
		st, err = s.repos.Students.Get(tx, id)
		return err
	})
	return st, err
}

// List returns students matching every non-empty filter field.
func (s *StudentService) List(ctx context.Context, f dto.StudentFilter) ([]*models.Student, error) {
	var out []*models.Student
	err := s.store.View(ctx, func(tx *store.Tx) (err error) {
		out, err = s.repos.Students.List(tx, func(st *models.Student) bool {
			return (f.ProgrammeID == "" || st.ProgrammeID == f.ProgrammeID) &&
				(f.EnrollmentStatus == "" || st.EnrollmentStatus == f.EnrollmentStatus) &&
				(f.YearOfStudy == 0 || st.YearOfStudy == f.YearOfStudy)
		})
		return err
	})
	return out, err
}

// Update applies a patch of the student's details.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.Student, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	var updated *models.Student
	err := s.store.Update(ctx, []string{studentLock(id)}, func(tx *store.Tx) error {
		st, err := s.repos.Students.Get(tx, id)
		if err != nil {
			return err
		}
		req.Apply(st)
		if err := s.repos.Students.Update(tx, id, st, "", ""); err != nil {
			return err
		}
		updated = st
		return nil
	})
	return updated, err
}

// Delete deactivates a student. The record is kept so that allocations,
// payments and marks still resolve.
func (s *StudentService) Delete(ctx context.Context, id string) (*models.Student, error) {
	var updated *models.Student
	err := s.store.Update(ctx, []string{studentLock(id)}, func(tx *store.Tx) error {
		st, err := s.repos.Students.Get(tx, id)
		if err != nil {
			return err
		}
		st.EnrollmentStatus = models.StudentInactive
		if err := s.repos.Students.Update(tx, id, st, audit.ActionDelete, "soft delete"); err != nil {
			return err
		}
		updated = st
		return nil
	})
	return updated, err
}

// Courses returns the student's enrollments.
func (s *StudentService) Courses(ctx context.Context, id string) ([]*models.Enrollment, error) {
	var out []*models.Enrollment
	err := s.store.View(ctx, func(tx *store.Tx) error {
		if _, err := s.repos.Students.Get(tx, id); err != nil {
			return err
		}
		var err error
		out, err = s.repos.Enrollments.FindAll(tx, "student_id", id)
		return err
	})
	return out, err
}

// Stats summarizes students by status, programme and year.
func (s *StudentService) Stats(ctx context.Context) (*models.StudentStats, error) {
	stats := &models.StudentStats{
		ByProgramme: make(map[string]int),
		ByYear:      make(map[string]int),
	}
	err := s.store.View(ctx, func(tx *store.Tx) error {
		all, err := s.repos.Students.List(tx, nil)
		if err != nil {
			return err
		}
		stats.Total = len(all)
		for _, st := range all {
			if st.EnrollmentStatus == models.StudentActive {
				stats.Active++
			} else {
				stats.Inactive++
			}
			if st.ProgrammeID != "" {
				stats.ByProgramme[st.ProgrammeID]++
			}
			stats.ByYear[strconv.Itoa(st.YearOfStudy)]++
		}
		return nil
	})
	return stats, err
}
