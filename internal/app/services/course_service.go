package services

import (
	"context"

	"github.com/yigit/collegeerp/internal/app/models"
	"github.com/yigit/collegeerp/internal/app/models/dto"
	"github.com/yigit/collegeerp/internal/pkg/apperrors"
	"github.com/yigit/collegeerp/internal/pkg/validation"
	"github.com/yigit/collegeerp/internal/store"
)

// CourseService manages courses and enrollments.
type CourseService struct {
	base
}

// Create adds a course.
func (s *CourseService) Create(ctx context.Context, req dto.CreateCourseRequest) (*models.Course, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	c := &models.Course{
		CourseID:    req.CourseID,
		Title:       req.Title,
		Credits:     req.Credits,
		ProgrammeID: req.ProgrammeID,
		Semester:    req.Semester,
	}
	err := s.store.Update(ctx, []string{courseLock(c.CourseID)}, func(tx *store.Tx) error {
		return s.repos.Courses.Create(tx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns one course.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	var c *models.Course
	err := s.store.View(ctx, func(tx *store.Tx) (err error) {
		c, err = s.repos.Courses.Get(tx, id)
		return err
	})
	return c, err
}

// List returns courses matching every non-empty filter field.
func (s *CourseService) List(ctx context.Context, f dto.CourseFilter) ([]*models.Course, error) {
	var out []*models.Course
	err := s.store.View(ctx, func(tx *store.Tx) (err error) {
		out, err = s.repos.Courses.List(tx, func(c *models.Course) bool {
			return (f.ProgrammeID == "" || c.ProgrammeID == f.ProgrammeID) &&
				(f.Semester == 0 || c.Semester == f.Semester)
		})
		return err
	})
	return out, err
}

// Update applies a patch to a course.
func (s *CourseService) Update(ctx context.Context, id string, req dto.UpdateCourseRequest) (*models.Course, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	var updated *models.Course
	err := s.store.Update(ctx, []string{courseLock(id)}, func(tx *store.Tx) error {
		c, err := s.repos.Courses.Get(tx, id)
		if err != nil {
			return err
		}
		req.Apply(c)
		if err := s.repos.Courses.Update(tx, id, c, "", ""); err != nil {
			return err
		}
		updated = c
		return nil
	})
	return updated, err
}

// Delete removes a course that nobody is enrolled in.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	return s.store.Update(ctx, []string{courseLock(id)}, func(tx *store.Tx) error {
		if _, err := s.repos.Courses.Get(tx, id); err != nil {
			return err
		}
		enrolled, err := s.repos.Enrollments.FindAll(tx, "course_id", id)
		if err != nil {
			return err
		}
		if len(enrolled) > 0 {
			return apperrors.NewConflictError("Cannot delete course with existing enrollments")
		}
		return s.repos.Courses.Delete(tx, id, "")
	})
}

// Enroll registers a student on a course.
func (s *CourseService) Enroll(ctx context.Context, courseID string, req dto.EnrollRequest) (*models.Enrollment, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	e := &models.Enrollment{StudentID: req.StudentID, CourseID: courseID, EnrolledOn: req.EnrolledOn}
	err := s.store.Update(ctx, []string{courseLock(courseID), studentLock(req.StudentID)}, func(tx *store.Tx) error {
		if _, err := s.repos.Courses.Get(tx, courseID); err != nil {
			return err
		}
		if _, err := s.repos.Students.Get(tx, req.StudentID); err != nil {
			return err
		}
		return s.repos.Enrollments.Create(tx, e)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Enrollments returns everyone enrolled in a course.
func (s *CourseService) Enrollments(ctx context.Context, courseID string) ([]*models.Enrollment, error) {
	var out []*models.Enrollment
	err := s.store.View(ctx, func(tx *store.Tx) error {
		if _, err := s.repos.Courses.Get(tx, courseID); err != nil {
			return err
		}
		var err error
		out, err = s.repos.Enrollments.FindAll(tx, "course_id", courseID)
		return err
	})
	return out, err
}

// Exams returns the exams scheduled for a course.
func (s *CourseService) Exams(ctx context.Context, courseID string) ([]*models.Exam, error) {
	var out []*models.Exam
	err := s.store.View(ctx, func(tx *store.Tx) error {
		if _, err := s.repos.Courses.Get(tx, courseID); err != nil {
			return err
		}
		var err error
		out, err = s.repos.Exams.FindAll(tx, "course_id", courseID)
		return err
	})
	return out, err
}
