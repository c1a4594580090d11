package repositories

import (
	"fmt"

	"github.com/yigit/collegeerp/internal/app/models"
	"github.com/yigit/collegeerp/internal/audit"
	"github.com/yigit/collegeerp/internal/pkg/apperrors"
	"github.com/yigit/collegeerp/internal/pkg/helpers"
	"github.com/yigit/collegeerp/internal/pkg/idgen"
	"github.com/yigit/collegeerp/internal/store"
)

// CourseRepository handles the Courses table.
type CourseRepository struct {
	tableRepo[models.Course]
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(log *audit.Logger, clock helpers.Clock) *CourseRepository {
	return &CourseRepository{tableRepo[models.Course]{
		table:  store.Courses,
		entity: "Course",
		audit:  log,
		clock:  clock,
		touch:  func(c *models.Course, now string) { c.UpdatedAt = now },
	}}
}

// Create stores a new course; course ids are chosen by the caller.
func (r *CourseRepository) Create(tx *store.Tx, c *models.Course) error {
	exists, err := r.Exists(tx, c.CourseID)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.NewConflictError(fmt.Sprintf("Course %s already exists", c.CourseID))
	}
	c.CreatedAt = r.now()
	c.UpdatedAt = c.CreatedAt
	return r.insert(tx, c.CourseID, c, "", "")
}

// EnrollmentRepository handles the Enrollments table.
type EnrollmentRepository struct {
	tableRepo[models.Enrollment]
	ids idgen.Generator
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(log *audit.Logger, ids idgen.Generator, clock helpers.Clock) *EnrollmentRepository {
	return &EnrollmentRepository{
		tableRepo: tableRepo[models.Enrollment]{
			table:  store.Enrollments,
			entity: "Enrollment",
			audit:  log,
			clock:  clock,
			touch:  func(e *models.Enrollment, now string) { e.UpdatedAt = now },
		},
		ids: ids,
	}
}

// Create enrolls a student on a course once.
func (r *EnrollmentRepository) Create(tx *store.Tx, e *models.Enrollment) error {
	existing, err := r.Find(tx, e.StudentID, e.CourseID)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperrors.NewConflictError("Student is already enrolled in this course")
	}

	e.EnrollID = r.ids.NewID(idgen.Enrollment)
	now := r.now()
	if e.EnrolledOn == "" {
		e.EnrolledOn = now
	}
	if e.Status == "" {
		e.Status = models.EnrollmentEnrolled
	}
	e.CreatedAt = now
	e.UpdatedAt = now
	return r.insert(tx, e.EnrollID, e, "", "")
}

// Find returns the enrollment of a student on a course, or nil.
func (r *EnrollmentRepository) Find(tx *store.Tx, studentID, courseID string) (*models.Enrollment, error) {
	all, err := r.FindAll(tx, "student_id", studentID)
	if err != nil {
		return nil, err
	}
	for _, e := range all {
		if e.CourseID == courseID {
			return e, nil
		}
	}
	return nil, nil
}
