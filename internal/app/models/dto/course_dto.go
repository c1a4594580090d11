package dto

import "github.com/yigit/collegeerp/internal/app/models"

// CreateCourseRequest is the payload for a new course.
type CreateCourseRequest struct {
	CourseID    string `json:"course_id" validate:"required,notblank"`
	Title       string `json:"title" validate:"required,notblank"`
	Credits     int    `json:"credits" validate:"gte=0,lte=40"`
	ProgrammeID string `json:"programme_id"`
	Semester    int    `json:"semester" validate:"gte=0,lte=16"`
}

// UpdateCourseRequest lists the mutable course fields.
type UpdateCourseRequest struct {
	Title       *string `json:"title" validate:"omitempty,notblank"`
	Credits     *int    `json:"credits" validate:"omitempty,gte=0,lte=40"`
	ProgrammeID *string `json:"programme_id"`
	Semester    *int    `json:"semester" validate:"omitempty,gte=0,lte=16"`
}

// Apply copies the set fields onto c.
func (r *UpdateCourseRequest) Apply(c *models.Course) {
	set(&c.Title, r.Title)
	set(&c.Credits, r.Credits)
	set(&c.ProgrammeID, r.ProgrammeID)
	set(&c.Semester, r.Semester)
}

// CourseFilter narrows a course listing.
type CourseFilter struct {
	ProgrammeID string `form:"programme_id"`
	Semester    int    `form:"semester"`
}

// EnrollRequest registers a student on a course.
type EnrollRequest struct {
	StudentID  string `json:"student_id" validate:"required,notblank"`
	EnrolledOn string `json:"enrolled_on" validate:"isodate"`
}
