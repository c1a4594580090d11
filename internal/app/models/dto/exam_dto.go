package dto

import "github.com/yigit/collegeerp/internal/app/models"

// CreateExamRequest is the payload for a new exam.
type CreateExamRequest struct {
	ExamID        string `json:"exam_id" validate:"required,notblank"`
	CourseID      string `json:"course_id" validate:"required,notblank"`
	ExamDate      string `json:"exam_date" validate:"required,isodate"`
	Venue         string `json:"venue"`
	InvigilatorID string `json:"invigilator_id"`
}

// UpdateExamRequest lists the mutable exam fields.
type UpdateExamRequest struct {
	CourseID      *string `json:"course_id" validate:"omitempty,notblank"`
	ExamDate      *string `json:"exam_date" validate:"omitempty,notblank,isodate"`
	Venue         *string `json:"venue"`
	InvigilatorID *string `json:"invigilator_id"`
}

// Apply copies the set fields onto e.
func (r *UpdateExamRequest) Apply(e *models.Exam) {
	set(&e.CourseID, r.CourseID)
	set(&e.ExamDate, r.ExamDate)
	set(&e.Venue, r.Venue)
	set(&e.InvigilatorID, r.InvigilatorID)
}

// ExamFilter narrows an exam listing; From and To bound the exam date.
type ExamFilter struct {
	CourseID      string `form:"course_id"`
	InvigilatorID string `form:"invigilator_id"`
	From          string `form:"start_date"`
	To            string `form:"end_date"`
}

// EnterMarksRequest sets a student's marks for an exam. MarksObtained is a
// pointer so that a score of zero is distinguishable from a missing one.
type EnterMarksRequest struct {
	MarksObtained *float64 `json:"marks_obtained" validate:"required,gte=0,lte=100"`
	EnteredBy     string   `json:"entered_by"`
}
