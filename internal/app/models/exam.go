package models

// Exam is a sitting of a course's examination.
type Exam struct {
	ExamID        string `json:"exam_id"`
	CourseID      string `json:"course_id"`
	ExamDate      string `json:"exam_date"`
	Venue         string `json:"venue"`
	InvigilatorID string `json:"invigilator_id"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// Marks is a student's result in one exam; unique per (ExamID, StudentID).
type Marks struct {
	MarksID       string  `json:"marks_id"`
	ExamID        string  `json:"exam_id"`
	StudentID     string  `json:"student_id"`
	MarksObtained float64 `json:"marks_obtained"`
	Grade         string  `json:"grade"`
	EnteredBy     string  `json:"entered_by"`
	EnteredOn     string  `json:"entered_on"`
}

// ExamResult joins a student's marks with the exam they were scored in.
type ExamResult struct {
	Marks
	CourseID string `json:"course_id"`
	ExamDate string `json:"exam_date"`
	Venue    string `json:"venue"`
}

// ExamStats aggregates exams and entered marks.
type ExamStats struct {
	TotalExams        int     `json:"total_exams"`
	CompletedExams    int     `json:"completed_exams"`
	UpcomingExams     int     `json:"upcoming_exams"`
	TotalMarksEntered int     `json:"total_marks_entered"`
	AverageMarks      float64 `json:"average_marks"`
	PassRate          float64 `json:"pass_rate"`
}
