package models

// Course belongs to a programme and semester.
type Course struct {
	CourseID    string `json:"course_id"`
	Title       string `json:"title"`
	Credits     int    `json:"credits"`
	ProgrammeID string `json:"programme_id"`
	Semester    int    `json:"semester"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Enrollment registers a student on a course.
type Enrollment struct {
	EnrollID   string `json:"enroll_id"`
	StudentID  string `json:"student_id"`
	CourseID   string `json:"course_id"`
	EnrolledOn string `json:"enrolled_on"`
	Status     string `json:"status"`
	Grade      string `json:"grade"`
	Marks      string `json:"marks"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}
