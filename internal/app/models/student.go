package models

// Student is an enrolled learner. HostelAllocID mirrors the student's
// current active hostel allocation and is empty when there is none.
type Student struct {
	StudentID        string `json:"student_id" example:"STD-0190A8C2F1D47B3E9A7C21D4E5F60718"`
	AdmissionID      string `json:"admission_id"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	FatherName       string `json:"father_name"`
	MotherName       string `json:"mother_name"`
	DOB              string `json:"dob"`
	Gender           string `json:"gender"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	ProgrammeID      string `json:"programme_id"`
	ProgrammeName    string `json:"programme_name"`
	AdmissionDate    string `json:"admission_date"`
	EnrollmentStatus string `json:"enrollment_status" example:"active"`
	YearOfStudy      int    `json:"year_of_study" example:"1"`
	PhotoDriveFileID string `json:"photo_drive_file_id"`
	HostelAllocID    string `json:"hostel_alloc_id"`
	LibraryCardID    string `json:"library_card_id"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

// StudentStats summarizes the student body.
type StudentStats struct {
	Total       int            `json:"total"`
	Active      int            `json:"active"`
	Inactive    int            `json:"inactive"`
	ByProgramme map[string]int `json:"by_programme"`
	ByYear      map[string]int `json:"by_year"`
}
