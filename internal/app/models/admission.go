package models

// Admission is an application that may be converted into a Student.
// StudentID is set only once the application has been admitted.
type Admission struct {
	AdmissionID       string `json:"admission_id" example:"ADM-0190A8C2F1D47B3E9A7C21D4E5F60718"`
	ApplicationRef    string `json:"application_ref"`
	ApplicantName     string `json:"applicant_name"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Email             string `json:"email" example:"asha@example.com"`
	Phone             string `json:"phone"`
	ProgrammeApplied  string `json:"programme_applied" example:"CS"`
	Documents         string `json:"documents"`
	AppliedOn         string `json:"applied_on"`
	Status            string `json:"status" example:"pending"`
	AssignedOfficerID string `json:"assigned_officer_id"`
	VerifierNotes     string `json:"verifier_notes"`
	AdmittedOn        string `json:"admitted_on"`
	StudentID         string `json:"student_id"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

// AdmissionStats counts applications per status.
type AdmissionStats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}
