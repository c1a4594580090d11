package dto

import "github.com/yigit/collegeerp/internal/app/models"

// CreateAdmissionRequest is the payload for a new application.
type CreateAdmissionRequest struct {
	FirstName         string `json:"first_name" validate:"required,notblank"`
	LastName          string `json:"last_name" validate:"required,notblank"`
	Email             string `json:"email" validate:"required,email"`
	Phone             string `json:"phone" validate:"required,notblank"`
	ProgrammeApplied  string `json:"programme_applied" validate:"required,notblank"`
	Documents         string `json:"documents"`
	AppliedOn         string `json:"applied_on" validate:"isodate"`
	AssignedOfficerID string `json:"assigned_officer_id"`
	VerifierNotes     string `json:"verifier_notes"`
}

// UpdateAdmissionRequest lists the mutable fields of an admission. Status and
// student_id change only through the status and admit workflows.
type UpdateAdmissionRequest struct {
	FirstName         *string `json:"first_name" validate:"omitempty,notblank"`
	LastName          *string `json:"last_name" validate:"omitempty,notblank"`
	Phone             *string `json:"phone" validate:"omitempty,notblank"`
	ProgrammeApplied  *string `json:"programme_applied" validate:"omitempty,notblank"`
	Documents         *string `json:"documents"`
	AssignedOfficerID *string `json:"assigned_officer_id"`
	VerifierNotes     *string `json:"verifier_notes"`
}

// Apply copies the set fields onto a.
func (r *UpdateAdmissionRequest) Apply(a *models.Admission) {
	set(&a.FirstName, r.FirstName)
	set(&a.LastName, r.LastName)
	set(&a.Phone, r.Phone)
	set(&a.ProgrammeApplied, r.ProgrammeApplied)
	set(&a.Documents, r.Documents)
	set(&a.AssignedOfficerID, r.AssignedOfficerID)
	set(&a.VerifierNotes, r.VerifierNotes)
	a.ApplicantName = a.FirstName + " " + a.LastName
}

// UpdateAdmissionStatusRequest moves an admission through its lifecycle.
type UpdateAdmissionStatusRequest struct {
	Status    string `json:"status" validate:"required,oneof=pending under_review approved rejected admitted"`
	Notes     string `json:"notes"`
	OfficerID string `json:"officer_id"`
}

// AdmitStudentRequest carries the student fields an admission does not hold.
// StudentID is generated when empty; ProgrammeID defaults to the programme
// applied for.
type AdmitStudentRequest struct {
	StudentID     string `json:"student_id"`
	ProgrammeID   string `json:"programme_id"`
	FatherName    string `json:"father_name"`
	MotherName    string `json:"mother_name"`
	DOB           string `json:"dob" validate:"isodate"`
	Gender        string `json:"gender"`
	Address       string `json:"address"`
	AdmissionDate string `json:"admission_date" validate:"isodate"`
}

// AdmissionFilter narrows an admission listing.
type AdmissionFilter struct {
	Status           string `form:"status"`
	ProgrammeApplied string `form:"programme_applied"`
	Email            string `form:"email"`
}
