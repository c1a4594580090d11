package dto

import "github.com/yigit/collegeerp/internal/app/models"

// CreateStudentRequest registers a student directly, outside the admission workflow.
type CreateStudentRequest struct {
	StudentID        string `json:"student_id" validate:"required,notblank"`
	AdmissionID      string `json:"admission_id"`
	FirstName        string `json:"first_name" validate:"required,notblank"`
	LastName         string `json:"last_name" validate:"required,notblank"`
	FatherName       string `json:"father_name"`
	MotherName       string `json:"mother_name"`
	DOB              string `json:"dob" validate:"isodate"`
	Gender           string `json:"gender"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	ProgrammeID      string `json:"programme_id"`
	ProgrammeName    string `json:"programme_name"`
	AdmissionDate    string `json:"admission_date" validate:"isodate"`
	EnrollmentStatus string `json:"enrollment_status" validate:"omitempty,oneof=active inactive graduated suspended"`
	YearOfStudy      int    `json:"year_of_study" validate:"gte=0,lte=10"`
	PhotoDriveFileID string `json:"photo_drive_file_id"`
	LibraryCardID    string `json:"library_card_id"`
}

// Student builds the model, defaulting status to active and year to 1.
func (r *CreateStudentRequest) Student() *models.Student {
	s := &models.Student{
		StudentID:        r.StudentID,
		AdmissionID:      r.AdmissionID,
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		FatherName:       r.FatherName,
		MotherName:       r.MotherName,
		DOB:              r.DOB,
		Gender:           r.Gender,
		Email:            r.Email,
		Phone:            r.Phone,
		Address:          r.Address,
		ProgrammeID:      r.ProgrammeID,
		ProgrammeName:    r.ProgrammeName,
		AdmissionDate:    r.AdmissionDate,
		EnrollmentStatus: r.EnrollmentStatus,
		YearOfStudy:      r.YearOfStudy,
		PhotoDriveFileID: r.PhotoDriveFileID,
		LibraryCardID:    r.LibraryCardID,
	}
	if s.EnrollmentStatus == "" {
		s.EnrollmentStatus = models.StudentActive
	}
	if s.YearOfStudy == 0 {
		s.YearOfStudy = 1
	}
	return s
}

// UpdateStudentRequest lists the mutable student fields. hostel_alloc_id is
// owned by the hostel workflow and admission_id by the admission workflow.
type UpdateStudentRequest struct {
	FirstName        *string `json:"first_name" validate:"omitempty,notblank"`
	LastName         *string `json:"last_name" validate:"omitempty,notblank"`
	FatherName       *string `json:"father_name"`
	MotherName       *string `json:"mother_name"`
	DOB              *string `json:"dob" validate:"omitempty,isodate"`
	Gender           *string `json:"gender"`
	Email            *string `json:"email" validate:"omitempty,email"`
	Phone            *string `json:"phone"`
	Address          *string `json:"address"`
	ProgrammeID      *string `json:"programme_id"`
	ProgrammeName    *string `json:"programme_name"`
	EnrollmentStatus *string `json:"enrollment_status" validate:"omitempty,oneof=active inactive graduated suspended"`
	YearOfStudy      *int    `json:"year_of_study" validate:"omitempty,gte=1,lte=10"`
	PhotoDriveFileID *string `json:"photo_drive_file_id"`
	LibraryCardID    *string `json:"library_card_id"`
}

// Apply copies the set fields onto s.
func (r *UpdateStudentRequest) Apply(s *models.Student) {
	set(&s.FirstName, r.FirstName)
	set(&s.LastName, r.LastName)
	set(&s.FatherName, r.FatherName)
	set(&s.MotherName, r.MotherName)
	set(&s.DOB, r.DOB)
	set(&s.Gender, r.Gender)
	set(&s.Email, r.Email)
	set(&s.Phone, r.Phone)
	set(&s.Address, r.Address)
	set(&s.ProgrammeID, r.ProgrammeID)
	set(&s.ProgrammeName, r.ProgrammeName)
	set(&s.EnrollmentStatus, r.EnrollmentStatus)
	set(&s.YearOfStudy, r.YearOfStudy)
	set(&s.PhotoDriveFileID, r.PhotoDriveFileID)
	set(&s.LibraryCardID, r.LibraryCardID)
}

// StudentFilter narrows a student listing.
type StudentFilter struct {
	ProgrammeID      string `form:"programme_id"`
	EnrollmentStatus string `form:"enrollment_status"`
	YearOfStudy      int    `form:"year_of_study"`
}
