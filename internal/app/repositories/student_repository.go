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

// StudentRepository handles the Students table.
type StudentRepository struct {
	tableRepo[models.Student]
	ids idgen.Generator
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(log *audit.Logger, ids idgen.Generator, clock helpers.Clock) *StudentRepository {
	return &StudentRepository{
		tableRepo: tableRepo[models.Student]{
			table:  store.Students,
			entity: "Student",
			audit:  log,
			clock:  clock,
			touch:  func(s *models.Student, now string) { s.UpdatedAt = now },
		},
		ids: ids,
	}
}

// Create stores s, generating its id when empty. action lets workflows name
// the audit entry; empty means "create".
func (r *StudentRepository) Create(tx *store.Tx, s *models.Student, action string) error {
	if s.StudentID == "" {
		s.StudentID = r.ids.NewID(idgen.Student)
	}
	exists, err := r.Exists(tx, s.StudentID)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.NewConflictError(fmt.Sprintf("Student with ID %s already exists", s.StudentID))
	}

	now := r.now()
	if s.AdmissionDate == "" {
		s.AdmissionDate = helpers.Date(r.clock())
	}
	s.HostelAllocID = ""
	s.CreatedAt = now
	s.UpdatedAt = now
	return r.insert(tx, s.StudentID, s, action, "")
}

// FindByAdmission returns the student converted from an admission, or nil.
func (r *StudentRepository) FindByAdmission(tx *store.Tx, admissionID string) (*models.Student, error) {
	if admissionID == "" {
		return nil, nil
	}
	return r.findOne(tx, "admission_id", admissionID)
}
