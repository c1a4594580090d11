package repositories

import (
	"strings"

	"github.com/yigit/collegeerp/internal/app/models"
	"github.com/yigit/collegeerp/internal/audit"
	"github.com/yigit/collegeerp/internal/pkg/apperrors"
	"github.com/yigit/collegeerp/internal/pkg/helpers"
	"github.com/yigit/collegeerp/internal/pkg/idgen"
	"github.com/yigit/collegeerp/internal/store"
)

// AdmissionRepository handles the Admissions table.
type AdmissionRepository struct {
	tableRepo[models.Admission]
	ids idgen.Generator
}

// NewAdmissionRepository creates a new AdmissionRepository
func NewAdmissionRepository(log *audit.Logger, ids idgen.Generator, clock helpers.Clock) *AdmissionRepository {
	return &AdmissionRepository{
		tableRepo: tableRepo[models.Admission]{
			table:  store.Admissions,
			entity: "Admission",
			audit:  log,
			clock:  clock,
			touch:  func(a *models.Admission, now string) { a.UpdatedAt = now },
		},
		ids: ids,
	}
}

// Create stores a new pending admission. The email must not belong to
// another application.
func (r *AdmissionRepository) Create(tx *store.Tx, a *models.Admission) error {
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	existing, err := r.findOne(tx, "email", a.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperrors.NewConflictError("Admission with this email already exists")
	}

	now := r.now()
	if a.AdmissionID == "" {
		a.AdmissionID = r.ids.NewID(idgen.Admission)
	}
	if a.ApplicationRef == "" {
		a.ApplicationRef = r.ids.NewID(idgen.Application)
	}
	if a.AppliedOn == "" {
		a.AppliedOn = now
	}
	a.ApplicantName = a.FirstName + " " + a.LastName
	a.Status = models.AdmissionPending
	a.StudentID = ""
	a.AdmittedOn = ""
	a.CreatedAt = now
	a.UpdatedAt = now
	return r.insert(tx, a.AdmissionID, a, "", "")
}

// FindByEmail returns every admission filed under email.
func (r *AdmissionRepository) FindByEmail(tx *store.Tx, email string) ([]*models.Admission, error) {
	return r.FindAll(tx, "email", strings.ToLower(strings.TrimSpace(email)))
}
