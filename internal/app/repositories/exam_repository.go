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

// ExamRepository handles the Exams table.
type ExamRepository struct {
	tableRepo[models.Exam]
}

// NewExamRepository creates a new ExamRepository
func NewExamRepository(log *audit.Logger, clock helpers.Clock) *ExamRepository {
	return &ExamRepository{tableRepo[models.Exam]{
		table:  store.Exams,
		entity: "Exam",
		audit:  log,
		clock:  clock,
		touch:  func(e *models.Exam, now string) { e.UpdatedAt = now },
	}}
}

// Create stores a new exam.
func (r *ExamRepository) Create(tx *store.Tx, e *models.Exam) error {
	exists, err := r.Exists(tx, e.ExamID)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.NewConflictError(fmt.Sprintf("Exam %s already exists", e.ExamID))
	}
	e.CreatedAt = r.now()
	e.UpdatedAt = e.CreatedAt
	return r.insert(tx, e.ExamID, e, "", "")
}

// MarksRepository handles the Marks table.
type MarksRepository struct {
	tableRepo[models.Marks]
	ids idgen.Generator
}

// NewMarksRepository creates a new MarksRepository
func NewMarksRepository(log *audit.Logger, ids idgen.Generator, clock helpers.Clock) *MarksRepository {
	return &MarksRepository{
		tableRepo: tableRepo[models.Marks]{
			table:  store.Marks,
			entity: "Marks",
			audit:  log,
			clock:  clock,
			touch:  func(m *models.Marks, now string) { m.EnteredOn = now },
		},
		ids: ids,
	}
}

// Find returns a student's marks for an exam, or nil.
func (r *MarksRepository) Find(tx *store.Tx, examID, studentID string) (*models.Marks, error) {
	all, err := r.FindAll(tx, "exam_id", examID)
	if err != nil {
		return nil, err
	}
	for _, m := range all {
		if m.StudentID == studentID {
			return m, nil
		}
	}
	return nil, nil
}

// Create stores the first marks of a student for an exam.
func (r *MarksRepository) Create(tx *store.Tx, m *models.Marks) error {
	existing, err := r.Find(tx, m.ExamID, m.StudentID)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperrors.NewConflictError("Marks already entered for this student and exam")
	}
	m.MarksID = r.ids.NewID(idgen.Marks)
	m.EnteredOn = r.now()
	return r.insert(tx, m.MarksID, m, "", "")
}
