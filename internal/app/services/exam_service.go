package services

import (
	"context"
	"sort"

	"github.com/yigit/collegeerp/internal/app/models"
	"github.com/yigit/collegeerp/internal/app/models/dto"
	"github.com/yigit/collegeerp/internal/pkg/apperrors"
	"github.com/yigit/collegeerp/internal/pkg/helpers"
	"github.com/yigit/collegeerp/internal/pkg/validation"
	"github.com/yigit/collegeerp/internal/store"
)

// PassMark is the score at or above which a result counts as a pass.
const PassMark = 40

var gradeThresholds = []struct {
	min   float64
	grade string
}{
	{90, "A+"},
	{80, "A"},
	{70, "B+"},
	{60, "B"},
	{50, "C"},
	{40, "D"},
}

// Grade maps a score out of 100 to a letter grade.
func Grade(marks float64) string {
	for _, t := range gradeThresholds {
		if marks >= t.min {
			return t.grade
		}
	}
	return "F"
}

// ExamService manages exams and the marks entered for them.
type ExamService struct {
	base
}

// CreateExam schedules an exam.
func (s *ExamService) CreateExam(ctx context.Context, req dto.CreateExamRequest) (*models.Exam, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	e := &models.Exam{
		ExamID:        req.ExamID,
		CourseID:      req.CourseID,
		ExamDate:      req.ExamDate,
		Venue:         req.Venue,
		InvigilatorID: req.InvigilatorID,
	}
	err := s.store.Update(ctx, []string{examLock(e.ExamID)}, func(tx *store.Tx) error {
		return s.repos.Exams.Create(tx, e)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetExam returns one exam.
func (s *ExamService) GetExam(ctx context.Context, id string) (*models.Exam, error) {
	var e *models.Exam
	err := s.store.View(ctx, func(tx *store.Tx) (err error) {
		e, err = s.repos.Exams.Get(tx, id)
		return err
	})
	return e, err
}

// ListExams returns exams matching the filter, earliest first.
func (s *ExamService) ListExams(ctx context.Context, f dto.ExamFilter) ([]*models.Exam, error) {
	var out []*models.Exam
	err := s.store.View(ctx, func(tx *store.Tx) (err error) {
		out, err = s.repos.Exams.List(tx, func(e *models.Exam) bool {
			return (f.CourseID == "" || e.CourseID == f.CourseID) &&
				(f.InvigilatorID == "" || e.InvigilatorID == f.InvigilatorID) &&
				helpers.InRange(e.ExamDate, f.From, f.To)
		})
		return err
	})
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := helpers.ParseTime(out[i].ExamDate)
		b, _ := helpers.ParseTime(out[j].ExamDate)
		return a.Before(b)
	})
	return out, err
}

// UpdateExam applies a patch to an exam.
func (s *ExamService) UpdateExam(ctx context.Context, id string, req dto.UpdateExamRequest) (*models.Exam, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	var updated *models.Exam
	err := s.store.Update(ctx, []string{examLock(id)}, func(tx *store.Tx) error {
		e, err := s.repos.Exams.Get(tx, id)
		if err != nil {
			return err
		}
		req.Apply(e)
		if err := s.repos.Exams.Update(tx, id, e, "", ""); err != nil {
			return err
		}
		updated = e
		return nil
	})
	return updated, err
}

// DeleteExam removes an exam that has no marks entered.
func (s *ExamService) DeleteExam(ctx context.Context, id string) error {
	return s.store.Update(ctx, []string{examLock(id)}, func(tx *store.Tx) error {
		if _, err := s.repos.Exams.Get(tx, id); err != nil {
			return err
		}
		marks, err := s.repos.Marks.FindAll(tx, "exam_id", id)
		if err != nil {
			return err
		}
		if len(marks) > 0 {
			return apperrors.NewConflictError("Cannot delete exam with existing marks")
		}
		return s.repos.Exams.Delete(tx, id, "")
	})
}

// EnterMarks records a student's score for an exam. Entering marks again
// updates the same record.
func (s *ExamService) EnterMarks(ctx context.Context, examID, studentID string, req dto.EnterMarksRequest) (*models.Marks, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	score := *req.MarksObtained

	var result *models.Marks
	err := s.store.Update(ctx, []string{examLock(examID), studentLock(studentID)}, func(tx *store.Tx) error {
		if _, err := s.repos.Exams.Get(tx, examID); err != nil {
			return err
		}
		if _, err := s.repos.Students.Get(tx, studentID); err != nil {
			return err
		}

		m, err := s.repos.Marks.Find(tx, examID, studentID)
		if err != nil {
			return err
		}
		if m != nil {
			m.MarksObtained = score
			m.Grade = Grade(score)
			m.EnteredBy = req.EnteredBy
			if err := s.repos.Marks.Update(tx, m.MarksID, m, "", ""); err != nil {
				return err
			}
			result = m
			return nil
		}

		m = &models.Marks{
			ExamID:        examID,
			StudentID:     studentID,
			MarksObtained: score,
			Grade:         Grade(score),
			EnteredBy:     req.EnteredBy,
		}
		if err := s.repos.Marks.Create(tx, m); err != nil {
			return err
		}
		result = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ExamMarks returns every score entered for an exam.
func (s *ExamService) ExamMarks(ctx context.Context, examID string) ([]*models.Marks, error) {
	var out []*models.Marks
	err := s.store.View(ctx, func(tx *store.Tx) error {
		if _, err := s.repos.Exams.Get(tx, examID); err != nil {
			return err
		}
		var err error
		out, err = s.repos.Marks.FindAll(tx, "exam_id", examID)
		return err
	})
	return out, err
}

// StudentResults returns a student's marks joined with their exams,
// optionally narrowed to one exam.
func (s *ExamService) StudentResults(ctx context.Context, studentID, examID string) ([]*models.ExamResult, error) {
	var out []*models.ExamResult
	err := s.store.View(ctx, func(tx *store.Tx) error {
		if _, err := s.repos.Students.Get(tx, studentID); err != nil {
			return err
		}
		marks, err := s.repos.Marks.FindAll(tx, "student_id", studentID)
		if err != nil {
			return err
		}
		out = make([]*models.ExamResult, 0, len(marks))
		for _, m := range marks {
			if examID != "" && m.ExamID != examID {
				continue
			}
			r := &models.ExamResult{Marks: *m}
			exam, err := s.repos.Exams.Get(tx, m.ExamID)
			if err != nil && !apperrors.Is(err, apperrors.ErrResourceNotFound) {
				return err
			}
			if exam != nil {
				r.CourseID = exam.CourseID
				r.ExamDate = exam.ExamDate
				r.Venue = exam.Venue
			}
			out = append(out, r)
		}
		return nil
	})
	return out, err
}

// Stats aggregates exams and marks. An exam is completed once its date has
// passed; a result passes at PassMark regardless of the exam.
func (s *ExamService) Stats(ctx context.Context) (*models.ExamStats, error) {
	today := helpers.Date(s.repos.Clock())
	stats := &models.ExamStats{}
	var total float64
	var passed int
	err := s.store.View(ctx, func(tx *store.Tx) error {
		exams, err := s.repos.Exams.List(tx, nil)
		if err != nil {
			return err
		}
		stats.TotalExams = len(exams)
		for _, e := range exams {
			d, ok := helpers.ParseTime(e.ExamDate)
			if ok && helpers.Date(d) < today {
				stats.CompletedExams++
			} else {
				stats.UpcomingExams++
			}
		}

		marks, err := s.repos.Marks.List(tx, nil)
		if err != nil {
			return err
		}
		stats.TotalMarksEntered = len(marks)
		for _, m := range marks {
			total += m.MarksObtained
			if m.MarksObtained >= PassMark {
				passed++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if stats.TotalMarksEntered > 0 {
		stats.AverageMarks = round2(total / float64(stats.TotalMarksEntered))
		stats.PassRate = round2(float64(passed) / float64(stats.TotalMarksEntered) * 100)
	}
	return stats, nil
}
