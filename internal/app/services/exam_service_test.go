package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/collegeerp/internal/app/models/dto"
	"github.com/yigit/collegeerp/internal/pkg/apperrors"
)

func score(v float64) *float64 { return &v }

func TestGrade(t *testing.T) {
	cases := []struct {
		marks float64
		want  string
	}{
		{100, "A+"}, {90, "A+"}, {89.99, "A"}, {80, "A"}, {75, "B+"},
		{60, "B"}, {55, "C"}, {40, "D"}, {39.5, "F"}, {0, "F"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Grade(c.marks), "marks %v", c.marks)
	}
}

func TestMarksEntryAndResults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.student(t, "STD-1")
	f.student(t, "STD-2")

	_, err := f.svc.Exams.CreateExam(ctx, dto.CreateExamRequest{ExamID: "EX-1", CourseID: "CS101", ExamDate: "2025-05-20", Venue: "Hall A"})
	require.NoError(t, err)
	_, err = f.svc.Exams.CreateExam(ctx, dto.CreateExamRequest{ExamID: "EX-2", CourseID: "CS101", ExamDate: "2025-07-01"})
	require.NoError(t, err)

	m, err := f.svc.Exams.EnterMarks(ctx, "EX-1", "STD-1", dto.EnterMarksRequest{MarksObtained: score(72), EnteredBy: "prof"})
	require.NoError(t, err)
	assert.Equal(t, "B+", m.Grade)

	again, err := f.svc.Exams.EnterMarks(ctx, "EX-1", "STD-1", dto.EnterMarksRequest{MarksObtained: score(91)})
	require.NoError(t, err)
	assert.Equal(t, m.MarksID, again.MarksID)
	assert.Equal(t, "A+", again.Grade)

	_, err = f.svc.Exams.EnterMarks(ctx, "EX-1", "STD-2", dto.EnterMarksRequest{MarksObtained: score(30)})
	require.NoError(t, err)

	_, err = f.svc.Exams.EnterMarks(ctx, "EX-1", "STD-2", dto.EnterMarksRequest{MarksObtained: score(101)})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
	_, err = f.svc.Exams.EnterMarks(ctx, "EX-1", "STD-3", dto.EnterMarksRequest{MarksObtained: score(50)})
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
	_, err = f.svc.Exams.EnterMarks(ctx, "EX-9", "STD-1", dto.EnterMarksRequest{MarksObtained: score(50)})
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))

	marks, err := f.svc.Exams.ExamMarks(ctx, "EX-1")
	require.NoError(t, err)
	assert.Len(t, marks, 2)

	results, err := f.svc.Exams.StudentResults(ctx, "STD-1", "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Hall A", results[0].Venue)
	assert.Equal(t, "CS101", results[0].CourseID)
	assert.Equal(t, 91.0, results[0].MarksObtained)

	none, err := f.svc.Exams.StudentResults(ctx, "STD-1", "EX-2")
	require.NoError(t, err)
	assert.Empty(t, none)

	stats, err := f.svc.Exams.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalExams)
	assert.Equal(t, 1, stats.CompletedExams)
	assert.Equal(t, 1, stats.UpcomingExams)
	assert.Equal(t, 2, stats.TotalMarksEntered)
	assert.Equal(t, 60.5, stats.AverageMarks)
	assert.Equal(t, 50.0, stats.PassRate)

	list, err := f.svc.Exams.ListExams(ctx, dto.ExamFilter{From: "2025-06-01"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "EX-2", list[0].ExamID)
}

func TestDeleteExamGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.student(t, "STD-1")
	_, err := f.svc.Exams.CreateExam(ctx, dto.CreateExamRequest{ExamID: "EX-1", CourseID: "CS101", ExamDate: "2025-05-20"})
	require.NoError(t, err)
	_, err = f.svc.Exams.CreateExam(ctx, dto.CreateExamRequest{ExamID: "EX-2", CourseID: "CS101", ExamDate: "2025-05-21"})
	require.NoError(t, err)
	_, err = f.svc.Exams.EnterMarks(ctx, "EX-1", "STD-1", dto.EnterMarksRequest{MarksObtained: score(55)})
	require.NoError(t, err)

	err = f.svc.Exams.DeleteExam(ctx, "EX-1")
	require.True(t, errors.Is(err, apperrors.ErrConflict))
	assert.Equal(t, "Cannot delete exam with existing marks", err.Error())

	require.NoError(t, f.svc.Exams.DeleteExam(ctx, "EX-2"))
	_, err = f.svc.Exams.GetExam(ctx, "EX-2")
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
}
