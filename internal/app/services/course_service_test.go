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

func TestCourseEnrollmentAndDeleteGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.student(t, "STD-1")

	c, err := f.svc.Courses.Create(ctx, dto.CreateCourseRequest{CourseID: "CS101", Title: "Intro", Credits: 4, ProgrammeID: "CS1", Semester: 1})
	require.NoError(t, err)
	_, err = f.svc.Courses.Create(ctx, dto.CreateCourseRequest{CourseID: "CS101", Title: "Again"})
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	_, err = f.svc.Courses.Enroll(ctx, c.CourseID, dto.EnrollRequest{StudentID: "STD-404"})
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
	_, err = f.svc.Courses.Enroll(ctx, "CS404", dto.EnrollRequest{StudentID: "STD-1"})
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))

	e, err := f.svc.Courses.Enroll(ctx, c.CourseID, dto.EnrollRequest{StudentID: "STD-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, e.EnrollID)
	_, err = f.svc.Courses.Enroll(ctx, c.CourseID, dto.EnrollRequest{StudentID: "STD-1"})
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	courses, err := f.svc.Students.Courses(ctx, "STD-1")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "CS101", courses[0].CourseID)

	err = f.svc.Courses.Delete(ctx, c.CourseID)
	require.True(t, errors.Is(err, apperrors.ErrConflict))
	assert.Equal(t, "Cannot delete course with existing enrollments", err.Error())
	_, err = f.svc.Courses.Get(ctx, c.CourseID)
	assert.NoError(t, err)

	spare, err := f.svc.Courses.Create(ctx, dto.CreateCourseRequest{CourseID: "CS102", Title: "Spare", Semester: 2})
	require.NoError(t, err)
	require.NoError(t, f.svc.Courses.Delete(ctx, spare.CourseID))

	list, err := f.svc.Courses.List(ctx, dto.CourseFilter{Semester: 1})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStudentSoftDeleteAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.student(t, "STD-1")
	f.student(t, "STD-2")

	_, err := f.svc.Students.Create(ctx, dto.CreateStudentRequest{StudentID: "STD-1", FirstName: "X", LastName: "Y", Email: "x@y.z"})
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	st, err := f.svc.Students.Delete(ctx, "STD-2")
	require.NoError(t, err)
	assert.Equal(t, "inactive", st.EnrollmentStatus)
	_, err = f.svc.Students.Get(ctx, "STD-2")
	require.NoError(t, err)

	stats, err := f.svc.Students.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Active)
	assert.Equal(t, 1, stats.Inactive)
	assert.Equal(t, 2, stats.ByProgramme["CS1"])
	assert.Equal(t, 2, stats.ByYear["1"])

	year := 2
	updated, err := f.svc.Students.Update(ctx, "STD-1", dto.UpdateStudentRequest{YearOfStudy: &year})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.YearOfStudy)

	active, err := f.svc.Students.List(ctx, dto.StudentFilter{EnrollmentStatus: "active"})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "STD-1", active[0].StudentID)
}
