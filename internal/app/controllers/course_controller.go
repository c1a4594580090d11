package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/collegeerp/internal/app/models/dto"
	"github.com/yigit/collegeerp/internal/app/services"
	"github.com/yigit/collegeerp/internal/middleware"
)

// CourseController handles courses and enrollments
type CourseController struct {
	courseService *services.CourseService
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService *services.CourseService) *CourseController {
	return &CourseController{courseService: courseService}
}

// CreateCourse handles course creation
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req dto.CreateCourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	course, err := c.courseService.Create(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewResponse("course", course))
}

// GetCourse retrieves a course by ID
func (c *CourseController) GetCourse(ctx *gin.Context) {
	course, err := c.courseService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("course", course))
}

// ListCourses retrieves courses, optionally by programme_id and semester
func (c *CourseController) ListCourses(ctx *gin.Context) {
	var filter dto.CourseFilter
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	courses, err := c.courseService.List(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("courses", courses))
}

// UpdateCourse patches a course
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	var req dto.UpdateCourseRequest
	if !middleware.BindPatch(ctx, &req) {
		return
	}
	course, err := c.courseService.Update(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("course", course))
}

// DeleteCourse deletes a course without enrollments
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	if err := c.courseService.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse("Course deleted"))
}

// EnrollStudent enrolls a student on the course
func (c *CourseController) EnrollStudent(ctx *gin.Context) {
	var req dto.EnrollRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	enrollment, err := c.courseService.Enroll(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewResponse("enrollment", enrollment))
}

// GetCourseEnrollments lists the course's enrollments
func (c *CourseController) GetCourseEnrollments(ctx *gin.Context) {
	enrollments, err := c.courseService.Enrollments(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("enrollments", enrollments))
}

// GetCourseExams lists the course's exams
func (c *CourseController) GetCourseExams(ctx *gin.Context) {
	exams, err := c.courseService.Exams(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("exams", exams))
}
