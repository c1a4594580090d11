package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/collegeerp/internal/app/models/dto"
	"github.com/yigit/collegeerp/internal/app/services"
	"github.com/yigit/collegeerp/internal/middleware"
)

// StudentController handles student records and the per-student views of
// other modules
type StudentController struct {
	studentService *services.StudentService
	hostelService  *services.HostelService
	feeService     *services.FeeService
	examService    *services.ExamService
}

// NewStudentController creates a new StudentController
func NewStudentController(
	studentService *services.StudentService,
	hostelService *services.HostelService,
	feeService *services.FeeService,
	examService *services.ExamService,
) *StudentController {
	return &StudentController{
		studentService: studentService,
		hostelService:  hostelService,
		feeService:     feeService,
		examService:    examService,
	}
}

func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.CreateStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	student, err := c.studentService.Create(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewResponse("student", student))
}

func (c *StudentController) GetStudent(ctx *gin.Context) {
	student, err := c.studentService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("student", student))
}

func (c *StudentController) ListStudents(ctx *gin.Context) {
	var filter dto.StudentFilter
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	students, err := c.studentService.List(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("students", students).With("count", len(students)))
}

func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	var req dto.UpdateStudentRequest
	if !middleware.BindPatch(ctx, &req) {
		return
	}
	student, err := c.studentService.Update(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("student", student))
}

// DeleteStudent deactivates the student; the record stays readable.
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	student, err := c.studentService.Delete(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("student", student).With("message", "Student deactivated"))
}

func (c *StudentController) GetStudentCourses(ctx *gin.Context) {
	enrollments, err := c.studentService.Courses(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("enrollments", enrollments))
}

func (c *StudentController) GetStudentAllocation(ctx *gin.Context) {
	allocation, err := c.hostelService.StudentAllocation(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("allocation", allocation))
}

func (c *StudentController) GetStudentFees(ctx *gin.Context) {
	payments, err := c.feeService.StudentFees(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("payments", payments))
}

func (c *StudentController) GetStudentFeeSummary(ctx *gin.Context) {
	summary, err := c.feeService.StudentFeeSummary(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("summary", summary))
}

// GetStudentResults accepts an optional exam_id query parameter.
func (c *StudentController) GetStudentResults(ctx *gin.Context) {
	results, err := c.examService.StudentResults(ctx.Request.Context(), ctx.Param("id"), ctx.Query("exam_id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("results", results))
}

func (c *StudentController) GetStudentStats(ctx *gin.Context) {
	stats, err := c.studentService.Stats(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("stats", stats))
}
