package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/collegeerp/internal/app/models/dto"
	"github.com/yigit/collegeerp/internal/app/services"
	"github.com/yigit/collegeerp/internal/middleware"
)

// ExamController handles exams and marks entry
type ExamController struct {
	examService *services.ExamService
}

// NewExamController creates a new ExamController
func NewExamController(examService *services.ExamService) *ExamController {
	return &ExamController{examService: examService}
}

func (c *ExamController) CreateExam(ctx *gin.Context) {
	var req dto.CreateExamRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	exam, err := c.examService.CreateExam(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewResponse("exam", exam))
}

func (c *ExamController) GetExam(ctx *gin.Context) {
	exam, err := c.examService.GetExam(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("exam", exam))
}

func (c *ExamController) ListExams(ctx *gin.Context) {
	var filter dto.ExamFilter
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	exams, err := c.examService.ListExams(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("exams", exams))
}

func (c *ExamController) UpdateExam(ctx *gin.Context) {
	var req dto.UpdateExamRequest
	if !middleware.BindPatch(ctx, &req) {
		return
	}
	exam, err := c.examService.UpdateExam(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("exam", exam))
}

func (c *ExamController) DeleteExam(ctx *gin.Context) {
	if err := c.examService.DeleteExam(ctx.Request.Context(), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse("Exam deleted"))
}

// EnterMarks handles PUT /exams/:id/marks/:studentId. Repeating the call
// overwrites the earlier score.
func (c *ExamController) EnterMarks(ctx *gin.Context) {
	var req dto.EnterMarksRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	marks, err := c.examService.EnterMarks(ctx.Request.Context(), ctx.Param("id"), ctx.Param("studentId"), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("marks", marks))
}

func (c *ExamController) GetExamMarks(ctx *gin.Context) {
	marks, err := c.examService.ExamMarks(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("marks", marks))
}

func (c *ExamController) GetExamStats(ctx *gin.Context) {
	stats, err := c.examService.Stats(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("stats", stats))
}
