// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/collegeerp/internal/app/models/dto"
	"github.com/yigit/collegeerp/internal/app/services"
	"github.com/yigit/collegeerp/internal/middleware"
)

// AdmissionController handles admission applications and their workflow
type AdmissionController struct {
	admissionService *services.AdmissionService
}

// NewAdmissionController creates a new AdmissionController
func NewAdmissionController(admissionService *services.AdmissionService) *AdmissionController {
	return &AdmissionController{admissionService: admissionService}
}

// CreateAdmission handles POST /admissions
func (c *AdmissionController) CreateAdmission(ctx *gin.Context) {
	var req dto.CreateAdmissionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	admission, err := c.admissionService.Create(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewResponse("admission", admission))
}

// GetAdmission handles GET /admissions/:id
func (c *AdmissionController) GetAdmission(ctx *gin.Context) {
	admission, err := c.admissionService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("admission", admission))
}

// ListAdmissions handles GET /admissions with optional status, programme_applied and email filters
func (c *AdmissionController) ListAdmissions(ctx *gin.Context) {
	var filter dto.AdmissionFilter
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	admissions, err := c.admissionService.List(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("admissions", admissions).With("count", len(admissions)))
}

// ListAdmissionsByEmail handles GET /admissions/email/:email
func (c *AdmissionController) ListAdmissionsByEmail(ctx *gin.Context) {
	admissions, err := c.admissionService.ListByEmail(ctx.Request.Context(), ctx.Param("email"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("admissions", admissions).With("count", len(admissions)))
}

// UpdateAdmission handles PATCH /admissions/:id
func (c *AdmissionController) UpdateAdmission(ctx *gin.Context) {
	var req dto.UpdateAdmissionRequest
	if !middleware.BindPatch(ctx, &req) {
		return
	}
	admission, err := c.admissionService.Update(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("admission", admission))
}

// UpdateAdmissionStatus handles PUT /admissions/:id/status
func (c *AdmissionController) UpdateAdmissionStatus(ctx *gin.Context) {
	var req dto.UpdateAdmissionStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	admission, err := c.admissionService.UpdateStatus(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("admission", admission))
}

// AdmitStudent handles POST /admissions/:id/admit. The body is optional.
func (c *AdmissionController) AdmitStudent(ctx *gin.Context) {
	var req dto.AdmitStudentRequest
	if ctx.Request.ContentLength != 0 && !middleware.BindJSON(ctx, &req) {
		return
	}
	student, err := c.admissionService.AdmitStudent(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewResponse("student", student).With("admission_id", ctx.Param("id")))
}

// DeleteAdmission handles DELETE /admissions/:id
func (c *AdmissionController) DeleteAdmission(ctx *gin.Context) {
	if err := c.admissionService.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse("Admission deleted"))
}

// GetAdmissionStats handles GET /admissions/stats
func (c *AdmissionController) GetAdmissionStats(ctx *gin.Context) {
	stats, err := c.admissionService.Stats(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("stats", stats))
}
