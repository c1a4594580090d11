package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/collegeerp/internal/app/models/dto"
	"github.com/yigit/collegeerp/internal/app/services"
	"github.com/yigit/collegeerp/internal/audit"
	"github.com/yigit/collegeerp/internal/middleware"
	"github.com/yigit/collegeerp/internal/pkg/helpers"
)

// AuditController exposes the audit trail
type AuditController struct {
	auditService *services.AuditService
}

// NewAuditController creates a new AuditController
func NewAuditController(auditService *services.AuditService) *AuditController {
	return &AuditController{auditService: auditService}
}

// ListAuditLogs filters by table_name, entity_id, action, user_id, start_date and end_date.
// Results are paged with page and size.
func (c *AuditController) ListAuditLogs(ctx *gin.Context) {
	var filter audit.Filter
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	logs, err := c.auditService.List(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)
	ctx.JSON(http.StatusOK, dto.NewResponse("logs", helpers.Paginate(logs, page, size)).
		With("count", len(logs)).
		With("pagination", helpers.NewPaginationInfo(len(logs), page, size)))
}
