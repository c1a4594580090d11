package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/collegeerp/internal/app/models/dto"
	"github.com/yigit/collegeerp/internal/app/services"
	"github.com/yigit/collegeerp/internal/middleware"
)

// NotificationController handles outgoing notifications
type NotificationController struct {
	notificationService *services.NotificationService
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notificationService *services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

func (c *NotificationController) CreateNotification(ctx *gin.Context) {
	var req dto.CreateNotificationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	n, err := c.notificationService.Create(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewResponse("notification", n))
}

func (c *NotificationController) CreateBulkNotifications(ctx *gin.Context) {
	var req dto.BulkNotificationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	out, err := c.notificationService.CreateBulk(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewResponse("notifications", out).With("count", len(out)))
}

// ListNotifications requires the recipient query parameter.
func (c *NotificationController) ListNotifications(ctx *gin.Context) {
	out, err := c.notificationService.ListForRecipient(ctx.Request.Context(), ctx.Query("recipient"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("notifications", out))
}

func (c *NotificationController) UpdateNotification(ctx *gin.Context) {
	var req dto.UpdateNotificationRequest
	if !middleware.BindPatch(ctx, &req) {
		return
	}
	n, err := c.notificationService.UpdateStatus(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("notification", n))
}

func (c *NotificationController) MarkRead(ctx *gin.Context) {
	n, err := c.notificationService.MarkRead(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("notification", n))
}
