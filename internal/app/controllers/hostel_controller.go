package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/collegeerp/internal/app/models/dto"
	"github.com/yigit/collegeerp/internal/app/services"
	"github.com/yigit/collegeerp/internal/middleware"
)

// HostelController handles rooms and the allocation workflow
type HostelController struct {
	hostelService *services.HostelService
}

// NewHostelController creates a new HostelController
func NewHostelController(hostelService *services.HostelService) *HostelController {
	return &HostelController{hostelService: hostelService}
}

func (c *HostelController) CreateRoom(ctx *gin.Context) {
	var req dto.CreateRoomRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	room, err := c.hostelService.CreateRoom(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewResponse("room", room))
}

func (c *HostelController) GetRoom(ctx *gin.Context) {
	room, err := c.hostelService.GetRoom(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("room", room))
}

func (c *HostelController) ListRooms(ctx *gin.Context) {
	var filter dto.RoomFilter
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	rooms, err := c.hostelService.ListRooms(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("rooms", rooms).With("count", len(rooms)))
}

func (c *HostelController) UpdateRoom(ctx *gin.Context) {
	var req dto.UpdateRoomRequest
	if !middleware.BindPatch(ctx, &req) {
		return
	}
	room, err := c.hostelService.UpdateRoom(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("room", room))
}

func (c *HostelController) DeleteRoom(ctx *gin.Context) {
	if err := c.hostelService.DeleteRoom(ctx.Request.Context(), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse("Room deleted"))
}

// Allocate handles POST /hostel/allocations
func (c *HostelController) Allocate(ctx *gin.Context) {
	var req dto.AllocateRoomRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	allocation, err := c.hostelService.Allocate(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewResponse("allocation", allocation))
}

// Deallocate handles POST /hostel/deallocate
func (c *HostelController) Deallocate(ctx *gin.Context) {
	var req dto.DeallocateRoomRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	allocation, err := c.hostelService.Deallocate(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("allocation", allocation))
}

func (c *HostelController) ListAllocations(ctx *gin.Context) {
	var filter dto.AllocationFilter
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	allocations, err := c.hostelService.ListAllocations(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("allocations", allocations))
}

func (c *HostelController) GetHostelStats(ctx *gin.Context) {
	stats, err := c.hostelService.Stats(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("stats", stats))
}
