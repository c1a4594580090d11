package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/collegeerp/internal/app/models/dto"
	"github.com/yigit/collegeerp/internal/app/services"
	"github.com/yigit/collegeerp/internal/middleware"
)

// FeeController handles fee structures, payments and receipts
type FeeController struct {
	feeService *services.FeeService
}

// NewFeeController creates a new FeeController
func NewFeeController(feeService *services.FeeService) *FeeController {
	return &FeeController{feeService: feeService}
}

// --- Fee structures ---

func (c *FeeController) CreateFeeStructure(ctx *gin.Context) {
	var req dto.CreateFeeStructureRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	fee, err := c.feeService.CreateFeeStructure(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewResponse("fee_structure", fee))
}

func (c *FeeController) GetFeeStructure(ctx *gin.Context) {
	fee, err := c.feeService.GetFeeStructure(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("fee_structure", fee))
}

// ListFeeStructures returns only the structures in effect today.
func (c *FeeController) ListFeeStructures(ctx *gin.Context) {
	var filter dto.FeeStructureFilter
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	fees, err := c.feeService.ListFeeStructures(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("fee_structures", fees))
}

func (c *FeeController) UpdateFeeStructure(ctx *gin.Context) {
	var req dto.UpdateFeeStructureRequest
	if !middleware.BindPatch(ctx, &req) {
		return
	}
	fee, err := c.feeService.UpdateFeeStructure(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("fee_structure", fee))
}

func (c *FeeController) DeleteFeeStructure(ctx *gin.Context) {
	if err := c.feeService.DeleteFeeStructure(ctx.Request.Context(), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse("Fee structure deleted"))
}

// --- Payments ---

// CreatePayment records a payment; the receipt is included when requested.
func (c *FeeController) CreatePayment(ctx *gin.Context) {
	var req dto.CreatePaymentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	payment, err := c.feeService.CreatePayment(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	resp := dto.NewResponse("transaction", payment.Transaction)
	if payment.Receipt != nil {
		resp = resp.With("receipt", payment.Receipt)
	}
	ctx.JSON(http.StatusCreated, resp)
}

func (c *FeeController) GetPayment(ctx *gin.Context) {
	txn, err := c.feeService.GetPayment(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("transaction", txn))
}

func (c *FeeController) ListPayments(ctx *gin.Context) {
	var filter dto.PaymentFilter
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	payments, err := c.feeService.ListPayments(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("transactions", payments).With("count", len(payments)))
}

func (c *FeeController) IssueReceipt(ctx *gin.Context) {
	var req dto.IssueReceiptRequest
	if ctx.Request.ContentLength != 0 && !middleware.BindJSON(ctx, &req) {
		return
	}
	receipt, err := c.feeService.IssueReceipt(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewResponse("receipt", receipt))
}

// --- Receipts ---

func (c *FeeController) GetReceipt(ctx *gin.Context) {
	receipt, err := c.feeService.GetReceipt(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("receipt", receipt))
}

func (c *FeeController) ListReceipts(ctx *gin.Context) {
	var filter dto.ReceiptFilter
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	receipts, err := c.feeService.ListReceipts(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("receipts", receipts))
}

func (c *FeeController) GetFeeStats(ctx *gin.Context) {
	stats, err := c.feeService.Stats(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResponse("stats", stats))
}
