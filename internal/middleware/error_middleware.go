package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/collegeerp/internal/app/models/dto"
	"github.com/yigit/collegeerp/internal/pkg/apperrors"
)

// --- Central Error Handling ---

// HandleAPIError maps an application error onto its HTTP status and writes
// the error envelope. Unclassified errors are logged and reported as 500
// without their internal message.
func HandleAPIError(c *gin.Context, err error) {
	var (
		status int
		code   dto.ErrorCode
		msg    string
	)
	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		status, code, msg = http.StatusBadRequest, dto.ErrorCodeValidationFailed, apperrors.Message(err, "Validation failed")
	case errors.Is(err, apperrors.ErrResourceNotFound):
		status, code, msg = http.StatusNotFound, dto.ErrorCodeResourceNotFound, apperrors.Message(err, "Resource not found")
	case errors.Is(err, apperrors.ErrPreconditionFailed):
		status, code, msg = http.StatusConflict, dto.ErrorCodePrecondition, apperrors.Message(err, "Precondition failed")
	case errors.Is(err, apperrors.ErrConflict):
		status, code, msg = http.StatusConflict, dto.ErrorCodeConflict, apperrors.Message(err, "Conflict")
	case errors.Is(err, apperrors.ErrBusy):
		status, code, msg = http.StatusServiceUnavailable, dto.ErrorCodeBusy, apperrors.Message(err, "Resource busy, please retry")
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Unhandled error")
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrorCodeInternalServer, "Internal server error"))
		return
	}

	resp := dto.NewErrorResponse(code, msg)
	var ce *apperrors.CustomError
	if errors.As(err, &ce) && len(ce.Details) > 0 {
		resp = resp.WithDetails(ce.Details)
	}
	c.JSON(status, resp)
}
