package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/collegeerp/internal/pkg/apperrors"
	"github.com/yigit/collegeerp/internal/pkg/validation"
)

// BindJSON decodes a create payload into obj. It writes the error response
// and returns false when the body is not valid JSON. Field rules are checked
// by the services.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		HandleAPIError(c, apperrors.NewValidationError("Invalid request body: "+err.Error()))
		return false
	}
	return true
}

// BindPatch decodes a patch payload into obj, rejecting columns the patch
// does not declare.
func BindPatch(c *gin.Context, obj interface{}) bool {
	if err := validation.DecodeStrict(c.Request.Body, obj); err != nil {
		HandleAPIError(c, err)
		return false
	}
	return true
}

// BindQuery decodes list filters from the query string.
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		HandleAPIError(c, apperrors.NewValidationError("Invalid query parameters: "+err.Error()))
		return false
	}
	return true
}
