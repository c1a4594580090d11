package dto

// ErrorCode represents standardized error codes
type ErrorCode string

// Standard error codes for the application
const (
	// Resource errors
	ErrorCodeResourceNotFound ErrorCode = "RES_001"
	ErrorCodeConflict         ErrorCode = "RES_002"
	ErrorCodePrecondition     ErrorCode = "RES_003"

	// Validation errors
	ErrorCodeValidationFailed ErrorCode = "VAL_001"

	// Server errors
	ErrorCodeInternalServer ErrorCode = "SRV_001"
	ErrorCodeBusy           ErrorCode = "SRV_002"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool                   `json:"success" example:"false"`
	Error   string                 `json:"error" example:"Admission not found"`
	Code    ErrorCode              `json:"code,omitempty" example:"RES_001"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// NewErrorResponse creates a failure body.
func NewErrorResponse(code ErrorCode, message string) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   message,
		Code:    code,
	}
}

// WithDetails adds additional details to the error
func (e *ErrorResponse) WithDetails(details map[string]interface{}) *ErrorResponse {
	e.Details = details
	return e
}
