package dto

// Response is the body of every successful request: success plus one named
// entity or list, e.g. {"success": true, "admission": {...}}.
type Response map[string]interface{}

// NewResponse wraps value under key.
func NewResponse(key string, value interface{}) Response {
	return Response{"success": true, key: value}
}

// With adds another named value to the response.
func (r Response) With(key string, value interface{}) Response {
	r[key] = value
	return r
}

// MessageResponse is a success body without an entity.
func MessageResponse(message string) Response {
	return Response{"success": true, "message": message}
}

// PaginationInfo describes one page of a paged listing.
type PaginationInfo struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	PageSize    int `json:"pageSize"`
	TotalItems  int `json:"totalItems"`
}
