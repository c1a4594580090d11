package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCalculateSliceIndices(t *testing.T) {
	tests := []struct {
		name             string
		page, size, n    int
		wantStart, wantE int
	}{
		{"first page", 1, 10, 25, 0, 10},
		{"last partial page", 3, 10, 25, 20, 25},
		{"past the end", 4, 10, 25, 25, 25},
		{"invalid page", 0, 10, 25, 0, 10},
		{"empty", 1, 10, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := CalculateSliceIndices(tt.page, tt.size, tt.n)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantE, end)
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, Paginate(items, 2, 2))
	assert.Equal(t, []int{5}, Paginate(items, 3, 2))
	assert.Empty(t, Paginate(items, 9, 2))
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(25, 5, 10)
	assert.Equal(t, 3, info.CurrentPage)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 25, info.TotalItems)

	empty := NewPaginationInfo(0, 1, 10)
	assert.Equal(t, 1, empty.TotalPages)
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/audit?page=3&size=5", nil)
	page, size := ParsePaginationParams(c)
	assert.Equal(t, 3, page)
	assert.Equal(t, 5, size)

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/audit?page=-1&size=100000", nil)
	page, size = ParsePaginationParams(c)
	assert.Equal(t, DefaultPage, page)
	assert.Equal(t, DefaultPageSize, size)
}
