package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/collegeerp/internal/audit"
	"github.com/yigit/collegeerp/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleAPIError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{"validation", apperrors.NewMissingFieldsError("email"), http.StatusBadRequest, "VAL_001", "Missing required fields: email"},
		{"not found", apperrors.NewResourceNotFoundError("Student not found"), http.StatusNotFound, "RES_001", "Student not found"},
		{"conflict", apperrors.NewConflictError("Room is not available"), http.StatusConflict, "RES_002", "Room is not available"},
		{"precondition", apperrors.NewPreconditionError("Admission must be approved"), http.StatusConflict, "RES_003", "Admission must be approved"},
		{"busy", apperrors.NewBusyError("Timed out waiting for lock"), http.StatusServiceUnavailable, "SRV_002", "Timed out waiting for lock"},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError, "SRV_001", "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", func(c *gin.Context) { HandleAPIError(c, tc.err) })
			w := serve(r, http.MethodGet, "/", "", nil)

			assert.Equal(t, tc.status, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.code, body["code"])
			assert.Equal(t, tc.msg, body["error"])
		})
	}
}

func TestHandleAPIErrorCarriesDetails(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) { HandleAPIError(c, apperrors.NewMissingFieldsError("a", "b")) })
	w := serve(r, http.MethodGet, "/", "", nil)
	assert.JSONEq(t, `{"success":false,"error":"Missing required fields: a, b","code":"VAL_001","details":{"fields":["a","b"]}}`, w.Body.String())
}

func TestActingUser(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()), ActingUser())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, audit.UserFrom(c.Request.Context()))
	})

	w := serve(r, http.MethodGet, "/", "", map[string]string{UserHeader: "registrar"})
	assert.Equal(t, "registrar", w.Body.String())

	w = serve(r, http.MethodGet, "/", "", nil)
	assert.Equal(t, audit.SystemUser, w.Body.String())
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, http.MethodGet, "/", "", map[string]string{RequestIDHeader: "req-1"})
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))

	w = serve(r, http.MethodGet, "/", "", nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

type patch struct {
	Phone *string `json:"phone"`
}

func TestBindPatchRejectsUnknownFields(t *testing.T) {
	r := gin.New()
	r.PATCH("/", func(c *gin.Context) {
		var p patch
		if !BindPatch(c, &p) {
			return
		}
		c.String(http.StatusOK, *p.Phone)
	})

	w := serve(r, http.MethodPatch, "/", `{"phone":"555"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "555", w.Body.String())

	w = serve(r, http.MethodPatch, "/", `{"status":"admitted"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Field status cannot be updated")
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zerolog.Nop()))
	r.GET("/", func(c *gin.Context) { panic("boom") })
	w := serve(r, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SRV_001")
}
