package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/collegeerp/internal/config"
)

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.Store.Backend = config.BackendMemory
	cfg.Store.LockTimeout = "1s"
	cfg.Store.TxTimeout = "5s"
	cfg.Fees.Currency = "INR"

	lgr := zerolog.Nop()
	st, err := OpenStore(context.Background(), cfg, lgr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	deps := BuildDependencies(cfg, st, lgr)
	return &apiClient{t: t, router: SetupRouter(cfg, deps, lgr)}
}

func (a *apiClient) do(method, path string, body interface{}) (int, map[string]interface{}) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "registrar")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var out map[string]interface{}
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w.Code, out
}

func field(body map[string]interface{}, key, name string) string {
	obj, _ := body[key].(map[string]interface{})
	s, _ := obj[name].(string)
	return s
}

func TestPing(t *testing.T) {
	api := newTestAPI(t)
	code, body := api.do(http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "pong", body["message"])
}

func TestAdmissionToHostelAndFeesFlow(t *testing.T) {
	api := newTestAPI(t)

	code, body := api.do(http.MethodPost, "/api/v1/admissions", map[string]interface{}{
		"first_name":        "Asha",
		"last_name":         "Rao",
		"email":             "asha@college.test",
		"phone":             "9000000000",
		"programme_applied": "CS",
	})
	require.Equal(t, http.StatusCreated, code, body)
	admissionID := field(body, "admission", "admission_id")
	require.NotEmpty(t, admissionID)
	assert.Equal(t, "pending", field(body, "admission", "status"))

	// not yet approved
	code, body = api.do(http.MethodPost, "/api/v1/admissions/"+admissionID+"/admit", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "RES_003", body["code"])

	code, body = api.do(http.MethodPut, "/api/v1/admissions/"+admissionID+"/status", map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "approved", field(body, "admission", "status"))

	code, body = api.do(http.MethodPost, "/api/v1/admissions/"+admissionID+"/admit", map[string]string{"student_id": "STD-1"})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "STD-1", field(body, "student", "student_id"))
	assert.Equal(t, admissionID, field(body, "student", "admission_id"))

	code, body = api.do(http.MethodGet, "/api/v1/admissions/"+admissionID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "admitted", field(body, "admission", "status"))
	assert.Equal(t, "STD-1", field(body, "admission", "student_id"))

	code, body = api.do(http.MethodPost, "/api/v1/hostel/rooms", map[string]interface{}{
		"room_id": "R1", "hostel": "North", "block": "A", "floor": "1", "room_no": "101",
	})
	require.Equal(t, http.StatusCreated, code, body)

	code, body = api.do(http.MethodPost, "/api/v1/hostel/allocations", map[string]string{"student_id": "STD-1", "room_id": "R1"})
	require.Equal(t, http.StatusCreated, code, body)
	allocID := field(body, "allocation", "alloc_id")
	require.NotEmpty(t, allocID)

	code, body = api.do(http.MethodPost, "/api/v1/hostel/allocations", map[string]string{"student_id": "STD-1", "room_id": "R1"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "RES_002", body["code"])
	assert.Equal(t, false, body["success"])

	code, body = api.do(http.MethodGet, "/api/v1/students/STD-1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, allocID, field(body, "student", "hostel_alloc_id"))

	code, body = api.do(http.MethodPost, "/api/v1/fees/payments", map[string]interface{}{
		"student_id":       "STD-1",
		"amount":           500,
		"payment_mode":     "upi",
		"generate_receipt": true,
	})
	require.Equal(t, http.StatusCreated, code, body)
	receiptID := field(body, "receipt", "receipt_id")
	require.NotEmpty(t, receiptID)
	assert.Equal(t, receiptID, field(body, "transaction", "receipt_id"))
	assert.Equal(t, field(body, "transaction", "txn_id"), field(body, "receipt", "txn_id"))

	code, body = api.do(http.MethodGet, "/api/v1/audit?user_id=registrar&size=2", nil)
	require.Equal(t, http.StatusOK, code)
	logs, _ := body["logs"].([]interface{})
	assert.Len(t, logs, 2)
	assert.Greater(t, body["count"], float64(2))
	pagination, _ := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), pagination["pageSize"])
}

func TestErrorEnvelopes(t *testing.T) {
	api := newTestAPI(t)

	code, body := api.do(http.MethodGet, "/api/v1/students/missing", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "RES_001", body["code"])
	assert.Equal(t, false, body["success"])

	code, body = api.do(http.MethodPost, "/api/v1/admissions", map[string]string{"email": "x@college.test"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VAL_001", body["code"])

	code, body = api.do(http.MethodPatch, "/api/v1/admissions/any", map[string]string{"status": "admitted"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VAL_001", body["code"])
}
