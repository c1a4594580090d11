package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/collegeerp/internal/app/models"
)

func TestResponseEnvelope(t *testing.T) {
	body, err := json.Marshal(NewResponse("admission", &models.Admission{AdmissionID: "ADM-1", Status: models.AdmissionPending}).With("count", 1))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, true, decoded["success"])
	assert.EqualValues(t, 1, decoded["count"])
	assert.Equal(t, "ADM-1", decoded["admission"].(map[string]interface{})["admission_id"])
}

func TestErrorEnvelope(t *testing.T) {
	body, err := json.Marshal(NewErrorResponse(ErrorCodeResourceNotFound, "Admission not found"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"Admission not found","code":"RES_001"}`, string(body))
}

func TestPatchApply(t *testing.T) {
	phone := "555-0101"
	first := "Asha"
	a := &models.Admission{FirstName: "A", LastName: "Rao", Phone: "1", Status: models.AdmissionApproved}
	(&UpdateAdmissionRequest{FirstName: &first, Phone: &phone}).Apply(a)

	assert.Equal(t, "Asha Rao", a.ApplicantName)
	assert.Equal(t, "555-0101", a.Phone)
	assert.Equal(t, models.AdmissionApproved, a.Status)

	year := 2
	s := &models.Student{YearOfStudy: 1, HostelAllocID: "ALLOC-1"}
	(&UpdateStudentRequest{YearOfStudy: &year}).Apply(s)
	assert.Equal(t, 2, s.YearOfStudy)
	assert.Equal(t, "ALLOC-1", s.HostelAllocID)
}
