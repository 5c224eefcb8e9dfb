package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/studyflow/studyflow-api/internal/dto"
	"github.com/studyflow/studyflow-api/internal/middleware"
	"github.com/studyflow/studyflow-api/internal/models"
)

type responseEnvelope struct {
	Data  map[string]interface{} `json:"data"`
	Error map[string]interface{} `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

type fakeGeneratorSrv struct {
	resp      *dto.GenerateScheduleResponse
	err       error
	lastOwner string
	lastReq   dto.GenerateScheduleRequest
}

func (f *fakeGeneratorSrv) Generate(_ context.Context, ownerID string, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	f.lastOwner = ownerID
	f.lastReq = req
	return f.resp, f.err
}

func authedContext(rec *httptest.ResponseRecorder, method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	c, _ := gin.CreateTestContext(rec)
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "owner-1", Email: "ada@example.com", Name: "Ada"})
	return c, rec
}

func TestPlannerHandlerGenerate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeGeneratorSrv{resp: &dto.GenerateScheduleResponse{
		StartDate:   "2025-03-03",
		HorizonDays: 14,
		Sessions: []models.StudySession{
			{ID: "math-2025-03-03", SubjectID: "math", Duration: 120},
		},
	}}
	handler := &PlannerHandler{service: srv}

	c, rec := authedContext(httptest.NewRecorder(), http.MethodPost, "/schedule/generate", `{"startDate":"2025-03-03","commit":true}`)
	handler.Generate(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "owner-1", srv.lastOwner)
	assert.True(t, srv.lastReq.Commit)

	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, "2025-03-03", envelope.Data["startDate"])
	assert.Equal(t, float64(14), envelope.Data["horizonDays"])
}

func TestPlannerHandlerGenerateRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &PlannerHandler{service: &fakeGeneratorSrv{}}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/schedule/generate", strings.NewReader("{}"))

	handler.Generate(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPlannerHandlerGenerateBadPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &PlannerHandler{service: &fakeGeneratorSrv{}}

	c, rec := authedContext(httptest.NewRecorder(), http.MethodPost, "/schedule/generate", `{"startDate":42}`)
	handler.Generate(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
