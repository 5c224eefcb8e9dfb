package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyflow/studyflow-api/internal/dto"
	"github.com/studyflow/studyflow-api/internal/models"
	appErrors "github.com/studyflow/studyflow-api/pkg/errors"
)

type fakeSubjectSrv struct {
	subjects   []models.Subject
	subject    *models.Subject
	err        error
	lastFilter models.SubjectFilter
	lastCreate dto.CreateSubjectRequest
	deletedID  string
}

func (f *fakeSubjectSrv) List(_ context.Context, _ string, filter models.SubjectFilter) ([]models.Subject, *models.Pagination, error) {
	f.lastFilter = filter
	return f.subjects, &models.Pagination{Page: 1, PageSize: 20, TotalCount: len(f.subjects)}, f.err
}

func (f *fakeSubjectSrv) Get(_ context.Context, _, id string) (*models.Subject, error) {
	return f.subject, f.err
}

func (f *fakeSubjectSrv) Create(_ context.Context, _ string, req dto.CreateSubjectRequest) (*models.Subject, error) {
	f.lastCreate = req
	return f.subject, f.err
}

func (f *fakeSubjectSrv) Update(_ context.Context, _, _ string, _ dto.UpdateSubjectRequest) (*models.Subject, error) {
	return f.subject, f.err
}

func (f *fakeSubjectSrv) Delete(_ context.Context, _, id string) error {
	f.deletedID = id
	return f.err
}

func TestSubjectHandlerListParsesQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeSubjectSrv{subjects: []models.Subject{{ID: "math", Name: "Math"}}}
	handler := &SubjectHandler{service: srv}

	c, rec := authedContext(httptest.NewRecorder(), http.MethodGet, "/subjects?search=ma&page=2&limit=5&sort=name&order=desc", "")
	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ma", srv.lastFilter.Search)
	assert.Equal(t, 2, srv.lastFilter.Page)
	assert.Equal(t, 5, srv.lastFilter.PageSize)
	assert.Equal(t, "name", srv.lastFilter.SortBy)
	assert.Equal(t, "desc", srv.lastFilter.SortOrder)
}

func TestSubjectHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeSubjectSrv{subject: &models.Subject{ID: "math", Name: "Math", Color: "#3B82F6"}}
	handler := &SubjectHandler{service: srv}

	body := `{"name":"Math","examDate":"2025-06-15","priority":"high","estimatedStudyHours":40}`
	c, rec := authedContext(httptest.NewRecorder(), http.MethodPost, "/subjects", body)
	handler.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Math", srv.lastCreate.Name)
	assert.Equal(t, "high", srv.lastCreate.Priority)

	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, "math", envelope.Data["id"])
}

func TestSubjectHandlerCreateBadJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &SubjectHandler{service: &fakeSubjectSrv{}}

	c, rec := authedContext(httptest.NewRecorder(), http.MethodPost, "/subjects", `{"name":`)
	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubjectHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &SubjectHandler{service: &fakeSubjectSrv{err: appErrors.ErrNotFound}}

	c, rec := authedContext(httptest.NewRecorder(), http.MethodGet, "/subjects/missing", "")
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubjectHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeSubjectSrv{}
	handler := &SubjectHandler{service: srv}

	c, rec := authedContext(httptest.NewRecorder(), http.MethodDelete, "/subjects/math", "")
	c.Params = gin.Params{{Key: "id", Value: "math"}}
	handler.Delete(c)
	// gin defers WriteHeader for status-only responses; flush it so the
	// recorder sees the 204 when the handler is called outside the engine.
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "math", srv.deletedID)
}

func TestSubjectHandlerRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &SubjectHandler{service: &fakeSubjectSrv{}}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/subjects", nil)

	handler.List(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
