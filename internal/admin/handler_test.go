package admin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dustinwells/sprinter-leads/internal/fraud"
	"github.com/dustinwells/sprinter-leads/internal/review"
	"github.com/dustinwells/sprinter-leads/internal/submissions"
	"github.com/dustinwells/sprinter-leads/pkg/middleware"
	"github.com/dustinwells/sprinter-leads/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = validation.RegisterEnum(v, "review_status", review.ValidStatus)
		_ = validation.RegisterEnum(v, "risk_flag", fraud.ValidFlag)
	}
}

func setupRouter(svc *Service) *gin.Engine {
	handler := NewHandler(svc, false)
	router := gin.New()

	router.POST("/api/admin/login", handler.Login)
	router.POST("/api/admin/logout", handler.Logout)

	authed := router.Group("/api/admin", middleware.AdminAuth(testAdminConfig().JWTSecret))
	authed.GET("/submissions", handler.List)
	authed.GET("/submissions/:id", handler.Get)
	authed.PATCH("/submissions/:id", handler.Update)
	authed.DELETE("/submissions/:id", handler.Delete)

	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sessionToken(t *testing.T, svc *Service) string {
	t.Helper()
	token, _, err := svc.Login("hunter2")
	require.NoError(t, err)
	return token
}

func TestHandler_Login_SetsCookie(t *testing.T) {
	svc := newTestService(new(mockSubmissionsRepo), new(mockReviewRepo))
	router := setupRouter(svc)

	w := doJSON(t, router, http.MethodPost, "/api/admin/login", gin.H{"password": "hunter2"}, "")

	assert.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestHandler_Login_WrongPassword(t *testing.T) {
	svc := newTestService(new(mockSubmissionsRepo), new(mockReviewRepo))
	router := setupRouter(svc)

	w := doJSON(t, router, http.MethodPost, "/api/admin/login", gin.H{"password": "nope"}, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestHandler_Logout_ClearsCookie(t *testing.T) {
	svc := newTestService(new(mockSubmissionsRepo), new(mockReviewRepo))
	router := setupRouter(svc)

	w := doJSON(t, router, http.MethodPost, "/api/admin/logout", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestHandler_List_RequiresAuth(t *testing.T) {
	svc := newTestService(new(mockSubmissionsRepo), new(mockReviewRepo))
	router := setupRouter(svc)

	w := doJSON(t, router, http.MethodGet, "/api/admin/submissions", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/admin/submissions", nil, "garbage-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_List(t *testing.T) {
	repo := new(mockSubmissionsRepo)
	reviews := new(mockReviewRepo)
	svc := newTestService(repo, reviews)
	router := setupRouter(svc)

	sub := leadSubmission(fraud.FlagGreen)
	repo.On("ListAllForSite", mock.Anything, "sprinter-van").Return([]*submissions.Submission{sub}, nil)
	reviews.On("GetBySubmissionIDs", mock.Anything, mock.Anything).Return(map[uuid.UUID]*review.State{}, nil)

	w := doJSON(t, router, http.MethodGet, "/api/admin/submissions", nil, sessionToken(t, svc))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    []struct {
			EffectiveRisk string `json:"effective_risk"`
		} `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "green", resp.Data[0].EffectiveRisk)
	assert.Equal(t, int64(1), resp.Meta.Total)
}

func TestHandler_List_InvalidFilter(t *testing.T) {
	svc := newTestService(new(mockSubmissionsRepo), new(mockReviewRepo))
	router := setupRouter(svc)

	w := doJSON(t, router, http.MethodGet, "/api/admin/submissions?status=bogus", nil, sessionToken(t, svc))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/admin/submissions?risk=orange", nil, sessionToken(t, svc))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Update(t *testing.T) {
	repo := new(mockSubmissionsRepo)
	reviews := new(mockReviewRepo)
	svc := newTestService(repo, reviews)
	router := setupRouter(svc)

	sub := leadSubmission(fraud.FlagRed)
	repo.On("GetByID", mock.Anything, sub.ID).Return(sub, nil)
	reviews.On("Upsert", mock.Anything, sub.ID, mock.Anything).
		Return(&review.State{SubmissionID: sub.ID, Status: review.StatusContacted}, nil)

	w := doJSON(t, router, http.MethodPatch, "/api/admin/submissions/"+sub.ID.String(),
		gin.H{"status": "contacted", "risk_override": "green"}, sessionToken(t, svc))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "contacted")
}

func TestHandler_Update_InvalidStatus(t *testing.T) {
	svc := newTestService(new(mockSubmissionsRepo), new(mockReviewRepo))
	router := setupRouter(svc)

	w := doJSON(t, router, http.MethodPatch, "/api/admin/submissions/"+uuid.NewString(),
		gin.H{"status": "archived"}, sessionToken(t, svc))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Update_NotFound(t *testing.T) {
	repo := new(mockSubmissionsRepo)
	svc := newTestService(repo, new(mockReviewRepo))
	router := setupRouter(svc)

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(nil, submissions.ErrNotFound)

	w := doJSON(t, router, http.MethodPatch, "/api/admin/submissions/"+id.String(),
		gin.H{"status": "contacted"}, sessionToken(t, svc))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Delete(t *testing.T) {
	repo := new(mockSubmissionsRepo)
	svc := newTestService(repo, new(mockReviewRepo))
	router := setupRouter(svc)

	id := uuid.New()
	repo.On("Delete", mock.Anything, id).Return(nil)

	w := doJSON(t, router, http.MethodDelete, "/api/admin/submissions/"+id.String(), nil, sessionToken(t, svc))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_Delete_InvalidID(t *testing.T) {
	svc := newTestService(new(mockSubmissionsRepo), new(mockReviewRepo))
	router := setupRouter(svc)

	w := doJSON(t, router, http.MethodDelete, "/api/admin/submissions/not-a-uuid", nil, sessionToken(t, svc))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
