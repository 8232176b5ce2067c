package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	drivev3 "google.golang.org/api/drive/v3"

	"github.com/Eschmerz/Luxury/internal/middleware"
	"github.com/Eschmerz/Luxury/internal/models"
)

const adminToken = "admin-secret"

func adminRouter(repo *fakeAdminRepo, access *fakeAccessService, driveMeta func(ctx context.Context) (*drivev3.File, error)) *gin.Engine {
	handler := NewAdminHandler(repo, access, fakeVerifier{}, driveMeta, zap.NewNop())
	router := gin.New()
	group := router.Group("/admin", middleware.AdminToken(adminToken))
	group.POST("/reset-paylink", handler.ResetPaylink)
	group.GET("/test-drive", handler.TestDrive)
	group.POST("/grant-drive", handler.GrantDrive)
	return router
}

func adminReq(method, path, body string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("X-Admin-Token", adminToken)
	return req
}

func TestAdminEndpointsRequireToken(t *testing.T) {
	router := adminRouter(&fakeAdminRepo{}, &fakeAccessService{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/reset-paylink", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/admin/reset-paylink", nil)
	req.Header.Set("X-Admin-Token", "wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResetPaylink_ByUID(t *testing.T) {
	repo := &fakeAdminRepo{}
	router := adminRouter(repo, &fakeAccessService{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, adminReq(http.MethodPost, "/admin/reset-paylink", `{"uid":"uid-9"}`))

	require.Equal(t, http.StatusOK, w.Code)
	fields := repo.deleted["uid-9"]
	assert.ElementsMatch(t, []string{
		models.FieldStripePaylinkID,
		models.FieldStripePaylinkURL,
		models.FieldStripePriceID,
		models.FieldStripeProductID,
		models.FieldStripeMode,
	}, fields)
}

func TestResetPaylink_FallsBackToBearerToken(t *testing.T) {
	repo := &fakeAdminRepo{}
	router := adminRouter(repo, &fakeAccessService{}, nil)

	req := adminReq(http.MethodPost, "/admin/reset-paylink", "")
	req.Header.Set("Authorization", "Bearer token-uid-7")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, repo.deleted, "uid-7")
}

func TestResetPaylink_NoTargetAnswers400(t *testing.T) {
	router := adminRouter(&fakeAdminRepo{}, &fakeAccessService{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, adminReq(http.MethodPost, "/admin/reset-paylink", ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTestDrive(t *testing.T) {
	meta := func(_ context.Context) (*drivev3.File, error) {
		return &drivev3.File{Id: "folder123", Name: "Downloads"}, nil
	}
	router := adminRouter(&fakeAdminRepo{}, &fakeAccessService{}, meta)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, adminReq(http.MethodGet, "/admin/test-drive", ""))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "folder123")
}

func TestTestDrive_Unconfigured(t *testing.T) {
	router := adminRouter(&fakeAdminRepo{}, &fakeAccessService{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, adminReq(http.MethodGet, "/admin/test-drive", ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGrantDrive_ByBodyAndQuery(t *testing.T) {
	access := &fakeAccessService{}
	router := adminRouter(&fakeAdminRepo{}, access, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, adminReq(http.MethodPost, "/admin/grant-drive", `{"email":"a@b.com"}`))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, adminReq(http.MethodPost, "/admin/grant-drive?email=c@d.com", ""))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, []string{"a@b.com", "c@d.com"}, access.grantedEmails)
}

func TestGrantDrive_MissingEmail(t *testing.T) {
	router := adminRouter(&fakeAdminRepo{}, &fakeAccessService{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, adminReq(http.MethodPost, "/admin/grant-drive", ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
