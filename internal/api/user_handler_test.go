package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Eschmerz/Luxury/internal/models"
)

const testFolderURL = "https://drive.google.com/drive/folders/folder123?usp=sharing"

func userRouter(us *fakeUserService, folderID, folderURL string) *gin.Engine {
	handler := NewUserHandler(us, folderID, folderURL, zap.NewNop())
	router := gin.New()
	router.GET("/me", asUser("uid-1", "a@b.com", "A"), handler.Me)
	router.GET("/drive", asUser("uid-1", "a@b.com", "A"), handler.Drive)
	router.GET("/config", handler.PublicConfig)
	return router
}

func TestMe_ReturnsProfileWithAccessFlag(t *testing.T) {
	us := &fakeUserService{users: map[string]*models.User{
		"uid-1": {
			ID:               "uid-1",
			Email:            "a@b.com",
			Access:           true,
			StripeCustomerID: "cus_1",
			StripePaylinkURL: "https://buy.stripe.com/x",
		},
	}}
	router := userRouter(us, "folder123", testFolderURL)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "uid-1", resp.UID)
	assert.True(t, resp.Access)
	assert.Equal(t, "cus_1", resp.StripeCustomerID)
}

func TestMe_NewUserHasNoAccess(t *testing.T) {
	router := userRouter(&fakeUserService{}, "folder123", testFolderURL)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Access)
}

func TestDrive_RedirectsWhenAccessGranted(t *testing.T) {
	us := &fakeUserService{users: map[string]*models.User{
		"uid-1": {ID: "uid-1", Access: true},
	}}
	router := userRouter(us, "folder123", testFolderURL)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/drive", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, testFolderURL, w.Header().Get("Location"))
}

func TestDrive_ForbiddenWithoutAccess(t *testing.T) {
	router := userRouter(&fakeUserService{}, "folder123", testFolderURL)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/drive", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDrive_UnconfiguredFolder(t *testing.T) {
	router := userRouter(&fakeUserService{}, "", "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/drive", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestPublicConfig(t *testing.T) {
	router := userRouter(&fakeUserService{}, "folder123", testFolderURL)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/config", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"driveFolderId":"folder123","driveFolderUrl":"`+testFolderURL+`"}`,
		w.Body.String())
}

func TestPublicConfig_UnconfiguredValuesAreNull(t *testing.T) {
	router := userRouter(&fakeUserService{}, "", "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/config", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"driveFolderId":null,"driveFolderUrl":null}`, w.Body.String())
}
