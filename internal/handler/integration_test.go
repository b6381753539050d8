package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeshwanthrajr/dataviz-api/internal/models"
	"github.com/yeshwanthrajr/dataviz-api/internal/service"
	"github.com/yeshwanthrajr/dataviz-api/internal/store"
	"github.com/yeshwanthrajr/dataviz-api/pkg/config"
	"github.com/yeshwanthrajr/dataviz-api/pkg/storage"
)

const salesCSV = "region,revenue\nNorth,1200\nSouth,900\nEast,1500\n"

type testEnv struct {
	router *gin.Engine
	store  *store.Memory
	auth   *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{APIPrefix: "/api"}
	cfg.Storage.MaxUploadBytes = 10 << 20

	st := store.NewMemory()
	uploads, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	auth := service.NewAuthService(st, nil, nil, service.AuthConfig{
		Secret:     "integration-secret",
		Expiration: time.Hour,
		Issuer:     "dataviz-test",
	})
	files := service.NewFileService(st, uploads, nil, nil, cfg.Storage.MaxUploadBytes)
	charts := service.NewChartService(st, nil, nil, nil)
	adminRequests := service.NewAdminRequestService(st, nil, nil)
	users := service.NewUserService(st, nil)
	stats := service.NewStatsService(st, uploads, nil, nil)

	router := NewRouter(RouterDeps{
		Config:        cfg,
		Store:         st,
		Auth:          auth,
		Files:         files,
		Charts:        charts,
		AdminRequests: adminRequests,
		Users:         users,
		Stats:         stats,
	})

	return &testEnv{router: router, store: st, auth: auth}
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func (e *testEnv) register(t *testing.T, email, name string) (string, models.PublicUser) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":"secret123","name":%q}`, email, name)
	req, _ := http.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(e.router, req)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var envelope struct {
		Data models.AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.Token)
	return envelope.Data.Token, envelope.Data.User
}

// registerWithRole registers through the API and then escalates the stored
// role directly, standing in for accounts that exist before the test run.
func (e *testEnv) registerWithRole(t *testing.T, email string, role models.UserRole) (string, models.PublicUser) {
	t.Helper()
	token, user := e.register(t, email, "Fixture "+string(role))
	if role != models.RoleUser {
		_, err := e.store.UpdateUserRole(context.Background(), user.ID, role)
		require.NoError(t, err)
		user.Role = role
	}
	return token, user
}

func (e *testEnv) uploadCSV(t *testing.T, token, filename, contents string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(contents))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, _ := http.NewRequest(http.MethodPost, "/api/files/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return performRequest(e.router, req)
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return performRequest(e.router, req)
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

func TestUploadReviewChartWorkflow(t *testing.T) {
	env := newTestEnv(t)

	userToken, _ := env.register(t, "uploader@example.com", "Uploader")
	adminToken, _ := env.registerWithRole(t, "admin@example.com", models.RoleAdmin)

	var file models.File
	t.Run("upload lands in pending", func(t *testing.T) {
		resp := env.uploadCSV(t, userToken, "sales.csv", salesCSV)
		require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
		decodeData(t, resp, &file)
		assert.Equal(t, models.FileStatusPending, file.Status)
		assert.Len(t, file.Data, 3)
	})

	t.Run("pending queue visible to admin", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/files/pending", adminToken, "")
		require.Equal(t, http.StatusOK, resp.Code)
		var files []models.File
		decodeData(t, resp, &files)
		require.Len(t, files, 1)
		assert.Equal(t, file.ID, files[0].ID)
	})

	t.Run("pending queue forbidden for standard user", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/files/pending", userToken, "")
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("approve forbidden for standard user", func(t *testing.T) {
		resp := env.do(t, http.MethodPatch, "/api/files/"+file.ID+"/approve", userToken, "")
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("admin approves", func(t *testing.T) {
		resp := env.do(t, http.MethodPatch, "/api/files/"+file.ID+"/approve", adminToken, "")
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		var approved models.File
		decodeData(t, resp, &approved)
		assert.Equal(t, models.FileStatusApproved, approved.Status)
	})

	t.Run("second review conflicts", func(t *testing.T) {
		resp := env.do(t, http.MethodPatch, "/api/files/"+file.ID+"/reject", adminToken, "")
		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("chart from approved file", func(t *testing.T) {
		body := fmt.Sprintf(`{"fileId":%q,"title":"Revenue by region","type":"bar","xAxis":"region","yAxis":"revenue"}`, file.ID)
		resp := env.do(t, http.MethodPost, "/api/charts", userToken, body)
		require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
		var chart models.Chart
		decodeData(t, resp, &chart)
		assert.Equal(t, models.ChartTypeBar, chart.Type)
	})

	t.Run("chart with unknown column rejected", func(t *testing.T) {
		body := fmt.Sprintf(`{"fileId":%q,"title":"Bad","type":"bar","xAxis":"region","yAxis":"profit"}`, file.ID)
		resp := env.do(t, http.MethodPost, "/api/charts", userToken, body)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("charts listed for file", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/charts/file/"+file.ID, userToken, "")
		require.Equal(t, http.StatusOK, resp.Code)
		var charts []models.Chart
		decodeData(t, resp, &charts)
		assert.Len(t, charts, 1)
	})

	t.Run("export returns csv", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/files/"+file.ID+"/export", userToken, "")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Header().Get("Content-Disposition"), "sales.csv")
		assert.Contains(t, resp.Body.String(), "North")
	})

	t.Run("dashboard stats reflect activity", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/stats/dashboard", userToken, "")
		require.Equal(t, http.StatusOK, resp.Code)
		var stats models.DashboardStats
		decodeData(t, resp, &stats)
		assert.Equal(t, 1, stats.TotalUploads)
		assert.Equal(t, 1, stats.Approved)
		assert.Equal(t, 1, stats.Charts)
	})
}

func TestAuthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	t.Run("register then login", func(t *testing.T) {
		token, user := env.register(t, "new@example.com", "New User")
		assert.NotEmpty(t, token)
		assert.Equal(t, models.RoleUser, user.Role)

		resp := env.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"new@example.com","password":"secret123"}`)
		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/auth/register", "", `{"email":"new@example.com","password":"secret123","name":"Again"}`)
		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("wrong password unauthorized", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"new@example.com","password":"nope"}`)
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("me requires token", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/auth/me", "", "")
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("me returns profile", func(t *testing.T) {
		token, _ := env.register(t, "profile@example.com", "Profile")
		resp := env.do(t, http.MethodGet, "/api/auth/me", token, "")
		require.Equal(t, http.StatusOK, resp.Code)
		var user models.PublicUser
		decodeData(t, resp, &user)
		assert.Equal(t, "profile@example.com", user.Email)
	})

	t.Run("mangled token unauthorized", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/files", "not.a.token", "")
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}

func TestUploadValidation(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "uploader@example.com", "Uploader")

	t.Run("unsupported extension", func(t *testing.T) {
		resp := env.uploadCSV(t, token, "notes.txt", "hello world")
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("missing file field", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/files/upload", token, `{}`)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("unauthenticated upload", func(t *testing.T) {
		resp := env.uploadCSV(t, "", "sales.csv", salesCSV)
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}

func TestFileOwnershipOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	ownerToken, _ := env.register(t, "owner@example.com", "Owner")
	strangerToken, _ := env.register(t, "stranger@example.com", "Stranger")
	adminToken, _ := env.registerWithRole(t, "admin@example.com", models.RoleAdmin)

	var file models.File
	resp := env.uploadCSV(t, ownerToken, "sales.csv", salesCSV)
	require.Equal(t, http.StatusCreated, resp.Code)
	decodeData(t, resp, &file)

	t.Run("owner reads own file", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/files/"+file.ID, ownerToken, "")
		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("stranger forbidden", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/files/"+file.ID, strangerToken, "")
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("admin allowed", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/files/"+file.ID, adminToken, "")
		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("missing file is 404", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/files/does-not-exist", ownerToken, "")
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestPromotionWorkflowOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	userToken, user := env.register(t, "climber@example.com", "Climber")
	superToken, _ := env.registerWithRole(t, "root@example.com", models.RoleSuperAdmin)
	adminToken, _ := env.registerWithRole(t, "admin@example.com", models.RoleAdmin)

	var request models.AdminRequest
	t.Run("user files a request", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/admin-requests", userToken, `{"message":"I manage the sales team"}`)
		require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
		decodeData(t, resp, &request)
		assert.Equal(t, models.AdminRequestPending, request.Status)
	})

	t.Run("queue hidden from admins", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/admin-requests/pending", adminToken, "")
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("superadmin sees queue", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/admin-requests/pending", superToken, "")
		require.Equal(t, http.StatusOK, resp.Code)
		var requests []models.AdminRequest
		decodeData(t, resp, &requests)
		assert.Len(t, requests, 1)
	})

	t.Run("approval promotes the requester", func(t *testing.T) {
		resp := env.do(t, http.MethodPatch, "/api/admin-requests/"+request.ID+"/approve", superToken, "")
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		me := env.do(t, http.MethodGet, "/api/auth/me", userToken, "")
		require.Equal(t, http.StatusOK, me.Code)
		var profile models.PublicUser
		decodeData(t, me, &profile)
		assert.Equal(t, models.RoleAdmin, profile.Role, "existing token must see the new role")
		assert.Equal(t, user.ID, profile.ID)
	})

	t.Run("second review conflicts", func(t *testing.T) {
		resp := env.do(t, http.MethodPatch, "/api/admin-requests/"+request.ID+"/deny", superToken, "")
		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("admins cannot re-request", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/admin-requests", userToken, `{"message":"again"}`)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestUserAdministrationOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	userToken, user := env.register(t, "subject@example.com", "Subject")
	superToken, _ := env.registerWithRole(t, "root@example.com", models.RoleSuperAdmin)
	adminToken, _ := env.registerWithRole(t, "admin@example.com", models.RoleAdmin)

	t.Run("listing needs admin role", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/users", userToken, "")
		assert.Equal(t, http.StatusForbidden, resp.Code)

		resp = env.do(t, http.MethodGet, "/api/users", adminToken, "")
		require.Equal(t, http.StatusOK, resp.Code)
		var users []models.PublicUser
		decodeData(t, resp, &users)
		assert.Len(t, users, 3)
	})

	t.Run("role change is superadmin only", func(t *testing.T) {
		resp := env.do(t, http.MethodPatch, "/api/users/"+user.ID+"/role", adminToken, `{"role":"admin"}`)
		assert.Equal(t, http.StatusForbidden, resp.Code)

		resp = env.do(t, http.MethodPatch, "/api/users/"+user.ID+"/role", superToken, `{"role":"admin"}`)
		require.Equal(t, http.StatusOK, resp.Code)
		var updated models.PublicUser
		decodeData(t, resp, &updated)
		assert.Equal(t, models.RoleAdmin, updated.Role)
	})

	t.Run("superadmin target rejected", func(t *testing.T) {
		resp := env.do(t, http.MethodPatch, "/api/users/"+user.ID+"/role", superToken, `{"role":"superadmin"}`)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestStatsAuthorization(t *testing.T) {
	env := newTestEnv(t)
	userToken, _ := env.register(t, "user@example.com", "User")
	adminToken, _ := env.registerWithRole(t, "admin@example.com", models.RoleAdmin)
	superToken, _ := env.registerWithRole(t, "root@example.com", models.RoleSuperAdmin)

	cases := []struct {
		path  string
		token string
		want  int
	}{
		{"/api/stats/dashboard", userToken, http.StatusOK},
		{"/api/stats/admin", userToken, http.StatusForbidden},
		{"/api/stats/admin", adminToken, http.StatusOK},
		{"/api/stats/superadmin", adminToken, http.StatusForbidden},
		{"/api/stats/superadmin", superToken, http.StatusOK},
	}
	for _, tc := range cases {
		resp := env.do(t, http.MethodGet, tc.path, tc.token, "")
		assert.Equal(t, tc.want, resp.Code, tc.path)
	}
}

func TestOperationalEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = env.do(t, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = env.do(t, http.MethodGet, "/api/unknown", "", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
