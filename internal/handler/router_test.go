package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/makkenzo/license-gate/internal/config"
	"github.com/makkenzo/license-gate/internal/domain/apikey"
	"github.com/makkenzo/license-gate/internal/domain/license"
	"github.com/makkenzo/license-gate/internal/domain/licenselog"
	"github.com/makkenzo/license-gate/internal/domain/user"
	"github.com/makkenzo/license-gate/internal/handler/dto"
	"github.com/makkenzo/license-gate/internal/ratelimit"
	"github.com/makkenzo/license-gate/internal/service"
	"github.com/makkenzo/license-gate/internal/storage/memstorage"
	"github.com/makkenzo/license-gate/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testServer struct {
	router   *gin.Engine
	licenses *memstorage.LicenseRepository
	logs     *memstorage.LicenseLogRepository
	users    *memstorage.UserRepository
	apiKeys  *memstorage.APIKeyRepository
	auth     *service.AuthService
}

func newTestServer(t *testing.T, rateLimit int, health map[string]Pinger) *testServer {
	t.Helper()
	logger := zap.NewNop()

	ts := &testServer{
		licenses: memstorage.NewLicenseRepository(),
		logs:     memstorage.NewLicenseLogRepository(),
		users:    memstorage.NewUserRepository(),
		apiKeys:  memstorage.NewAPIKeyRepository(),
	}

	auth, err := service.NewAuthService(ts.users, &config.JWTConfig{Secret: "test-secret", Issuer: "test", TokenTTL: time.Hour}, logger)
	require.NoError(t, err)
	ts.auth = auth

	governor := ratelimit.NewGovernor(ratelimit.NewMemoryStore(), logger, ratelimit.WithDefaults(rateLimit, time.Minute))

	ts.router = NewRouter(RouterDeps{
		CORS:           config.CORSConfig{AllowOrigins: []string{"http://localhost:3000"}},
		LicenseService: service.NewLicenseService(ts.licenses, ts.logs, logger),
		AuthService:    auth,
		APIKeyService:  service.NewAPIKeyService(ts.apiKeys, logger),
		UserService:    service.NewUserService(ts.users, logger),
		APIKeyRepo:     ts.apiKeys,
		Governor:       governor,
		HealthChecks:   health,
		Logger:         logger,
	})
	return ts
}

func (ts *testServer) seedLicense(t *testing.T, status license.LicenseStatus, expiresAt time.Time, ips ...string) *license.License {
	t.Helper()
	lic := &license.License{
		Key:        uuid.NewString(),
		Status:     status,
		ExpiresAt:  expiresAt,
		AllowedIPs: ips,
	}
	id, err := ts.licenses.Create(context.Background(), lic)
	require.NoError(t, err)
	lic.ID = id
	return lic
}

func (ts *testServer) tokenFor(t *testing.T, role user.Role) string {
	t.Helper()
	email := string(role) + "-" + uuid.NewString()[:8] + "@example.com"
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = ts.users.Create(context.Background(), &user.User{Email: email, PasswordHash: string(hash), Role: role})
	require.NoError(t, err)

	w := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: email, Password: "secret"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(role), resp.Role)
	return resp.AccessToken
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.0.2.10:5555"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeVerdict(t *testing.T, w *httptest.ResponseRecorder) license.Verdict {
	t.Helper()
	var v license.Verdict
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestCheckLicense_MissingKey(t *testing.T) {
	ts := newTestServer(t, 10, nil)

	w := ts.do(t, http.MethodGet, "/api/check-license", "", nil, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, license.VerdictKeyRequired, decodeVerdict(t, w))
	assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
}

func TestCheckLicense_VerdictsAndAudit(t *testing.T) {
	ts := newTestServer(t, 100, nil)
	lic := ts.seedLicense(t, license.StatusActive, time.Now().Add(time.Hour), "10.0.0.1")

	w := ts.do(t, http.MethodGet, "/api/check-license?key="+lic.Key, "", nil, map[string]string{
		"X-Forwarded-For": "10.0.0.1, 172.16.0.1",
		"User-Agent":      "agent/1.0",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, license.Verdict{Status: license.VerdictValid, Message: "License is valid"}, decodeVerdict(t, w))

	w = ts.do(t, http.MethodGet, "/api/check-license?key="+lic.Key, "", nil, map[string]string{
		"X-Real-IP": "10.0.0.2",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, license.VerdictIPBlocked, decodeVerdict(t, w).Status)

	w = ts.do(t, http.MethodGet, "/api/check-license?key=does-not-exist", "", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, license.VerdictNotFound, decodeVerdict(t, w))

	entries, err := ts.logs.ListByLicense(context.Background(), lic.ID, licenselog.MaxPageSize)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, licenselog.ResultIPBlocked, entries[0].Result)
	assert.Equal(t, "10.0.0.2", entries[0].IP)
	assert.Equal(t, licenselog.ResultValid, entries[1].Result)
	assert.Equal(t, "10.0.0.1", entries[1].IP)
	assert.Equal(t, "agent/1.0", entries[1].UserAgent)
}

func TestCheckLicense_KeyIsMatchedVerbatim(t *testing.T) {
	ts := newTestServer(t, 10, nil)
	lic := ts.seedLicense(t, license.StatusActive, time.Now().Add(time.Hour), "*")

	w := ts.do(t, http.MethodGet, "/api/check-license?key=%20"+lic.Key+"%20", "", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, license.VerdictNotFound, decodeVerdict(t, w))

	w = ts.do(t, http.MethodGet, "/api/check-license?key=", "", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, ts.logs.Len())
}

func TestCheckLicense_RateLimited(t *testing.T) {
	ts := newTestServer(t, 2, nil)
	lic := ts.seedLicense(t, license.StatusActive, time.Now().Add(time.Hour), "*")
	path := "/api/check-license?key=" + lic.Key
	client := map[string]string{"X-Forwarded-For": "203.0.113.7"}

	w := ts.do(t, http.MethodGet, path, "", nil, client)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
	reset, err := strconv.ParseInt(w.Header().Get("X-RateLimit-Reset"), 10, 64)
	require.NoError(t, err)
	assert.Greater(t, reset, time.Now().Unix())

	w = ts.do(t, http.MethodGet, path, "", nil, client)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = ts.do(t, http.MethodGet, path, "", nil, client)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.True(t, retryAfter >= 1 && retryAfter <= 60, "retry after %d", retryAfter)

	var body dto.RateLimitedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, license.VerdictRateLimited, body.Status)
	assert.EqualValues(t, retryAfter, body.RetryAfter)

	// A different client has its own window.
	w = ts.do(t, http.MethodGet, path, "", nil, map[string]string{"X-Forwarded-For": "203.0.113.8"})
	assert.Equal(t, http.StatusOK, w.Code)

	// Rejected requests never reach the verifier.
	assert.Equal(t, 3, ts.logs.Len())
}

func TestCheckLicenseSimple_RequiresAPIKey(t *testing.T) {
	ts := newTestServer(t, 1, nil)
	lic := ts.seedLicense(t, license.StatusBlocked, time.Now().Add(time.Hour))

	w := ts.do(t, http.MethodGet, "/api/check-license-simple?key="+lic.Key, "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/api/check-license-simple?key="+lic.Key, "", nil, map[string]string{"X-API-Key": "lg_bogus12_" + "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	fullKey, prefix, hash, err := util.GenerateAPIKey()
	require.NoError(t, err)
	_, err = ts.apiKeys.Create(context.Background(), &apikey.APIKey{KeyHash: hash, Prefix: prefix, IsEnabled: true})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		w = ts.do(t, http.MethodGet, "/api/check-license-simple?key="+lic.Key, "", nil, map[string]string{"X-API-Key": fullKey})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, license.VerdictBlocked, decodeVerdict(t, w).Status)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	ts := newTestServer(t, 10, nil)

	w := ts.do(t, http.MethodGet, "/api/v1/licenses", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/licenses", "not-a-jwt", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := newTestServer(t, 10, nil)
	_ = ts.tokenFor(t, user.RoleAdmin)

	w := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: "nobody@example.com", Password: "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLicenseLifecycle_RoleChecks(t *testing.T) {
	ts := newTestServer(t, 10, nil)
	adminToken := ts.tokenFor(t, user.RoleAdmin)
	modToken := ts.tokenFor(t, user.RoleModerator)
	userToken := ts.tokenFor(t, user.RoleUser)

	createBody := map[string]any{
		"name":        "Acme",
		"expires_at":  time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
		"allowed_ips": []string{"10.1.1.1"},
	}

	w := ts.do(t, http.MethodPost, "/api/v1/licenses", userToken, createBody, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/licenses", modToken, createBody, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created dto.LicenseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, license.StatusActive, created.Status)
	assert.Equal(t, []string{"10.1.1.1"}, created.AllowedIPs)
	require.NotNil(t, created.CreatedBy)
	_, err := uuid.Parse(created.Key)
	assert.NoError(t, err)

	licPath := "/api/v1/licenses/" + created.ID.String()

	w = ts.do(t, http.MethodGet, licPath, userToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodGet, licPath, modToken, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPatch, licPath, modToken, map[string]any{"status": "BLOCKED"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated dto.LicenseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, license.StatusBlocked, updated.Status)
	assert.Equal(t, created.Key, updated.Key)

	w = ts.do(t, http.MethodPatch, licPath, modToken, map[string]any{"status": "DELETED"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodDelete, licPath, modToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodDelete, licPath, adminToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, licPath, adminToken, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/api/check-license?key="+created.Key, "", nil, map[string]string{"X-Forwarded-For": "10.1.1.1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, license.VerdictNotFound, decodeVerdict(t, w))

	w = ts.do(t, http.MethodGet, "/api/v1/licenses", adminToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page dto.PaginatedLicenseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Zero(t, page.TotalCount)
	assert.Empty(t, page.Licenses)
}

func TestCreateLicense_ValidationErrors(t *testing.T) {
	ts := newTestServer(t, 10, nil)
	token := ts.tokenFor(t, user.RoleAdmin)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing expiry", map[string]any{"name": "x"}},
		{"past expiry", map[string]any{"expires_at": time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)}},
		{"bad ip", map[string]any{
			"expires_at":  time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
			"allowed_ips": []string{"not-an-ip"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/v1/licenses", token, tt.body, nil)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			var errResp dto.APIErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
			assert.Equal(t, dto.CodeValidation, errResp.Code)
		})
	}
}

func TestGetLicense_InvalidID(t *testing.T) {
	ts := newTestServer(t, 10, nil)
	token := ts.tokenFor(t, user.RoleModerator)

	w := ts.do(t, http.MethodGet, "/api/v1/licenses/not-a-uuid", token, nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/licenses/"+uuid.NewString(), token, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListLicenseLogs_NewestFirst(t *testing.T) {
	ts := newTestServer(t, 100, nil)
	token := ts.tokenFor(t, user.RoleModerator)
	lic := ts.seedLicense(t, license.StatusActive, time.Now().Add(time.Hour), "*")

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		w := ts.do(t, http.MethodGet, "/api/check-license?key="+lic.Key, "", nil, map[string]string{"X-Forwarded-For": ip})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := ts.do(t, http.MethodGet, "/api/v1/licenses/"+lic.ID.String()+"/logs?limit=2", token, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var entries []dto.LicenseLogResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "10.0.0.3", entries[0].IP)
	assert.Equal(t, "10.0.0.2", entries[1].IP)
	assert.Equal(t, licenselog.ResultValid, entries[0].Result)
}

func TestDashboardSummary(t *testing.T) {
	ts := newTestServer(t, 100, nil)
	token := ts.tokenFor(t, user.RoleModerator)
	lic := ts.seedLicense(t, license.StatusActive, time.Now().Add(time.Hour), "*")
	ts.seedLicense(t, license.StatusBlocked, time.Now().Add(time.Hour), "*")

	w := ts.do(t, http.MethodGet, "/api/check-license?key="+lic.Key, "", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/dashboard/summary", token, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var summary dto.DashboardSummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.EqualValues(t, 2, summary.TotalLicenses)
	assert.EqualValues(t, 1, summary.TotalChecks)
}

func TestReadRoutes_RejectUserRole(t *testing.T) {
	ts := newTestServer(t, 10, nil)
	userToken := ts.tokenFor(t, user.RoleUser)
	modToken := ts.tokenFor(t, user.RoleModerator)
	lic := ts.seedLicense(t, license.StatusActive, time.Now().Add(time.Hour), "*")

	w := ts.do(t, http.MethodGet, "/api/check-license?key="+lic.Key, "", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	paths := []string{
		"/api/v1/licenses",
		"/api/v1/licenses/" + lic.ID.String(),
		"/api/v1/licenses/" + lic.ID.String() + "/logs",
		"/api/v1/dashboard/summary",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			w := ts.do(t, http.MethodGet, path, userToken, nil, nil)
			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.NotContains(t, w.Body.String(), "192.0.2.10")

			w = ts.do(t, http.MethodGet, path, modToken, nil, nil)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestAPIKeyRoutes_AdminOnly(t *testing.T) {
	ts := newTestServer(t, 10, nil)
	adminToken := ts.tokenFor(t, user.RoleAdmin)
	modToken := ts.tokenFor(t, user.RoleModerator)

	w := ts.do(t, http.MethodPost, "/api/v1/apikeys", modToken, dto.CreateAPIKeyRequest{Description: "ui"}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/apikeys", adminToken, dto.CreateAPIKeyRequest{Description: "ui"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created dto.CreateAPIKeyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.FullKey)

	w = ts.do(t, http.MethodGet, "/api/v1/apikeys", adminToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var keys []dto.APIKeyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &keys))
	require.Len(t, keys, 1)
	assert.Equal(t, created.Prefix, keys[0].Prefix)

	w = ts.do(t, http.MethodDelete, "/api/v1/apikeys/"+created.ID.String(), adminToken, nil, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/api/check-license-simple?key=x", "", nil, map[string]string{"X-API-Key": created.FullKey})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUserManagement(t *testing.T) {
	ts := newTestServer(t, 10, nil)
	adminToken := ts.tokenFor(t, user.RoleAdmin)

	newUser := dto.CreateUserRequest{Name: "Mod", Email: "mod@example.com", Password: "correct-horse"}

	w := ts.do(t, http.MethodPost, "/api/v1/users", ts.tokenFor(t, user.RoleModerator), newUser, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/users", adminToken, newUser, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created dto.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, user.RoleModerator, created.Role)
	assert.NotNil(t, created.CreatedBy)
	assert.NotContains(t, w.Body.String(), "password")

	w = ts.do(t, http.MethodPost, "/api/v1/users", adminToken, newUser, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/users", adminToken, dto.CreateUserRequest{
		Name: "U", Email: "u@example.com", Password: "correct-horse", Role: user.RoleUser,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: newUser.Email, Password: newUser.Password}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var login dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	w = ts.do(t, http.MethodGet, "/api/v1/licenses", login.AccessToken, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/users", adminToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []dto.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))

	var adminID uuid.UUID
	for _, u := range listed {
		if u.Role == user.RoleAdmin {
			adminID = u.ID
		}
	}
	require.NotEqual(t, uuid.Nil, adminID)

	w = ts.do(t, http.MethodDelete, "/api/v1/users/"+adminID.String(), adminToken, nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/v1/users/"+created.ID.String(), adminToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/v1/users/"+created.ID.String(), adminToken, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: newUser.Email, Password: newUser.Password}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealth(t *testing.T) {
	healthy := newTestServer(t, 10, map[string]Pinger{
		"postgres": func(context.Context) error { return nil },
	})
	w := healthy.do(t, http.MethodGet, "/healthz", "", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	broken := newTestServer(t, 10, map[string]Pinger{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})
	w = broken.do(t, http.MethodGet, "/healthz", "", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body["status"])
}
