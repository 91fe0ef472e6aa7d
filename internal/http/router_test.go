package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medassist/llm-chat-backend/internal/config"
	"github.com/medassist/llm-chat-backend/internal/llm"
	"github.com/medassist/llm-chat-backend/internal/repo"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() config.Config {
	return config.Config{
		GinMode:     gin.TestMode,
		APIBasePath: "/api/v1",
		Auth: config.AuthConfig{
			JWTSecret: "router-test-secret",
			TokenTTL:  30 * time.Minute,
		},
		LLM: config.LLMConfig{
			RequestTimeout: 5 * time.Second,
			MaxPromptRunes: 4000,
		},
		// Generous limits so tests never trip the limiter.
		RateRPS:   1000,
		RateBurst: 1000,
		OTEL:      config.OTELConfig{ServiceName: "router-test"},
	}
}

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()

	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "router_test.db"), false)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if err := repo.Seed(context.Background(), db); err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := gin.New()
	RegisterRoutes(r, db, llm.NewGateway(5*time.Second), testConfig())
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine, username, password string) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", username, w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("login response: %s (%v)", w.Body.String(), err)
	}
	return resp.Token
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	r := newTestServer(t)

	if w := do(t, r, http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Fatalf("/health: %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/metrics", "", nil); w.Code != http.StatusOK {
		t.Fatalf("/metrics: %d", w.Code)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	r := newTestServer(t)

	w := do(t, r, http.MethodGet, "/api/v1/nope", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["code"] != "not_found" {
		t.Fatalf("fallback must use the error envelope: %s", w.Body.String())
	}
}

func TestRouter_AuthRequired(t *testing.T) {
	r := newTestServer(t)

	w := do(t, r, http.MethodGet, "/api/v1/conversations", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("every response should carry a request ID")
	}
}

func TestRouter_RegisterLoginConversationFlow(t *testing.T) {
	r := newTestServer(t)

	w := do(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice",
		"password": "secret123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}

	token := login(t, r, "alice", "secret123")

	w = do(t, r, http.MethodPost, "/api/v1/conversations", token, map[string]string{"title": "First chat"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create conversation: %d %s", w.Code, w.Body.String())
	}
	var conv struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &conv); err != nil || conv.ID == "" {
		t.Fatalf("conversation body: %s", w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/api/v1/conversations", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list conversations: %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("ETag") == "" {
		t.Fatal("conversation list should emit an ETag")
	}

	// A second identical request with the ETag short-circuits to 304.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("If-None-Match", w.Header().Get("ETag"))
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", w2.Code)
	}

	w = do(t, r, http.MethodDelete, "/api/v1/conversations/"+conv.ID, token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete conversation: %d %s", w.Code, w.Body.String())
	}
}

func TestRouter_AdminGatedByRole(t *testing.T) {
	r := newTestServer(t)

	// Seeded operator account.
	adminToken := login(t, r, repo.DefaultAdminUsername, "admin123")
	w := do(t, r, http.MethodGet, "/api/v1/admin/settings", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin settings: %d %s", w.Code, w.Body.String())
	}

	// A plain user is rejected with 403, not 401.
	if w := do(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "bob", "password": "secret123",
	}); w.Code != http.StatusCreated {
		t.Fatalf("register: %d", w.Code)
	}
	userToken := login(t, r, "bob", "secret123")
	w = do(t, r, http.MethodGet, "/api/v1/admin/settings", userToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", w.Code)
	}
}

func TestRouter_SettingsUpdateReportsFreeze(t *testing.T) {
	r := newTestServer(t)

	adminToken := login(t, r, repo.DefaultAdminUsername, "admin123")

	// An open conversation that the model change should freeze.
	userW := do(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "carol", "password": "secret123",
	})
	if userW.Code != http.StatusCreated {
		t.Fatalf("register: %d", userW.Code)
	}
	userToken := login(t, r, "carol", "secret123")
	if w := do(t, r, http.MethodPost, "/api/v1/conversations", userToken, map[string]string{}); w.Code != http.StatusCreated {
		t.Fatalf("create conversation: %d", w.Code)
	}

	w := do(t, r, http.MethodPut, "/api/v1/admin/settings", adminToken, map[string]any{
		"values": map[string]string{"llm_model_id": "some-new-model"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update settings: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		FrozenConversations int64 `json:"frozen_conversations"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.FrozenConversations != 1 {
		t.Fatalf("expected 1 frozen conversation, got %d", resp.FrozenConversations)
	}
}
