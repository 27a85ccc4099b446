package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Xcceleran-do/mindplex-api/internal/logging"
	"github.com/Xcceleran-do/mindplex-api/internal/server/auth"
	"github.com/Xcceleran-do/mindplex-api/internal/server/config"
	"github.com/Xcceleran-do/mindplex-api/internal/server/repositories/repomanager"
	"github.com/Xcceleran-do/mindplex-api/internal/server/services"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.LoadDefaults()

	issuer, err := auth.NewTokenIssuer([]byte(cfg.SecretKey), cfg.TokenIssuer, cfg.TokenAudience, cfg.AccessTokenTTL)
	if err != nil {
		t.Fatalf("creating token issuer: %v", err)
	}

	store := repomanager.NewInMemoryRepositoryManager()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	sessions := services.NewSessionService(store, issuer, logger, cfg)
	users := services.NewUserService(store, sessions, logger, cfg)

	return NewRouter(NewHandler(users, sessions, logger), issuer)
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, header http.Header) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, vv := range header {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	resp := map[string]any{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response %q: %v", w.Body.String(), err)
		}
	}
	return w, resp
}

// registerAndActivate drives an account through signup so the interesting
// endpoints can be tested against a live, activated user.
func registerAndActivate(t *testing.T, r *gin.Engine) {
	t.Helper()

	w, resp := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{
		"username": "jane",
		"email":    "jane@example.com",
		"password": "hunter2hunter2",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: status %d, body %v", w.Code, resp)
	}

	token, _ := resp["activation_token"].(string)
	if token == "" {
		t.Fatalf("register returned no activation token: %v", resp)
	}

	w, resp = doJSON(t, r, http.MethodPost, "/auth/activate", gin.H{"token": token}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("activate: status %d, body %v", w.Code, resp)
	}
}

func login(t *testing.T, r *gin.Engine) (access, refresh string) {
	t.Helper()
	w, resp := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"email":    "jane@example.com",
		"password": "hunter2hunter2",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d, body %v", w.Code, resp)
	}
	access, _ = resp["access_token"].(string)
	refresh, _ = resp["refresh_token"].(string)
	if access == "" || refresh == "" {
		t.Fatalf("login returned an incomplete pair: %v", resp)
	}
	return access, refresh
}

func TestRegisterValidation(t *testing.T) {
	r := newTestRouter(t)

	cases := []gin.H{
		{},
		{"username": "jane", "email": "not-an-email", "password": "hunter2hunter2"},
		{"username": "jane", "email": "jane@example.com", "password": "short"},
		{"username": "jo", "email": "jane@example.com", "password": "hunter2hunter2"},
	}
	for i, body := range cases {
		if w, _ := doJSON(t, r, http.MethodPost, "/auth/register", body, nil); w.Code != http.StatusBadRequest {
			t.Fatalf("case %d: expected 400, got %d", i, w.Code)
		}
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := newTestRouter(t)
	registerAndActivate(t, r)

	w, _ := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{
		"username": "jane2",
		"email":    "jane@example.com",
		"password": "hunter2hunter2",
	}, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", w.Code)
	}
}

func TestActivateRejectsBadTokens(t *testing.T) {
	r := newTestRouter(t)

	w, _ := doJSON(t, r, http.MethodPost, "/auth/activate", gin.H{"token": "garbage"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bogus activation token, got %d", w.Code)
	}
}

func TestLoginLifecycle(t *testing.T) {
	r := newTestRouter(t)

	// Login before activation is refused without leaking whether the
	// password matched.
	w, resp := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{
		"username": "jane",
		"email":    "jane@example.com",
		"password": "hunter2hunter2",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: status %d", w.Code)
	}
	token, _ := resp["activation_token"].(string)

	w, _ = doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"email":    "jane@example.com",
		"password": "hunter2hunter2",
	}, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 before activation, got %d", w.Code)
	}

	if w, _ = doJSON(t, r, http.MethodPost, "/auth/activate", gin.H{"token": token}, nil); w.Code != http.StatusOK {
		t.Fatalf("activate: status %d", w.Code)
	}

	login(t, r)

	w, _ = doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"email":    "jane@example.com",
		"password": "wrong-password",
	}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a wrong password, got %d", w.Code)
	}
}

func TestRefreshRotatesAndDetectsReuse(t *testing.T) {
	r := newTestRouter(t)
	registerAndActivate(t, r)
	_, refresh := login(t, r)

	w, resp := doJSON(t, r, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": refresh}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("refresh: status %d, body %v", w.Code, resp)
	}
	next, _ := resp["refresh_token"].(string)
	if next == "" || next == refresh {
		t.Fatalf("refresh did not rotate the token")
	}

	// Replaying the consumed token kills the whole session.
	if w, _ = doJSON(t, r, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": refresh}, nil); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 on reuse, got %d", w.Code)
	}
	if w, _ = doJSON(t, r, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": next}, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for the collateral successor, got %d", w.Code)
	}
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	r := newTestRouter(t)

	unknown, _ := auth.GenerateOpaqueToken()
	if w, _ := doJSON(t, r, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": unknown}, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for an unknown token, got %d", w.Code)
	}
}

func TestLogout(t *testing.T) {
	r := newTestRouter(t)
	registerAndActivate(t, r)
	_, refresh := login(t, r)

	w, _ := doJSON(t, r, http.MethodPost, "/auth/logout", gin.H{"refresh_token": refresh}, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("logout: status %d", w.Code)
	}
	// Idempotent.
	if w, _ = doJSON(t, r, http.MethodPost, "/auth/logout", gin.H{"refresh_token": refresh}, nil); w.Code != http.StatusNoContent {
		t.Fatalf("repeated logout: status %d", w.Code)
	}
	if w, _ = doJSON(t, r, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": refresh}, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", w.Code)
	}
}

func TestMe(t *testing.T) {
	r := newTestRouter(t)
	registerAndActivate(t, r)
	access, _ := login(t, r)

	header := http.Header{"Authorization": {fmt.Sprintf("Bearer %s", access)}}
	w, resp := doJSON(t, r, http.MethodGet, "/auth/me", nil, header)
	if w.Code != http.StatusOK {
		t.Fatalf("me: status %d, body %v", w.Code, resp)
	}
	if resp["email"] != "jane@example.com" || resp["role"] != "user" {
		t.Fatalf("unexpected identity: %v", resp)
	}

	if w, _ = doJSON(t, r, http.MethodGet, "/auth/me", nil, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", w.Code)
	}
	bad := http.Header{"Authorization": {"Bearer not-a-jwt"}}
	if w, _ = doJSON(t, r, http.MethodGet, "/auth/me", nil, bad); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a bogus token, got %d", w.Code)
	}
}
