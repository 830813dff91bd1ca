package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/magicstays/villa-api/internal/api/response"
	"github.com/magicstays/villa-api/internal/core/domain"
	"github.com/magicstays/villa-api/internal/core/ports"
	"github.com/magicstays/villa-api/internal/core/service"
	"github.com/magicstays/villa-api/internal/infrastructure/cache"
	"github.com/magicstays/villa-api/internal/infrastructure/db/memory"
)

type memUserRepo struct {
	users map[string]*domain.User
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *memUserRepo) Insert(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	clone := *user
	r.users[user.Username] = &clone
	return user, nil
}

// TestRouter drives the full HTTP stack: registration, login, the open
// legacy line, the guarded versioned lines and the versioned read cache.
// The router is built once because the prometheus middleware registers its
// collectors globally.
func TestRouter(t *testing.T) {
	villas := memory.NewStore(func(v *domain.Villa) ports.Filter {
		return ports.ByID("id", v.ID)
	})
	villaNumbers := memory.NewStore(func(vn *domain.VillaNumber) ports.Filter {
		return ports.ByID("number", vn.Number)
	})
	users := &memUserRepo{users: make(map[string]*domain.User)}
	authService := service.NewAuthService(users, "router-secret", time.Hour, zerolog.Nop())

	e := NewRouter(RouterConfig{
		Villas:       villas,
		VillaSeq:     villas,
		VillaNumbers: villaNumbers,
		AuthService:  authService,
		Cache:        cache.NewMemory(time.Minute),
		JWTSecret:    "router-secret",
		Versions:     DefaultVersions(),
		Logger:       zerolog.Nop(),
	})

	do := func(t *testing.T, method, target, body, token string) (*httptest.ResponseRecorder, response.Envelope) {
		t.Helper()
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, target, nil)
		} else {
			req = httptest.NewRequest(method, target, strings.NewReader(body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		var env response.Envelope
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decoding envelope from %s %s: %v (body: %s)", method, target, err, rec.Body.String())
		}
		return rec, env
	}

	login := func(t *testing.T, name, role string) string {
		t.Helper()
		body := `{"name":"` + name + `","username":"` + name + `","password":"pass-` + name + `","role":"` + role + `"}`
		if rec, _ := do(t, http.MethodPost, "/api/users/register", body, ""); rec.Code != http.StatusOK {
			t.Fatalf("registering %s: status %d: %s", name, rec.Code, rec.Body.String())
		}
		rec, env := do(t, http.MethodPost, "/api/users/login", `{"username":"`+name+`","password":"pass-`+name+`"}`, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("logging in %s: status %d: %s", name, rec.Code, rec.Body.String())
		}
		result := env.Result.(map[string]interface{})
		token, _ := result["token"].(string)
		if token == "" {
			t.Fatalf("no token for %s: %v", name, env.Result)
		}
		return token
	}

	adminToken := login(t, "admin1", "admin")
	customerToken := login(t, "cust1", "customer")

	t.Run("health", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("legacy line is open", func(t *testing.T) {
		rec, env := do(t, http.MethodPost, "/api/villas", `{"name":"Royal Villa","rate":200}`, "")
		if rec.Code != http.StatusCreated || !env.IsSuccess {
			t.Fatalf("expected open create on legacy line, got %d: %s", rec.Code, rec.Body.String())
		}

		rec, env = do(t, http.MethodGet, "/api/villas", "", "")
		if rec.Code != http.StatusOK || !env.IsSuccess {
			t.Fatalf("expected open list on legacy line, got %d", rec.Code)
		}
	})

	t.Run("v1 rejects missing token", func(t *testing.T) {
		rec, env := do(t, http.MethodGet, "/api/v1/villas", "", "")
		if rec.Code != http.StatusUnauthorized || env.IsSuccess {
			t.Fatalf("expected 401 without token, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(env.ErrorMessages) != 1 || env.ErrorMessages[0] != "missing authorization header" {
			t.Fatalf("unexpected messages: %v", env.ErrorMessages)
		}
	})

	t.Run("v1 list forbids customer", func(t *testing.T) {
		rec, env := do(t, http.MethodGet, "/api/v1/villas", "", customerToken)
		if rec.Code != http.StatusForbidden || env.IsSuccess {
			t.Fatalf("expected 403 for customer, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("v1 get allows any authenticated role", func(t *testing.T) {
		rec, env := do(t, http.MethodGet, "/api/v1/villas/1", "", customerToken)
		if rec.Code != http.StatusOK || !env.IsSuccess {
			t.Fatalf("expected customer get to pass, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("v1 list allows admin", func(t *testing.T) {
		rec, env := do(t, http.MethodGet, "/api/v1/villas", "", adminToken)
		if rec.Code != http.StatusOK || !env.IsSuccess {
			t.Fatalf("expected admin list to pass, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("v2 reads are cached", func(t *testing.T) {
		_, env := do(t, http.MethodGet, "/api/v2/villas", "", adminToken)
		before := len(env.Result.([]interface{}))

		rec, _ := do(t, http.MethodPost, "/api/villas", `{"name":"Diamond Villa","rate":300}`, "")
		if rec.Code != http.StatusCreated {
			t.Fatalf("seeding second villa failed: %d", rec.Code)
		}

		// Within the TTL the v2 line still serves the cached snapshot.
		_, env = do(t, http.MethodGet, "/api/v2/villas", "", adminToken)
		after := len(env.Result.([]interface{}))
		if after != before {
			t.Fatalf("expected cached snapshot of %d villas, got %d", before, after)
		}

		// The uncached legacy line sees the new villa immediately.
		_, env = do(t, http.MethodGet, "/api/villas", "", "")
		if live := len(env.Result.([]interface{})); live != before+1 {
			t.Fatalf("expected live list of %d villas, got %d", before+1, live)
		}
	})

	t.Run("v1 delete forbids customer", func(t *testing.T) {
		rec, env := do(t, http.MethodDelete, "/api/v1/villas/1", "", customerToken)
		if rec.Code != http.StatusForbidden || env.IsSuccess {
			t.Fatalf("expected 403 for customer delete, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("unknown route renders envelope", func(t *testing.T) {
		rec, env := do(t, http.MethodGet, "/api/unknown", "", "")
		if rec.Code != http.StatusNotFound || env.IsSuccess {
			t.Fatalf("expected enveloped 404, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}
