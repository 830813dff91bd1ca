package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/magicstays/villa-api/internal/api/response"
	"github.com/magicstays/villa-api/internal/core/domain"
	"github.com/magicstays/villa-api/internal/core/ports"
	"github.com/magicstays/villa-api/internal/infrastructure/db/memory"
)

func newVillaStore() *memory.Store[domain.Villa] {
	return memory.NewStore(func(v *domain.Villa) ports.Filter {
		return ports.ByID("id", v.ID)
	})
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return req
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decoding envelope: %v (body: %s)", err, rec.Body.String())
	}
	return env
}

func seedVilla(t *testing.T, store *memory.Store[domain.Villa], v domain.Villa) {
	t.Helper()
	ctx := context.Background()
	if err := store.Create(ctx, &v); err != nil {
		t.Fatalf("seeding villa %d: %v", v.ID, err)
	}
	if err := store.Save(ctx); err != nil {
		t.Fatalf("saving seed: %v", err)
	}
}

func TestVillaHandler_List(t *testing.T) {
	store := newVillaStore()
	seedVilla(t, store, domain.Villa{ID: 1, Name: "Royal Villa"})
	seedVilla(t, store, domain.Villa{ID: 2, Name: "Diamond Villa"})
	h := NewVillaHandler(store, store, zerolog.Nop())

	e := newTestEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodGet, "/api/villas", ""), rec)

	if err := h.List(c); err != nil {
		t.Fatalf("list: %v", err)
	}
	env := decodeEnvelope(t, rec)
	if rec.Code != http.StatusOK || env.StatusCode != http.StatusOK || !env.IsSuccess {
		t.Fatalf("unexpected envelope: code=%d %+v", rec.Code, env)
	}
	villas, ok := env.Result.([]interface{})
	if !ok || len(villas) != 2 {
		t.Fatalf("expected 2 villas in result, got %v", env.Result)
	}
}

func TestVillaHandler_Get(t *testing.T) {
	store := newVillaStore()
	seedVilla(t, store, domain.Villa{ID: 7, Name: "Pool Villa"})
	h := NewVillaHandler(store, store, zerolog.Nop())
	e := newTestEcho()

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodGet, "/api/villas/7", ""), rec)
	c.SetParamNames("id")
	c.SetParamValues("7")

	if err := h.Get(c); err != nil {
		t.Fatalf("get: %v", err)
	}
	env := decodeEnvelope(t, rec)
	if !env.IsSuccess || env.StatusCode != http.StatusOK {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	got, ok := env.Result.(map[string]interface{})
	if !ok || got["name"] != "Pool Villa" {
		t.Fatalf("unexpected result: %v", env.Result)
	}
}

func TestVillaHandler_Get_NotFound(t *testing.T) {
	store := newVillaStore()
	h := NewVillaHandler(store, store, zerolog.Nop())
	e := newTestEcho()

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodGet, "/api/villas/42", ""), rec)
	c.SetParamNames("id")
	c.SetParamValues("42")

	if err := h.Get(c); err != nil {
		t.Fatalf("get: %v", err)
	}
	env := decodeEnvelope(t, rec)
	if rec.Code != http.StatusNotFound || env.IsSuccess {
		t.Fatalf("expected 404 failure, got code=%d %+v", rec.Code, env)
	}
	if len(env.ErrorMessages) != 0 {
		t.Fatalf("not-found must carry no error messages, got %v", env.ErrorMessages)
	}
}

// panicRepo fails the test if any method is reached. It backs the guarantee
// that malformed ids are rejected before storage is touched.
type panicRepo struct {
	t *testing.T
}

func (r panicRepo) GetAll(context.Context) ([]domain.Villa, error) {
	r.t.Fatal("storage accessed for invalid id")
	return nil, nil
}

func (r panicRepo) Get(context.Context, ports.Filter, bool) (*domain.Villa, error) {
	r.t.Fatal("storage accessed for invalid id")
	return nil, nil
}

func (r panicRepo) Create(context.Context, *domain.Villa) error {
	r.t.Fatal("storage accessed for invalid id")
	return nil
}

func (r panicRepo) Update(context.Context, *domain.Villa) error {
	r.t.Fatal("storage accessed for invalid id")
	return nil
}

func (r panicRepo) Remove(context.Context, *domain.Villa) error {
	r.t.Fatal("storage accessed for invalid id")
	return nil
}

func (r panicRepo) Save(context.Context) error {
	r.t.Fatal("storage accessed for invalid id")
	return nil
}

func (r panicRepo) NextID(context.Context) (int, error) {
	r.t.Fatal("storage accessed for invalid id")
	return 0, nil
}

func TestVillaHandler_Get_InvalidID(t *testing.T) {
	repo := panicRepo{t: t}
	h := NewVillaHandler(repo, repo, zerolog.Nop())
	e := newTestEcho()

	for _, raw := range []string{"0", "-3", "abc"} {
		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodGet, "/api/villas/"+raw, ""), rec)
		c.SetParamNames("id")
		c.SetParamValues(raw)

		if err := h.Get(c); err != nil {
			t.Fatalf("get(%q): %v", raw, err)
		}
		env := decodeEnvelope(t, rec)
		if rec.Code != http.StatusBadRequest || env.IsSuccess {
			t.Fatalf("id %q: expected 400 failure, got code=%d %+v", raw, rec.Code, env)
		}
	}
}

func TestVillaHandler_Create(t *testing.T) {
	store := newVillaStore()
	h := NewVillaHandler(store, store, zerolog.Nop())
	e := newTestEcho()

	body := `{"name":"Royal Villa","details":"sea view","rate":200,"sqft":550,"occupancy":4}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/villas", body), rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	env := decodeEnvelope(t, rec)
	if rec.Code != http.StatusCreated || env.StatusCode != http.StatusCreated || !env.IsSuccess {
		t.Fatalf("unexpected envelope: code=%d %+v", rec.Code, env)
	}
	created, ok := env.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected result: %v", env.Result)
	}
	if created["id"] != float64(1) {
		t.Fatalf("expected allocated id 1, got %v", created["id"])
	}

	// Persisted past the request.
	if _, err := store.Get(context.Background(), ports.ByID("id", 1), false); err != nil {
		t.Fatalf("created villa not committed: %v", err)
	}
}

func TestVillaHandler_Create_MissingName(t *testing.T) {
	store := newVillaStore()
	h := NewVillaHandler(store, store, zerolog.Nop())
	e := newTestEcho()

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/villas", `{"rate":100}`), rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	env := decodeEnvelope(t, rec)
	if rec.Code != http.StatusBadRequest || env.IsSuccess {
		t.Fatalf("expected validation failure, got code=%d %+v", rec.Code, env)
	}
	if len(env.ErrorMessages) == 0 || !strings.Contains(env.ErrorMessages[0], "name is required") {
		t.Fatalf("expected name-required message, got %v", env.ErrorMessages)
	}
}

func TestVillaHandler_Create_DuplicateName(t *testing.T) {
	store := newVillaStore()
	seedVilla(t, store, domain.Villa{ID: 1, Name: "Royal Villa"})
	h := NewVillaHandler(store, store, zerolog.Nop())
	e := newTestEcho()

	// Casing differs: the uniqueness rule is case-insensitive.
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/villas", `{"name":"ROYAL VILLA"}`), rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	env := decodeEnvelope(t, rec)
	if rec.Code != http.StatusBadRequest || env.IsSuccess {
		t.Fatalf("expected duplicate failure, got code=%d %+v", rec.Code, env)
	}
	detail, ok := env.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("expected named-key detail in result, got %v", env.Result)
	}
	if _, found := detail["duplicate_name"]; !found {
		t.Fatalf("expected duplicate_name key, got %v", detail)
	}

	// The rejected create must not be persisted.
	all, _ := store.GetAll(context.Background())
	if len(all) != 1 {
		t.Fatalf("expected 1 villa after rejected duplicate, got %d", len(all))
	}
}

func TestVillaHandler_Update(t *testing.T) {
	store := newVillaStore()
	seedVilla(t, store, domain.Villa{ID: 3, Name: "Old Name", Rate: 100})
	h := NewVillaHandler(store, store, zerolog.Nop())
	e := newTestEcho()

	body := `{"id":3,"name":"New Name","rate":150,"sqft":300,"occupancy":2}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, "/api/villas/3", body), rec)
	c.SetParamNames("id")
	c.SetParamValues("3")

	if err := h.Update(c); err != nil {
		t.Fatalf("update: %v", err)
	}
	env := decodeEnvelope(t, rec)
	if rec.Code != http.StatusOK || env.StatusCode != http.StatusNoContent || !env.IsSuccess {
		t.Fatalf("expected 200/204 envelope, got code=%d %+v", rec.Code, env)
	}

	got, err := store.Get(context.Background(), ports.ByID("id", 3), false)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Name != "New Name" || got.Rate != 150 {
		t.Fatalf("update not applied: %+v", got)
	}
}

func TestVillaHandler_Update_IDMismatch(t *testing.T) {
	store := newVillaStore()
	seedVilla(t, store, domain.Villa{ID: 3, Name: "Old Name"})
	h := NewVillaHandler(store, store, zerolog.Nop())
	e := newTestEcho()

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, "/api/villas/3", `{"id":4,"name":"New Name"}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("3")

	if err := h.Update(c); err != nil {
		t.Fatalf("update: %v", err)
	}
	env := decodeEnvelope(t, rec)
	if rec.Code != http.StatusBadRequest || env.IsSuccess {
		t.Fatalf("expected 400 on id mismatch, got code=%d %+v", rec.Code, env)
	}
}

func TestVillaHandler_Patch_PreservesUnmentionedFields(t *testing.T) {
	store := newVillaStore()
	seedVilla(t, store, domain.Villa{ID: 5, Name: "Garden Villa", Details: "quiet", Rate: 80, Sqft: 200, Occupancy: 2})
	h := NewVillaHandler(store, store, zerolog.Nop())
	e := newTestEcho()

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPatch, "/api/villas/5", `{"rate":95}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("5")

	if err := h.Patch(c); err != nil {
		t.Fatalf("patch: %v", err)
	}
	env := decodeEnvelope(t, rec)
	if rec.Code != http.StatusOK || env.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 200/204 envelope, got code=%d %+v", rec.Code, env)
	}

	got, err := store.Get(context.Background(), ports.ByID("id", 5), false)
	if err != nil {
		t.Fatalf("get after patch: %v", err)
	}
	if got.Rate != 95 {
		t.Fatalf("patched field not applied: %+v", got)
	}
	if got.Name != "Garden Villa" || got.Details != "quiet" || got.Sqft != 200 || got.Occupancy != 2 {
		t.Fatalf("unmentioned fields changed: %+v", got)
	}
}

func TestVillaHandler_Delete(t *testing.T) {
	store := newVillaStore()
	seedVilla(t, store, domain.Villa{ID: 9, Name: "Doomed Villa"})
	h := NewVillaHandler(store, store, zerolog.Nop())
	e := newTestEcho()

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodDelete, "/api/villas/9", ""), rec)
	c.SetParamNames("id")
	c.SetParamValues("9")

	if err := h.Delete(c); err != nil {
		t.Fatalf("delete: %v", err)
	}
	env := decodeEnvelope(t, rec)
	if rec.Code != http.StatusOK || env.StatusCode != http.StatusNoContent || !env.IsSuccess {
		t.Fatalf("expected 200/204 envelope, got code=%d %+v", rec.Code, env)
	}

	if _, err := store.Get(context.Background(), ports.ByID("id", 9), false); err == nil {
		t.Fatalf("villa still present after delete")
	}
}

func TestVillaHandler_Delete_NotFound(t *testing.T) {
	store := newVillaStore()
	h := NewVillaHandler(store, store, zerolog.Nop())
	e := newTestEcho()

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodDelete, "/api/villas/9", ""), rec)
	c.SetParamNames("id")
	c.SetParamValues("9")

	if err := h.Delete(c); err != nil {
		t.Fatalf("delete: %v", err)
	}
	env := decodeEnvelope(t, rec)
	if rec.Code != http.StatusNotFound || env.IsSuccess {
		t.Fatalf("expected 404 failure, got code=%d %+v", rec.Code, env)
	}
}
