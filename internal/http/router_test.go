package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/rowcount-backend/internal/data/aggregates"
	"github.com/yungbote/rowcount-backend/internal/data/repos"
	"github.com/yungbote/rowcount-backend/internal/data/repos/testutil"
	httpH "github.com/yungbote/rowcount-backend/internal/http/handlers"
	httpMW "github.com/yungbote/rowcount-backend/internal/http/middleware"
	"github.com/yungbote/rowcount-backend/internal/observability"
	"github.com/yungbote/rowcount-backend/internal/services"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	log := testutil.Logger(t)
	metrics := observability.NewMetrics()
	base := aggregates.BaseDeps{DB: db, Log: log, Runner: aggregates.NewGormTxRunner(db), Hooks: aggregates.NewObservabilityHooks(metrics)}

	settingsSvc := services.NewSettingsService(services.SettingsServiceDeps{
		Log:     log,
		Gateway: aggregates.NewSettingsGateway(aggregates.SettingsGatewayDeps{Base: base, Settings: repos.NewSettingsRepo(db, log)}),
	})
	counterRepo, historyRepo := repos.NewCounterRepo(db, log), repos.NewHistoryRepo(db, log)
	counters := services.NewCounterService(services.CounterServiceDeps{
		Log:     log,
		Metrics: metrics,
		NewGateway: func() aggregates.CounterGateway {
			return aggregates.NewCounterGateway(aggregates.CounterGatewayDeps{Base: base, Counters: counterRepo, History: historyRepo})
		},
		Settings:  settingsSvc,
		RowNotes:  repos.NewRowNoteRepo(db, log),
		Sessions:  repos.NewWorkSessionRepo(db, log),
		Reminders: repos.NewReminderRepo(db, log),
	})
	quick := services.NewQuickCounterService(services.QuickCounterServiceDeps{Log: log, Metrics: metrics, Counters: counters})

	return NewRouter(RouterConfig{
		Log:                 log,
		Metrics:             metrics,
		CounterHandler:      httpH.NewCounterHandler(counters),
		QuickCounterHandler: httpH.NewQuickCounterHandler(quick),
		SettingsHandler:     httpH.NewSettingsHandler(settingsSvc),
		HealthHandler:       httpH.NewHealthHandler(db),
	})
}

func do(t *testing.T, r *gin.Engine, method, path string, body any, owner string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if owner != "" {
		req.Header.Set(httpMW.HeaderOwnerUserID, owner)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	out := map[string]any{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") && rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec, out
}

func counterField(t *testing.T, body map[string]any, key string) any {
	t.Helper()
	ctr, ok := body["counter"].(map[string]any)
	if !ok {
		t.Fatalf("response has no counter: %v", body)
	}
	return ctr[key]
}

func TestRouterHealth(t *testing.T) {
	r := newTestRouter(t)
	for _, path := range []string{"/healthcheck", "/readyz"} {
		rec, _ := do(t, r, http.MethodGet, path, nil, "")
		if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
			t.Fatalf("%s: %d %q", path, rec.Code, rec.Body.String())
		}
	}
	rec, _ := do(t, r, http.MethodGet, "/metrics", nil, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "rowcount_") {
		t.Fatalf("/metrics: %d", rec.Code)
	}
}

func TestRouterCounterFlow(t *testing.T) {
	r := newTestRouter(t)
	owner := uuid.NewString()

	rec, body := do(t, r, http.MethodPost, "/api/counters", map[string]any{"name": "Mittens"}, owner)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	id := counterField(t, body, "id").(string)
	if counterField(t, body, "owner_user_id") != owner {
		t.Fatalf("owner header not applied")
	}

	for i := 0; i < 2; i++ {
		rec, _ = do(t, r, http.MethodPost, "/api/counters/"+id+"/increment", nil, owner)
		if rec.Code != http.StatusOK {
			t.Fatalf("increment: %d", rec.Code)
		}
	}
	_, body = do(t, r, http.MethodPost, "/api/counters/"+id+"/undo", nil, owner)
	if counterField(t, body, "current_count").(float64) != 1 || body["changed"] != true {
		t.Fatalf("undo: %v", body)
	}

	rec, body = do(t, r, http.MethodPut, "/api/counters/"+id+"/count", map[string]any{"value": 9}, owner)
	if rec.Code != http.StatusOK || counterField(t, body, "current_count").(float64) != 9 {
		t.Fatalf("restore: %d %v", rec.Code, body)
	}

	rec, body = do(t, r, http.MethodDelete, "/api/counters/"+id, nil, owner)
	if rec.Code != http.StatusOK || body["deleted"] != false {
		t.Fatalf("unconfirmed delete: %d %v", rec.Code, body)
	}
	if p, _ := body["prompt"].(map[string]any); p["title"] != "Delete Counter?" || p["placeholder"] != "DELETE" {
		t.Fatalf("delete prompt: %v", body)
	}
	rec, _ = do(t, r, http.MethodDelete, "/api/counters/"+id+"?confirm=nope", nil, owner)
	if rec.Code != http.StatusOK {
		t.Fatalf("wrong confirmation: %d", rec.Code)
	}
	rec, _ = do(t, r, http.MethodDelete, "/api/counters/"+id+"?confirm=delete", nil, owner)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	_, body = do(t, r, http.MethodGet, "/api/counters?archived=true", nil, owner)
	list, _ := body["counters"].([]any)
	if len(list) != 1 {
		t.Fatalf("archived list: %v", body)
	}
	_, body = do(t, r, http.MethodGet, "/api/counters", nil, owner)
	if list, _ := body["counters"].([]any); len(list) != 0 {
		t.Fatalf("active list should be empty: %v", body)
	}
}

func TestRouterCountersAreScopedToOwner(t *testing.T) {
	r := newTestRouter(t)
	owner, other := uuid.NewString(), uuid.NewString()

	_, body := do(t, r, http.MethodPost, "/api/counters", map[string]any{"name": "Cowl"}, owner)
	id := counterField(t, body, "id").(string)
	do(t, r, http.MethodPost, "/api/counters/"+id+"/notes", map[string]any{"row_number": 3}, owner)

	cases := []struct {
		method, path, owner string
	}{
		{http.MethodGet, "/api/counters/" + id, ""},
		{http.MethodGet, "/api/counters/" + id, other},
		{http.MethodPost, "/api/counters/" + id + "/increment", other},
		{http.MethodPost, "/api/counters/" + id + "/increment", ""},
		{http.MethodPost, "/api/counters/" + id + "/archive", other},
		{http.MethodGet, "/api/counters/" + id + "/notes", other},
		{http.MethodGet, "/api/counters/" + id + "/reminders", ""},
		{http.MethodDelete, "/api/counters/" + id + "?confirm=DELETE", ""},
		{http.MethodDelete, "/api/counters/" + id + "?confirm=DELETE", other},
	}
	for _, tc := range cases {
		rec, _ := do(t, r, tc.method, tc.path, nil, tc.owner)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s %s as %q: got %d, want 404", tc.method, tc.path, tc.owner, rec.Code)
		}
	}

	rec, body := do(t, r, http.MethodGet, "/api/counters/"+id, nil, owner)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner get: %d", rec.Code)
	}
	if counterField(t, body, "current_count").(float64) != 0 || counterField(t, body, "is_archived") != false {
		t.Fatalf("foreign calls changed the counter: %v", body)
	}
	_, body = do(t, r, http.MethodGet, "/api/counters?archived=true", nil, owner)
	if list, _ := body["counters"].([]any); len(list) != 0 {
		t.Fatalf("archived list should be empty: %v", body)
	}
}

func TestRouterErrors(t *testing.T) {
	r := newTestRouter(t)

	rec, _ := do(t, r, http.MethodGet, "/api/counters", nil, "not-a-uuid")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad owner header: %d", rec.Code)
	}
	rec, _ = do(t, r, http.MethodGet, "/api/counters/nope", nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: %d", rec.Code)
	}
	rec, body := do(t, r, http.MethodPost, "/api/counters/"+uuid.NewString()+"/increment", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing counter: %d", rec.Code)
	}
	if e, _ := body["error"].(map[string]any); e["code"] != "not_found" {
		t.Fatalf("error code: %v", body)
	}
	rec, _ = do(t, r, http.MethodPost, "/api/counters", map[string]any{"name": " "}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank name: %d", rec.Code)
	}
}

func TestRouterQuickCounterSave(t *testing.T) {
	r := newTestRouter(t)
	sid := uuid.NewString()

	for i := 0; i < 3; i++ {
		do(t, r, http.MethodPost, "/api/quick-counters/"+sid+"/increment", nil, "")
	}

	rec, body := do(t, r, http.MethodPost, "/api/quick-counters/"+sid+"/save", map[string]any{"name": strings.Repeat("y", 201)}, "")
	if rec.Code != http.StatusOK || body["saved"] != false {
		t.Fatalf("too long: %d %v", rec.Code, body)
	}
	dialogs := body["dialogs"].(map[string]any)
	alerts := dialogs["alerts"].([]any)
	if len(alerts) != 1 || alerts[0].(map[string]any)["title"] != "Name Too Long" {
		t.Fatalf("alerts: %v", alerts)
	}

	rec, body = do(t, r, http.MethodPost, "/api/quick-counters/"+sid+"/save", map[string]any{"name": "Gloves"}, "")
	if rec.Code != http.StatusCreated || body["saved"] != true {
		t.Fatalf("save: %d %v", rec.Code, body)
	}
	if counterField(t, body, "current_count").(float64) != 3 {
		t.Fatalf("saved count: %v", body)
	}
	toasts := body["dialogs"].(map[string]any)["toasts"].([]any)
	if len(toasts) != 1 || toasts[0] != "Counter 'Gloves' saved!" {
		t.Fatalf("toasts: %v", toasts)
	}
	if q := body["quick_counter"].(map[string]any); q["count"].(float64) != 0 {
		t.Fatalf("session not reset: %v", q)
	}
}

func TestRouterSettings(t *testing.T) {
	r := newTestRouter(t)

	rec, body := do(t, r, http.MethodGet, "/api/settings", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: %d", rec.Code)
	}
	if st, _ := body["settings"].(map[string]any); st["id"] != "00000000-0000-0000-0000-000000000001" {
		t.Fatalf("settings singleton: %v", body)
	}
	rec, _ = do(t, r, http.MethodPut, "/api/settings/theme", map[string]any{"theme": "Purple"}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad theme: %d", rec.Code)
	}
	rec, _ = do(t, r, http.MethodPost, "/api/settings/sync/record", nil, "")
	if rec.Code != http.StatusPreconditionFailed {
		t.Fatalf("record sync while disabled: %d", rec.Code)
	}
}
