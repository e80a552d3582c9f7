package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/megamenu/internal/config"
	"github.com/MrSnakeDoc/megamenu/internal/domain"
	"github.com/MrSnakeDoc/megamenu/internal/httpserver/deps"
	"github.com/MrSnakeDoc/megamenu/internal/index"
	"github.com/MrSnakeDoc/megamenu/internal/logger"
	"github.com/MrSnakeDoc/megamenu/internal/sources"
	redisstore "github.com/MrSnakeDoc/megamenu/internal/store/redis"
)

func testSnapshot() sources.Snapshot {
	return sources.Snapshot{
		Records: []domain.NavRecord{
			{Title: "Programs", Level: domain.LevelTop, Expandable: true, Order: 1},
			{Title: "My Sites", Level: domain.LevelTop, Expandable: true, Order: 2},
			{Title: "Library", Level: domain.LevelTop, URL: domain.StringHref("https://library"), Order: 3},
			{Title: "J.D.", Level: domain.LevelColumn, ParentTitle: "Programs", Order: 4},
			{Title: "Apply", Level: domain.LevelLeaf, ParentTitle: "J.D.", URL: domain.ObjectHref("https://apply"), Order: 5},
			{Title: "Curriculum", Level: domain.LevelLeaf, ParentTitle: "J.D.", URL: domain.StringHref("https://curriculum"), Order: 6},
		},
		Sites: []domain.SiteEntry{
			{DisplayText: "Clinic", URL: "https://clinic"},
			{DisplayText: "Moot Court", URL: "https://moot"},
		},
		FetchedAt: time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC),
	}
}

type testEnv struct {
	handler http.Handler
	index   *index.MenuIndex
	trigger chan struct{}
	deps    deps.Deps
}

func newTestEnv(t *testing.T, mutate func(*config.Config, *deps.Deps)) *testEnv {
	t.Helper()

	cfg := &config.Config{
		CORSOrigins:        []string{"*"},
		SearchBurst:        30,
		SearchRefillPerMin: 60,
	}
	idx := index.NewMenuIndex()
	trigger := make(chan struct{}, 1)
	d := deps.Deps{
		Logger:             logger.NewNop(),
		StartTime:          time.Now(),
		Version:            "test",
		Instance:           "web-01",
		SearchBurst:        cfg.SearchBurst,
		SearchRefillPerMin: cfg.SearchRefillPerMin,
		MenuIndex:          idx,
		ReloadTrigger:      trigger,
	}
	if mutate != nil {
		mutate(cfg, &d)
	}

	return &testEnv{
		handler: NewRouter(cfg, d.Logger, d),
		index:   idx,
		trigger: trigger,
		deps:    d,
	}
}

func (e *testEnv) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "192.0.2.10:5555"
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestMenuRoute(t *testing.T) {
	env := newTestEnv(t, nil)
	env.index.Update(testSnapshot())

	rec := env.do(http.MethodGet, "/api/menu")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "2026-05-04T03:02:01Z", rec.Header().Get("X-Menu-Refreshed-At"))
	assert.Empty(t, rec.Header().Get("X-Menu-Degraded"))

	var tree []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tree))
	require.Len(t, tree, 3)

	assert.Equal(t, "Programs", tree[0]["title"])
	assert.Equal(t, "#", tree[0]["href"])
	assert.Contains(t, tree[0], "megaMenu")

	sites := tree[1]["megaMenu"].(map[string]any)["columns"].([]any)
	assert.Len(t, sites, 2)
	assert.Equal(t, "", sites[0].(map[string]any)["title"])

	assert.Equal(t, "https://library", tree[2]["href"])
	assert.NotContains(t, tree[2], "megaMenu", "plain links carry no branch")
}

func TestMenuRouteBeforeFirstRefresh(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodGet, "/api/menu")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestMenuRouteDegraded(t *testing.T) {
	env := newTestEnv(t, nil)
	snap := testSnapshot()
	snap.Sites = []domain.SiteEntry{}
	snap.SitesErr = errors.New("timeout")
	env.index.Update(snap)

	rec := env.do(http.MethodGet, "/api/menu")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("X-Menu-Degraded"))

	var tree []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tree))
	assert.Equal(t, map[string]any{"columns": []any{}}, tree[1]["megaMenu"])
}

func TestMenuRouteCORS(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config, _ *deps.Deps) {
		cfg.CORSOrigins = []string{"https://law.example.edu"}
	})

	req := httptest.NewRequest(http.MethodGet, "/api/menu", nil)
	req.Header.Set("Origin", "https://law.example.edu")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, "https://law.example.edu", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/menu", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSearchRoute(t *testing.T) {
	env := newTestEnv(t, nil)
	env.index.Update(testSnapshot())

	rec := env.do(http.MethodGet, "/api/menu/search?q=apply")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Query   string `json:"query"`
		Results []struct {
			Title  string `json:"title"`
			Href   string `json:"href"`
			Top    string `json:"top"`
			Column string `json:"column"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "apply", resp.Query)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "Apply", resp.Results[0].Title)
	assert.Equal(t, "https://apply", resp.Results[0].Href)
	assert.Equal(t, "Programs", resp.Results[0].Top)
	assert.Equal(t, "J.D.", resp.Results[0].Column)
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestSearchRouteValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/menu/search").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/menu/search?q=x&limit=0").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/menu/search?q=x&limit=abc").Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/menu/search?q=x&limit=500").Code)
}

func TestSearchRouteLimitIsClamped(t *testing.T) {
	env := newTestEnv(t, nil)

	records := []domain.NavRecord{
		{Title: "Registrar", Level: domain.LevelTop, Expandable: true},
		{Title: "Forms", Level: domain.LevelColumn, ParentTitle: "Registrar"},
	}
	for i := 0; i < 60; i++ {
		records = append(records, domain.NavRecord{
			Title:       fmt.Sprintf("Form %02d", i),
			Level:       domain.LevelLeaf,
			ParentTitle: "Forms",
			URL:         domain.StringHref(fmt.Sprintf("https://forms/%d", i)),
		})
	}
	env.index.Update(sources.Snapshot{Records: records, Sites: []domain.SiteEntry{}})

	count := func(target string) int {
		t.Helper()
		rec := env.do(http.MethodGet, target)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Results []json.RawMessage `json:"results"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return len(resp.Results)
	}

	assert.Equal(t, 10, count("/api/menu/search?q=form"))
	assert.Equal(t, 25, count("/api/menu/search?q=form&limit=25"))
	assert.Equal(t, 50, count("/api/menu/search?q=form&limit=50"))
	assert.Equal(t, 50, count("/api/menu/search?q=form&limit=500"))
}

func TestSearchRouteRateLimited(t *testing.T) {
	env := newTestEnv(t, func(_ *config.Config, d *deps.Deps) {
		d.SearchBurst = 2
		d.SearchRefillPerMin = 1
	})

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/menu/search?q=a").Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/menu/search?q=a").Code)

	rec := env.do(http.MethodGet, "/api/menu/search?q=a")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// The menu itself is not rate limited.
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/menu").Code)
}

func TestReloadRoute(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/reload")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"triggered":true,"broadcast":false}`, rec.Body.String())
	assert.Len(t, env.trigger, 1)

	rec = env.do(http.MethodPost, "/reload")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	assert.Equal(t, http.StatusMethodNotAllowed, env.do(http.MethodGet, "/reload").Code)
}

func TestReloadRouteBroadcasts(t *testing.T) {
	mr := miniredis.RunT(t)
	store := redisstore.NewStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = store.Close() })

	env := newTestEnv(t, func(_ *config.Config, d *deps.Deps) {
		d.Store = store
	})

	rec := env.do(http.MethodPost, "/reload")
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"triggered":true,"broadcast":true}`, rec.Body.String())
}

func TestReloadRouteGuards(t *testing.T) {
	env := newTestEnv(t, func(_ *config.Config, d *deps.Deps) {
		d.AllowedCIDRS = []string{"10.0.0.0/8"}
		d.AllowedHosts = []string{"menu.internal"}
	})

	rec := env.do(http.MethodPost, "/reload")
	assert.Equal(t, http.StatusForbidden, rec.Code, "address outside the allowed CIDRs")

	req := httptest.NewRequest(http.MethodPost, "/reload", nil)
	req.RemoteAddr = "10.1.2.3:4444"
	req.Host = "other.internal"
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code, "host not allowed")

	req = httptest.NewRequest(http.MethodPost, "/reload", nil)
	req.RemoteAddr = "10.1.2.3:4444"
	req.Host = "menu.internal:8080"
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestProbes(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = env.do(http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"ready":false}`, rec.Body.String())

	snap := testSnapshot()
	snap.NavErr = errors.New("list gone")
	env.index.Update(snap)

	rec = env.do(http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code, "degraded sources still count as ready")
	assert.JSONEq(t, `{"ready":true,"last_reload":"2026-05-04T03:02:01Z"}`, rec.Body.String())
}

func TestReadyzGuarded(t *testing.T) {
	env := newTestEnv(t, func(_ *config.Config, d *deps.Deps) {
		d.AllowedCIDRS = []string{"127.0.0.1"}
	})

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/readyz").Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/healthz").Code, "liveness is never guarded")
}

func TestInfraRoute(t *testing.T) {
	env := newTestEnv(t, nil)

	var resp struct {
		Status     string `json:"status"`
		Components map[string]struct {
			OK    bool   `json:"ok"`
			Count *int   `json:"count"`
			Mode  string `json:"mode"`
			Error string `json:"error"`
		} `json:"components"`
	}

	rec := env.do(http.MethodGet, "/infra")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "critical", resp.Status)

	snap := testSnapshot()
	snap.Sites = []domain.SiteEntry{}
	snap.SitesErr = errors.New("discovery timeout")
	env.index.Update(snap)

	rec = env.do(http.MethodGet, "/infra")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.True(t, resp.Components["navigation"].OK)
	assert.Equal(t, 6, *resp.Components["navigation"].Count)
	assert.False(t, resp.Components["sites"].OK)
	assert.Equal(t, "discovery timeout", resp.Components["sites"].Error)
	assert.Equal(t, "disabled", resp.Components["redis"].Mode)
}

func TestInfraRouteWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	store := redisstore.NewStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.SaveRefreshStatus(context.Background(), domain.RefreshStatus{Instance: "web-02", NavRecords: 6}))

	env := newTestEnv(t, func(_ *config.Config, d *deps.Deps) {
		d.Store = store
	})
	env.index.Update(testSnapshot())

	var resp struct {
		Status  string                 `json:"status"`
		Cluster []domain.RefreshStatus `json:"cluster"`
	}
	rec := env.do(http.MethodGet, "/infra")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Cluster, 1)
	assert.Equal(t, "web-02", resp.Cluster[0].Instance)
}
