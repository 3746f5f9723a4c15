package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/infrastructure/auth"
	"github.com/scholarly/backcontent/internal/infrastructure/config"
	"github.com/scholarly/backcontent/internal/infrastructure/metrics"
	"github.com/scholarly/backcontent/internal/infrastructure/storage"
	"github.com/scholarly/backcontent/internal/interfaces/http/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	var hits []string
	r := NewRouter(engine, WithAPIVersion("v2"), WithAPIMiddleware(func(c *gin.Context) {
		hits = append(hits, "api")
		c.Next()
	}))

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	group.Group("nested", "/nested").
		Use(func(c *gin.Context) {
			hits = append(hits, "nested")
			c.Next()
		}).
		DELETE("/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/test/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v2/test/nested/7", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"api", "api", "nested"}, hits)

	assert.Equal(t, "test", group.Name())
	assert.Equal(t, "/test", group.Prefix())
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "backcontent", Env: "development"},
		JWT: config.JWTConfig{
			Secret:                 "router-test-secret-router-test-secret",
			AccessTokenExpiration:  time.Hour,
			RefreshTokenExpiration: 24 * time.Hour,
			Issuer:                 "backcontent",
		},
		HTTP: config.HTTPConfig{
			MaxBodySize:      1 << 20,
			MaxUploadSize:    10 << 20,
			RateLimitEnabled: true, RateLimitRequests: 100, RateLimitWindow: time.Minute,
			AuthRateLimitEnabled: true, AuthRateLimitRequests: 5, AuthRateLimitWindow: time.Minute,
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics", Namespace: "backcontent"},
	}
}

type okPinger struct{}

func (okPinger) Ping() error { return nil }

// newTestEngine mounts handlers without services; only routes that stop in middleware are exercised
func newTestEngine(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	return newTestEngineWithObjects(t, nil)
}

func newTestEngineWithObjects(t *testing.T, objects http.Handler) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	cfg := testConfig()
	jwtSvc := auth.NewJWTService(cfg.JWT)
	h := Handlers{
		Articles: handler.NewArticleHandler(nil, nil, nil),
		Authors:  handler.NewAuthorHandler(nil),
		Galleys:  handler.NewGalleyHandler(nil),
		Imports:  handler.NewImportHandler(nil),
		Journals: handler.NewJournalHandler(nil),
		Accounts: handler.NewAccountHandler(nil, nil),
		System:   handler.NewSystemHandler("backcontent", "test", okPinger{}, nil),
	}
	engine, stop := NewEngine(Options{
		Config:  cfg,
		JWT:     jwtSvc,
		Metrics: metrics.NewRecorder(cfg.Metrics),
		Logger:  zap.NewNop(),
		Objects: objects,
	}, h)
	t.Cleanup(stop)
	return engine, jwtSvc
}

func serve(engine *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestNewEngine(t *testing.T) {
	engine, jwtSvc := newTestEngine(t)

	t.Run("probes are public", func(t *testing.T) {
		w := serve(engine, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/ready", "").Code)
	})

	t.Run("api requires a token", func(t *testing.T) {
		w := serve(engine, http.MethodGet, "/api/v1/articles", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("authors cannot use the editor api", func(t *testing.T) {
		pair, err := jwtSvc.GenerateTokenPair(auth.GenerateTokenInput{
			JournalID: uuid.New(),
			AccountID: uuid.New(),
			Email:     "author@example.org",
			Roles:     []string{"author"},
		})
		require.NoError(t, err)
		w := serve(engine, http.MethodGet, "/api/v1/articles", pair.AccessToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("metrics are scraped without a token", func(t *testing.T) {
		serve(engine, http.MethodGet, "/health", "")
		w := serve(engine, http.MethodGet, "/metrics", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "backcontent_http_requests_total")
	})

	t.Run("security headers", func(t *testing.T) {
		w := serve(engine, http.MethodGet, "/health", "")
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	})

	t.Run("editor routes are mounted", func(t *testing.T) {
		routes := map[string]bool{}
		for _, r := range engine.Routes() {
			routes[r.Method+" "+r.Path] = true
		}
		for _, want := range []string{
			"POST /api/v1/auth/login",
			"POST /api/v1/articles/:id/wizard",
			"POST /api/v1/articles/:id/publish",
			"DELETE /api/v1/articles/:id/authors/:account_id",
			"GET /api/v1/galleys/:galley_id/preview",
			"POST /api/v1/imports/jats",
			"GET /api/v1/directory",
			"PUT /api/v1/journal/identifiers",
			"GET /api/v1/activity",
		} {
			assert.True(t, routes[want], want)
		}
	})
}

func TestNewEngine_ObjectLinks(t *testing.T) {
	store := storage.NewMemoryObjectStorage("http://example.test/objects")
	ctx := context.Background()
	require.NoError(t, store.Upload(ctx, "journals/j1/galleys/a.pdf", "application/pdf", strings.NewReader("%PDF-1.7"), 8))
	engine, _ := newTestEngineWithObjects(t, store)

	link, _, err := store.GenerateDownloadURL(ctx, "journals/j1/galleys/a.pdf", time.Hour)
	require.NoError(t, err)
	u, err := url.Parse(link)
	require.NoError(t, err)

	w := serve(engine, http.MethodGet, u.RequestURI(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.7", w.Body.String())

	expired, _, err := store.GenerateDownloadURL(ctx, "journals/j1/galleys/a.pdf", -time.Minute)
	require.NoError(t, err)
	u, err = url.Parse(expired)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodGet, u.RequestURI(), "").Code)

	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/objects/missing.pdf", "").Code)
}
