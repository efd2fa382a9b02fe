package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/pokecard-lookup/internal/config"
	"github.com/codyseavey/pokecard-lookup/internal/models"
	"github.com/codyseavey/pokecard-lookup/internal/services"
	"github.com/codyseavey/pokecard-lookup/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticSearcher struct {
	cards []models.Card
}

func (s staticSearcher) Search(ctx context.Context, req services.SearchRequest) ([]models.Card, error) {
	if strings.TrimSpace(req.Term) == "" {
		return nil, services.ErrEmptyQuery
	}
	return s.cards, nil
}

func newTestRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	searcher := staticSearcher{cards: []models.Card{{ID: "base1-58", Name: "Pikachu", Language: models.LanguageEnglish}}}
	return SetupRouter(cfg, searcher, session.NewStore(10, time.Hour, nil), nil)
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	w := serve(newTestRouter(t, nil), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRouter_SearchRoute(t *testing.T) {
	router := newTestRouter(t, nil)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/pokemon?q=Pikachu", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"base1-58"`)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/pokemon", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_Metrics(t *testing.T) {
	router := newTestRouter(t, nil)
	serve(router, httptest.NewRequest(http.MethodGet, "/api/pokemon?q=Pikachu", nil))

	w := serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pokecard_http_requests_total")
	assert.Contains(t, w.Body.String(), `path="/api/pokemon"`)
}

func TestRouter_CollectionRoutesRegistered(t *testing.T) {
	router := newTestRouter(t, nil)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/collection", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Collection-Session"))

	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/collection/export", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Qty,Name,Number,Set,Rarity,Language\n", w.Body.String())
}

func TestRouter_NotFound(t *testing.T) {
	w := serve(newTestRouter(t, nil), httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())
}

func TestRouter_CORS(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.CORSAllowedOrigins = []string{"https://cards.example.com"}
	router := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodOptions, "/api/pokemon?q=Pikachu", nil)
	req.Header.Set("Origin", "https://cards.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := serve(router, req)

	assert.Equal(t, "https://cards.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Collection-Session")
}

func TestRouter_CORSDefaultsWhenEmpty(t *testing.T) {
	cc := corsConfig(nil)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cc.AllowOrigins)
	assert.False(t, cc.AllowCredentials)
}

func TestRouter_ServesFrontend(t *testing.T) {
	dist := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dist, "index.html"), []byte("<html>app</html>"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dist, "assets"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dist, "assets", "app.js"), []byte("console.log(1)"), 0644))

	cfg := config.DefaultConfig()
	cfg.FrontendDistPath = dist
	router := newTestRouter(t, cfg)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "app")

	w = serve(router, httptest.NewRequest(http.MethodGet, "/collection", nil))
	assert.Equal(t, http.StatusOK, w.Code, "unknown paths fall back to the SPA")
	assert.Contains(t, w.Body.String(), "<html>")

	w = serve(router, httptest.NewRequest(http.MethodGet, "/assets/app.js", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
