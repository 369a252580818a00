package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geo-reconciler/app/responses"
	"github.com/geo-reconciler/app/services"
	"github.com/geo-reconciler/internal/directory"
)

const testTreePayload = `[
  {"id": "113", "name": "Россия", "areas": [
    {"id": "1", "name": "Москва", "areas": []},
    {"id": "2", "name": "Санкт-Петербург", "areas": []},
    {"id": "3", "name": "Екатеринбург", "areas": []}
  ]}
]`

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testTreePayload))
	}))
	t.Cleanup(srv.Close)

	loader := directory.NewLoader(directory.LoaderConfig{BaseURL: srv.URL}, nil)
	resolveService, err := services.NewResolveService(loader, 100, nil)
	require.NoError(t, err)
	require.NoError(t, resolveService.ReloadDirectory(context.Background()))

	sessionService := services.NewSessionService(nil, nil)
	cacheService := services.NewMemoryCacheService(time.Hour)
	t.Cleanup(func() { cacheService.Close() })

	cityController := NewCityController(resolveService, sessionService, cacheService, zap.NewNop())
	router := gin.New()
	router.POST("/v1/cities/resolve", cityController.ResolveCity)
	return router
}

func postResolve(t *testing.T, router *gin.Engine, body string) (int, responses.ResolveCityResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/cities/resolve", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp responses.ResolveCityResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec.Code, resp
}

func TestResolveCityEndpoint(t *testing.T) {
	router := testRouter(t)

	code, resp := postResolve(t, router, `{"city": "Москва"}`)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.Match)
	assert.Equal(t, "Москва", resp.Match.Name)
	assert.Equal(t, 85.0, resp.Threshold)
	assert.False(t, resp.CacheHit)
}

func TestResolveCityRejectsBadRequests(t *testing.T) {
	router := testRouter(t)

	code, _ := postResolve(t, router, `{}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = postResolve(t, router, `{"city": "   "}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = postResolve(t, router, `{"city": "Москва", "threshold": 150}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestResolveCityCacheNeverChangesOutcomes(t *testing.T) {
	router := testRouter(t)

	// Seed the cache at threshold 85.
	code, resp := postResolve(t, router, `{"city": "Мосва", "threshold": 85, "use_cache": true}`)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.Match)
	assert.False(t, resp.CacheHit)

	// Same inputs replay the cached resolution unchanged.
	code, resp = postResolve(t, router, `{"city": "Мосва", "threshold": 85, "use_cache": true}`)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.Match)
	assert.True(t, resp.CacheHit)
	assert.Equal(t, 85.0, resp.Threshold)

	// A different threshold must miss the cache and resolve fresh: at 99
	// the typo clears no candidate, so the match is gone.
	code, resp = postResolve(t, router, `{"city": "Мосва", "threshold": 99, "use_cache": true}`)
	require.Equal(t, http.StatusOK, code)
	assert.False(t, resp.CacheHit)
	assert.Equal(t, 99.0, resp.Threshold)
	assert.Nil(t, resp.Match)
}
