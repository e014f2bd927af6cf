package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/absolute-cinema/ticketing-engine/internal/config"
)

func testCacheConfig() config.CacheConfig {
    return config.CacheConfig{
        Enabled:     true,
        Methods:     map[string]bool{"GET": true},
        KeyStrategy: "route_query",
        Prefix:      "cache",
    }
}

func keyFor(t *testing.T, cfg config.CacheConfig, target, pattern string) string {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, target, nil)
    c := e.NewContext(req, httptest.NewRecorder())
    c.SetPath(pattern)
    return cacheKeyFrom(cfg, c)
}

// Two requests matching the same route pattern but with different
// path parameters must never share a cache entry: ticket 1's detail
// served for ticket 2 would hand one buyer another buyer's QR code.
func TestCacheKeyUsesConcretePath(t *testing.T) {
    cfg := testCacheConfig()

    k1 := keyFor(t, cfg, "/v1/tickets/1", "/v1/tickets/:id")
    k2 := keyFor(t, cfg, "/v1/tickets/2", "/v1/tickets/:id")
    require.NotEqual(t, k1, k2)

    a1 := keyFor(t, cfg, "/v1/sessions/1/availability", "/v1/sessions/:id/availability")
    a2 := keyFor(t, cfg, "/v1/sessions/2/availability", "/v1/sessions/:id/availability")
    require.NotEqual(t, a1, a2)

    // Same concrete request hashes to the same key.
    assert.Equal(t, a1, keyFor(t, cfg, "/v1/sessions/1/availability", "/v1/sessions/:id/availability"))
}

func TestCacheKeyIncludesQuery(t *testing.T) {
    cfg := testCacheConfig()
    all := keyFor(t, cfg, "/v1/sessions", "/v1/sessions")
    one := keyFor(t, cfg, "/v1/sessions?movie_id=3", "/v1/sessions")
    assert.NotEqual(t, all, one)
}

// Authenticated requests are per-user and must bypass the cache
// entirely; anonymous catalog GETs remain cacheable.
func TestCacheableSkipsAuthenticatedRequests(t *testing.T) {
    cfg := testCacheConfig()

    anon := httptest.NewRequest(http.MethodGet, "/v1/movies", nil)
    assert.True(t, cacheable(cfg, anon))

    authed := httptest.NewRequest(http.MethodGet, "/v1/my-tickets", nil)
    authed.Header.Set(echo.HeaderAuthorization, "Bearer token")
    assert.False(t, cacheable(cfg, authed))

    post := httptest.NewRequest(http.MethodPost, "/v1/sessions/1/reserve", nil)
    assert.False(t, cacheable(cfg, post))
}
