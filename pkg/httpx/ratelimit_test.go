package httpx_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/hub/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestIPKeyExtractor(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})

	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")
		require.Equal(t, "203.0.113.1", httpx.IPKeyExtractor(req))
	})

	t.Run("uses X-Real-IP if X-Forwarded-For absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "203.0.113.2", httpx.IPKeyExtractor(req))
	})
}

func TestSessionKeyExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Empty(t, httpx.SessionKeyExtractor(req))

	ctx := httpx.WithPrincipal(context.Background(), httpx.Principal{Token: "secret", Name: "Alice"})
	key := httpx.SessionKeyExtractor(req.WithContext(ctx))
	require.Equal(t, "session:Alice", key)
	require.NotContains(t, key, "secret")
}

func TestCompositeKeyExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	extract := httpx.CompositeKeyExtractor(":", httpx.SessionKeyExtractor, httpx.IPKeyExtractor)
	require.Equal(t, "192.168.1.1", extract(req), "empty parts are skipped")

	ctx := httpx.WithPrincipal(req.Context(), httpx.Principal{Name: "Bob"})
	require.Equal(t, "session:Bob:192.168.1.1", extract(req.WithContext(ctx)))
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("allows requests under limit", func(t *testing.T) {
		cfg := httpx.RateLimitConfig{RequestsPerWindow: 5, Window: time.Second, Burst: 5}
		h := httpx.RateLimitMiddleware(cfg, httpx.IPKeyExtractor)(okHandler())

		for i := range 5 {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.168.1.1:12345"
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, "request %d should succeed", i+1)
		}
	})

	t.Run("blocks requests over limit", func(t *testing.T) {
		cfg := httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}
		h := httpx.RateLimitMiddleware(cfg, httpx.IPKeyExtractor)(okHandler())

		for range 3 {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.168.1.1:12345"
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Contains(t, rec.Body.String(), "rate_limit_exceeded")
	})

	t.Run("tracks keys independently", func(t *testing.T) {
		cfg := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		h := httpx.RateLimitMiddleware(cfg, httpx.IPKeyExtractor)(okHandler())

		for i := range 3 {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = fmt.Sprintf("10.0.0.%d:1", i)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("passes through when no key", func(t *testing.T) {
		cfg := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		h := httpx.RateLimitMiddleware(cfg, func(*http.Request) string { return "" })(okHandler())

		for range 3 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestParseRateLimitFromEnv(t *testing.T) {
	def := httpx.RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	t.Run("defaults when unset", func(t *testing.T) {
		require.Equal(t, def, httpx.ParseRateLimitFromEnv("HUBTEST_UNSET", def))
	})

	t.Run("overrides from env", func(t *testing.T) {
		t.Setenv("RATELIMIT_HUBTEST_REQUESTS", "50")
		t.Setenv("RATELIMIT_HUBTEST_WINDOW_SEC", "10")
		t.Setenv("RATELIMIT_HUBTEST_BURST", "7")

		cfg := httpx.ParseRateLimitFromEnv("HUBTEST", def)
		require.Equal(t, 50, cfg.RequestsPerWindow)
		require.Equal(t, 10*time.Second, cfg.Window)
		require.Equal(t, 7, cfg.Burst)
	})

	t.Run("ignores invalid values", func(t *testing.T) {
		t.Setenv("RATELIMIT_HUBBAD_REQUESTS", "abc")
		t.Setenv("RATELIMIT_HUBBAD_WINDOW_SEC", "-1")
		t.Setenv("RATELIMIT_HUBBAD_BURST", "0")

		require.Equal(t, def, httpx.ParseRateLimitFromEnv("HUBBAD", def))
	})
}

func BenchmarkRateLimitMiddleware(b *testing.B) {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 1_000_000, Window: time.Second, Burst: 1_000_000}
	h := httpx.RateLimitMiddleware(cfg, httpx.IPKeyExtractor)(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	b.ResetTimer()
	for range b.N {
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
}
