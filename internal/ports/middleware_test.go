package ports

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Amund211/timba/internal/ratelimiting"
	"github.com/stretchr/testify/require"
)

type mockedRateLimiter struct {
	t           *testing.T
	allow       bool
	expectedKey string
}

func (m *mockedRateLimiter) Consume(key string) bool {
	m.t.Helper()
	require.Equal(m.t, m.expectedKey, key)
	return m.allow
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Parallel()

	newRequest := func(t *testing.T) *http.Request {
		t.Helper()
		req := httptest.NewRequest("POST", "http://example.com/v1/players/player-1/tap", nil)
		req.SetPathValue("playerID", "player-1")
		req.RemoteAddr = "169.254.169.126:58418"
		req.Header.Set("X-Forwarded-For", "12.12.123.123,34.111.7.239")
		return req
	}

	cases := []struct {
		name        string
		scope       rateLimitScope
		keyFunc     func(r *http.Request) string
		expectedKey string
	}{
		{
			name:        "ip",
			scope:       rateLimitScopeIP,
			keyFunc:     ratelimiting.IPKeyFunc,
			expectedKey: "ip: 12.12.123.123",
		},
		{
			name:        "player",
			scope:       rateLimitScopePlayer,
			keyFunc:     ratelimiting.PlayerIDKeyFunc,
			expectedKey: "player-id: player-1",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			t.Run("allowed", func(t *testing.T) {
				t.Parallel()

				handlerCalled := false
				limiter := ratelimiting.NewRequestBasedRateLimiter(
					&mockedRateLimiter{t: t, allow: true, expectedKey: c.expectedKey},
					c.keyFunc,
				)
				handler := NewRateLimitMiddleware(c.scope, limiter, 3)(
					func(w http.ResponseWriter, r *http.Request) {
						handlerCalled = true
						w.WriteHeader(http.StatusOK)
					},
				)

				w := httptest.NewRecorder()
				handler(w, newRequest(t))

				require.True(t, handlerCalled)
				require.Equal(t, http.StatusOK, w.Code)
				require.Empty(t, w.Header().Get("Retry-After"))
			})

			t.Run("limited", func(t *testing.T) {
				t.Parallel()

				handlerCalled := false
				limiter := ratelimiting.NewRequestBasedRateLimiter(
					&mockedRateLimiter{t: t, allow: false, expectedKey: c.expectedKey},
					c.keyFunc,
				)
				handler := NewRateLimitMiddleware(c.scope, limiter, 3)(
					func(w http.ResponseWriter, r *http.Request) {
						handlerCalled = true
					},
				)

				w := httptest.NewRecorder()
				handler(w, newRequest(t))

				require.False(t, handlerCalled)
				require.Equal(t, http.StatusTooManyRequests, w.Code)
				require.Equal(t, "3", w.Header().Get("Retry-After"))
				require.Equal(t, "application/json", w.Header().Get("Content-Type"))
				require.JSONEq(t, `{"success":false,"cause":"rate limit exceeded"}`, w.Body.String())
			})
		})
	}
}

func TestComposeMiddlewares(t *testing.T) {
	t.Parallel()

	tracing := func(name string, trace *[]string) func(http.HandlerFunc) http.HandlerFunc {
		return func(next http.HandlerFunc) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				*trace = append(*trace, name+" pre")
				next(w, r)
				*trace = append(*trace, name+" post")
			}
		}
	}

	t.Run("no middleware", func(t *testing.T) {
		t.Parallel()

		trace := []string{}
		handler := ComposeMiddlewares()(func(w http.ResponseWriter, r *http.Request) {
			trace = append(trace, "handler")
		})

		handler(httptest.NewRecorder(), &http.Request{})

		require.Equal(t, []string{"handler"}, trace)
	})

	t.Run("single middleware", func(t *testing.T) {
		t.Parallel()

		trace := []string{}
		handler := ComposeMiddlewares(tracing("a", &trace))(func(w http.ResponseWriter, r *http.Request) {
			trace = append(trace, "handler")
		})

		handler(httptest.NewRecorder(), &http.Request{})

		require.Equal(t, []string{"a pre", "handler", "a post"}, trace)
	})

	t.Run("first middleware runs outermost", func(t *testing.T) {
		t.Parallel()

		trace := []string{}
		middleware := ComposeMiddlewares(
			tracing("metrics", &trace),
			tracing("logger", &trace),
			tracing("ratelimit", &trace),
		)
		handler := middleware(func(w http.ResponseWriter, r *http.Request) {
			trace = append(trace, "handler")
		})

		handler(httptest.NewRecorder(), &http.Request{})

		require.Equal(t, []string{
			"metrics pre",
			"logger pre",
			"ratelimit pre",
			"handler",
			"ratelimit post",
			"logger post",
			"metrics post",
		}, trace)
	})
}
