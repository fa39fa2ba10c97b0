package container_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samber/do"
	"github.com/serroba/linkgate/internal/container"
	"github.com/serroba/linkgate/internal/links"
	"github.com/serroba/linkgate/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOptions_ResolverBaseURL(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:8888", (&container.Options{Port: 8888}).ResolverBaseURL())
	assert.Equal(t, "https://resolver.internal", (&container.Options{
		Port:        8888,
		ResolverURL: "https://resolver.internal",
	}).ResolverBaseURL())
}

func TestOptions_ExtraSystemRoutes(t *testing.T) {
	assert.Empty(t, (&container.Options{}).ExtraSystemRoutes())
	assert.Equal(t,
		[]string{"/pricing", "/blog"},
		(&container.Options{SystemRoutes: " /pricing, ,/blog "}).ExtraSystemRoutes(),
	)
}

func TestOptions_TrustedProxyIPs(t *testing.T) {
	assert.Empty(t, (&container.Options{}).TrustedProxyIPs())
	assert.Equal(t,
		[]string{"10.0.0.1", "10.0.0.2"},
		(&container.Options{TrustedProxies: "10.0.0.1, 10.0.0.2,"}).TrustedProxyIPs(),
	)
}

// newInMemoryServer wires the whole server without Redis or PostgreSQL.
func newInMemoryServer(t *testing.T, configure ...func(*container.Options)) (*httptest.Server, *do.Injector) {
	t.Helper()

	srv := httptest.NewUnstartedServer(nil)

	opts := &container.Options{
		ResolverURL:       "http://" + srv.Listener.Addr().String(),
		ResolveTimeoutMs:  2000,
		GeoTimeoutMs:      100,
		CacheTTLSeconds:   300,
		RateLimit:         100,
		RateWindowSeconds: 60,
	}

	for _, fn := range configure {
		fn(opts)
	}

	injector := do.New()
	do.ProvideValue(injector, opts)
	do.ProvideValue(injector, zap.NewNop())
	container.RedisPackage(injector)
	container.PostgresPackage(injector)
	container.RepositoryPackage(injector)
	container.ClickStorePackage(injector)
	container.MessagingPackage(injector)
	container.ConsumerGroupPackage(injector)
	container.RateLimitPackage(injector)
	container.ResolverPackage(injector)
	container.EdgePackage(injector)
	container.HTTPPackage(injector)

	srv.Config.Handler = do.MustInvoke[http.Handler](injector)
	srv.Start()

	require.NoError(t, do.MustInvoke[*messaging.ConsumerGroup](injector).Start(context.Background()))

	t.Cleanup(func() {
		srv.Close()
		_ = injector.Shutdown()
	})

	return srv, injector
}

func noRedirectClient(srv *httptest.Server) *http.Client {
	client := srv.Client()
	client.CheckRedirect = func(_ *http.Request, _ []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return client
}

func TestServer_InMemory(t *testing.T) {
	srv, injector := newInMemoryServer(t)
	client := noRedirectClient(srv)
	repo := do.MustInvoke[links.Repository](injector)

	require.NoError(t, repo.Save(context.Background(), &links.Link{
		Slug:      "abc123",
		TargetURL: "https://example.com/page",
		Active:    true,
		CreatedAt: time.Now(),
	}))

	get := func(path string) *http.Response {
		t.Helper()

		resp, err := client.Get(srv.URL + path)
		require.NoError(t, err)
		_ = resp.Body.Close()

		return resp
	}

	t.Run("resolves to target", func(t *testing.T) {
		resp := get("/abc123")

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "https://example.com/page", resp.Header.Get("Location"))
	})

	t.Run("legacy path redirects to canonical path", func(t *testing.T) {
		resp := get("/s/abc123?x=1")

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/abc123?x=1", resp.Header.Get("Location"))
	})

	t.Run("unknown slug goes to status page", func(t *testing.T) {
		resp := get("/nope")

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/link-status?error=missing&slug=nope", resp.Header.Get("Location"))
	})

	t.Run("system routes reach the router", func(t *testing.T) {
		resp := get("/health")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("clicks are counted", func(t *testing.T) {
		assert.Eventually(t, func() bool {
			link, err := repo.GetBySlug(context.Background(), "abc123")

			return err == nil && link.Clicks >= 1
		}, 2*time.Second, 10*time.Millisecond)
	})
}

func TestServer_RateLimitIsPerVisitor(t *testing.T) {
	const limit = 3

	srv, injector := newInMemoryServer(t, func(o *container.Options) { o.RateLimit = limit })
	handler := do.MustInvoke[http.Handler](injector)
	client := noRedirectClient(srv)

	require.NoError(t, do.MustInvoke[links.Repository](injector).Save(context.Background(), &links.Link{
		Slug:      "abc",
		TargetURL: "https://example.com",
		Active:    true,
		CreatedAt: time.Now(),
	}))

	visit := func(remoteAddr string) string {
		t.Helper()

		req := httptest.NewRequest(http.MethodGet, "/abc", nil)
		req.RemoteAddr = remoteAddr

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusFound, w.Code)

		return w.Header().Get("Location")
	}

	resolve := func(remoteAddr, forwardedFor string) int {
		t.Helper()

		req := httptest.NewRequest(http.MethodPost, "/api/s", strings.NewReader(`{"slug":"abc"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", forwardedFor)
		req.RemoteAddr = remoteAddr

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		return w.Code
	}

	t.Run("direct visitors beyond the limit still reach the target", func(t *testing.T) {
		for i := range 2 * limit {
			addr := fmt.Sprintf("198.51.100.%d:40000", i+1)

			assert.Equal(t, "https://example.com", visit(addr), addr)
		}
	})

	t.Run("proxied visitors beyond the limit still reach the target", func(t *testing.T) {
		for i := range 2 * limit {
			req, err := http.NewRequest(http.MethodGet, srv.URL+"/abc", nil)
			require.NoError(t, err)
			req.Header.Set("X-Forwarded-For", fmt.Sprintf("192.0.2.%d", i+1))

			resp, err := client.Do(req)
			require.NoError(t, err)
			_ = resp.Body.Close()

			assert.Equal(t, "https://example.com", resp.Header.Get("Location"))
		}
	})

	t.Run("one visitor over the limit gets the system page", func(t *testing.T) {
		for range limit {
			assert.Equal(t, "https://example.com", visit("198.51.100.200:40000"))
		}

		assert.Equal(t, "/link-status?error=system&slug=abc", visit("198.51.100.200:40000"))
		assert.Equal(t, "https://example.com", visit("198.51.100.201:40000"), "others are unaffected")
	})

	t.Run("forwarded header from an outside caller is ignored", func(t *testing.T) {
		codes := make([]int, 0, 2*limit)
		for i := range 2 * limit {
			codes = append(codes, resolve("203.0.113.9:5000", fmt.Sprintf("203.0.113.%d", 100+i)))
		}

		assert.Equal(t, []int{200, 200, 200, 429, 429, 429}, codes)
	})

	t.Run("forwarded header from the edge is honoured", func(t *testing.T) {
		for i := range 2 * limit {
			assert.Equal(t, http.StatusOK, resolve("127.0.0.1:5000", fmt.Sprintf("203.0.113.%d", 150+i)))
		}
	})
}
