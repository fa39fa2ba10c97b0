package resolver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/serroba/linkgate/internal/links"
	"github.com/serroba/linkgate/internal/resolution"
	"github.com/serroba/linkgate/internal/resolver"
	"github.com/serroba/linkgate/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeBody(t *testing.T, body []byte) string {
	t.Helper()

	var s string
	require.NoError(t, json.Unmarshal(body, &s))

	return s
}

func newTestAPI(t *testing.T, middlewares ...func(huma.Context, func(huma.Context))) humatest.TestAPI {
	t.Helper()

	repo := store.NewMemoryStore()
	seed(t, repo, &links.Link{Slug: "abc123", TargetURL: "https://example.com/page?a=1&b=2", Active: true})
	seed(t, repo, &links.Link{Slug: "off", TargetURL: "https://example.com"})

	svc := resolver.NewService(repo, (&recordingPublisher{}).publish, sequentialIDs(), zap.NewNop())

	_, api := humatest.New(t)
	resolver.RegisterRoutes(api, resolver.NewHandler(svc), middlewares...)

	return api
}

func TestHandler_Resolve(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name string
		body map[string]any
		want string
	}{
		{"target url", map[string]any{"slug": "abc123"}, "https://example.com/page?a=1&b=2"},
		{"missing", map[string]any{"slug": "nope"}, resolution.CodeMissing},
		{"disabled", map[string]any{"slug": "off", "country": "US", "isBot": true}, resolution.CodeDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := api.Post(resolution.EndpointPath, tt.body)

			require.Equal(t, http.StatusOK, resp.Code)
			assert.Equal(t, tt.want, decodeBody(t, resp.Body.Bytes()))
		})
	}
}

func TestHandler_RejectsEmptySlug(t *testing.T) {
	api := newTestAPI(t)

	resp := api.Post(resolution.EndpointPath, map[string]any{"slug": ""})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestHandler_AppliesMiddlewares(t *testing.T) {
	reject := func(ctx huma.Context, _ func(huma.Context)) {
		ctx.SetStatus(http.StatusTooManyRequests)
	}

	api := newTestAPI(t, reject)

	resp := api.Post(resolution.EndpointPath, map[string]any{"slug": "abc123"})

	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
}

// The edge client and the resolver endpoint agree on the wire format.
func TestHandler_RoundTripWithClient(t *testing.T) {
	repo := store.NewMemoryStore()
	seed(t, repo, &links.Link{Slug: "abc123", TargetURL: "https://example.com", Active: true})

	svc := resolver.NewService(repo, nil, sequentialIDs(), zap.NewNop())
	handler := resolver.NewHandler(svc)

	out, err := handler.Resolve(context.Background(), &resolver.ResolveInput{
		Body: resolution.Request{Slug: "abc123"},
	})

	require.NoError(t, err)
	assert.Equal(t, resolution.Target("https://example.com"), resolution.ParseBody(out.Body))
}
