package edge_test

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/serroba/linkgate/internal/edge"
	"github.com/serroba/linkgate/internal/links"
	"github.com/stretchr/testify/assert"
)

const slugAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-"

func newClassifier() *edge.Classifier {
	return edge.NewClassifier(edge.DefaultSystemRoutes)
}

func TestClassifier_Classify(t *testing.T) {
	tests := []struct {
		name string
		path string
		want edge.Route
	}{
		{"root", "/", edge.Route{Kind: edge.RouteSystem}},
		{"api route", "/api/s", edge.Route{Kind: edge.RouteSystem}},
		{"dashboard subpage", "/dashboard/links/42", edge.Route{Kind: edge.RouteSystem}},
		{"static asset", "/favicon.ico", edge.Route{Kind: edge.RouteSystem}},
		{"prefix match without separator", "/admins", edge.Route{Kind: edge.RouteSystem}},
		{"status page", "/link-status", edge.Route{Kind: edge.RouteSystem}},
		{"legacy", "/s/abc123", edge.Route{Kind: edge.RouteLegacy, Slug: "abc123"}},
		{"legacy with trailing segment", "/s/abc123/extra", edge.Route{Kind: edge.RouteLegacy, Slug: "abc123"}},
		{"legacy empty slug", "/s/", edge.Route{Kind: edge.RouteIgnore}},
		{"candidate", "/abc123", edge.Route{Kind: edge.RouteCandidate, Slug: "abc123"}},
		{"candidate with dash and underscore", "/my_link-1", edge.Route{Kind: edge.RouteCandidate, Slug: "my_link-1"}},
		{"case preserved", "/AbC", edge.Route{Kind: edge.RouteCandidate, Slug: "AbC"}},
		{"nested path", "/abc/def", edge.Route{Kind: edge.RouteIgnore}},
		{"trailing slash", "/abc/", edge.Route{Kind: edge.RouteIgnore}},
		{"invalid characters", "/abc.html", edge.Route{Kind: edge.RouteIgnore}},
		{"encoded space", "/abc def", edge.Route{Kind: edge.RouteIgnore}},
		{"empty path", "", edge.Route{Kind: edge.RouteIgnore}},
	}

	c := newClassifier()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.path))
		})
	}
}

func TestClassifier_SystemRoutesAlwaysPass(t *testing.T) {
	c := newClassifier()

	for _, prefix := range edge.DefaultSystemRoutes {
		for _, suffix := range []string{"", "/x", "abc", "/a/b?c=d"} {
			path := prefix + suffix

			assert.Equal(t, edge.RouteSystem, c.Classify(path).Kind, path)
		}
	}
}

func TestClassifier_ValidSlugsAreCandidates(t *testing.T) {
	c := edge.NewClassifier(nil)
	rng := rand.New(rand.NewPCG(1, 2))

	for range 500 {
		n := 1 + rng.IntN(24)

		var b strings.Builder
		for range n {
			b.WriteByte(slugAlphabet[rng.IntN(len(slugAlphabet))])
		}

		slug := b.String()

		assert.Equal(t, edge.Route{Kind: edge.RouteCandidate, Slug: links.Slug(slug)}, c.Classify("/"+slug), slug)
	}
}

func TestClassifier_PathsWithSlashAreIgnored(t *testing.T) {
	c := edge.NewClassifier(nil)

	for _, path := range []string{"//", "/a/b", "/abc/", "/x//y", "/-/_"} {
		assert.Equal(t, edge.RouteIgnore, c.Classify(path).Kind, path)
	}
}

func TestClassifier_Idempotent(t *testing.T) {
	c := newClassifier()

	for _, path := range []string{"/", "/abc", "/s/abc", "/a/b", "/api/s", "/%%%"} {
		assert.Equal(t, c.Classify(path), c.Classify(path), path)
	}
}

func TestNewClassifier_SkipsBlankRoutes(t *testing.T) {
	c := edge.NewClassifier([]string{"", "  ", "/admin"})

	assert.Equal(t, edge.RouteCandidate, c.Classify("/abc").Kind)
	assert.Equal(t, edge.RouteSystem, c.Classify("/admin").Kind)
}

func TestRouteKind_String(t *testing.T) {
	assert.Equal(t, "candidate", edge.RouteCandidate.String())
	assert.Equal(t, "legacy", edge.RouteLegacy.String())
	assert.Equal(t, "system", edge.RouteSystem.String())
	assert.Equal(t, "ignore", edge.RouteIgnore.String())
}
