package edge

import (
	"strings"

	"github.com/serroba/linkgate/internal/links"
)

// LegacyPrefix is the path prefix of links distributed before slugs moved to the root.
const LegacyPrefix = "/s/"

// DefaultSystemRoutes are path prefixes that never resolve as short links.
var DefaultSystemRoutes = []string{
	"/api",
	"/docs",
	"/openapi",
	"/schemas",
	"/health",
	"/dashboard",
	"/admin",
	"/auth",
	"/login",
	"/register",
	"/sign-in",
	"/sign-up",
	"/link-status",
	"/password-prompt",
	"/static",
	"/assets",
	"/_next",
	"/favicon.ico",
	"/robots.txt",
	"/sitemap.xml",
}

// RouteKind classifies an inbound path.
type RouteKind int

const (
	// RouteIgnore passes the request through untouched.
	RouteIgnore RouteKind = iota
	// RouteSystem is a reserved application route.
	RouteSystem
	// RouteLegacy is an old /s/<slug> link.
	RouteLegacy
	// RouteCandidate is a plausible short-link slug.
	RouteCandidate
)

func (k RouteKind) String() string {
	switch k {
	case RouteSystem:
		return "system"
	case RouteLegacy:
		return "legacy"
	case RouteCandidate:
		return "candidate"
	case RouteIgnore:
		return "ignore"
	default:
		return "ignore"
	}
}

// Route is the result of classifying a path. Slug is set for RouteLegacy and RouteCandidate.
type Route struct {
	Kind RouteKind
	Slug links.Slug
}

// Classifier decides how the gateway treats a path. It holds no mutable state.
type Classifier struct {
	systemRoutes []string
}

// NewClassifier creates a classifier over the given reserved route prefixes.
func NewClassifier(systemRoutes []string) *Classifier {
	routes := make([]string, 0, len(systemRoutes))

	for _, r := range systemRoutes {
		if r = strings.TrimSpace(r); r != "" {
			routes = append(routes, r)
		}
	}

	return &Classifier{systemRoutes: routes}
}

// Classify maps a request path to a Route.
func (c *Classifier) Classify(path string) Route {
	if c.isSystem(path) {
		return Route{Kind: RouteSystem}
	}

	if rest, ok := strings.CutPrefix(path, LegacyPrefix); ok {
		slug := rest
		if idx := strings.IndexAny(rest, "/?"); idx != -1 {
			slug = rest[:idx]
		}

		if slug == "" {
			return Route{Kind: RouteIgnore}
		}

		return Route{Kind: RouteLegacy, Slug: links.Slug(slug)}
	}

	candidate := links.Slug(strings.TrimPrefix(path, "/"))
	if candidate == "" || strings.Contains(string(candidate), "/") {
		return Route{Kind: RouteIgnore}
	}

	if !candidate.Valid() {
		return Route{Kind: RouteIgnore}
	}

	return Route{Kind: RouteCandidate, Slug: candidate}
}

func (c *Classifier) isSystem(path string) bool {
	if path == "/" {
		return true
	}

	for _, prefix := range c.systemRoutes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}
