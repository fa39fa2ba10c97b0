package edge

import (
	"net/http"

	"github.com/serroba/linkgate/internal/links"
	"github.com/serroba/linkgate/internal/resolution"
	"go.uber.org/zap"
)

// FallbackLocation is where a visit is sent when the gateway itself fails.
const FallbackLocation = "/"

// Enricher builds the resolution request for a visit.
type Enricher interface {
	Enrich(r *http.Request, slug string) *resolution.Request
}

// Gateway intercepts inbound requests and answers short-link visits with redirects.
// Every other request is handed to the next handler.
type Gateway struct {
	classifier *Classifier
	enricher   Enricher
	resolver   resolution.Resolver
	redirects  *RedirectMap
	logger     *zap.Logger
}

// NewGateway creates a gateway.
func NewGateway(
	classifier *Classifier,
	enricher Enricher,
	resolver resolution.Resolver,
	redirects *RedirectMap,
	logger *zap.Logger,
) *Gateway {
	return &Gateway{
		classifier: classifier,
		enricher:   enricher,
		resolver:   resolver,
		redirects:  redirects,
		logger:     logger,
	}
}

// Middleware wraps next with short-link handling.
func (g *Gateway) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.handle(w, r) {
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handle reports whether the request was answered by the gateway.
// Panics raised while handling a visit end in a redirect to FallbackLocation.
func (g *Gateway) handle(w http.ResponseWriter, r *http.Request) (handled bool) {
	defer func() {
		if rec := recover(); rec != nil {
			g.logger.Error("gateway failed",
				zap.String("path", r.URL.Path),
				zap.Any("panic", rec),
				zap.Stack("stack"),
			)
			redirect(w, FallbackLocation)

			handled = true
		}
	}()

	route := g.classifier.Classify(r.URL.Path)

	switch route.Kind {
	case RouteLegacy:
		g.redirectLegacy(w, r, route.Slug)

		return true
	case RouteCandidate:
		g.resolve(w, r, route.Slug)

		return true
	case RouteSystem, RouteIgnore:
		return false
	default:
		return false
	}
}

// redirectLegacy moves /s/<slug>?q to /<slug>?q with the query copied verbatim.
func (g *Gateway) redirectLegacy(w http.ResponseWriter, r *http.Request, slug links.Slug) {
	location := "/" + string(slug)
	if r.URL.RawQuery != "" {
		location += "?" + r.URL.RawQuery
	}

	g.logger.Debug("legacy link redirected", zap.String("slug", string(slug)))

	redirect(w, location)
}

func (g *Gateway) resolve(w http.ResponseWriter, r *http.Request, slug links.Slug) {
	req := g.enricher.Enrich(r, string(slug))
	out := g.resolver.Resolve(r.Context(), req)

	g.logger.Debug("short link resolved",
		zap.String("slug", string(slug)),
		zap.Stringer("outcome", out.Kind),
	)

	redirect(w, g.redirects.Location(out, slug))
}

// redirect always answers 302 so clients re-resolve on every visit.
func redirect(w http.ResponseWriter, location string) {
	w.Header().Set("Location", location)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusFound)
}
