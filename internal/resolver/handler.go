package resolver

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/linkgate/internal/resolution"
)

// Handler exposes the resolver service over HTTP.
type Handler struct {
	service resolution.Resolver
}

// NewHandler creates a new resolver handler.
func NewHandler(service resolution.Resolver) *Handler {
	return &Handler{service: service}
}

// ResolveInput is the request for the resolve endpoint.
type ResolveInput struct {
	Body resolution.Request
}

// ResolveOutput carries either the target URL or a result code as a JSON string.
type ResolveOutput struct {
	Body string `example:"https://example.com/page"`
}

// Resolve decides where a visit to a short link should go.
func (h *Handler) Resolve(ctx context.Context, input *ResolveInput) (*ResolveOutput, error) {
	out := h.service.Resolve(ctx, &input.Body)

	return &ResolveOutput{Body: out.Body()}, nil
}

// RegisterRoutes registers the resolver routes. Middlewares apply to the resolve operation only.
func RegisterRoutes(api huma.API, h *Handler, middlewares ...func(huma.Context, func(huma.Context))) {
	huma.Register(api, huma.Operation{
		OperationID: "resolve-link",
		Method:      http.MethodPost,
		Path:        resolution.EndpointPath,
		Summary:     "Resolve a short link visit",
		Description: "Returns the target URL, or one of the result codes " +
			"Missing[0000], Expired[0001], Disabled[0002], Error[0003], " +
			"PasswordRequired[0004], IncorrectPassword[0005].",
		Tags:        []string{"Resolver"},
		Middlewares: middlewares,
	}, h.Resolve)
}
