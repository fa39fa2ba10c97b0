package enrich

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// LoopbackIP is sent to the geolocation service when no client IP was found.
const LoopbackIP = "::1"

// IPHeaders lists the proxy headers inspected for the client IP, in priority order.
var IPHeaders = []string{
	"X-Forwarded-For",
	"X-Real-IP",
	"CF-Connecting-IP",
	"X-Client-IP",
	"X-Cluster-Client-IP",
}

// IPResolver extracts the client IP of a request. An empty string means no
// valid IP was found.
type IPResolver interface {
	ClientIP(r *http.Request) string
}

// HeaderResolver reads the client IP from well-known proxy headers.
type HeaderResolver struct {
	headers []string
}

// NewHeaderResolver creates a resolver over IPHeaders.
func NewHeaderResolver() *HeaderResolver {
	return &HeaderResolver{headers: IPHeaders}
}

// ClientIP returns the first syntactically valid IP among the headers.
// For X-Forwarded-For only the first comma-separated entry is considered.
func (h *HeaderResolver) ClientIP(r *http.Request) string {
	for _, name := range h.headers {
		value := r.Header.Get(name)
		if value == "" {
			continue
		}

		if idx := strings.Index(value, ","); idx != -1 {
			value = value[:idx]
		}

		if ip, ok := validIP(value); ok {
			return ip
		}
	}

	return ""
}

// PlatformResolver trusts a header set by the hosting platform and falls back
// to another resolver when it is absent or invalid.
type PlatformResolver struct {
	header   string
	fallback IPResolver
}

// NewPlatformResolver creates a resolver for the platform header.
func NewPlatformResolver(header string, fallback IPResolver) *PlatformResolver {
	return &PlatformResolver{header: header, fallback: fallback}
}

func (p *PlatformResolver) ClientIP(r *http.Request) string {
	if ip, ok := validIP(r.Header.Get(p.header)); ok {
		return ip
	}

	return p.fallback.ClientIP(r)
}

// PeerResolver takes the client IP from the connection peer, for deployments
// where visitors connect directly. Requests without a usable peer address fall
// back to another resolver.
type PeerResolver struct {
	fallback IPResolver
}

// NewPeerResolver creates a resolver over the connection peer.
func NewPeerResolver(fallback IPResolver) *PeerResolver {
	return &PeerResolver{fallback: fallback}
}

func (p *PeerResolver) ClientIP(r *http.Request) string {
	if ip := PeerIP(r); ip != "" {
		return ip
	}

	return p.fallback.ClientIP(r)
}

// NewIPResolver selects the resolver for the deployment. A platform header
// takes precedence over the connection peer; with neither configured only the
// header chain is consulted.
func NewIPResolver(platformHeader string, usePeer bool) IPResolver {
	headers := NewHeaderResolver()

	switch {
	case platformHeader != "":
		return NewPlatformResolver(platformHeader, headers)
	case usePeer:
		return NewPeerResolver(headers)
	default:
		return headers
	}
}

// PeerIP returns the IP of the connection peer, or "" when RemoteAddr holds none.
func PeerIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	ip, _ := validIP(host)

	return ip
}

func validIP(value string) (string, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(value))
	if err != nil {
		return "", false
	}

	return addr.String(), true
}
