package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/linkgate/internal/enrich"
	"github.com/serroba/linkgate/internal/ratelimit"
	"go.uber.org/zap"
)

// TrustedPeers lists the peers allowed to name the client through forwarding
// headers, typically the edge calling the resolver. Loopback peers are always
// trusted.
type TrustedPeers struct {
	addrs map[netip.Addr]struct{}
}

// NewTrustedPeers creates the list from IP literals. Invalid entries are skipped.
func NewTrustedPeers(addrs []string) *TrustedPeers {
	t := &TrustedPeers{addrs: make(map[netip.Addr]struct{}, len(addrs))}

	for _, a := range addrs {
		if addr, err := netip.ParseAddr(strings.TrimSpace(a)); err == nil {
			t.addrs[addr.Unmap()] = struct{}{}
		}
	}

	return t
}

// Trusts reports whether host may forward client IPs.
func (t *TrustedPeers) Trusts(host string) bool {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}

	addr = addr.Unmap()
	if addr.IsLoopback() {
		return true
	}

	_, ok := t.addrs[addr]

	return ok
}

// RateLimiter returns a Huma middleware that limits requests per client IP.
// Forwarding headers are honoured only from trusted peers; anyone else is
// keyed by its own address.
func RateLimiter(
	api huma.API,
	limiter ratelimit.Limiter,
	ips enrich.IPResolver,
	trusted *TrustedPeers,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		key := clientKey(ctx, ips, trusted)

		allowed, err := limiter.Allow(ctx.Context(), key)
		if err != nil {
			logger.Error("rate limit check failed", zap.String("path", operationPath(ctx)), zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

			return
		}

		if !allowed {
			logger.Warn("rate limit exceeded",
				zap.String("path", operationPath(ctx)),
				zap.String("client", key),
			)
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, "rate limit exceeded")

			return
		}

		next(ctx)
	}
}

// clientKey is the forwarded client IP when the peer is trusted, the peer address otherwise.
func clientKey(ctx huma.Context, ips enrich.IPResolver, trusted *TrustedPeers) string {
	peer := peerHost(ctx.RemoteAddr())

	if trusted.Trusts(peer) {
		if ip := ips.ClientIP(headerRequest(ctx)); ip != "" {
			return ip
		}
	}

	return peer
}

func peerHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}

	return host
}

// headerRequest exposes the headers of ctx to resolvers that work on *http.Request.
func headerRequest(ctx huma.Context) *http.Request {
	r := &http.Request{Header: http.Header{}, RemoteAddr: ctx.RemoteAddr()}

	ctx.EachHeader(func(name, value string) {
		r.Header.Add(name, value)
	})

	return r
}

func operationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ""
}
