package container

import (
	"fmt"
	"strings"
	"time"
)

// Options configures both binaries. The server reads them through humacli
// (flags or SERVICE_* variables); the consumer reads the env-tagged subset.
type Options struct {
	Port              int    `default:"8888" help:"Port to listen on" short:"p"`
	ResolverURL       string `default:"" help:"Base URL of the resolver endpoint, empty means this server"`
	GeoURL            string `default:"" help:"Base URL of an ip-api compatible geolocation service, empty disables it"`
	GeoTimeoutMs      int    `default:"3000" help:"Geolocation lookup timeout in milliseconds"`
	ResolveTimeoutMs  int    `default:"5000" help:"Resolver call timeout in milliseconds"`
	PlatformIPHeader  string `default:"" help:"Header carrying the client IP set by the hosting platform, e.g. Fly-Client-IP"`
	PeerClientIP      bool   `default:"false" help:"Use the connection peer as the client IP, for deployments without a proxy"`
	TrustedProxies    string `default:"" help:"Comma-separated peer IPs allowed to forward client IPs to the resolver endpoint, loopback is always trusted"`
	SystemRoutes      string `default:"" help:"Comma-separated extra route prefixes that bypass short-link handling"`
	LogFormat         string `default:"console" env:"LOG_FORMAT" envDefault:"console" help:"Log format: console or json"`
	RedisAddr         string `default:"" env:"REDIS_ADDR" help:"Redis server address, empty keeps everything in process" short:"r"`
	DatabaseURL       string `default:"" env:"DATABASE_URL" help:"PostgreSQL connection URL, empty disables PostgreSQL"`
	CacheTTLSeconds   int    `default:"300" help:"Link cache TTL in seconds"`
	RateLimit         int    `default:"120" help:"Resolver requests allowed per client and window, 0 disables limiting"`
	RateWindowSeconds int    `default:"60" help:"Rate limit window in seconds"`
	ConsumerGroup     string `default:"linkgate-clicks" env:"CONSUMER_GROUP" envDefault:"linkgate-clicks" help:"Redis stream consumer group for click events"`
}

// ResolverBaseURL returns the resolver base URL, defaulting to this server.
func (o *Options) ResolverBaseURL() string {
	if o.ResolverURL != "" {
		return o.ResolverURL
	}

	return fmt.Sprintf("http://127.0.0.1:%d", o.Port)
}

// ExtraSystemRoutes splits SystemRoutes into trimmed, non-empty prefixes.
func (o *Options) ExtraSystemRoutes() []string {
	return splitList(o.SystemRoutes)
}

// TrustedProxyIPs splits TrustedProxies into trimmed, non-empty entries.
func (o *Options) TrustedProxyIPs() []string {
	return splitList(o.TrustedProxies)
}

func splitList(value string) []string {
	var items []string

	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}

func millis(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
