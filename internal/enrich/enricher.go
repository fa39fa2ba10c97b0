package enrich

import (
	"net/http"

	"github.com/serroba/linkgate/internal/resolution"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// PasswordParam is the query parameter carrying a link password.
const PasswordParam = "password"

// Enricher builds the resolution request for a visit from the inbound request.
type Enricher struct {
	ips     IPResolver
	locator Locator
	logger  *zap.Logger
}

// NewEnricher creates an enricher.
func NewEnricher(ips IPResolver, locator Locator, logger *zap.Logger) *Enricher {
	return &Enricher{
		ips:     ips,
		locator: locator,
		logger:  logger,
	}
}

// Enrich collects IP, location, device and language data for slug. Lookup
// failures leave the affected fields empty; Enrich itself never fails.
func (e *Enricher) Enrich(r *http.Request, slug string) *resolution.Request {
	ip := e.ips.ClientIP(r)
	device := ParseUserAgent(r.UserAgent())

	req := &resolution.Request{
		Slug:            slug,
		Referer:         r.Referer(),
		IP:              ip,
		Visitor:         visitor(r, ip),
		Language:        primaryLanguage(r.Header.Get("Accept-Language")),
		DeviceModel:     device.Model,
		BrowserName:     device.BrowserName,
		EngineName:      device.EngineName,
		OSName:          device.OSName,
		CPUArchitecture: device.CPUArchitecture,
		IsBot:           device.IsBot,
		Password:        r.URL.Query().Get(PasswordParam),
	}

	lookupIP := ip
	if lookupIP == "" {
		lookupIP = LoopbackIP
	}

	loc, err := e.locator.Locate(r.Context(), lookupIP)
	if err != nil {
		e.logger.Debug("geolocation unavailable",
			zap.String("slug", slug),
			zap.String("ip", lookupIP),
			zap.Error(err),
		)

		return req
	}

	req.City = loc.City
	req.Region = loc.Region
	req.Country = loc.Country
	req.Latitude = loc.Latitude
	req.Longitude = loc.Longitude

	return req
}

// visitor identifies the client for per-visitor limits downstream. It falls
// back to the connection peer when no client IP was resolved.
func visitor(r *http.Request, ip string) string {
	if ip != "" {
		return ip
	}

	return PeerIP(r)
}

func primaryLanguage(header string) string {
	if header == "" {
		return ""
	}

	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}

	return tags[0].String()
}
