package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var ErrLocationUnavailable = errors.New("location unavailable")

// Location is the coarse geolocation of a client IP.
type Location struct {
	City      string
	Region    string
	Country   string
	Latitude  string
	Longitude string
}

// Locator resolves an IP address into a Location.
type Locator interface {
	Locate(ctx context.Context, ip string) (*Location, error)
}

// HTTPLocator queries an ip-api compatible service: GET <base>/json/<ip>.
type HTTPLocator struct {
	baseURL string
	http    *http.Client
}

// NewHTTPLocator creates a locator. timeout bounds each lookup.
func NewHTTPLocator(baseURL string, timeout time.Duration) *HTTPLocator {
	return &HTTPLocator{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type geoResponse struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	City        string  `json:"city"`
	RegionName  string  `json:"regionName"`
	CountryCode string  `json:"countryCode"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

func (l *HTTPLocator) Locate(ctx context.Context, ip string) (*Location, error) {
	endpoint := fmt.Sprintf("%s/json/%s?fields=status,message,city,regionName,countryCode,lat,lon",
		l.baseURL, url.PathEscape(ip))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrLocationUnavailable, resp.StatusCode)
	}

	var body geoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode location: %w", err)
	}

	if body.Status != "success" {
		return nil, fmt.Errorf("%w: %s", ErrLocationUnavailable, body.Message)
	}

	return &Location{
		City:      body.City,
		Region:    body.RegionName,
		Country:   body.CountryCode,
		Latitude:  strconv.FormatFloat(body.Lat, 'f', -1, 64),
		Longitude: strconv.FormatFloat(body.Lon, 'f', -1, 64),
	}, nil
}

// NoopLocator never finds a location. Used when geolocation is disabled.
type NoopLocator struct{}

func (NoopLocator) Locate(_ context.Context, _ string) (*Location, error) {
	return nil, ErrLocationUnavailable
}
