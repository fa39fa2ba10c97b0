package resolution

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// EndpointPath is the resolver route relative to the resolver base URL.
const EndpointPath = "/api/s"

const maxBodySize = 64 << 10

var ErrUnexpectedStatus = errors.New("unexpected resolver status")

// Resolver resolves a visit into an outcome.
type Resolver interface {
	Resolve(ctx context.Context, req *Request) Outcome
}

// Client calls the resolver endpoint over HTTP. It makes exactly one attempt
// per call and keeps no state between calls.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *zap.Logger
}

// NewClient creates a resolver client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		endpoint: strings.TrimSuffix(baseURL, "/") + EndpointPath,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Resolve posts req to the resolver and maps the reply to an Outcome.
// Any transport failure or malformed reply yields SystemError.
func (c *Client) Resolve(ctx context.Context, req *Request) Outcome {
	raw, err := c.fetch(ctx, req)
	if err != nil {
		c.logger.Warn("resolution request failed",
			zap.String("slug", req.Slug),
			zap.Error(err),
		)

		return SystemError()
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		c.logger.Warn("resolver returned undecodable body",
			zap.String("slug", req.Slug),
			zap.Error(err),
		)

		return SystemError()
	}

	s, ok := body.(string)
	if !ok {
		c.logger.Warn("resolver returned non-string body", zap.String("slug", req.Slug))

		return SystemError()
	}

	return ParseBody(s)
}

func (c *Client) fetch(ctx context.Context, req *Request) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	// The resolver sees the edge as its peer; pass the visitor on for rate limiting.
	if visitor := req.Visitor; visitor != "" {
		httpReq.Header.Set("X-Forwarded-For", visitor)
	} else if req.IP != "" {
		httpReq.Header.Set("X-Forwarded-For", req.IP)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}
