package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/yuniezzx/MarketSeer/internal/domain"
)

// Default configuration values.
const (
	DefaultTimeout   = 15 * time.Second
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"
)

// HTTPClient is the shared HTTP transport for all adapters. It does a
// single attempt per call; retry policy belongs to the orchestrator,
// which knows whether the failure was transient.
type HTTPClient struct {
	client    *http.Client
	userAgent string
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *HTTPClient) {
		c.userAgent = ua
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates the shared adapter transport.
func NewHTTPClient(opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON performs a GET with query parameters and decodes the JSON
// response into out. The verbatim body is returned for archival.
// Errors are classified *FetchError.
func (c *HTTPClient) GetJSON(ctx context.Context, source domain.Source, endpoint, rawURL string, query url.Values, out any) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", NewPermanent(source, endpoint, "invalid url", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", NewPermanent(source, endpoint, "build request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	return c.do(req, source, endpoint, out)
}

// PostJSON performs a POST with a JSON body and decodes the JSON
// response into out. The verbatim body is returned for archival.
func (c *HTTPClient) PostJSON(ctx context.Context, source domain.Source, endpoint, rawURL string, body any, out any) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", NewPermanent(source, endpoint, "marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(payload))
	if err != nil {
		return "", NewPermanent(source, endpoint, "build request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, source, endpoint, out)
}

func (c *HTTPClient) do(req *http.Request, source domain.Source, endpoint string, out any) (string, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return "", classifyTransport(source, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewTransient(source, endpoint, "read response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(source, endpoint, resp.StatusCode)
	}

	raw := string(body)
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return raw, NewPermanent(source, endpoint, fmt.Sprintf("decode response (%d bytes)", len(body)), err)
		}
	}
	return raw, nil
}
