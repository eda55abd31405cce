// Package nwis implements the HTTP client for the USGS National Water
// Information System (NWIS) Instantaneous Values service. Each request is a
// single synchronous fetch/parse/extract cycle; retry policy belongs to the
// caller, not this package.
package nwis

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/gaugeworks/riverdata/internal/model"
)

const defaultBaseURL = "https://waterservices.usgs.gov/nwis/iv/"

// FrameBuilder is the optional tabular-data facility. When configured on the
// client it materializes an extracted time series into a model.Table; when
// absent, table-producing operations fail fast with
// *UnavailableDependencyError instead of silently degrading.
type FrameBuilder interface {
	Build(ts model.TimeSeries) (*model.Table, error)
}

// Client is the NWIS HTTP client shared by all requests. It owns the base
// endpoint, the transport (including any timeout the caller wants enforced),
// a politeness rate limiter for the public service, and the optional frame
// builder.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	frames     FrameBuilder
	debug      bool
}

// NewClient creates a Client. An empty baseURL selects the canonical IV
// service endpoint. A zero timeout leaves the transport unbounded.
func NewClient(baseURL string, timeout time.Duration, ratePerSec float64, debug bool) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	burst := int(ratePerSec)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
		debug:   debug,
	}
}

// SetFrameBuilder configures the tabular-data facility.
func (c *Client) SetFrameBuilder(fb FrameBuilder) {
	c.frames = fb
}

// SetTransport replaces the underlying round tripper. Intended for tests that
// stub the network.
func (c *Client) SetTransport(rt http.RoundTripper) {
	c.httpClient.Transport = rt
}

// BaseURL returns the configured service endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// get performs one GET against the service with the encoded params appended.
// It distinguishes transport failures (*NetworkError) from non-2xx responses
// (*HTTPStatusError) and returns the raw body on success.
func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := c.baseURL + "?" + params.Encode()

	if c.debug {
		slog.Debug("nwis request", "url", reqURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: reqURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "riverdata-cli/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: reqURL, Err: err}
	}

	if c.debug {
		slog.Debug("nwis response", "status", resp.StatusCode, "bytes", len(body))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
