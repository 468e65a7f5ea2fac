package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPDoer is the subset of *http.Client the transport needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client performs exactly one HTTP attempt per call against a fixed base URL.
// It never returns an error; every outcome is a Response.
type Client struct {
	httpClient HTTPDoer
	baseURL    string
	headers    map[string]string
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default traced http.Client.
func WithHTTPClient(d HTTPDoer) Option {
	return func(c *Client) {
		if d != nil {
			c.httpClient = d
		}
	}
}

// WithHeaders adds default headers sent on every request. Per-call headers win.
func WithHeaders(h map[string]string) Option {
	return func(c *Client) {
		for k, v := range h {
			c.headers[k] = v
		}
	}
}

// WithLogger sets the logger used for request/response debug lines.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a Client for baseURL. An empty baseURL selects DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		headers:    map[string]string{"Content-Type": "application/json"},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends call and normalizes the outcome.
func (c *Client) Do(ctx context.Context, call Binding) Response {
	fullURL := c.baseURL + call.Path
	if len(call.Query) > 0 {
		fullURL += "?" + call.Query.Encode()
	}

	var body io.Reader
	if call.Body != nil {
		b, err := json.Marshal(call.Body)
		if err != nil {
			return Failed(fmt.Errorf("encoding request body: %w", err))
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, fullURL, body)
	if err != nil {
		return Failed(fmt.Errorf("creating request: %w", redactError(err)))
	}

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range call.Header {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Msgf("--> %s %s", call.Method, redact(fullURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = redactError(err)
		c.logger.Warn().Err(err).Msgf("<-- %s %s failed", call.Method, call.Path)
		return Failed(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn().Err(err).Msgf("<-- %d reading body failed", resp.StatusCode)
		return Failed(fmt.Errorf("reading response body: %w", err))
	}

	c.logger.Debug().Msgf("<-- %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))

	return Completed(resp.StatusCode, respBody)
}

// redact masks the API key query value so it never reaches the logs.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Get(ParamAPIKey) == "" {
		return rawURL
	}
	q.Set(ParamAPIKey, "redacted")
	u.RawQuery = q.Encode()
	return u.String()
}

// redactError masks the API key in the URL carried by a *url.Error.
func redactError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = redact(ue.URL)
	}
	return err
}
