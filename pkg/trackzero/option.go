package trackzero

import (
	"errors"
	"strings"

	"github.com/aviadshiber/tz/internal/client"
	"github.com/rs/zerolog"
)

// HTTPDoer is an interface for HTTP operations (for testing).
type HTTPDoer = client.HTTPDoer

// KeyPlacement selects how the API key travels on /log and
// /dynamicconfiguration calls. /AnalyticsSpaces calls always use the header.
type KeyPlacement = client.KeyPlacement

const (
	KeyInQuery  = client.KeyInQuery
	KeyInHeader = client.KeyInHeader
)

// DefaultBaseURL is the hosted API.
const DefaultBaseURL = client.DefaultBaseURL

// Option configures the Client.
type Option func(*clientConfig) error

type clientConfig struct {
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
	spaceID    string
	headers    map[string]string
	placement  KeyPlacement
}

func newDefaultConfig() *clientConfig {
	return &clientConfig{
		baseURL:   DefaultBaseURL,
		logger:    zerolog.Nop(),
		headers:   map[string]string{},
		placement: KeyInQuery,
	}
}

// WithBaseURL sets a custom API base URL.
// Default: "https://api.trackzero.io"
func WithBaseURL(url string) Option {
	return func(c *clientConfig) error {
		if url == "" {
			return errors.New("base URL cannot be empty")
		}
		c.baseURL = strings.TrimSuffix(url, "/")
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client.
// Default: an http.Client whose transport is traced with otelhttp.
func WithHTTPClient(d HTTPDoer) Option {
	return func(c *clientConfig) error {
		if d == nil {
			return errors.New("HTTP client cannot be nil")
		}
		c.httpClient = d
		return nil
	}
}

// WithLogger sets the logger for request/response debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(c *clientConfig) error {
		c.logger = l
		return nil
	}
}

// WithAnalyticsSpace scopes entity and event calls to spaceID unless a call
// overrides it with InSpace.
func WithAnalyticsSpace(spaceID string) Option {
	return func(c *clientConfig) error {
		c.spaceID = spaceID
		return nil
	}
}

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *clientConfig) error {
		if key == "" {
			return errors.New("header name cannot be empty")
		}
		c.headers[key] = value
		return nil
	}
}

// WithKeyPlacement selects query-parameter or header authentication.
// Default: KeyInQuery.
func WithKeyPlacement(p KeyPlacement) Option {
	return func(c *clientConfig) error {
		if p != KeyInQuery && p != KeyInHeader {
			return errors.New("unknown key placement")
		}
		c.placement = p
		return nil
	}
}

// CallOption adjusts a single entity or event call.
type CallOption func(*callConfig)

type callConfig struct {
	spaceID string
}

// InSpace scopes one call to spaceID.
func InSpace(spaceID string) CallOption {
	return func(c *callConfig) {
		c.spaceID = spaceID
	}
}
