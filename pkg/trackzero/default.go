package trackzero

import "sync"

var (
	defaultMu     sync.Mutex
	defaultClient *Client
)

// Initialize creates the process-wide default client on its first successful
// call and returns it unchanged on every later call; later arguments are
// ignored. An empty apiKey fails with ErrConfiguration and leaves the default
// unset.
func Initialize(apiKey string, opts ...Option) (*Client, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultClient != nil {
		return defaultClient, nil
	}

	c, err := New(apiKey, opts...)
	if err != nil {
		return nil, err
	}
	defaultClient = c
	return c, nil
}

// Instance returns the default client, or ErrNotInitialized when Initialize
// has not succeeded yet.
func Instance() (*Client, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultClient == nil {
		return nil, newError(ErrNotInitialized, "Instance", "call Initialize first")
	}
	return defaultClient, nil
}
