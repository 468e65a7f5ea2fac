package trackzero

import (
	"errors"
	"testing"

	"github.com/matryer/is"
)

func resetDefault() {
	defaultMu.Lock()
	defaultClient = nil
	defaultMu.Unlock()
}

func TestInstanceBeforeInitialize(t *testing.T) {
	is := is.New(t)
	resetDefault()
	t.Cleanup(resetDefault)

	c, err := Instance()
	is.True(c == nil)
	is.True(errors.Is(err, ErrNotInitialized))
}

func TestInitializeIsIdempotent(t *testing.T) {
	is := is.New(t)
	resetDefault()
	t.Cleanup(resetDefault)

	first, err := Initialize("first-key")
	is.NoErr(err)

	second, err := Initialize("second-key", WithBaseURL("https://elsewhere.test"))
	is.NoErr(err)

	is.True(first == second)
	is.Equal(second.APIKey(), "first-key")
	is.Equal(second.BaseURL(), DefaultBaseURL)

	inst, err := Instance()
	is.NoErr(err)
	is.True(inst == first)
}

func TestInitializeRequiresAPIKey(t *testing.T) {
	is := is.New(t)
	resetDefault()
	t.Cleanup(resetDefault)

	_, err := Initialize("")
	is.True(errors.Is(err, ErrConfiguration))

	_, err = Instance()
	is.True(IsNotInitialized(err))

	c, err := Initialize("key")
	is.NoErr(err)
	is.Equal(c.APIKey(), "key")
}
