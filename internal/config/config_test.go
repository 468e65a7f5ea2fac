package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func newTestConfig(t *testing.T) *Config {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return cfg
}

func TestSetPersistsAndMasks(t *testing.T) {
	is := is.New(t)
	cfg := newTestConfig(t)

	is.NoErr(cfg.Set(KeyAPIKey, "abcdef123456"))
	is.NoErr(cfg.Set(KeyBaseURL, "https://staging.trackzero.test/"))
	is.NoErr(cfg.Set(KeyKeyPlacement, "HEADER"))

	_, err := os.Stat(cfg.FilePath())
	is.NoErr(err)
	is.True(strings.HasSuffix(cfg.FilePath(), filepath.Join(".config", "tz", "config.yaml")))

	reloaded, err := New()
	is.NoErr(err)
	is.Equal(reloaded.Get(KeyAPIKey), "abcdef123456")
	is.Equal(reloaded.Get(KeyBaseURL), "https://staging.trackzero.test")
	is.Equal(reloaded.Get(KeyKeyPlacement), PlacementHeader)

	entries := reloaded.List()
	is.Equal(len(entries), 3)
	for _, e := range entries {
		if e.Key == KeyAPIKey {
			is.Equal(e.Value, "abcd****")
		}
	}
}

func TestSetRejectsInvalidValues(t *testing.T) {
	is := is.New(t)
	cfg := newTestConfig(t)

	is.True(cfg.Set("project_id", "1") != nil)
	is.True(cfg.Set(KeyAPIKey, "  ") != nil)
	is.True(cfg.Set(KeyBaseURL, "ftp://x") != nil)
	is.True(cfg.Set(KeyBaseURL, "not a url") != nil)
	is.True(cfg.Set(KeyKeyPlacement, "cookie") != nil)
	is.Equal(len(cfg.List()), 0)
}

func TestMask(t *testing.T) {
	is := is.New(t)

	is.Equal(Mask("abc"), "****")
	is.Equal(Mask("abcdefgh"), "abcd****")
}
