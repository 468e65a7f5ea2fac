// Package config manages persistent CLI configuration stored in ~/.config/tz/config.yaml.
// It provides read/write/list operations and masks the API key in output.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Known configuration keys.
const (
	KeyAPIKey           = "api_key"
	KeyBaseURL          = "base_url"
	KeyAnalyticsSpaceID = "analytics_space_id"
	KeyKeyPlacement     = "key_placement"
)

// Key placement values accepted for KeyKeyPlacement.
const (
	PlacementQuery  = "query"
	PlacementHeader = "header"
)

// sensitiveKeys are masked in list output.
var sensitiveKeys = map[string]bool{
	KeyAPIKey: true,
}

// knownKeys defines the valid configuration keys and their descriptions.
var knownKeys = map[string]string{
	KeyAPIKey:           "TrackZero API key",
	KeyBaseURL:          "API base URL (default https://api.trackzero.io)",
	KeyAnalyticsSpaceID: "Default analytics space for entity and event calls",
	KeyKeyPlacement:     "Where the API key is sent: query or header",
}

// Config wraps viper to manage tz configuration.
type Config struct {
	v        *viper.Viper
	filePath string
}

// New creates a Config that reads from ~/.config/tz/config.yaml.
// It creates the config directory if it does not exist.
func New() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	filePath := filepath.Join(dir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(filePath)
	v.SetConfigType("yaml")

	// The file is created on first write.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	return &Config{v: v, filePath: filePath}, nil
}

// Dir returns the directory holding config.yaml.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}
	return filepath.Join(home, ".config", "tz"), nil
}

// Get returns the value for a configuration key.
func (c *Config) Get(key string) string {
	return c.v.GetString(key)
}

// Set validates and writes a configuration key-value pair, then persists to disk.
func (c *Config) Set(key, value string) error {
	if _, ok := knownKeys[key]; !ok {
		return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(KnownKeyNames(), ", "))
	}

	normalized, err := Validate(key, value)
	if err != nil {
		return err
	}

	c.v.Set(key, normalized)
	return c.write()
}

// Validate checks value for key and returns its normalized form.
func Validate(key, value string) (string, error) {
	switch key {
	case KeyAPIKey:
		if strings.TrimSpace(value) == "" {
			return "", fmt.Errorf("api_key cannot be empty")
		}
	case KeyBaseURL:
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return "", fmt.Errorf("invalid base_url %q; must be an http(s) URL", value)
		}
		return strings.TrimSuffix(value, "/"), nil
	case KeyKeyPlacement:
		value = strings.ToLower(value)
		if value != PlacementQuery && value != PlacementHeader {
			return "", fmt.Errorf("invalid key_placement %q; must be one of: query, header", value)
		}
	}
	return value, nil
}

// List returns all set configuration entries as key-value pairs.
// Sensitive values are masked.
func (c *Config) List() []Entry {
	var entries []Entry
	for _, key := range KnownKeyNames() {
		val := c.v.GetString(key)
		if val == "" {
			continue
		}
		if sensitiveKeys[key] {
			val = Mask(val)
		}
		entries = append(entries, Entry{Key: key, Value: val, Description: knownKeys[key]})
	}
	return entries
}

// Entry is a single configuration key-value pair.
type Entry struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// KnownKeyNames returns sorted known key names.
func KnownKeyNames() []string {
	return []string{KeyAnalyticsSpaceID, KeyAPIKey, KeyBaseURL, KeyKeyPlacement}
}

// FilePath returns the path to the configuration file.
func (c *Config) FilePath() string {
	return c.filePath
}

func (c *Config) write() error {
	return c.v.WriteConfigAs(c.filePath)
}

// Mask shows the first 4 characters followed by "****".
func Mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
