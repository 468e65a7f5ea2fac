package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aviadshiber/tz/internal/config"
	"github.com/aviadshiber/tz/internal/output"
	"github.com/aviadshiber/tz/pkg/trackzero"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newClient returns the process default TrackZero client, initializing it
// from the current configuration state (viper config + env vars + flags).
func newClient() (*trackzero.Client, error) {
	apiKey := viper.GetString(config.KeyAPIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required; set via `TZ_API_KEY` env or `tz config set api_key <key>`")
	}

	var opts []trackzero.Option
	if baseURL := viper.GetString(config.KeyBaseURL); baseURL != "" {
		opts = append(opts, trackzero.WithBaseURL(baseURL))
	}
	if spaceID := viper.GetString(config.KeyAnalyticsSpaceID); spaceID != "" {
		opts = append(opts, trackzero.WithAnalyticsSpace(spaceID))
	}
	if strings.EqualFold(viper.GetString(config.KeyKeyPlacement), config.PlacementHeader) {
		opts = append(opts, trackzero.WithKeyPlacement(trackzero.KeyInHeader))
	}
	if isDebug() {
		opts = append(opts, trackzero.WithLogger(newDebugLogger()))
	}

	return trackzero.Initialize(apiKey, opts...)
}

// newDebugLogger writes human-readable request logs to stderr.
func newDebugLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(zerolog.DebugLevel).
		With().Timestamp().Str("component", "tz").Logger()
}

// renderResponse prints resp as JSON (when --json is set) or as a KEY/VALUE
// table. It returns an error for any failed response so the exit code is non-zero.
func renderResponse(cmd *cobra.Command, resp trackzero.Response) error {
	handled, err := handleJSONOutput(cmd, resp)
	if err != nil {
		return err
	}

	if !handled {
		s := getIO()
		if !s.IsQuiet() {
			output.PrintKeyValues(s.Out, responsePairs(resp, s.Outcome, s.Failure), s.IsTerminal())
		}
	}

	if !resp.OK() {
		return fmt.Errorf("request failed: %s", resp.ErrorMessage())
	}
	return nil
}

// responsePairs flattens resp into table rows. okStyle and errStyle color the
// status and error cells.
func responsePairs(resp trackzero.Response, okStyle func(string, bool) string, errStyle func(string) string) [][2]string {
	var pairs [][2]string
	if status, ok := resp.Status(); ok {
		pairs = append(pairs, [2]string{"STATUS", okStyle(fmt.Sprintf("%d %s", status, http.StatusText(status)), resp.OK())})
	}
	if data := resp.Data(); data != nil {
		b, _ := json.Marshal(data)
		pairs = append(pairs, [2]string{"DATA", string(b)})
	}
	if msg := resp.ErrorMessage(); msg != "" {
		pairs = append(pairs, [2]string{"ERROR", errStyle(msg)})
	}
	return pairs
}

// handleJSONOutput processes a value through the --json field list, --jq or
// --template, or prints it as pretty JSON. It returns true if JSON output was
// handled (i.e., --json was requested), false otherwise.
func handleJSONOutput(cmd *cobra.Command, data any) (bool, error) {
	if !jsonOutputRequested(cmd) {
		return false, nil
	}

	normalized, err := output.Normalize(data)
	if err != nil {
		return true, err
	}

	fieldsFlag, _ := cmd.Flags().GetString("json")
	if fields := splitCSV(fieldsFlag); len(fields) > 0 {
		if items, ok := normalized.([]any); ok {
			normalized = output.FilterFields(items, fields)
		} else {
			normalized = output.FilterFieldsSingle(normalized, fields)
		}
	}

	s := getIO()

	jqExpr, _ := cmd.Flags().GetString("jq")
	tmpl, _ := cmd.Flags().GetString("template")

	switch {
	case jqExpr != "":
		return true, output.ApplyJQ(s.Out, normalized, jqExpr)
	case tmpl != "":
		return true, output.ApplyTemplate(s.Out, normalized, tmpl)
	default:
		return true, output.PrintJSON(s.Out, normalized)
	}
}

// parseAttribute splits "name=value". A value that parses as JSON (number,
// bool, object, quoted string) is decoded; anything else stays a string.
func parseAttribute(s string) (string, any, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("invalid attribute %q; expected name=value", s)
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil && v != nil {
		return name, v, nil
	}
	return name, raw, nil
}

// parseReference splits "name=Type:ID".
func parseReference(s string) (string, string, string, error) {
	name, target, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", "", "", fmt.Errorf("invalid reference %q; expected name=Type:ID", s)
	}
	refType, refID, err := parseTarget(target)
	if err != nil {
		return "", "", "", fmt.Errorf("invalid reference %q; expected name=Type:ID", s)
	}
	return name, refType, refID, nil
}

// parseTarget splits "Type:ID".
func parseTarget(s string) (string, string, error) {
	refType, refID, ok := strings.Cut(s, ":")
	if !ok || refType == "" || refID == "" {
		return "", "", fmt.Errorf("invalid target %q; expected Type:ID", s)
	}
	return refType, refID, nil
}

// parseGeo splits "lat,lon". Values stay strings; the SDK converts them.
func parseGeo(s string) (string, string, error) {
	parts := splitCSV(s)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid geo point %q; expected lat,lon", s)
	}
	return parts[0], parts[1], nil
}

// splitCSV splits a comma-separated string into trimmed, non-empty parts.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
