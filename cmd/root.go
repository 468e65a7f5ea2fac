// Package cmd defines the CLI commands for the tz tool.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aviadshiber/tz/internal/config"
	"github.com/aviadshiber/tz/internal/iostreams"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// versionInfo is set by main via SetVersionInfo.
	versionInfo struct {
		version string
		commit  string
		date    string
	}

	// Global flag values bound to viper.
	cfgSpaceID  string
	cfgBaseURL  string
	cfgQuiet    bool
	cfgJSON     string
	cfgJQ       string
	cfgTemplate string

	streams *iostreams.IOStreams
)

// SetVersionInfo stores build metadata for the version command.
func SetVersionInfo(version, commit, date string) {
	versionInfo.version = version
	versionInfo.commit = commit
	versionInfo.date = date
}

var rootCmd = &cobra.Command{
	Use:   "tz",
	Short: "TrackZero CLI - track entities and events, manage analytics spaces",
	Long: `tz is a command-line tool for the TrackZero tracking API.

It upserts and deletes entities and events, queries dynamic configuration,
and manages analytics spaces and their sessions. Results can be printed as
tables, JSON, or filtered with jq expressions and Go templates.

Configuration is stored in ~/.config/tz/config.yaml and can be overridden
with flags or environment variables (TZ_API_KEY, TZ_BASE_URL,
TZ_ANALYTICS_SPACE_ID, TZ_KEY_PLACEMENT). Set TZ_DEBUG=1 to log requests.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		streams = iostreams.New()
		streams.SetQuiet(viper.GetBool("quiet"))

		if baseURL := viper.GetString(config.KeyBaseURL); baseURL != "" {
			if _, err := config.Validate(config.KeyBaseURL, baseURL); err != nil {
				return err
			}
		}
		if placement := viper.GetString(config.KeyKeyPlacement); placement != "" {
			if _, err := config.Validate(config.KeyKeyPlacement, placement); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	// Load config file into global viper.
	if dir, err := config.Dir(); err == nil {
		viper.SetConfigFile(filepath.Join(dir, "config.yaml"))
		viper.SetConfigType("yaml")
		_ = viper.ReadInConfig() // Ignore error if file doesn't exist yet.
	}

	viper.SetEnvPrefix("TZ")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgSpaceID, "space", "s", "", "Analytics space id for entity and event calls (env: TZ_ANALYTICS_SPACE_ID)")
	pf.StringVar(&cfgBaseURL, "base-url", "", "API base URL (env: TZ_BASE_URL)")
	pf.BoolVarP(&cfgQuiet, "quiet", "q", false, "Suppress non-essential output (env: TZ_QUIET)")
	pf.StringVar(&cfgJSON, "json", "", "Output JSON; optionally comma-separated field list")
	pf.StringVar(&cfgJQ, "jq", "", "Filter JSON output with a jq expression (requires --json)")
	pf.StringVar(&cfgTemplate, "template", "", "Format output with a Go template (requires --json)")

	// Allow --json to be used without a value (e.g., "tz version --json").
	pf.Lookup("json").NoOptDefVal = " "

	// Bind flags to viper keys so env vars and config file values also work.
	_ = viper.BindPFlag(config.KeyAnalyticsSpaceID, pf.Lookup("space"))
	_ = viper.BindPFlag(config.KeyBaseURL, pf.Lookup("base-url"))
	_ = viper.BindPFlag("quiet", pf.Lookup("quiet"))

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())
}

// Execute runs the root command. Called from main.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		s := iostreams.New()
		fmt.Fprintln(s.ErrOut, s.Failure("Error: "+err.Error()))
		return err
	}
	return nil
}

// getIO returns the current IOStreams instance, initializing if needed.
func getIO() *iostreams.IOStreams {
	if streams == nil {
		streams = iostreams.New()
	}
	return streams
}

// isDebug reports whether debug mode is enabled via TZ_DEBUG env var.
func isDebug() bool {
	return os.Getenv("TZ_DEBUG") == "1"
}

// jsonOutputRequested reports whether the --json flag was explicitly set.
func jsonOutputRequested(cmd *cobra.Command) bool {
	return cmd.Flags().Changed("json")
}
