package cmd

import (
	"fmt"
	"strings"

	"github.com/aviadshiber/tz/internal/config"
	"github.com/aviadshiber/tz/internal/output"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage tz configuration",
		Long: `Get, set, and list configuration values stored in ~/.config/tz/config.yaml.

Valid keys: analytics_space_id, api_key, base_url, key_placement`,
	}

	configCmd.AddCommand(newConfigSetCmd())
	configCmd.AddCommand(newConfigGetCmd())
	configCmd.AddCommand(newConfigListCmd())

	return configCmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Example: `  tz config set api_key tz_live_1234
  tz config set analytics_space_id 42
  tz config set key_placement header`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}

			key, value := args[0], args[1]
			if err := cfg.Set(key, value); err != nil {
				return err
			}

			shown := cfg.Get(key)
			if key == config.KeyAPIKey {
				shown = config.Mask(shown)
			}

			s := getIO()
			s.Printf("%s %s=%s\n", s.Success("✓"), s.Bold(key), shown)
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Print the effective value of a key. Environment variables (TZ_API_KEY,
TZ_BASE_URL, ...) and flags take precedence over the config file.`,
		Example: `  tz config get base_url
  tz config get api_key --reveal`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if !isKnownKey(key) {
				return fmt.Errorf("unknown key %q; valid keys: %s", key, strings.Join(config.KnownKeyNames(), ", "))
			}

			val := viper.GetString(key)
			if val == "" {
				return fmt.Errorf("key %q is not set; run: tz config set %s <value>", key, key)
			}
			if key == config.KeyAPIKey && !reveal {
				val = config.Mask(val)
			}

			s := getIO()
			s.Printf("%s\n", val)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print the API key unmasked")

	return cmd
}

func isKnownKey(key string) bool {
	for _, k := range config.KnownKeyNames() {
		if k == key {
			return true
		}
	}
	return false
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}

			entries := cfg.List()
			s := getIO()

			if handled, err := handleJSONOutput(cmd, entries); handled {
				return err
			}

			if len(entries) == 0 {
				s.Printf("%s\n", s.Muted("No configuration set. Run: tz config set <key> <value>"))
				s.Printf("%s %s\n", s.Muted("Config file:"), cfg.FilePath())
				return nil
			}

			headers := []string{"KEY", "VALUE", "DESCRIPTION"}
			rows := make([][]string, len(entries))
			for i, e := range entries {
				rows[i] = []string{e.Key, e.Value, e.Description}
			}

			output.PrintTable(s.Out, headers, rows, s.IsTerminal())
			s.Printf("\n%s %s\n", s.Muted("Config file:"), cfg.FilePath())
			return nil
		},
	}
}
