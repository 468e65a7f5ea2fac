package cmd

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newDynconfigCmd())
}

func newDynconfigCmd() *cobra.Command {
	dynconfigCmd := &cobra.Command{
		Use:   "dynconfig",
		Short: "Query dynamic configuration",
		Long:  "Resolve the dynamic configuration values that apply to an identifier within a configuration group.",
	}

	dynconfigCmd.AddCommand(newDynconfigQueryCmd())
	return dynconfigCmd
}

func newDynconfigQueryCmd() *cobra.Command {
	var groupID, identifier string

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Get the configuration applicable to an identifier",
		Example: `  tz dynconfig query --group 12 --identifier user-87717c11
  tz dynconfig query --group 12 --identifier user-1 --json --jq '.data'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			resp, err := c.QueryConfiguration(cmd.Context(), groupID, identifier)
			if err != nil {
				return err
			}
			return renderResponse(cmd, resp)
		},
	}

	cmd.Flags().StringVar(&groupID, "group", "", "Configuration group id (required)")
	cmd.Flags().StringVar(&identifier, "identifier", "", "Identifier to resolve configuration for")
	_ = cmd.MarkFlagRequired("group")

	return cmd
}
