package cmd

import (
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of tz",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data := map[string]any{
				"version": versionInfo.version,
				"commit":  versionInfo.commit,
				"date":    versionInfo.date,
			}
			if handled, err := handleJSONOutput(cmd, data); handled {
				return err
			}

			s := getIO()
			s.Printf("tz version %s (commit: %s, built: %s)\n",
				versionInfo.version, versionInfo.commit, versionInfo.date)
			return nil
		},
	}
}
