package main

import (
	"os"

	"github.com/aviadshiber/tz/cmd"
)

// Set by goreleaser / -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
