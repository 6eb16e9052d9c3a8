// Package main is the entry point for the cnftdrop CLI.
package main

import (
	"os"

	"github.com/mrz1836/cnftdrop/internal/cli"
)

// Set by goreleaser through -ldflags.
//
//nolint:gochecknoglobals // Build metadata injected at link time
var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	cli.SetBuildInfo(cli.BuildInfo{Version: version, Commit: commit, Date: date})
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
