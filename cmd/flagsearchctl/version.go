package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/kailas-cloud/flagsearch/internal/version"
)

// VersionCommand creates the version command
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(_ context.Context, _ *cli.Command) error {
			fmt.Println("flagsearchctl " + version.String())
			return nil
		},
	}
}
