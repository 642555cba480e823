// Command flagsearchctl seeds and queries a flagsearch store from the shell.
package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/kailas-cloud/flagsearch/internal/config"
)

func main() {
	app := &cli.Command{
		Name:  "flagsearchctl",
		Usage: "Seed and search feature toggles",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration file path (default: config/<ENV>.yaml)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			SeedCommand(),
			SearchCommand(),
			VersionCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Command) (config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.LoadFile(path) //nolint:wrapcheck // message already names the file
	}
	return config.Load(config.GetEnv()) //nolint:wrapcheck // message already names the file
}
