package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// SeedCommand creates the seed command
func SeedCommand() *cli.Command {
	return &cli.Command{
		Name:      "seed",
		Usage:     "Import features from a YAML fixture",
		ArgsUsage: "<fixture.yaml>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one fixture path")
			}
			inputs, err := loadFixture(c.Args().First())
			if err != nil {
				return err
			}

			client, err := openClient(ctx, c)
			if err != nil {
				return err
			}
			defer client.Close()

			n, err := client.Features().Import(ctx, inputs)
			if err != nil {
				return fmt.Errorf("seeding: %w", err)
			}
			fmt.Printf("Imported %d features\n", n)
			return nil
		},
	}
}
