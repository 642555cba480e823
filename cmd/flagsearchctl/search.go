package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	flagsearch "github.com/kailas-cloud/flagsearch/pkg/sdk"
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search features",
		ArgsUsage: "[text]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Usage: "Project id"},
			&cli.StringSliceFlag{Name: "type", Usage: "Feature type (repeatable)"},
			&cli.StringSliceFlag{Name: "tag", Usage: "Tag as type:value (repeatable)"},
			&cli.StringSliceFlag{Name: "status", Usage: "Status as env:enabled|disabled (repeatable)"},
			&cli.StringFlag{Name: "sort", Usage: "name, createdAt or environment:<env>"},
			&cli.BoolFlag{Name: "desc", Usage: "Sort descending"},
			&cli.IntFlag{Name: "limit", Usage: "Page size"},
			&cli.StringFlag{Name: "cursor", Usage: "Resume token from a previous page"},
			&cli.BoolFlag{Name: "archived", Usage: "Only archived features"},
			&cli.BoolFlag{Name: "all", Usage: "Follow cursors and print every match"},
			&cli.StringFlag{Name: "fixture", Usage: "Import this YAML fixture before searching"},
			&cli.StringFlag{Name: "format", Usage: "Output format: json or table", Value: "json"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			client, err := openClient(ctx, c)
			if err != nil {
				return err
			}
			defer client.Close()

			if path := c.String("fixture"); path != "" {
				inputs, err := loadFixture(path)
				if err != nil {
					return err
				}
				if _, err := client.Features().Import(ctx, inputs); err != nil {
					return fmt.Errorf("seeding: %w", err)
				}
			}

			q := queryFromFlags(c)
			var page flagsearch.Page
			if c.Bool("all") {
				page, err = collectAll(ctx, client.Search(), q)
			} else {
				page, err = client.Search().Do(ctx, q)
			}
			if err != nil {
				return fmt.Errorf("searching: %w", err)
			}
			return printPage(os.Stdout, c.String("format"), &page)
		},
	}
}

func queryFromFlags(c *cli.Command) flagsearch.Query {
	q := flagsearch.Query{
		Text:     c.Args().First(),
		Project:  c.String("project"),
		Types:    c.StringSlice("type"),
		Tags:     c.StringSlice("tag"),
		Statuses: c.StringSlice("status"),
		SortBy:   flagsearch.SortField(c.String("sort")),
		Order:    flagsearch.Asc,
		Cursor:   c.String("cursor"),
		Limit:    c.Int("limit"),
		Archived: c.Bool("archived"),
	}
	if c.Bool("desc") {
		q.Order = flagsearch.Desc
	}
	return q
}

func collectAll(ctx context.Context, s *flagsearch.SearchService, q flagsearch.Query) (flagsearch.Page, error) {
	var page flagsearch.Page
	for f, err := range s.All(ctx, q) {
		if err != nil {
			return flagsearch.Page{}, err
		}
		page.Features = append(page.Features, f)
	}
	page.Total = len(page.Features)
	return page, nil
}

func printPage(w io.Writer, format string, page *flagsearch.Page) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(page); err != nil {
			return fmt.Errorf("encoding output: %w", err)
		}
		return nil
	case "table":
		_, err := io.WriteString(w, renderTable(page)+"\n")
		return err //nolint:wrapcheck // stdout write
	default:
		return fmt.Errorf("unknown format %q (json or table)", format)
	}
}
