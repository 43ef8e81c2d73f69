// Copyright 2025 Synaptiq Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	tagrank "github.com/synaptiq/tagrank"
	"github.com/synaptiq/tagrank/core"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "tagrank",
		Usage: "Adaptive tag co-occurrence and retrieval planning engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Build the co-occurrence matrix from a documents file",
				Action: buildCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "documents",
						Aliases:  []string{"f"},
						Usage:    "Path to a JSON file with tagged documents",
						Required: true,
					},
				},
			},
			{
				Name:      "related",
				Usage:     "Show tags related to a tag, ranked by edge weight",
				ArgsUsage: "TAG",
				Action:    relatedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Maximum number of related tags to return",
						Value: 10,
					},
					&cli.Float64Flag{
						Name:  "min-weight",
						Usage: "Minimum edge weight to include",
					},
					&cli.BoolFlag{
						Name:  "pmi",
						Usage: "Rank by pointwise mutual information instead of weight",
					},
				},
			},
			{
				Name:      "expand",
				Usage:     "Expand seed tags through multi-hop co-occurrence",
				ArgsUsage: "TAG [TAG...]",
				Action:    expandCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "depth",
						Usage: "Maximum expansion depth",
						Value: 2,
					},
					&cli.Float64Flag{
						Name:  "decay",
						Usage: "Per-hop weight decay",
						Value: 0.7,
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show matrix and learning statistics",
				Action: statsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
			{
				Name:   "discover",
				Usage:  "Run semantic association discovery over the query history",
				Action: discoverCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func buildCommand(c *cli.Context) error {
	docs, err := loadDocuments(c.String("documents"))
	if err != nil {
		return err
	}

	svc, err := tagrank.NewService(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open service: %w", err)
	}
	defer svc.Close()

	processed := svc.Matrix().BuildFromDocuments(docs)
	stats := svc.Matrix().Stats()

	fmt.Fprintf(os.Stderr, "Processed %d documents\n", processed)
	fmt.Fprintf(os.Stderr, "Tags: %d, relations: %d, total documents: %d\n",
		stats.TagCount, stats.RelationCount, stats.TotalDocuments)
	return nil
}

func relatedCommand(c *cli.Context) error {
	tag := c.Args().First()
	if tag == "" {
		return fmt.Errorf("a tag argument is required")
	}

	svc, err := tagrank.NewService(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open service: %w", err)
	}
	defer svc.Close()

	if c.Bool("pmi") {
		associations := svc.Matrix().Associations(tag, c.Int("top-k"))
		for _, assoc := range associations {
			fmt.Printf("%s\tpmi=%.4f\tweight=%.2f\n", assoc.Tag, assoc.PMI, assoc.Weight)
		}
		return nil
	}

	related := svc.Matrix().GetRelatedTags(tag, c.Int("top-k"), c.Float64("min-weight"))
	for _, rel := range related {
		fmt.Printf("%s\tweight=%.2f\n", rel.Tag, rel.Weight)
	}
	return nil
}

func expandCommand(c *cli.Context) error {
	seeds := c.Args().Slice()
	if len(seeds) == 0 {
		return fmt.Errorf("at least one seed tag is required")
	}

	svc, err := tagrank.NewService(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open service: %w", err)
	}
	defer svc.Close()

	expanded := svc.Matrix().ExpandTags(seeds, c.Int("depth"), c.Float64("decay"))
	for _, rel := range expanded {
		fmt.Printf("%s\tweight=%.4f\n", rel.Tag, rel.Weight)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	svc, err := tagrank.NewService(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open service: %w", err)
	}
	defer svc.Close()

	stats := svc.Matrix().Stats()
	fmt.Printf("Tags:            %d\n", stats.TagCount)
	fmt.Printf("Relations:       %d\n", stats.RelationCount)
	fmt.Printf("Total documents: %d\n", stats.TotalDocuments)
	fmt.Printf("Suggestions:     %d\n", len(svc.Learning().Suggestions()))
	return nil
}

func discoverCommand(c *cli.Context) error {
	svc, err := tagrank.NewService(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open service: %w", err)
	}
	defer svc.Close()

	minted := svc.Learning().DiscoverSemanticAssociations()
	if len(minted) == 0 {
		fmt.Fprintln(os.Stderr, "No new associations discovered")
		return nil
	}
	for _, suggestion := range minted {
		fmt.Printf("%s <-> %s\tconfidence=%.2f\n",
			suggestion.SourceTag, suggestion.SuggestedTag, suggestion.Confidence)
	}
	return nil
}

// loadDocuments reads a JSON array of tagged documents from disk.
func loadDocuments(path string) ([]core.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read documents file: %w", err)
	}

	var docs []core.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to parse documents file: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("documents file is empty")
	}
	return docs, nil
}

func setup(c *cli.Context) error {
	// A local .env may supply embedding credentials; absence is fine.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "err", err)
	}
	return setupLogger(c)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
