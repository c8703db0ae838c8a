// Copyright 2025 Poiesic Systems
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
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "keyrank",
		Usage: "Tiered keyword search pipelines for MongoDB",
		// --param values may contain commas, e.g. exclude=id1,id2
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before:   setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "pipeline",
				Usage:     "Print the aggregation pipeline for a query as extended JSON",
				ArgsUsage: "QUERY...",
				Action:    pipelineCommand,
				Flags:     []cli.Flag{profileFlag(), paramFlag()},
			},
			{
				Name:   "seed",
				Usage:  "Load JSON documents into a local collection",
				Action: seedCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "collection",
						Aliases:  []string{"c"},
						Usage:    "Collection name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "JSON array or JSON lines file, - for stdin",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents stored per transaction",
						Value: 500,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records, 0 to disable",
						Value: 1000,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Run a query against a local collection",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags:     []cli.Flag{dbFlag(), profileFlag(), collectionFlag(), limitFlag()},
			},
			{
				Name:      "aggregate",
				Usage:     "Run a query against a MongoDB collection",
				ArgsUsage: "QUERY...",
				Action:    aggregateCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "uri",
						Usage:   "MongoDB connection string",
						Value:   "mongodb://localhost:27017",
						EnvVars: []string{"MONGODB_URI"},
					},
					&cli.StringFlag{
						Name:     "database",
						Usage:    "MongoDB database name",
						Required: true,
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Overall time limit for the query",
						Value: 30 * time.Second,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts when the server is unreachable",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "allow-disk-use",
						Usage: "Let the server spill large stages to disk",
					},
					profileFlag(), collectionFlag(), paramFlag(), limitFlag(),
				},
			},
		},
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB database directory",
		Required: true,
	}
}

func profileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "profile",
		Aliases:  []string{"p"},
		Usage:    "Path to a YAML search profile",
		Required: true,
	}
}

func paramFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:  "param",
		Usage: "Request parameter as key=value, may be repeated",
	}
}

func collectionFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "collection",
		Aliases: []string{"c"},
		Usage:   "Collection name (defaults to the profile's collection)",
	}
}

func limitFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "limit",
		Usage: "Maximum number of results to print, 0 for all",
		Value: 10,
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
