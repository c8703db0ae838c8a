package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/poiesic/keyrank"
	"github.com/poiesic/keyrank/aggregate"
	"github.com/poiesic/keyrank/core"
	"github.com/poiesic/keyrank/ingestion"
	"github.com/poiesic/keyrank/profile"
	"github.com/urfave/cli/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func pipelineCommand(c *cli.Context) error {
	p, err := profile.Load(c.String("profile"))
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	params, err := parseParams(c.StringSlice("param"))
	if err != nil {
		return err
	}

	pipeline, err := keyrank.New().BuildProfilePipeline(p, queryArg(c), params)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	fingerprint, err := core.Fingerprint(pipeline)
	if err != nil {
		return err
	}
	slog.Info("built pipeline", "profile", p.Name, "stages", len(pipeline), "fingerprint", fingerprint)

	return writePipeline(c.App.Writer, pipeline)
}

func seedCommand(c *cli.Context) error {
	ctx := context.Background()

	var in io.Reader = os.Stdin
	if file := c.String("file"); file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	db, err := keyrank.NewDatabase(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	opts := []ingestion.Option{ingestion.WithBatchSize(c.Int("batch-size"))}
	if interval := c.Int("report-interval"); interval > 0 {
		opts = append(opts, ingestion.WithProgress(ingestion.NewProgressTracker(c.App.ErrWriter, interval)))
	}
	pipeline, err := db.NewIngestionPipeline(c.String("collection"), opts...)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	n, err := pipeline.Ingest(ctx, in)
	if err != nil {
		return fmt.Errorf("seeding failed after %d records: %w", n, err)
	}
	fmt.Fprintf(c.App.Writer, "Stored %d records in %s\n", n, c.String("collection"))
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	p, err := profile.Load(c.String("profile"))
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	spec, err := p.Spec()
	if err != nil {
		return err
	}

	db, err := keyrank.NewDatabase(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	searcher, err := db.NewSearcher(collectionName(c, p))
	if err != nil {
		return err
	}
	defer searcher.Release()

	results, err := searcher.Search(ctx, queryArg(c), spec)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return writeResults(c.App.Writer, results, c.Int("limit"))
}

func aggregateCommand(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
	defer cancel()

	p, err := profile.Load(c.String("profile"))
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	params, err := parseParams(c.StringSlice("param"))
	if err != nil {
		return err
	}
	pipeline, err := keyrank.New().BuildProfilePipeline(p, queryArg(c), params)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	if limit := c.Int("limit"); limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.String("uri")))
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			slog.Warn("error disconnecting", "err", err)
		}
	}()

	coll := client.Database(c.String("database")).Collection(collectionName(c, p))
	executor, err := aggregate.NewExecutor(coll,
		aggregate.WithAllowDiskUse(c.Bool("allow-disk-use")),
		aggregate.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")))
	if err != nil {
		return err
	}
	results, err := executor.Run(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("aggregation failed: %w", err)
	}
	return writeResults(c.App.Writer, results, 0)
}

// parseParams turns key=value pairs into request parameters.
func parseParams(pairs []string) (url.Values, error) {
	params := url.Values{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected key=value", pair)
		}
		params.Add(key, value)
	}
	return params, nil
}

func queryArg(c *cli.Context) string {
	return strings.Join(c.Args().Slice(), " ")
}

// collectionName prefers the --collection flag, then the profile's collection,
// then the profile name.
func collectionName(c *cli.Context, p *profile.Profile) string {
	if name := c.String("collection"); name != "" {
		return name
	}
	if p.Collection != "" {
		return p.Collection
	}
	return p.Name
}

// writePipeline prints the stages as a relaxed extended JSON array.
func writePipeline(w io.Writer, pipeline []bson.D) error {
	fmt.Fprintln(w, "[")
	for i, stage := range pipeline {
		data, err := bson.MarshalExtJSONIndent(stage, false, false, "  ", "  ")
		if err != nil {
			return fmt.Errorf("stage %d: %w", i, err)
		}
		sep := ","
		if i == len(pipeline)-1 {
			sep = ""
		}
		fmt.Fprintf(w, "  %s%s\n", data, sep)
	}
	fmt.Fprintln(w, "]")
	return nil
}

func writeResults(w io.Writer, results []*core.ScoredRecord, limit int) error {
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	fmt.Fprintf(w, "Found %d hits\n", len(results))
	for i, hit := range results {
		fields, err := bson.MarshalExtJSON(hit.Fields, false, false)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d: %s [%s %d] %s\n", i, hit.ID.Hex(), hit.Tier, hit.Score, fields)
	}
	return nil
}
