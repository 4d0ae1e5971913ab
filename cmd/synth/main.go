// Command synth writes a small deterministic synthetic dataset in the
// layout the other commands read.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"volscope/internal/config"
	"volscope/internal/infrastructure"
	"volscope/internal/synth"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func parseStocks(s string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid stock id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	def := synth.DefaultOptions()
	fs := flag.NewFlagSet("synth", flag.ContinueOnError)
	fs.SetOutput(stderr)
	root := fs.String("data", config.DefaultDataRoot, "dataset root directory to write")
	stocks := fs.String("stocks", "0,1,2,3", "comma separated stock ids")
	buckets := fs.Int("buckets", def.TrainBuckets, "train time buckets per stock")
	rows := fs.Int("rows", def.BookPerBucket, "book rows per bucket")
	trades := fs.Int("trades", def.TradePerBucket, "trade rows per bucket")
	seed := fs.Uint64("seed", def.Seed, "random seed")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ids, err := parseStocks(*stocks)
	if err != nil {
		fmt.Fprintf(stderr, "synth: %v\n", err)
		return 2
	}

	logger := slog.New(infrastructure.NewContextHandler(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	opts := synth.Options{
		Stocks:         ids,
		TrainBuckets:   *buckets,
		TestBuckets:    def.TestBuckets,
		BookPerBucket:  *rows,
		TradePerBucket: *trades,
		Seed:           *seed,
	}
	res, err := synth.New(opts, logger).Generate(infrastructure.EnsureRunID(ctx), *root)
	if err != nil {
		fmt.Fprintf(stderr, "synth: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Synthetic dataset written to %s\n", res.Paths.Root)
	fmt.Fprintf(stdout, "  book rows:  %d\n", res.BookRows)
	fmt.Fprintf(stdout, "  trade rows: %d\n", res.TradeRows)
	fmt.Fprintf(stdout, "  targets:    %d\n", res.Targets)
	fmt.Fprintf(stdout, "  test rows:  %d\n", res.TestRows)
	return 0
}
