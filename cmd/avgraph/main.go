// SPDX-License-Identifier: MIT

// Command avgraph negotiates media formats for filter graph definitions.
//
// It loads one or more graph files (YAML), runs the negotiation and prints
// the settled per-link formats as text or JSON. With -watch it keeps
// running and renegotiates whenever a graph file changes on disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/avgraph/internal/config"
	"github.com/ManuGH/avgraph/internal/graphdef"
	avlog "github.com/ManuGH/avgraph/internal/log"
	"github.com/ManuGH/avgraph/internal/negotiate"
)

var (
	version   = "v0.1.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	logLevel := flag.String("log-level", "", "log level (default info, or AVGRAPH_LOG_LEVEL)")
	format := flag.String("format", "", "report format: text or json (default text, or AVGRAPH_FORMAT)")
	outPath := flag.String("o", "", "write the report to this file instead of stdout")
	watchMode := flag.Bool("watch", false, "keep running and renegotiate when graph files change")
	metricsAddr := flag.String("metrics", "", "serve Prometheus metrics on this address in watch mode")
	maxPasses := flag.Int("max-passes", 0, "merge pass limit, 0 means links+2")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// The config helpers log, so the log level has to be read raw and the
	// logger configured before any environment parsing happens.
	level := strings.TrimSpace(*logLevel)
	if level == "" {
		level = os.Getenv("AVGRAPH_LOG_LEVEL")
	}
	avlog.Configure(avlog.Config{
		Level:   level,
		Service: "avgraph",
		Version: version,
	})

	logger := avlog.WithComponent("cli")

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: avgraph [flags] <graph.yaml> [graph.yaml ...]")
		os.Exit(2)
	}
	paths := flag.Args()

	reportFormat := strings.TrimSpace(*format)
	if reportFormat == "" {
		reportFormat = config.ParseString("AVGRAPH_FORMAT", formatText)
	}
	if reportFormat != formatText && reportFormat != formatJSON {
		logger.Fatal().
			Str("format", reportFormat).
			Msg("unknown report format, want text or json")
	}

	passes := *maxPasses
	if passes == 0 {
		passes = config.ParseInt("AVGRAPH_MAX_PASSES", 0)
	}
	if passes < 0 {
		logger.Fatal().
			Int("max_passes", passes).
			Msg("merge pass limit must not be negative")
	}
	opts := negotiate.Options{MaxPasses: passes}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("event", "startup").
		Str("version", version).
		Str("commit", commit).
		Str("build_date", buildDate).
		Int("graphs", len(paths)).
		Msg("starting avgraph")

	if !*watchMode {
		reports, err := negotiateAll(ctx, paths, opts)
		if err != nil {
			logger.Fatal().
				Err(err).
				Str("event", "negotiate.failed").
				Msg("negotiation failed")
		}
		if err := emitReports(logger, *outPath, reportFormat, reports); err != nil {
			logger.Fatal().
				Err(err).
				Str("event", "report.write_failed").
				Msg("failed to write report")
		}
		return
	}

	addr := strings.TrimSpace(*metricsAddr)
	if addr == "" {
		addr = config.ParseString("AVGRAPH_METRICS_ADDR", "")
	}
	debounce := config.ParseDuration("AVGRAPH_WATCH_DEBOUNCE", 500*time.Millisecond)

	w := newWatcher(paths, opts, reportFormat, *outPath, debounce, avlog.WithComponent("watch"))

	// Initial negotiation before watching. Failures are not fatal here: the
	// watcher picks up the next edit of the offending file.
	if config.ParseBool("AVGRAPH_INITIAL_RUN", true) {
		w.rerun(ctx)
	} else {
		logger.Info().Msg("initial negotiation disabled (AVGRAPH_INITIAL_RUN=false)")
	}

	if err := runWatch(ctx, w, addr, logger); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "watch.failed").
			Msg("watch mode failed")
	}

	logger.Info().Msg("avgraph exiting")
}

// negotiateAll negotiates every graph file concurrently and returns the
// reports in input order.
func negotiateAll(ctx context.Context, paths []string, opts negotiate.Options) ([]fileReport, error) {
	reports := make([]fileReport, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			res, err := negotiateFile(ctx, path, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			reports[i] = fileReport{Graph: path, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// negotiateFile loads one graph definition, builds a fresh graph and runs
// the negotiation on it.
func negotiateFile(ctx context.Context, path string, opts negotiate.Options) (*negotiate.Result, error) {
	def, err := graphdef.Load(path)
	if err != nil {
		return nil, err
	}
	g, err := def.Build()
	if err != nil {
		return nil, err
	}
	ctx = avlog.ContextWithGraph(ctx, filepath.Base(path))
	return negotiate.Run(ctx, g, opts)
}
