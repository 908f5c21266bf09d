// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/avgraph/internal/negotiate"
)

// watcher renegotiates a fixed set of graph files whenever one of them
// changes on disk.
type watcher struct {
	paths    []string
	opts     negotiate.Options
	format   string
	outPath  string
	debounce time.Duration
	logger   zerolog.Logger

	fsw *fsnotify.Watcher

	mu        sync.Mutex
	listeners []chan<- string
}

func newWatcher(paths []string, opts negotiate.Options, format, outPath string, debounce time.Duration, logger zerolog.Logger) *watcher {
	return &watcher{
		paths:    paths,
		opts:     opts,
		format:   format,
		outPath:  outPath,
		debounce: debounce,
		logger:   logger,
	}
}

// Start begins watching every graph file. The watch loop stops when ctx is
// cancelled.
func (w *watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	w.fsw = fsw

	for _, path := range w.paths {
		if err := fsw.Add(path); err != nil {
			_ = fsw.Close()
			return fmt.Errorf("watch graph file %s: %w", path, err)
		}
	}

	w.logger.Info().
		Str("event", "watch.started").
		Int("graphs", len(w.paths)).
		Msg("watching graph files for changes")

	go w.loop(ctx)
	return nil
}

// loop debounces file events and triggers renegotiation.
func (w *watcher) loop(ctx context.Context) {
	// Debounce timer to avoid renegotiating on every write of a rapid burst
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Str("event", "watch.stopped").Msg("graph watcher stopped")
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			_ = w.fsw.Close()
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			// Watch for Write and Create events (covers vim, nano, echo)
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.logger.Debug().
					Str("event", "watch.file_changed").
					Str("path", event.Name).
					Str("op", event.Op.String()).
					Msg("graph file changed")

				// Debounce: reset timer on each event
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(w.debounce, func() {
					w.rerun(ctx)
				})
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error().
				Err(err).
				Str("event", "watch.error").
				Msg("graph watcher error")
		}
	}
}

// rerun renegotiates every watched graph and emits a fresh report.
func (w *watcher) rerun(ctx context.Context) {
	reports, err := negotiateAll(ctx, w.paths, w.opts)
	if err != nil {
		w.logger.Error().
			Err(err).
			Str("event", "watch.renegotiate_failed").
			Msg("renegotiation failed")
		return
	}
	if err := emitReports(w.logger, w.outPath, w.format, reports); err != nil {
		w.logger.Error().
			Err(err).
			Str("event", "report.write_failed").
			Msg("failed to write report")
		return
	}
	w.notifyListeners(reports)
}

// Stop closes the underlying file watcher (if running).
func (w *watcher) Stop() {
	if w.fsw != nil {
		_ = w.fsw.Close()
	}
}

// RegisterListener registers a channel that receives the run ID of every
// completed renegotiation.
func (w *watcher) RegisterListener(ch chan<- string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, ch)
}

// notifyListeners sends the run ID to all registered listeners (non-blocking).
func (w *watcher) notifyListeners(reports []fileReport) {
	if len(reports) == 0 {
		return
	}
	runID := reports[0].Result.RunID

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, ch := range w.listeners {
		select {
		case ch <- runID:
		default:
			// Skip if channel is full (non-blocking send)
			w.logger.Warn().
				Str("event", "watch.listener_skip").
				Msg("skipped notifying listener (channel full)")
		}
	}
}

// runWatch blocks until ctx is cancelled, serving Prometheus metrics on
// metricsAddr when one is configured.
func runWatch(ctx context.Context, w *watcher, metricsAddr string, logger zerolog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	if metricsAddr != "" {
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           metricsHandler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info().
				Str("addr", metricsAddr).
				Msg("metrics server listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	return g.Wait()
}

func metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
