// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"github.com/ManuGH/avgraph/internal/media"
	"github.com/ManuGH/avgraph/internal/negotiate"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// fileReport pairs a graph file with its negotiation result.
type fileReport struct {
	Graph  string            `json:"graph"`
	Result *negotiate.Result `json:"result"`
}

// emitReports writes the rendered reports to outPath, or to stdout when no
// path is given.
func emitReports(logger zerolog.Logger, outPath, format string, reports []fileReport) error {
	if outPath == "" {
		return renderReports(os.Stdout, format, reports)
	}
	return writeReportFile(logger, outPath, format, reports)
}

func renderReports(w io.Writer, format string, reports []fileReport) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}
	return renderText(w, reports)
}

func renderText(w io.Writer, reports []fileReport) error {
	for _, r := range reports {
		if _, err := fmt.Fprintf(w, "%s: settled in %d passes (run %s)\n", r.Graph, r.Result.Passes, r.Result.RunID); err != nil {
			return err
		}
		for _, l := range r.Result.Links {
			if _, err := fmt.Fprintln(w, linkLine(l)); err != nil {
				return err
			}
		}
	}
	return nil
}

// linkLine renders one settled link, e.g.
//
//	src -> sink  audio fltp 48000Hz stereo
func linkLine(l negotiate.LinkReport) string {
	s := fmt.Sprintf("  %s -> %s  %s %s", l.From, l.To, l.Media, l.Format)
	if l.Media == media.TypeAudio {
		s += fmt.Sprintf(" %dHz %s", l.SampleRate, l.Layout)
	}
	return s
}

// writeReportFile goes through a temp file and an atomic rename so a
// half-written report is never visible, even if the process dies mid-write.
func writeReportFile(logger zerolog.Logger, path, format string, reports []fileReport) error {
	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending report file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending report file")
		}
	}()

	if err := renderReports(pending, format, reports); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace report file: %w", err)
	}
	return nil
}
