// SPDX-License-Identifier: MIT

// Package negotiate drives format negotiation over a filter graph: it
// collects the candidate sets of every filter, narrows the shared sets on
// each link down to the common subset, and picks one concrete
// representation per link.
package negotiate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ManuGH/avgraph/internal/formats"
	"github.com/ManuGH/avgraph/internal/graph"
	"github.com/ManuGH/avgraph/internal/log"
	"github.com/ManuGH/avgraph/internal/media"
	"github.com/ManuGH/avgraph/internal/metrics"
)

// Options tunes a negotiation run.
type Options struct {
	// MaxPasses bounds the merge loop. Zero means links+2.
	MaxPasses int
}

// LinkReport is the resolved representation of one link.
type LinkReport struct {
	From       string     `json:"from"`
	To         string     `json:"to"`
	Media      media.Type `json:"media"`
	Format     string     `json:"format"`
	SampleRate int        `json:"sample_rate,omitempty"`
	Layout     string     `json:"layout,omitempty"`
	Channels   int        `json:"channels,omitempty"`
}

// Result describes a completed negotiation run.
type Result struct {
	RunID  string       `json:"run_id"`
	Passes int          `json:"passes"`
	Links  []LinkReport `json:"links"`
}

// Run negotiates the whole graph: query, validate, merge until settled,
// then resolve every link to a single representation. The graph is
// mutated in place; on error it may be left partially merged.
func Run(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	start := time.Now()
	runID := uuid.New().String()
	ctx = log.ContextWithRunID(ctx, runID)
	ctx, span := startNegotiationSpan(ctx)
	defer span.End()

	lg := log.WithComponentFromContext(ctx, "negotiate")

	res := &Result{RunID: runID}
	outcome := "error"
	defer func() {
		metrics.IncNegotiationRun(outcome)
		metrics.ObserveNegotiationDuration(time.Since(start))
		emitNegotiationObs(ctx, res, outcome)
	}()

	lg.Debug().
		Str(log.FieldEvent, "negotiate.start").
		Int("filters", len(g.Filters)).
		Int("links", len(g.Links)).
		Msg("starting negotiation")

	for _, f := range g.Filters {
		query := f.Query
		if query == nil {
			query = graph.DefaultQuery
		}
		if err := query(f); err != nil {
			return nil, fmt.Errorf("query filter %q: %w", f.Name, err)
		}
	}

	for _, l := range g.Links {
		if err := validateLink(lg, l); err != nil {
			outcome = "invalid"
			return nil, err
		}
	}

	maxPasses := opts.MaxPasses
	if maxPasses <= 0 {
		maxPasses = len(g.Links) + 2
	}
	passes := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		passes++
		progress, err := mergePass(lg, g)
		if err != nil {
			if errors.Is(err, formats.ErrIncompatible) {
				outcome = "incompatible"
			}
			return nil, err
		}
		if progress == 0 {
			break
		}
		if passes >= maxPasses {
			return nil, fmt.Errorf("after %d passes: %w", passes, ErrNoSettle)
		}
	}
	res.Passes = passes
	metrics.ObserveNegotiationPasses(passes)

	for _, l := range g.Links {
		if err := resolveLink(lg, l); err != nil {
			outcome = "unresolved"
			return nil, err
		}
		res.Links = append(res.Links, reportLink(l))
	}

	outcome = "ok"
	lg.Info().
		Str(log.FieldEvent, "negotiate.settled").
		Int(log.FieldPasses, passes).
		Int("links", len(res.Links)).
		Msg("negotiation settled")
	return res, nil
}

func linkName(l *graph.Link) string {
	return l.Src.Name + " -> " + l.Dst.Name
}

// validateLink checks that the query phase left well-formed candidate sets
// on both ends of the link.
func validateLink(lg zerolog.Logger, l *graph.Link) error {
	llg := lg.With().Str(log.FieldLink, linkName(l)).Logger()

	sides := []struct {
		name string
		caps *graph.Caps
	}{
		{"source", &l.SrcCaps},
		{"destination", &l.DstCaps},
	}
	for _, side := range sides {
		fs := side.caps.Formats.Get()
		if fs == nil {
			return fmt.Errorf("link %s: %s formats: %w", linkName(l), side.name, ErrNoCandidates)
		}
		var err error
		switch l.Media {
		case media.TypeVideo:
			err = formats.ValidatePixelFormats(llg, fs)
		case media.TypeAudio:
			err = formats.ValidateSampleFormats(llg, fs)
		}
		if err != nil {
			return fmt.Errorf("link %s: %s formats: %w", linkName(l), side.name, err)
		}

		if l.Media != media.TypeAudio {
			continue
		}
		rs := side.caps.SampleRates.Get()
		if rs == nil {
			return fmt.Errorf("link %s: %s sample rates: %w", linkName(l), side.name, ErrNoCandidates)
		}
		if err := formats.ValidateSampleRates(llg, rs); err != nil {
			return fmt.Errorf("link %s: %s sample rates: %w", linkName(l), side.name, err)
		}
		ls := side.caps.ChannelLayouts.Get()
		if ls == nil {
			return fmt.Errorf("link %s: %s channel layouts: %w", linkName(l), side.name, ErrNoCandidates)
		}
		if err := formats.ValidateChannelLayouts(llg, ls); err != nil {
			return fmt.Errorf("link %s: %s channel layouts: %w", linkName(l), side.name, err)
		}
	}
	return nil
}

// mergePass narrows every link once. It reports how many endpoint pairs
// actually fused; a pass with zero progress means the graph has settled.
func mergePass(lg zerolog.Logger, g *graph.Graph) (int, error) {
	progress := 0
	for _, l := range g.Links {
		n, err := mergeLink(lg, l)
		progress += n
		if err != nil {
			return progress, err
		}
	}
	return progress, nil
}

func mergeLink(lg zerolog.Logger, l *graph.Link) (int, error) {
	progress := 0

	if src, dst := l.SrcCaps.Formats.Get(), l.DstCaps.Formats.Get(); src != dst {
		if _, err := formats.Merge(src, dst, l.Media); err != nil {
			metrics.IncMerge("formats", "incompatible")
			logConflict(lg, l, "formats")
			return progress, fmt.Errorf("merge formats on link %s: %w", linkName(l), err)
		}
		metrics.IncMerge("formats", "merged")
		progress++
	}

	if l.Media != media.TypeAudio {
		return progress, nil
	}

	if src, dst := l.SrcCaps.SampleRates.Get(), l.DstCaps.SampleRates.Get(); src != dst {
		if _, err := formats.MergeSampleRates(src, dst); err != nil {
			metrics.IncMerge("sample_rates", "incompatible")
			logConflict(lg, l, "sample_rates")
			return progress, fmt.Errorf("merge sample rates on link %s: %w", linkName(l), err)
		}
		metrics.IncMerge("sample_rates", "merged")
		progress++
	}

	if src, dst := l.SrcCaps.ChannelLayouts.Get(), l.DstCaps.ChannelLayouts.Get(); src != dst {
		if _, err := formats.MergeChannelLayouts(src, dst); err != nil {
			metrics.IncMerge("channel_layouts", "incompatible")
			logConflict(lg, l, "channel_layouts")
			return progress, fmt.Errorf("merge channel layouts on link %s: %w", linkName(l), err)
		}
		metrics.IncMerge("channel_layouts", "merged")
		progress++
	}
	return progress, nil
}

func logConflict(lg zerolog.Logger, l *graph.Link, kind string) {
	lg.Warn().
		Str(log.FieldEvent, "negotiate.conflict").
		Str(log.FieldLink, linkName(l)).
		Str(log.FieldMedia, string(l.Media)).
		Str(log.FieldKind, kind).
		Msg("no common candidates on link")
}

// resolveLink truncates the link's shared sets to one entry and records the
// concrete choice. Both endpoints alias the same set after merging, so
// truncating the source side settles the destination too.
func resolveLink(lg zerolog.Logger, l *graph.Link) error {
	fs := l.SrcCaps.Formats.Get()
	fs.Truncate(1)
	l.Format = fs.Formats()[0]

	if l.Media != media.TypeAudio {
		logResolved(lg, l)
		return nil
	}

	rs := l.SrcCaps.SampleRates.Get()
	if rs.Len() == 0 {
		return fmt.Errorf("cannot select sample rate on link %s: %w", linkName(l), ErrUnresolved)
	}
	rs.Truncate(1)
	l.SampleRate = int(rs.Formats()[0])

	ls := l.SrcCaps.ChannelLayouts.Get()
	if ls.IsAllLayouts() || ls.IsAllCounts() {
		return fmt.Errorf("cannot select channel layout on link %s: %w", linkName(l), ErrUnresolved)
	}
	ls.Truncate(1)
	first := ls.Layouts()[0]
	if n := formats.DecodeCount(first); n > 0 {
		l.Layout = 0
		l.Channels = n
	} else {
		l.Layout = first
		l.Channels = first.Channels()
	}
	logResolved(lg, l)
	return nil
}

func logResolved(lg zerolog.Logger, l *graph.Link) {
	ev := lg.Debug().
		Str(log.FieldEvent, "negotiate.resolved").
		Str(log.FieldLink, linkName(l)).
		Str(log.FieldMedia, string(l.Media))
	switch l.Media {
	case media.TypeVideo:
		ev = ev.Str(log.FieldFormat, l.PixelFormat().String())
	case media.TypeAudio:
		ev = ev.Str(log.FieldFormat, l.SampleFormat().String()).
			Int(log.FieldSampleRate, l.SampleRate).
			Str(log.FieldLayout, layoutLabel(l)).
			Int(log.FieldChannels, l.Channels)
	}
	ev.Msg("link resolved")
}

func layoutLabel(l *graph.Link) string {
	if l.Layout == 0 {
		return fmt.Sprintf("%dch", l.Channels)
	}
	return l.Layout.String()
}

func reportLink(l *graph.Link) LinkReport {
	r := LinkReport{From: l.Src.Name, To: l.Dst.Name, Media: l.Media}
	switch l.Media {
	case media.TypeVideo:
		r.Format = l.PixelFormat().String()
	case media.TypeAudio:
		r.Format = l.SampleFormat().String()
		r.SampleRate = l.SampleRate
		r.Layout = layoutLabel(l)
		r.Channels = l.Channels
	}
	return r
}
