// SPDX-License-Identifier: MIT

package graphdef

import (
	"fmt"

	"github.com/ManuGH/avgraph/internal/formats"
	"github.com/ManuGH/avgraph/internal/graph"
	"github.com/ManuGH/avgraph/internal/media"
)

// Build turns the definition into a graph ready for negotiation. Each call
// produces a fresh graph with fresh candidate sets, so one definition can
// back any number of runs.
func (d *Definition) Build() (*graph.Graph, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	g := graph.New()
	byName := make(map[string]*graph.Filter, len(d.Filters))
	for _, fd := range d.Filters {
		t, _ := media.ParseType(fd.Media)
		fmts, _ := parseFormats(t, fd.Formats)
		var layouts []media.ChannelLayout
		if t == media.TypeAudio {
			layouts, _ = parseLayouts(fd.Layouts, fd.ChannelCounts)
		}
		f, err := g.AddFilter(fd.Name, t, queryFunc(t, fmts, fd.SampleRates, layouts))
		if err != nil {
			return nil, err
		}
		byName[fd.Name] = f
	}

	for _, ld := range d.Links {
		if _, err := g.Connect(byName[ld.From], byName[ld.To]); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// queryFunc closes over the parsed candidate lists; nil lists widen to the
// matching wildcard.
func queryFunc(t media.Type, fmts []int64, rates []int, layouts []media.ChannelLayout) graph.QueryFunc {
	return func(f *graph.Filter) error {
		if fmts == nil {
			if err := graph.SetCommonFormats(f, formats.AllFormats(t)); err != nil {
				return err
			}
		} else if err := graph.SetCommonFormatsFromList(f, fmts); err != nil {
			return err
		}
		if t != media.TypeAudio {
			return nil
		}
		if len(rates) == 0 {
			if err := graph.SetCommonAllSampleRates(f); err != nil {
				return err
			}
		} else if err := graph.SetCommonSampleRatesFromList(f, rates); err != nil {
			return err
		}
		if len(layouts) == 0 {
			return graph.SetCommonAllChannelCounts(f)
		}
		return graph.SetCommonChannelLayoutsFromList(f, layouts)
	}
}

// parseLayouts folds named layouts and bare channel counts into one
// candidate list. Empty inputs mean "anything" and yield nil.
func parseLayouts(names []string, counts []int) ([]media.ChannelLayout, error) {
	if len(names) == 0 && len(counts) == 0 {
		return nil, nil
	}
	layouts := make([]media.ChannelLayout, 0, len(names)+len(counts))
	for _, name := range names {
		l, err := media.ParseChannelLayout(name)
		if err != nil {
			return nil, err
		}
		layouts = append(layouts, l)
	}
	for _, n := range counts {
		if n <= 0 {
			return nil, fmt.Errorf("channel count %d: %w", n, ErrBadValue)
		}
		layouts = append(layouts, formats.EncodeCount(n))
	}
	return layouts, nil
}
