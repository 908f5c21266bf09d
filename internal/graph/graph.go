// SPDX-License-Identifier: MIT

// Package graph models the pipeline whose links the negotiation engine
// works on: filters connected by typed links, each link side carrying the
// candidate sets the adjacent filter declared for it.
package graph

import (
	"fmt"

	"github.com/ManuGH/avgraph/internal/formats"
	"github.com/ManuGH/avgraph/internal/media"
)

// QueryFunc declares the representations a filter accepts and produces by
// attaching candidate sets to the filter's link endpoints, usually through
// the SetCommon helpers. A nil QueryFunc stands for DefaultQuery.
type QueryFunc func(*Filter) error

// Filter is one processing stage.
type Filter struct {
	Name  string
	Media media.Type
	Query QueryFunc

	Inputs  []*Link
	Outputs []*Link
}

// Caps holds the candidate sets of one side of a link. Slots start empty
// and are filled during the query phase.
type Caps struct {
	Formats        formats.Ref
	SampleRates    formats.Ref
	ChannelLayouts formats.LayoutRef
}

// Link connects a producing filter to a consuming one. SrcCaps carries what
// the producer offers, DstCaps what the consumer accepts; negotiation merges
// the two sides and records the concrete choice on the link.
type Link struct {
	Src, Dst *Filter
	Media    media.Type

	SrcCaps Caps
	DstCaps Caps

	// Resolved representation, valid only after negotiation. Format holds a
	// pixel format on video links and a sample format on audio links. A
	// resolved count token leaves Layout unspecified with Channels set.
	Format     int64
	SampleRate int
	Layout     media.ChannelLayout
	Channels   int
}

// PixelFormat returns the resolved picture representation of a video link.
func (l *Link) PixelFormat() media.PixelFormat {
	return media.PixelFormat(l.Format)
}

// SampleFormat returns the resolved sample representation of an audio link.
func (l *Link) SampleFormat() media.SampleFormat {
	return media.SampleFormat(l.Format)
}

// Graph is a set of filters and the links between them.
type Graph struct {
	Filters []*Filter
	Links   []*Link
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{}
}

// AddFilter registers a stage. Names must be unique within the graph.
func (g *Graph) AddFilter(name string, t media.Type, query QueryFunc) (*Filter, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("filter %q: %w", name, ErrUnknownMedia)
	}
	for _, f := range g.Filters {
		if f.Name == name {
			return nil, fmt.Errorf("filter %q: %w", name, ErrDuplicateFilter)
		}
	}
	f := &Filter{Name: name, Media: t, Query: query}
	g.Filters = append(g.Filters, f)
	return f, nil
}

// Connect links src to dst. Both filters must carry the same media type.
func (g *Graph) Connect(src, dst *Filter) (*Link, error) {
	if src.Media != dst.Media {
		return nil, fmt.Errorf("connect %s -> %s: %w", src.Name, dst.Name, ErrMediaMismatch)
	}
	l := &Link{Src: src, Dst: dst, Media: src.Media, Format: -1}
	src.Outputs = append(src.Outputs, l)
	dst.Inputs = append(dst.Inputs, l)
	g.Links = append(g.Links, l)
	return l, nil
}

// Insert splits link l and routes it through f: l keeps its source and now
// feeds f, the returned new link carries f's output to the old consumer.
// Candidate sets already attached on the consumer side move with the
// consumer onto the new link.
func (g *Graph) Insert(l *Link, f *Filter) (*Link, error) {
	if f.Media != l.Media {
		return nil, fmt.Errorf("insert %s into %s -> %s: %w",
			f.Name, l.Src.Name, l.Dst.Name, ErrMediaMismatch)
	}

	nl := &Link{Src: f, Dst: l.Dst, Media: l.Media, Format: -1}
	for i, in := range l.Dst.Inputs {
		if in == l {
			l.Dst.Inputs[i] = nl
			break
		}
	}
	l.Dst = f
	f.Inputs = append(f.Inputs, l)
	f.Outputs = append(f.Outputs, nl)
	g.Links = append(g.Links, nl)

	l.DstCaps.Formats.Move(&nl.DstCaps.Formats)
	l.DstCaps.SampleRates.Move(&nl.DstCaps.SampleRates)
	l.DstCaps.ChannelLayouts.Move(&nl.DstCaps.ChannelLayouts)
	return nl, nil
}
