// SPDX-License-Identifier: MIT

// Package graphdef loads filter graph definitions from YAML. A definition
// names the stages, the candidate representations each one accepts, and the
// links between them; Build turns it into a graph ready for negotiation.
package graphdef

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ManuGH/avgraph/internal/media"
)

// Definition is the on-disk shape of a filter graph.
type Definition struct {
	Filters []FilterDef `yaml:"filters"`
	Links   []LinkDef   `yaml:"links"`
}

// FilterDef declares one stage. Omitted candidate lists mean the stage
// accepts anything of that dimension. Layouts and channel counts feed one
// combined candidate set.
type FilterDef struct {
	Name          string   `yaml:"name"`
	Media         string   `yaml:"media"`
	Formats       []string `yaml:"formats,omitempty"`
	SampleRates   []int    `yaml:"sample_rates,omitempty"`
	Layouts       []string `yaml:"layouts,omitempty"`
	ChannelCounts []int    `yaml:"channel_counts,omitempty"`
}

// LinkDef connects two declared filters by name.
type LinkDef struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Load reads and parses a graph definition file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph file: %w", err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Parse decodes a graph definition strictly: unknown fields, trailing
// content and semantic violations are all errors. An empty document yields
// an empty definition.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // Reject unknown fields

	if err := dec.Decode(&def); err != nil {
		if err == io.EOF {
			return &Definition{}, nil
		}
		return nil, fmt.Errorf("strict graph parse error: %w", err)
	}

	// Strict: ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.New("graph file contains multiple documents or trailing content")
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks a definition for semantic errors: anonymous or duplicate
// filters, unknown media types, unparseable candidates, audio fields on
// video filters, and links referencing undeclared names.
func (d *Definition) Validate() error {
	names := make(map[string]bool, len(d.Filters))
	for i, fd := range d.Filters {
		if fd.Name == "" {
			return fmt.Errorf("filter %d: %w", i, ErrNoName)
		}
		if names[fd.Name] {
			return fmt.Errorf("filter %q: %w", fd.Name, ErrDuplicateName)
		}
		names[fd.Name] = true

		t, err := media.ParseType(fd.Media)
		if err != nil {
			return fmt.Errorf("filter %q: %w", fd.Name, err)
		}
		if _, err := parseFormats(t, fd.Formats); err != nil {
			return fmt.Errorf("filter %q: %w", fd.Name, err)
		}
		if t != media.TypeAudio {
			if len(fd.SampleRates) > 0 || len(fd.Layouts) > 0 || len(fd.ChannelCounts) > 0 {
				return fmt.Errorf("filter %q: %w", fd.Name, ErrAudioOnlyField)
			}
			continue
		}
		for _, r := range fd.SampleRates {
			if r <= 0 {
				return fmt.Errorf("filter %q: sample rate %d: %w", fd.Name, r, ErrBadValue)
			}
		}
		if _, err := parseLayouts(fd.Layouts, fd.ChannelCounts); err != nil {
			return fmt.Errorf("filter %q: %w", fd.Name, err)
		}
	}

	for _, ld := range d.Links {
		if !names[ld.From] {
			return fmt.Errorf("link %s -> %s: %q: %w", ld.From, ld.To, ld.From, ErrUnknownFilter)
		}
		if !names[ld.To] {
			return fmt.Errorf("link %s -> %s: %q: %w", ld.From, ld.To, ld.To, ErrUnknownFilter)
		}
	}
	return nil
}

func parseFormats(t media.Type, names []string) ([]int64, error) {
	if len(names) == 0 {
		return nil, nil
	}
	fmts := make([]int64, 0, len(names))
	for _, name := range names {
		switch t {
		case media.TypeVideo:
			pf, err := media.ParsePixelFormat(name)
			if err != nil {
				return nil, err
			}
			fmts = append(fmts, int64(pf))
		case media.TypeAudio:
			sf, err := media.ParseSampleFormat(name)
			if err != nil {
				return nil, err
			}
			fmts = append(fmts, int64(sf))
		}
	}
	return fmts, nil
}
