// SPDX-License-Identifier: MIT

package formats

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Validators inspect candidate sets built from filter declarations before
// negotiation trusts them. The first violation is reported through the
// supplied logger and returned as an error; a nil error means the set is
// well formed. Nothing is ever auto-corrected.

// ValidatePixelFormats checks a pixel-format candidate set.
func ValidatePixelFormats(lg zerolog.Logger, s *Set) error {
	return checkList(lg, "pixel format", s)
}

// ValidateSampleFormats checks a sample-format candidate set.
func ValidateSampleFormats(lg zerolog.Logger, s *Set) error {
	return checkList(lg, "sample format", s)
}

// ValidateSampleRates checks a sample-rate candidate set. An empty set is
// the "any rate" wildcard and passes.
func ValidateSampleRates(lg zerolog.Logger, s *Set) error {
	if s == nil || len(s.fmts) == 0 {
		return nil
	}
	return checkList(lg, "sample rate", s)
}

func checkList(lg zerolog.Logger, kind string, s *Set) error {
	if s == nil {
		return nil
	}
	if len(s.fmts) == 0 {
		lg.Error().Str("kind", kind).Msg("empty candidate list")
		return fmt.Errorf("%s list: %w", kind, ErrEmpty)
	}
	for i := 0; i < len(s.fmts); i++ {
		for j := i + 1; j < len(s.fmts); j++ {
			if s.fmts[i] == s.fmts[j] {
				lg.Error().
					Str("kind", kind).
					Int64("value", s.fmts[i]).
					Msg("duplicated candidate")
				return fmt.Errorf("%s %d: %w", kind, s.fmts[i], ErrDuplicate)
			}
		}
	}
	return nil
}

// ValidateChannelLayouts checks a channel-layout candidate set: wildcard
// flags must be consistent and leave the element list empty, no element may
// appear twice, and a concrete layout must not coexist with a count token of
// the same channel count (that pair makes merge results depend on element
// order).
func ValidateChannelLayouts(lg zerolog.Logger, s *LayoutSet) error {
	if s == nil {
		return nil
	}
	if s.allCounts && !s.allLayouts {
		lg.Error().Msg("all-counts wildcard without all-layouts")
		return fmt.Errorf("all-counts wildcard without all-layouts: %w", ErrLayoutConflict)
	}
	if s.allLayouts {
		if len(s.layouts) != 0 {
			lg.Error().Msg("wildcard channel layout set with explicit entries")
			return fmt.Errorf("wildcard set with explicit entries: %w", ErrLayoutConflict)
		}
		return nil
	}
	if len(s.layouts) == 0 {
		lg.Error().Str("kind", "channel layout").Msg("empty candidate list")
		return fmt.Errorf("channel layout list: %w", ErrEmpty)
	}
	for i := 0; i < len(s.layouts); i++ {
		li := s.layouts[i]
		for j := i + 1; j < len(s.layouts); j++ {
			lj := s.layouts[j]
			if li == lj {
				lg.Error().
					Str("layout", describeLayout(li)).
					Msg("duplicated channel layout")
				return fmt.Errorf("channel layout %s: %w", describeLayout(li), ErrDuplicate)
			}
			ci, cj := DecodeCount(li), DecodeCount(lj)
			if (ci != 0 && cj == 0 && lj.Channels() == ci) ||
				(cj != 0 && ci == 0 && li.Channels() == cj) {
				lg.Error().
					Str("a", describeLayout(li)).
					Str("b", describeLayout(lj)).
					Msg("channel layout and count token overlap")
				return fmt.Errorf("layout %s overlaps %s: %w",
					describeLayout(li), describeLayout(lj), ErrLayoutConflict)
			}
		}
	}
	return nil
}
