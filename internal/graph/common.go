// SPDX-License-Identifier: MIT

package graph

import (
	"github.com/ManuGH/avgraph/internal/formats"
	"github.com/ManuGH/avgraph/internal/media"
)

// The SetCommon helpers attach one candidate set to every still-empty
// endpoint slot of a filter: the consumer side of its inputs and the
// producer side of its outputs. A set that finds no endpoint to live on is
// discarded immediately, so callers can hand over freshly built sets
// unconditionally.

// SetCommonFormats attaches s to every format slot of f.
func SetCommonFormats(f *Filter, s *formats.Set) error {
	if s == nil {
		return ErrNilSet
	}
	for _, l := range f.Inputs {
		if l.DstCaps.Formats.Get() == nil {
			s.Ref(&l.DstCaps.Formats)
		}
	}
	for _, l := range f.Outputs {
		if l.SrcCaps.Formats.Get() == nil {
			s.Ref(&l.SrcCaps.Formats)
		}
	}
	if s.Refcount() == 0 {
		s.Discard()
	}
	return nil
}

// SetCommonSampleRates attaches s to every sample-rate slot of f. Filters
// of other media types have no such slots; the set is then discarded.
func SetCommonSampleRates(f *Filter, s *formats.Set) error {
	if s == nil {
		return ErrNilSet
	}
	if f.Media == media.TypeAudio {
		for _, l := range f.Inputs {
			if l.DstCaps.SampleRates.Get() == nil {
				s.Ref(&l.DstCaps.SampleRates)
			}
		}
		for _, l := range f.Outputs {
			if l.SrcCaps.SampleRates.Get() == nil {
				s.Ref(&l.SrcCaps.SampleRates)
			}
		}
	}
	if s.Refcount() == 0 {
		s.Discard()
	}
	return nil
}

// SetCommonChannelLayouts attaches ls to every channel-layout slot of f.
func SetCommonChannelLayouts(f *Filter, ls *formats.LayoutSet) error {
	if ls == nil {
		return ErrNilSet
	}
	if f.Media == media.TypeAudio {
		for _, l := range f.Inputs {
			if l.DstCaps.ChannelLayouts.Get() == nil {
				ls.Ref(&l.DstCaps.ChannelLayouts)
			}
		}
		for _, l := range f.Outputs {
			if l.SrcCaps.ChannelLayouts.Get() == nil {
				ls.Ref(&l.SrcCaps.ChannelLayouts)
			}
		}
	}
	if ls.Refcount() == 0 {
		ls.Discard()
	}
	return nil
}

// SetCommonFormatsFromList is SetCommonFormats over a plain value list.
func SetCommonFormatsFromList[T ~int | ~int32 | ~int64](f *Filter, fmts []T) error {
	return SetCommonFormats(f, formats.NewSet(fmts...))
}

// SetCommonSampleRatesFromList is SetCommonSampleRates over a rate list.
func SetCommonSampleRatesFromList(f *Filter, rates []int) error {
	return SetCommonSampleRates(f, formats.NewSet(rates...))
}

// SetCommonChannelLayoutsFromList is SetCommonChannelLayouts over a layout
// list.
func SetCommonChannelLayoutsFromList(f *Filter, layouts []media.ChannelLayout) error {
	return SetCommonChannelLayouts(f, formats.NewLayoutSet(layouts...))
}

// SetCommonAllSampleRates leaves the filter's rate choice unconstrained.
func SetCommonAllSampleRates(f *Filter) error {
	return SetCommonSampleRates(f, formats.AllSampleRates())
}

// SetCommonAllChannelCounts accepts every layout and bare channel count.
func SetCommonAllChannelCounts(f *Filter) error {
	return SetCommonChannelLayouts(f, formats.AllChannelCounts())
}

// DefaultQuery accepts every registered representation of the filter's
// media type, any sample rate and any channel count. It is the query of
// filters that work on whatever arrives.
func DefaultQuery(f *Filter) error {
	if err := SetCommonFormats(f, formats.AllFormats(f.Media)); err != nil {
		return err
	}
	if f.Media != media.TypeAudio {
		return nil
	}
	if err := SetCommonAllSampleRates(f); err != nil {
		return err
	}
	return SetCommonAllChannelCounts(f)
}
