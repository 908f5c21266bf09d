// SPDX-License-Identifier: MIT

package media

import "fmt"

// SampleFormat identifies one audio sample representation. Values are
// contiguous and index the descriptor table; packed formats come before
// their planar twins.
type SampleFormat int

const (
	SampleFmtNone SampleFormat = iota - 1

	SampleFmtU8
	SampleFmtS16
	SampleFmtS32
	SampleFmtFLT
	SampleFmtDBL
	SampleFmtU8P
	SampleFmtS16P
	SampleFmtS32P
	SampleFmtFLTP
	SampleFmtDBLP
	SampleFmtS64
	SampleFmtS64P

	sampleFmtCount
)

// SampleFmtDesc describes a single sample format.
type SampleFmtDesc struct {
	Name   string
	Bytes  int
	Planar bool
}

var sampleFmtDescs = [sampleFmtCount]SampleFmtDesc{
	SampleFmtU8:   {Name: "u8", Bytes: 1},
	SampleFmtS16:  {Name: "s16", Bytes: 2},
	SampleFmtS32:  {Name: "s32", Bytes: 4},
	SampleFmtFLT:  {Name: "flt", Bytes: 4},
	SampleFmtDBL:  {Name: "dbl", Bytes: 8},
	SampleFmtU8P:  {Name: "u8p", Bytes: 1, Planar: true},
	SampleFmtS16P: {Name: "s16p", Bytes: 2, Planar: true},
	SampleFmtS32P: {Name: "s32p", Bytes: 4, Planar: true},
	SampleFmtFLTP: {Name: "fltp", Bytes: 4, Planar: true},
	SampleFmtDBLP: {Name: "dblp", Bytes: 8, Planar: true},
	SampleFmtS64:  {Name: "s64", Bytes: 8},
	SampleFmtS64P: {Name: "s64p", Bytes: 8, Planar: true},
}

// IsValid reports whether s indexes a registered sample format.
func (s SampleFormat) IsValid() bool {
	return s >= 0 && s < sampleFmtCount
}

// Desc returns the descriptor of s, or the zero descriptor for invalid values.
func (s SampleFormat) Desc() SampleFmtDesc {
	if !s.IsValid() {
		return SampleFmtDesc{}
	}
	return sampleFmtDescs[s]
}

// IsPlanar reports whether samples of each channel live in their own plane.
func (s SampleFormat) IsPlanar() bool {
	return s.Desc().Planar
}

// BytesPerSample returns the storage size of one sample, 0 for invalid values.
func (s SampleFormat) BytesPerSample() int {
	return s.Desc().Bytes
}

func (s SampleFormat) String() string {
	if s == SampleFmtNone {
		return "none"
	}
	if !s.IsValid() {
		return fmt.Sprintf("samplefmt(%d)", int(s))
	}
	return sampleFmtDescs[s].Name
}

// AllSampleFormats returns every registered sample format in table order.
func AllSampleFormats() []SampleFormat {
	out := make([]SampleFormat, 0, sampleFmtCount)
	for s := SampleFormat(0); s < sampleFmtCount; s++ {
		out = append(out, s)
	}
	return out
}

// ParseSampleFormat resolves a descriptor name to its sample format.
func ParseSampleFormat(name string) (SampleFormat, error) {
	for s := SampleFormat(0); s < sampleFmtCount; s++ {
		if sampleFmtDescs[s].Name == name {
			return s, nil
		}
	}
	return SampleFmtNone, fmt.Errorf("unknown sample format %q", name)
}
