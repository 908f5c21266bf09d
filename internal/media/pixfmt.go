// SPDX-License-Identifier: MIT

package media

import "fmt"

// PixelFormat identifies one picture representation. Values are contiguous
// and index the descriptor table.
type PixelFormat int

const (
	PixFmtNone PixelFormat = iota - 1

	PixFmtYUV420P
	PixFmtYUYV422
	PixFmtRGB24
	PixFmtBGR24
	PixFmtYUV422P
	PixFmtYUV444P
	PixFmtGray8
	PixFmtUYVY422
	PixFmtNV12
	PixFmtNV21
	PixFmtARGB
	PixFmtRGBA
	PixFmtABGR
	PixFmtBGRA
	PixFmtGray16
	PixFmtYUVA420P
	PixFmtYUVA444P
	PixFmtYUV420P10
	PixFmtYUV422P10
	PixFmtYUV444P10
	PixFmtGBRP
	PixFmtRGB48
	PixFmtRGBA64

	pixFmtCount
)

// PixFlags describe properties of a pixel format's descriptor.
type PixFlags uint8

const (
	// PixFlagPlanar marks formats storing each component in its own plane.
	PixFlagPlanar PixFlags = 1 << iota
	// PixFlagAlpha marks formats carrying an alpha component.
	PixFlagAlpha
	// PixFlagRGB marks RGB-family formats (as opposed to YUV or gray).
	PixFlagRGB
)

// PixFmtDesc describes a single pixel format.
type PixFmtDesc struct {
	Name       string
	Components int
	BitDepth   int
	Flags      PixFlags
}

// HasAlpha reports whether the format carries an alpha component.
func (d PixFmtDesc) HasAlpha() bool { return d.Flags&PixFlagAlpha != 0 }

// IsPlanar reports whether the format stores components in separate planes.
func (d PixFmtDesc) IsPlanar() bool { return d.Flags&PixFlagPlanar != 0 }

// IsRGB reports whether the format belongs to the RGB family.
func (d PixFmtDesc) IsRGB() bool { return d.Flags&PixFlagRGB != 0 }

var pixFmtDescs = [pixFmtCount]PixFmtDesc{
	PixFmtYUV420P:   {Name: "yuv420p", Components: 3, BitDepth: 8, Flags: PixFlagPlanar},
	PixFmtYUYV422:   {Name: "yuyv422", Components: 3, BitDepth: 8},
	PixFmtRGB24:     {Name: "rgb24", Components: 3, BitDepth: 8, Flags: PixFlagRGB},
	PixFmtBGR24:     {Name: "bgr24", Components: 3, BitDepth: 8, Flags: PixFlagRGB},
	PixFmtYUV422P:   {Name: "yuv422p", Components: 3, BitDepth: 8, Flags: PixFlagPlanar},
	PixFmtYUV444P:   {Name: "yuv444p", Components: 3, BitDepth: 8, Flags: PixFlagPlanar},
	PixFmtGray8:     {Name: "gray8", Components: 1, BitDepth: 8},
	PixFmtUYVY422:   {Name: "uyvy422", Components: 3, BitDepth: 8},
	PixFmtNV12:      {Name: "nv12", Components: 3, BitDepth: 8, Flags: PixFlagPlanar},
	PixFmtNV21:      {Name: "nv21", Components: 3, BitDepth: 8, Flags: PixFlagPlanar},
	PixFmtARGB:      {Name: "argb", Components: 4, BitDepth: 8, Flags: PixFlagRGB | PixFlagAlpha},
	PixFmtRGBA:      {Name: "rgba", Components: 4, BitDepth: 8, Flags: PixFlagRGB | PixFlagAlpha},
	PixFmtABGR:      {Name: "abgr", Components: 4, BitDepth: 8, Flags: PixFlagRGB | PixFlagAlpha},
	PixFmtBGRA:      {Name: "bgra", Components: 4, BitDepth: 8, Flags: PixFlagRGB | PixFlagAlpha},
	PixFmtGray16:    {Name: "gray16", Components: 1, BitDepth: 16},
	PixFmtYUVA420P:  {Name: "yuva420p", Components: 4, BitDepth: 8, Flags: PixFlagPlanar | PixFlagAlpha},
	PixFmtYUVA444P:  {Name: "yuva444p", Components: 4, BitDepth: 8, Flags: PixFlagPlanar | PixFlagAlpha},
	PixFmtYUV420P10: {Name: "yuv420p10", Components: 3, BitDepth: 10, Flags: PixFlagPlanar},
	PixFmtYUV422P10: {Name: "yuv422p10", Components: 3, BitDepth: 10, Flags: PixFlagPlanar},
	PixFmtYUV444P10: {Name: "yuv444p10", Components: 3, BitDepth: 10, Flags: PixFlagPlanar},
	PixFmtGBRP:      {Name: "gbrp", Components: 3, BitDepth: 8, Flags: PixFlagPlanar | PixFlagRGB},
	PixFmtRGB48:     {Name: "rgb48", Components: 3, BitDepth: 16, Flags: PixFlagRGB},
	PixFmtRGBA64:    {Name: "rgba64", Components: 4, BitDepth: 16, Flags: PixFlagRGB | PixFlagAlpha},
}

// IsValid reports whether p indexes a registered pixel format.
func (p PixelFormat) IsValid() bool {
	return p >= 0 && p < pixFmtCount
}

// Desc returns the descriptor of p, or the zero descriptor for invalid values.
func (p PixelFormat) Desc() PixFmtDesc {
	if !p.IsValid() {
		return PixFmtDesc{}
	}
	return pixFmtDescs[p]
}

func (p PixelFormat) String() string {
	if p == PixFmtNone {
		return "none"
	}
	if !p.IsValid() {
		return fmt.Sprintf("pixfmt(%d)", int(p))
	}
	return pixFmtDescs[p].Name
}

// AllPixelFormats returns every registered pixel format in table order.
func AllPixelFormats() []PixelFormat {
	out := make([]PixelFormat, 0, pixFmtCount)
	for p := PixelFormat(0); p < pixFmtCount; p++ {
		out = append(out, p)
	}
	return out
}

// ParsePixelFormat resolves a descriptor name to its pixel format.
func ParsePixelFormat(name string) (PixelFormat, error) {
	for p := PixelFormat(0); p < pixFmtCount; p++ {
		if pixFmtDescs[p].Name == name {
			return p, nil
		}
	}
	return PixFmtNone, fmt.Errorf("unknown pixel format %q", name)
}
