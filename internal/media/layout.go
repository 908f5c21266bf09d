// SPDX-License-Identifier: MIT

package media

import (
	"fmt"
	"math/bits"
	"strings"
)

// ChannelLayout is a bitmask of speaker positions. The zero value means
// "unspecified"; consumers holding only a channel count use 0 together with
// an explicit count.
type ChannelLayout uint64

// Speaker position bits.
const (
	ChFrontLeft ChannelLayout = 1 << iota
	ChFrontRight
	ChFrontCenter
	ChLowFrequency
	ChBackLeft
	ChBackRight
	ChFrontLeftOfCenter
	ChFrontRightOfCenter
	ChBackCenter
	ChSideLeft
	ChSideRight
	ChTopCenter
	ChTopFrontLeft
	ChTopFrontCenter
	ChTopFrontRight
	ChTopBackLeft
	ChTopBackCenter
	ChTopBackRight
)

// Named layouts. 5.0/5.1 use the side pair; the back variants are explicit.
const (
	LayoutMono        = ChFrontCenter
	LayoutStereo      = ChFrontLeft | ChFrontRight
	Layout2Point1     = LayoutStereo | ChLowFrequency
	LayoutSurround    = LayoutStereo | ChFrontCenter
	Layout3Point1     = LayoutSurround | ChLowFrequency
	Layout4Point0     = LayoutSurround | ChBackCenter
	LayoutQuad        = LayoutStereo | ChBackLeft | ChBackRight
	Layout5Point0     = LayoutSurround | ChSideLeft | ChSideRight
	Layout5Point1     = Layout5Point0 | ChLowFrequency
	Layout5Point0Back = LayoutSurround | ChBackLeft | ChBackRight
	Layout5Point1Back = Layout5Point0Back | ChLowFrequency
	Layout6Point1     = Layout5Point1 | ChBackCenter
	Layout7Point1     = Layout5Point1 | ChBackLeft | ChBackRight
)

// namedLayouts is ordered so String picks the conventional name.
var namedLayouts = []struct {
	name   string
	layout ChannelLayout
}{
	{"mono", LayoutMono},
	{"stereo", LayoutStereo},
	{"2.1", Layout2Point1},
	{"3.0", LayoutSurround},
	{"3.1", Layout3Point1},
	{"4.0", Layout4Point0},
	{"quad", LayoutQuad},
	{"5.0", Layout5Point0},
	{"5.1", Layout5Point1},
	{"5.0(back)", Layout5Point0Back},
	{"5.1(back)", Layout5Point1Back},
	{"6.1", Layout6Point1},
	{"7.1", Layout7Point1},
}

var channelNames = []struct {
	ch   ChannelLayout
	name string
}{
	{ChFrontLeft, "FL"},
	{ChFrontRight, "FR"},
	{ChFrontCenter, "FC"},
	{ChLowFrequency, "LFE"},
	{ChBackLeft, "BL"},
	{ChBackRight, "BR"},
	{ChFrontLeftOfCenter, "FLC"},
	{ChFrontRightOfCenter, "FRC"},
	{ChBackCenter, "BC"},
	{ChSideLeft, "SL"},
	{ChSideRight, "SR"},
	{ChTopCenter, "TC"},
	{ChTopFrontLeft, "TFL"},
	{ChTopFrontCenter, "TFC"},
	{ChTopFrontRight, "TFR"},
	{ChTopBackLeft, "TBL"},
	{ChTopBackCenter, "TBC"},
	{ChTopBackRight, "TBR"},
}

// Channels returns the number of speaker positions in the mask.
func (l ChannelLayout) Channels() int {
	return bits.OnesCount64(uint64(l))
}

// String renders the conventional name when one exists, otherwise the
// speaker positions joined with '+'.
func (l ChannelLayout) String() string {
	if l == 0 {
		return "unspecified"
	}
	for _, n := range namedLayouts {
		if n.layout == l {
			return n.name
		}
	}
	var parts []string
	rest := l
	for _, cn := range channelNames {
		if rest&cn.ch != 0 {
			parts = append(parts, cn.name)
			rest &^= cn.ch
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint64(rest)))
	}
	return strings.Join(parts, "+")
}

// ParseChannelLayout accepts a conventional name ("stereo", "5.1") or a
// '+'-joined list of speaker positions ("FL+FR+LFE").
func ParseChannelLayout(s string) (ChannelLayout, error) {
	for _, n := range namedLayouts {
		if n.name == s {
			return n.layout, nil
		}
	}
	var l ChannelLayout
	for _, part := range strings.Split(s, "+") {
		found := false
		for _, cn := range channelNames {
			if cn.name == part {
				l |= cn.ch
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown channel layout %q", s)
		}
	}
	return l, nil
}
