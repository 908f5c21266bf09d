// SPDX-License-Identifier: MIT

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/avgraph/internal/formats"
	"github.com/ManuGH/avgraph/internal/media"
)

func TestAddFilter(t *testing.T) {
	g := New()

	f, err := g.AddFilter("src", media.TypeVideo, nil)
	require.NoError(t, err)
	assert.Equal(t, "src", f.Name)
	assert.Equal(t, media.TypeVideo, f.Media)
	assert.Len(t, g.Filters, 1)
}

func TestAddFilterRejectsDuplicateName(t *testing.T) {
	g := New()
	_, err := g.AddFilter("scale", media.TypeVideo, nil)
	require.NoError(t, err)

	_, err = g.AddFilter("scale", media.TypeVideo, nil)
	assert.ErrorIs(t, err, ErrDuplicateFilter)
}

func TestAddFilterRejectsUnknownMedia(t *testing.T) {
	g := New()
	_, err := g.AddFilter("x", media.Type("subtitle"), nil)
	assert.ErrorIs(t, err, ErrUnknownMedia)
}

func TestConnect(t *testing.T) {
	g := New()
	src, err := g.AddFilter("src", media.TypeAudio, nil)
	require.NoError(t, err)
	dst, err := g.AddFilter("sink", media.TypeAudio, nil)
	require.NoError(t, err)

	l, err := g.Connect(src, dst)
	require.NoError(t, err)

	assert.Same(t, src, l.Src)
	assert.Same(t, dst, l.Dst)
	assert.Equal(t, media.TypeAudio, l.Media)
	assert.Equal(t, int64(-1), l.Format)
	assert.Equal(t, []*Link{l}, src.Outputs)
	assert.Equal(t, []*Link{l}, dst.Inputs)
	assert.Equal(t, []*Link{l}, g.Links)
}

func TestConnectRejectsMediaMismatch(t *testing.T) {
	g := New()
	src, err := g.AddFilter("src", media.TypeVideo, nil)
	require.NoError(t, err)
	dst, err := g.AddFilter("sink", media.TypeAudio, nil)
	require.NoError(t, err)

	_, err = g.Connect(src, dst)
	assert.ErrorIs(t, err, ErrMediaMismatch)
}

func TestInsertSplitsLink(t *testing.T) {
	g := New()
	src, err := g.AddFilter("src", media.TypeVideo, nil)
	require.NoError(t, err)
	dst, err := g.AddFilter("sink", media.TypeVideo, nil)
	require.NoError(t, err)
	l, err := g.Connect(src, dst)
	require.NoError(t, err)

	mid, err := g.AddFilter("scale", media.TypeVideo, nil)
	require.NoError(t, err)
	nl, err := g.Insert(l, mid)
	require.NoError(t, err)

	// Old link now feeds the inserted filter, the new one continues to the
	// original consumer.
	assert.Same(t, src, l.Src)
	assert.Same(t, mid, l.Dst)
	assert.Same(t, mid, nl.Src)
	assert.Same(t, dst, nl.Dst)

	assert.Equal(t, []*Link{l}, mid.Inputs)
	assert.Equal(t, []*Link{nl}, mid.Outputs)
	assert.Equal(t, []*Link{nl}, dst.Inputs)
	assert.Equal(t, []*Link{l, nl}, g.Links)
}

func TestInsertRejectsMediaMismatch(t *testing.T) {
	g := New()
	src, err := g.AddFilter("src", media.TypeVideo, nil)
	require.NoError(t, err)
	dst, err := g.AddFilter("sink", media.TypeVideo, nil)
	require.NoError(t, err)
	l, err := g.Connect(src, dst)
	require.NoError(t, err)

	mid, err := g.AddFilter("aresample", media.TypeAudio, nil)
	require.NoError(t, err)
	_, err = g.Insert(l, mid)
	assert.ErrorIs(t, err, ErrMediaMismatch)
}

func TestInsertMovesConsumerCaps(t *testing.T) {
	g := New()
	src, err := g.AddFilter("src", media.TypeAudio, nil)
	require.NoError(t, err)
	dst, err := g.AddFilter("sink", media.TypeAudio, nil)
	require.NoError(t, err)
	l, err := g.Connect(src, dst)
	require.NoError(t, err)

	// The consumer side already negotiated its candidates.
	fs := formats.NewSet(media.SampleFmtS16, media.SampleFmtFLTP)
	fs.Ref(&l.DstCaps.Formats)
	rs := formats.NewSet(44100, 48000)
	rs.Ref(&l.DstCaps.SampleRates)
	ls := formats.NewLayoutSet(media.LayoutStereo)
	ls.Ref(&l.DstCaps.ChannelLayouts)

	mid, err := g.AddFilter("volume", media.TypeAudio, nil)
	require.NoError(t, err)
	nl, err := g.Insert(l, mid)
	require.NoError(t, err)

	// The sets follow the consumer onto the new link; ownership count is
	// unchanged and the old slots are empty again.
	assert.Same(t, fs, nl.DstCaps.Formats.Get())
	assert.Same(t, rs, nl.DstCaps.SampleRates.Get())
	assert.Same(t, ls, nl.DstCaps.ChannelLayouts.Get())
	assert.Nil(t, l.DstCaps.Formats.Get())
	assert.Nil(t, l.DstCaps.SampleRates.Get())
	assert.Nil(t, l.DstCaps.ChannelLayouts.Get())
	assert.Equal(t, 1, fs.Refcount())
	assert.Equal(t, 1, rs.Refcount())
	assert.Equal(t, 1, ls.Refcount())
}

func TestInsertWithEmptyConsumerCaps(t *testing.T) {
	g := New()
	src, err := g.AddFilter("src", media.TypeVideo, nil)
	require.NoError(t, err)
	dst, err := g.AddFilter("sink", media.TypeVideo, nil)
	require.NoError(t, err)
	l, err := g.Connect(src, dst)
	require.NoError(t, err)

	mid, err := g.AddFilter("crop", media.TypeVideo, nil)
	require.NoError(t, err)
	nl, err := g.Insert(l, mid)
	require.NoError(t, err)

	assert.Nil(t, nl.DstCaps.Formats.Get())
	assert.Nil(t, nl.DstCaps.SampleRates.Get())
	assert.Nil(t, nl.DstCaps.ChannelLayouts.Get())
}
