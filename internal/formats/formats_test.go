// SPDX-License-Identifier: MIT

package formats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/avgraph/internal/media"
)

func attachRefs(s *Set, n int) []*Ref {
	refs := make([]*Ref, n)
	for i := range refs {
		refs[i] = &Ref{}
		s.Ref(refs[i])
	}
	return refs
}

func TestNewSetStopsAtNegativeTerminator(t *testing.T) {
	s := NewSet(5, 9, -1)
	assert.Equal(t, []int64{5, 9}, s.Formats())

	// Values after the terminator are ignored even when valid.
	s = NewSet(5, -1, 9)
	assert.Equal(t, []int64{5}, s.Formats())

	s = NewSet(media.PixFmtRGB24, media.PixFmtNV12, media.PixFmtNone)
	assert.Equal(t, []int64{int64(media.PixFmtRGB24), int64(media.PixFmtNV12)}, s.Formats())
}

func TestAdd(t *testing.T) {
	var s *Set
	s = Add(s, 44100)
	s = Add(s, 48000)
	require.NotNil(t, s)
	assert.Equal(t, []int64{44100, 48000}, s.Formats())
	assert.Equal(t, 0, s.Refcount())
}

func TestAllFormats(t *testing.T) {
	v := AllFormats(media.TypeVideo)
	assert.Equal(t, len(media.AllPixelFormats()), v.Len())

	a := AllFormats(media.TypeAudio)
	assert.Equal(t, len(media.AllSampleFormats()), a.Len())

	// The unconstrained rate set is empty: empty means any rate.
	assert.Equal(t, 0, AllSampleRates().Len())
}

func TestPlanarSampleFormats(t *testing.T) {
	s := PlanarSampleFormats()
	require.NotZero(t, s.Len())
	for _, f := range s.Formats() {
		assert.True(t, media.SampleFormat(f).IsPlanar(), "%s", media.SampleFormat(f))
	}
}

func TestFilterPixelFormats(t *testing.T) {
	s := FilterPixelFormats(media.PixFlagAlpha, media.PixFlagRGB)
	require.NotZero(t, s.Len())
	for _, f := range s.Formats() {
		d := media.PixelFormat(f).Desc()
		assert.True(t, d.HasAlpha())
		assert.False(t, d.IsRGB())
	}

	none := FilterPixelFormats(media.PixFlagAlpha|media.PixFlagRGB|media.PixFlagPlanar, 0)
	assert.Zero(t, none.Len())
}

func TestRefUnrefLifecycle(t *testing.T) {
	s := NewSet(1, 2, 3)
	assert.Equal(t, 0, s.Refcount())

	refs := attachRefs(s, 3)
	assert.Equal(t, 3, s.Refcount())
	for _, r := range refs {
		assert.Same(t, s, r.Get())
	}

	refs[1].Unref()
	assert.Equal(t, 2, s.Refcount())
	assert.Nil(t, refs[1].Get())
	assert.Equal(t, []int64{1, 2, 3}, s.Formats())

	// Unref on an empty slot is harmless.
	refs[1].Unref()
	assert.Equal(t, 2, s.Refcount())

	refs[0].Unref()
	refs[2].Unref()
	assert.Equal(t, 0, s.Refcount())
	assert.Nil(t, s.Formats(), "storage is released with the last owner")
}

func TestRefMove(t *testing.T) {
	s := NewSet(7, 8)
	var from, to Ref
	s.Ref(&from)

	from.Move(&to)
	assert.Nil(t, from.Get())
	assert.Same(t, s, to.Get())
	assert.Equal(t, 1, s.Refcount(), "moving does not change the owner count")

	// The moved slot releases the set like any other owner.
	to.Unref()
	assert.Equal(t, 0, s.Refcount())
	assert.Nil(t, s.Formats())
}

func TestMoveEmptySlot(t *testing.T) {
	var from, to Ref
	from.Move(&to)
	assert.Nil(t, from.Get())
	assert.Nil(t, to.Get())
}

func TestDiscard(t *testing.T) {
	s := NewSet(1, 2)
	s.Discard()
	assert.Nil(t, s.Formats())
	assert.Equal(t, 0, s.Refcount())

	owned := NewSet(1, 2)
	attachRefs(owned, 1)
	owned.Discard()
	assert.Equal(t, []int64{1, 2}, owned.Formats(), "owned sets are not discarded")
}

func TestTruncate(t *testing.T) {
	s := NewSet(1, 2, 3)
	refs := attachRefs(s, 2)

	s.Truncate(1)
	assert.Equal(t, []int64{1}, s.Formats())
	assert.Equal(t, []int64{1}, refs[1].Get().Formats(), "the cut is visible through every owner")

	s.Truncate(5)
	assert.Equal(t, []int64{1}, s.Formats())
}

func TestSetString(t *testing.T) {
	assert.Equal(t, "{1, 2, 3}", NewSet(1, 2, 3).String())
	assert.Equal(t, "{}", (&Set{}).String())
}
