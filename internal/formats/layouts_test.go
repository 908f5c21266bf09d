// SPDX-License-Identifier: MIT

package formats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/avgraph/internal/media"
)

func attachLayoutRefs(s *LayoutSet, n int) []*LayoutRef {
	refs := make([]*LayoutRef, n)
	for i := range refs {
		refs[i] = &LayoutRef{}
		s.Ref(refs[i])
	}
	return refs
}

func TestCountTokenCodec(t *testing.T) {
	assert.Equal(t, media.ChannelLayout(0x8000000000000002), EncodeCount(2))

	for _, n := range []int{0, 1, 2, 6, 255, 0x7FFFFFFF} {
		assert.Equal(t, n, DecodeCount(EncodeCount(n)), "count %d", n)
	}

	// Real layout masks decode to 0.
	assert.Zero(t, DecodeCount(media.LayoutStereo))
	assert.Zero(t, DecodeCount(media.Layout7Point1))
	assert.Zero(t, DecodeCount(0))
}

func TestLayoutSetLifecycle(t *testing.T) {
	s := NewLayoutSet(media.LayoutStereo, media.Layout5Point1)
	assert.Equal(t, 0, s.Refcount())
	assert.Equal(t, 2, s.Len())

	refs := attachLayoutRefs(s, 2)
	assert.Equal(t, 2, s.Refcount())

	var moved LayoutRef
	refs[0].Move(&moved)
	assert.Nil(t, refs[0].Get())
	assert.Same(t, s, moved.Get())
	assert.Equal(t, 2, s.Refcount())

	moved.Unref()
	refs[1].Unref()
	assert.Equal(t, 0, s.Refcount())
	assert.Nil(t, s.Layouts())
}

func TestLayoutSetDiscard(t *testing.T) {
	s := NewLayoutSet(media.LayoutStereo)
	s.Discard()
	assert.Nil(t, s.Layouts())

	owned := NewLayoutSet(media.LayoutStereo)
	attachLayoutRefs(owned, 1)
	owned.Discard()
	assert.Equal(t, 1, owned.Len())
}

func TestMergeChannelLayoutsAllCountsAbsorbed(t *testing.T) {
	wild := AllChannelCounts()
	attachLayoutRefs(wild, 1)
	concrete := NewLayoutSet(media.LayoutStereo, EncodeCount(6))
	refs := attachLayoutRefs(concrete, 1)

	merged, err := MergeChannelLayouts(wild, concrete)
	require.NoError(t, err)

	assert.Same(t, concrete, merged, "the concrete side survives")
	assert.Equal(t, []media.ChannelLayout{media.LayoutStereo, EncodeCount(6)}, merged.Layouts(),
		"count tokens survive against an all-counts wildcard")
	assert.False(t, merged.IsAllLayouts())
	assert.Equal(t, 2, merged.Refcount())
	assert.Same(t, merged, refs[0].Get())
}

func TestMergeChannelLayoutsPureWildcardDropsTokens(t *testing.T) {
	wild := AllChannelLayouts()
	attachLayoutRefs(wild, 1)
	concrete := NewLayoutSet(media.LayoutStereo, EncodeCount(6))
	attachLayoutRefs(concrete, 1)

	merged, err := MergeChannelLayouts(wild, concrete)
	require.NoError(t, err)

	// A bare all-layouts wildcard is satisfied by known dispositions only.
	assert.Equal(t, []media.ChannelLayout{media.LayoutStereo}, merged.Layouts())
	assert.Equal(t, 2, merged.Refcount())
}

func TestMergeChannelLayoutsPureWildcardAgainstTokensOnly(t *testing.T) {
	wild := AllChannelLayouts()
	attachLayoutRefs(wild, 1)
	tokens := NewLayoutSet(EncodeCount(2), EncodeCount(6))
	attachLayoutRefs(tokens, 1)

	_, err := MergeChannelLayouts(wild, tokens)
	require.ErrorIs(t, err, ErrIncompatible)

	assert.True(t, wild.IsAllLayouts(), "inputs stay untouched on incompatibility")
	assert.Equal(t, []media.ChannelLayout{EncodeCount(2), EncodeCount(6)}, tokens.Layouts())
	assert.Equal(t, 1, wild.Refcount())
	assert.Equal(t, 1, tokens.Refcount())
}

func TestMergeChannelLayoutsWildcardRanking(t *testing.T) {
	counts := AllChannelCounts()
	attachLayoutRefs(counts, 1)
	layouts := AllChannelLayouts()
	attachLayoutRefs(layouts, 1)

	merged, err := MergeChannelLayouts(counts, layouts)
	require.NoError(t, err)
	assert.Same(t, layouts, merged, "the less generic wildcard survives")
	assert.True(t, merged.IsAllLayouts())
	assert.False(t, merged.IsAllCounts())
	assert.Equal(t, 2, merged.Refcount())
}

func TestMergeChannelLayoutsConcrete(t *testing.T) {
	t.Run("exact intersection", func(t *testing.T) {
		a := NewLayoutSet(media.LayoutMono, media.LayoutStereo, media.Layout5Point1)
		attachLayoutRefs(a, 1)
		b := NewLayoutSet(media.LayoutStereo, media.Layout5Point1, media.Layout7Point1)
		attachLayoutRefs(b, 1)

		merged, err := MergeChannelLayouts(a, b)
		require.NoError(t, err)
		assert.ElementsMatch(t,
			[]media.ChannelLayout{media.LayoutStereo, media.Layout5Point1},
			merged.Layouts())
	})

	t.Run("concrete layout beats count token", func(t *testing.T) {
		a := NewLayoutSet(media.LayoutStereo)
		attachLayoutRefs(a, 1)
		b := NewLayoutSet(EncodeCount(2))
		attachLayoutRefs(b, 1)

		merged, err := MergeChannelLayouts(a, b)
		require.NoError(t, err)
		assert.Equal(t, []media.ChannelLayout{media.LayoutStereo}, merged.Layouts(),
			"the concrete layout is the surviving element")
	})

	t.Run("token to token", func(t *testing.T) {
		a := NewLayoutSet(EncodeCount(6), EncodeCount(8))
		attachLayoutRefs(a, 1)
		b := NewLayoutSet(EncodeCount(6))
		attachLayoutRefs(b, 1)

		merged, err := MergeChannelLayouts(a, b)
		require.NoError(t, err)
		assert.Equal(t, []media.ChannelLayout{EncodeCount(6)}, merged.Layouts())
	})

	t.Run("count mismatch is incompatible", func(t *testing.T) {
		a := NewLayoutSet(media.LayoutStereo)
		attachLayoutRefs(a, 1)
		b := NewLayoutSet(EncodeCount(6))
		attachLayoutRefs(b, 1)

		_, err := MergeChannelLayouts(a, b)
		require.ErrorIs(t, err, ErrIncompatible)
		assert.Equal(t, []media.ChannelLayout{media.LayoutStereo}, a.Layouts())
		assert.Equal(t, []media.ChannelLayout{EncodeCount(6)}, b.Layouts())
	})

	t.Run("different six channel dispositions do not match", func(t *testing.T) {
		a := NewLayoutSet(media.Layout5Point1)
		attachLayoutRefs(a, 1)
		b := NewLayoutSet(media.Layout5Point1Back)
		attachLayoutRefs(b, 1)

		_, err := MergeChannelLayouts(a, b)
		require.ErrorIs(t, err, ErrIncompatible)
	})

	t.Run("disposition matches its count token among other layouts", func(t *testing.T) {
		a := NewLayoutSet(media.Layout5Point1)
		attachLayoutRefs(a, 1)
		b := NewLayoutSet(media.LayoutQuad, EncodeCount(6))
		attachLayoutRefs(b, 1)

		merged, err := MergeChannelLayouts(a, b)
		require.NoError(t, err)
		assert.Equal(t, []media.ChannelLayout{media.Layout5Point1}, merged.Layouts())
	})
}

func TestMergeChannelLayoutsSurvivorHasLargerRegistry(t *testing.T) {
	a := NewLayoutSet(media.LayoutStereo)
	attachLayoutRefs(a, 1)
	b := NewLayoutSet(media.LayoutStereo)
	bRefs := attachLayoutRefs(b, 3)

	merged, err := MergeChannelLayouts(a, b)
	require.NoError(t, err)
	assert.Same(t, b, merged, "fewer slots need retargeting this way")
	assert.Equal(t, 4, merged.Refcount())
	assert.Same(t, merged, bRefs[0].Get())
}

func TestMergeChannelLayoutsSameSetIsNoop(t *testing.T) {
	a := NewLayoutSet(media.LayoutStereo)
	attachLayoutRefs(a, 2)

	merged, err := MergeChannelLayouts(a, a)
	require.NoError(t, err)
	assert.Same(t, a, merged)
	assert.Equal(t, 2, a.Refcount())
}

func TestMergeChannelLayoutsRequiresOwners(t *testing.T) {
	a := NewLayoutSet(media.LayoutStereo)
	b := NewLayoutSet(media.LayoutStereo)
	attachLayoutRefs(a, 1)

	_, err := MergeChannelLayouts(a, b)
	require.ErrorIs(t, err, ErrUnowned)
}

func TestLayoutSetString(t *testing.T) {
	assert.Equal(t, "{all counts}", AllChannelCounts().String())
	assert.Equal(t, "{all layouts}", AllChannelLayouts().String())
	assert.Equal(t, "{stereo, 6ch}", NewLayoutSet(media.LayoutStereo, EncodeCount(6)).String())
}
