// SPDX-License-Identifier: MIT

package formats

import (
	"fmt"
	"strings"

	"github.com/ManuGH/avgraph/internal/media"
)

// countTokenBit marks a set element as a channel-count token rather than a
// real layout mask. Layout masks never reach this bit.
const countTokenBit uint64 = 0x8000000000000000

// EncodeCount returns the set element standing for "any layout with exactly
// n channels". Counts up to 0x7FFFFFFF are representable. The value is
// meaningful only inside candidate sets.
func EncodeCount(n int) media.ChannelLayout {
	return media.ChannelLayout(countTokenBit | uint64(n))
}

// DecodeCount returns the channel count carried by a token, or 0 when l is a
// real layout mask.
func DecodeCount(l media.ChannelLayout) int {
	if uint64(l)&countTokenBit == 0 {
		return 0
	}
	return int(uint64(l) &^ countTokenBit)
}

// LayoutSet is the channel-layout counterpart of Set. Elements are concrete
// layout masks or channel-count tokens. Two flags widen the set beyond its
// elements: allLayouts admits every layout with known speaker disposition,
// allCounts additionally admits bare channel counts. A set with either flag
// carries no elements.
type LayoutSet struct {
	layouts    []media.ChannelLayout
	allLayouts bool
	allCounts  bool
	refs       []*LayoutRef
}

// LayoutRef is one owner slot for a LayoutSet, with the same contract as Ref.
type LayoutRef struct {
	s *LayoutSet
}

// Get returns the attached set, or nil for an empty slot.
func (r *LayoutRef) Get() *LayoutSet {
	if r == nil {
		return nil
	}
	return r.s
}

// NewLayoutSet builds a candidate set from concrete layouts and count
// tokens. The new set has no owners yet.
func NewLayoutSet(layouts ...media.ChannelLayout) *LayoutSet {
	s := &LayoutSet{}
	s.layouts = append(s.layouts, layouts...)
	return s
}

// AddChannelLayout appends l to ls, allocating the set when ls is nil.
func AddChannelLayout(ls *LayoutSet, l media.ChannelLayout) *LayoutSet {
	if ls == nil {
		ls = &LayoutSet{}
	}
	ls.layouts = append(ls.layouts, l)
	return ls
}

// AllChannelLayouts returns the wildcard set admitting every layout with
// known speaker disposition, but no bare channel counts.
func AllChannelLayouts() *LayoutSet {
	return &LayoutSet{allLayouts: true}
}

// AllChannelCounts returns the wildcard set admitting every layout and every
// bare channel count.
func AllChannelCounts() *LayoutSet {
	return &LayoutSet{allLayouts: true, allCounts: true}
}

// Layouts exposes the candidate list. The slice is owned by the set; callers
// must not modify it.
func (s *LayoutSet) Layouts() []media.ChannelLayout {
	return s.layouts
}

// Len returns the number of explicit candidates. Wildcard sets have zero.
func (s *LayoutSet) Len() int {
	return len(s.layouts)
}

// IsAllLayouts reports whether the set admits every known-disposition layout.
func (s *LayoutSet) IsAllLayouts() bool {
	return s.allLayouts
}

// IsAllCounts reports whether the set additionally admits bare channel
// counts.
func (s *LayoutSet) IsAllCounts() bool {
	return s.allCounts
}

// Refcount returns the number of owner slots attached to s.
func (s *LayoutSet) Refcount() int {
	return len(s.refs)
}

// Truncate drops every candidate beyond the first n.
func (s *LayoutSet) Truncate(n int) {
	if n < len(s.layouts) {
		s.layouts = s.layouts[:n]
	}
}

func (s *LayoutSet) String() string {
	if s.allCounts {
		return "{all counts}"
	}
	if s.allLayouts {
		return "{all layouts}"
	}
	vals := make([]string, len(s.layouts))
	for i, l := range s.layouts {
		vals[i] = describeLayout(l)
	}
	return "{" + strings.Join(vals, ", ") + "}"
}

// describeLayout renders a set element, count tokens included.
func describeLayout(l media.ChannelLayout) string {
	if n := DecodeCount(l); n != 0 {
		return fmt.Sprintf("%dch", n)
	}
	return l.String()
}

// Ref registers slot as an owner of s. The slot must be empty.
func (s *LayoutSet) Ref(slot *LayoutRef) {
	slot.s = s
	s.refs = append(s.refs, slot)
}

// Unref removes the slot's registration and clears it. The last owner going
// away releases the set's storage.
func (r *LayoutRef) Unref() {
	s := r.s
	if s == nil {
		return
	}
	r.s = nil
	for i, slot := range s.refs {
		if slot == r {
			s.refs = append(s.refs[:i], s.refs[i+1:]...)
			break
		}
	}
	if len(s.refs) == 0 {
		s.layouts = nil
		s.refs = nil
		s.allLayouts = false
		s.allCounts = false
	}
}

// Move transfers the registration from r to dst, which must be empty.
func (r *LayoutRef) Move(dst *LayoutRef) {
	s := r.s
	if s == nil {
		return
	}
	for i, slot := range s.refs {
		if slot == r {
			s.refs[i] = dst
			break
		}
	}
	dst.s = s
	r.s = nil
}

// Discard releases a set that never gained an owner. Discard on an owned set
// is a no-op.
func (s *LayoutSet) Discard() {
	if s == nil || len(s.refs) > 0 {
		return
	}
	s.layouts = nil
}

// wildness ranks how generic a set is: 0 concrete, 1 all layouts, 2 all
// layouts and counts.
func (s *LayoutSet) wildness() int {
	n := 0
	if s.allLayouts {
		n++
	}
	if s.allCounts {
		n++
	}
	return n
}

// MergeChannelLayouts merges two channel-layout sets with the same ownership
// contract as Merge. The compatibility algebra:
//
//   - an all-counts wildcard absorbs anything; the other side survives as is
//   - a pure all-layouts wildcard keeps only the other side's concrete
//     layouts with known disposition; count tokens do not satisfy it, and a
//     side offering nothing else is incompatible
//   - two concrete sets intersect: equal layouts match, a concrete layout
//     matches a count token with the same channel count (the concrete layout
//     survives), and equal tokens match each other
//
// There is no dry-run variant for layouts.
func MergeChannelLayouts(a, b *LayoutSet) (*LayoutSet, error) {
	if len(a.refs) == 0 || len(b.refs) == 0 {
		return nil, fmt.Errorf("merge channel layouts: %w", ErrUnowned)
	}
	if a == b {
		return a, nil
	}

	// Keep the more generic side in a so each wildcard case is handled once.
	if a.wildness() < b.wildness() {
		a, b = b, a
	}
	if a.wildness() > 0 {
		if a.wildness() == 1 && b.wildness() == 0 {
			var known []media.ChannelLayout
			for _, l := range b.layouts {
				if DecodeCount(l) == 0 {
					known = append(known, l)
				}
			}
			if len(known) == 0 {
				return nil, ErrIncompatible
			}
			b.layouts = known
		}
		absorbLayouts(b, a)
		return b, nil
	}

	common := intersectLayouts(a, b)
	if len(common) == 0 {
		return nil, ErrIncompatible
	}

	// Absorb the smaller owner registry into the larger one.
	if len(a.refs) > len(b.refs) {
		a, b = b, a
	}
	b.layouts = common
	absorbLayouts(b, a)
	return b, nil
}

// intersectLayouts computes the concrete-by-concrete intersection. Exact
// matches are consumed first so an element cannot also satisfy a count token
// in a later round.
func intersectLayouts(a, b *LayoutSet) []media.ChannelLayout {
	var common []media.ChannelLayout
	usedA := make([]bool, len(a.layouts))
	usedB := make([]bool, len(b.layouts))

	for i, la := range a.layouts {
		if DecodeCount(la) != 0 {
			continue
		}
		for j, lb := range b.layouts {
			if !usedB[j] && la == lb {
				common = append(common, la)
				usedA[i] = true
				usedB[j] = true
				break
			}
		}
	}

	for i, la := range a.layouts {
		if usedA[i] || DecodeCount(la) != 0 {
			continue
		}
		token := EncodeCount(la.Channels())
		for _, lb := range b.layouts {
			if lb == token {
				common = append(common, la)
				break
			}
		}
	}
	for j, lb := range b.layouts {
		if usedB[j] || DecodeCount(lb) != 0 {
			continue
		}
		token := EncodeCount(lb.Channels())
		for _, la := range a.layouts {
			if la == token {
				common = append(common, lb)
				break
			}
		}
	}

	for _, la := range a.layouts {
		if DecodeCount(la) == 0 {
			continue
		}
		for _, lb := range b.layouts {
			if la == lb {
				common = append(common, la)
				break
			}
		}
	}
	return common
}

func absorbLayouts(survivor, defunct *LayoutSet) {
	for _, slot := range defunct.refs {
		slot.s = survivor
	}
	survivor.refs = append(survivor.refs, defunct.refs...)
	defunct.refs = nil
	defunct.layouts = nil
	defunct.allLayouts = false
	defunct.allCounts = false
}
