// SPDX-License-Identifier: MIT

// Package formats implements the shared candidate sets at the heart of
// format negotiation. A Set lists the representations one side of a pipeline
// link can handle; every endpoint accepting the same candidates holds a Ref
// to one shared Set. Merging two sets intersects their candidates and
// retargets all owners of both onto the single survivor, which is what lets
// a choice made anywhere in the graph propagate everywhere without walking
// it.
//
// Sets are single-threaded by contract, like the graphs they negotiate.
package formats

import (
	"fmt"
	"strings"

	"github.com/ManuGH/avgraph/internal/media"
)

// Set is an ordered candidate list for one negotiation kind: pixel formats,
// sample formats or sample rates. The element type is a plain int64; the
// kind in play defines the semantic. The owner registry doubles as the
// reference count: a set is alive exactly as long as at least one Ref points
// at it.
type Set struct {
	fmts []int64
	refs []*Ref
}

// Ref is one owner slot for a Set. Endpoints embed a Ref by value; its zero
// value means "no set attached". The slot's address is its identity in the
// owner registry, so an attached Ref must not be copied.
type Ref struct {
	s *Set
}

// Get returns the attached set, or nil for an empty slot.
func (r *Ref) Get() *Set {
	if r == nil {
		return nil
	}
	return r.s
}

// NewSet builds a candidate set from a list of values. A negative value acts
// as a list terminator, so sentinel-terminated format tables can be passed
// straight through. The new set has no owners yet.
func NewSet[T ~int | ~int32 | ~int64](fmts ...T) *Set {
	s := &Set{}
	for _, f := range fmts {
		if f < 0 {
			break
		}
		s.fmts = append(s.fmts, int64(f))
	}
	return s
}

// Add appends f to s, allocating the set when s is nil. Values are stored
// as given; duplicate detection is the validators' job.
func Add[T ~int | ~int32 | ~int64](s *Set, f T) *Set {
	if s == nil {
		s = &Set{}
	}
	s.fmts = append(s.fmts, int64(f))
	return s
}

// AllFormats returns a fresh set holding every registered representation of
// the given media type.
func AllFormats(t media.Type) *Set {
	s := &Set{}
	switch t {
	case media.TypeVideo:
		for _, p := range media.AllPixelFormats() {
			s.fmts = append(s.fmts, int64(p))
		}
	case media.TypeAudio:
		for _, sf := range media.AllSampleFormats() {
			s.fmts = append(s.fmts, int64(sf))
		}
	}
	return s
}

// AllSampleRates returns the unconstrained sample-rate set. It is empty on
// purpose: an empty rate set means "any rate", and merging against it adopts
// the other side's candidates.
func AllSampleRates() *Set {
	return &Set{}
}

// PlanarSampleFormats returns the sample formats with planar layout.
func PlanarSampleFormats() *Set {
	s := &Set{}
	for _, sf := range media.AllSampleFormats() {
		if sf.IsPlanar() {
			s.fmts = append(s.fmts, int64(sf))
		}
	}
	return s
}

// FilterPixelFormats returns every pixel format whose descriptor carries all
// flags in want and none in reject.
func FilterPixelFormats(want, reject media.PixFlags) *Set {
	s := &Set{}
	for _, p := range media.AllPixelFormats() {
		d := p.Desc()
		if d.Flags&want == want && d.Flags&reject == 0 {
			s.fmts = append(s.fmts, int64(p))
		}
	}
	return s
}

// Formats exposes the candidate list. The slice is owned by the set; callers
// must not modify it.
func (s *Set) Formats() []int64 {
	return s.fmts
}

// Len returns the number of candidates.
func (s *Set) Len() int {
	return len(s.fmts)
}

// Refcount returns the number of owner slots attached to s.
func (s *Set) Refcount() int {
	return len(s.refs)
}

// Truncate drops every candidate beyond the first n. Since the set is shared
// the cut is visible through every owner, which is how a resolved choice
// propagates.
func (s *Set) Truncate(n int) {
	if n < len(s.fmts) {
		s.fmts = s.fmts[:n]
	}
}

func (s *Set) String() string {
	vals := make([]string, len(s.fmts))
	for i, f := range s.fmts {
		vals[i] = fmt.Sprintf("%d", f)
	}
	return "{" + strings.Join(vals, ", ") + "}"
}

// Ref registers slot as an owner of s. The slot must be empty.
func (s *Set) Ref(slot *Ref) {
	slot.s = s
	s.refs = append(s.refs, slot)
}

// Unref removes the slot's registration and clears it. The last owner going
// away releases the set's storage.
func (r *Ref) Unref() {
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
		s.fmts = nil
		s.refs = nil
	}
}

// Move transfers the registration from r to dst, which must be empty. The
// owner count does not change:
//
//	before         after
//	r -----> set   r        set
//	               dst ----> set
func (r *Ref) Move(dst *Ref) {
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

// Discard releases a set that never gained an owner, the fate of a candidate
// list built for a stage that turned out to have no connected endpoints.
// Discard on an owned set is a no-op; owned sets are released through Unref.
func (s *Set) Discard() {
	if s == nil || len(s.refs) > 0 {
		return
	}
	s.fmts = nil
}
