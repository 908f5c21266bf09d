// SPDX-License-Identifier: MIT

package formats

import (
	"fmt"

	"github.com/ManuGH/avgraph/internal/media"
)

// Merge intersects the candidates of a and b and makes the result the single
// set shared by every former owner of either input. On success the survivor
// is returned, all of b's owner slots point at it and the defunct set's
// storage is released. ErrIncompatible reports an empty intersection; both
// inputs are then untouched, element for element and owner for owner.
//
// For video the merge additionally refuses to silently lose capabilities:
// when some pairing of the two sides would preserve alpha (or chroma) but no
// common candidate does, the sets are treated as incompatible so that a
// conversion step can be placed instead.
//
// Both inputs must be owned.
func Merge(a, b *Set, t media.Type) (*Set, error) {
	return mergeFormats(a, b, t, false)
}

// CanMerge reports whether Merge would succeed, without modifying either
// set. It shares Merge's decision path, so the two always agree.
func CanMerge(a, b *Set, t media.Type) bool {
	_, err := mergeFormats(a, b, t, true)
	return err == nil
}

// MergeSampleRates merges two sample-rate sets with the same contract as
// Merge. An empty set means "any rate": merging against it adopts the other
// side's candidates instead of intersecting.
func MergeSampleRates(a, b *Set) (*Set, error) {
	return mergeSampleRates(a, b, false)
}

// CanMergeSampleRates reports whether MergeSampleRates would succeed,
// without modifying either set.
func CanMergeSampleRates(a, b *Set) bool {
	_, err := mergeSampleRates(a, b, true)
	return err == nil
}

func mergeFormats(a, b *Set, t media.Type, check bool) (*Set, error) {
	if !check {
		if err := requireOwned(a, b); err != nil {
			return nil, err
		}
	}
	if a == b {
		return a, nil
	}

	if t == media.TypeVideo && !preservesPixelTraits(a, b) {
		return nil, ErrIncompatible
	}

	common := intersect(a.fmts, b.fmts)
	if len(common) == 0 {
		return nil, ErrIncompatible
	}
	if check {
		return a, nil
	}

	a.fmts = common
	absorb(a, b)
	return a, nil
}

func mergeSampleRates(a, b *Set, check bool) (*Set, error) {
	if !check {
		if err := requireOwned(a, b); err != nil {
			return nil, err
		}
	}
	if a == b {
		return a, nil
	}

	switch {
	case len(a.fmts) == 0 && len(b.fmts) == 0:
		// Both unconstrained; nothing to intersect.
	case len(a.fmts) == 0:
		if check {
			return a, nil
		}
		a.fmts = b.fmts
	case len(b.fmts) == 0:
		// Survivor keeps a's rates.
	default:
		common := intersect(a.fmts, b.fmts)
		if len(common) == 0 {
			return nil, ErrIncompatible
		}
		if check {
			return a, nil
		}
		a.fmts = common
	}
	if check {
		return a, nil
	}

	absorb(a, b)
	return a, nil
}

// intersect keeps the common values of x and y, in x's order.
func intersect(x, y []int64) []int64 {
	var common []int64
	for _, v := range x {
		for _, w := range y {
			if v == w {
				common = append(common, v)
				break
			}
		}
	}
	return common
}

// preservesPixelTraits checks that intersecting a and b cannot lose an alpha
// or chroma capability both sides are able to carry. It scans the full cross
// product: if any pairing keeps the trait but no common format has it, the
// merge must not happen.
func preservesPixelTraits(a, b *Set) bool {
	var pairAlpha, pairChroma, commonAlpha, commonChroma bool
	for _, fa := range a.fmts {
		da := media.PixelFormat(fa).Desc()
		for _, fb := range b.fmts {
			db := media.PixelFormat(fb).Desc()
			pairAlpha = pairAlpha || (da.HasAlpha() && db.HasAlpha())
			pairChroma = pairChroma || (da.Components > 1 && db.Components > 1)
			if fa == fb {
				commonAlpha = commonAlpha || da.HasAlpha()
				commonChroma = commonChroma || da.Components > 1
			}
		}
	}
	if pairAlpha && !commonAlpha {
		return false
	}
	if pairChroma && !commonChroma {
		return false
	}
	return true
}

// absorb retargets every owner of the defunct set onto the survivor and
// releases the defunct storage. Afterwards the survivor's owner count is the
// sum of both inputs'.
func absorb(survivor, defunct *Set) {
	for _, slot := range defunct.refs {
		slot.s = survivor
	}
	survivor.refs = append(survivor.refs, defunct.refs...)
	defunct.refs = nil
	defunct.fmts = nil
}

func requireOwned(a, b *Set) error {
	if len(a.refs) == 0 || len(b.refs) == 0 {
		return fmt.Errorf("merge: %w", ErrUnowned)
	}
	return nil
}
