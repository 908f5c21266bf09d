// SPDX-License-Identifier: MIT

package formats

import "errors"

// Sentinel errors of the candidate-set engine. Match with errors.Is; most
// call sites receive them wrapped with context.
var (
	// ErrIncompatible reports a merge whose inputs share no common
	// candidate. Both inputs are left untouched when it is returned.
	ErrIncompatible = errors.New("no common candidates")

	// ErrUnowned reports a merge on a set without owners. Merging retargets
	// owner slots; a set nothing points at has no business being merged.
	ErrUnowned = errors.New("set has no owners")

	// ErrEmpty reports a candidate list with no entries where at least one
	// is required.
	ErrEmpty = errors.New("empty candidate list")

	// ErrDuplicate reports a candidate list containing the same value twice.
	ErrDuplicate = errors.New("duplicated candidate")

	// ErrLayoutConflict reports a channel-layout list whose entries
	// contradict each other.
	ErrLayoutConflict = errors.New("conflicting channel layout entries")
)
