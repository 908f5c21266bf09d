// SPDX-License-Identifier: MIT

package graph

import "errors"

// Sentinel errors of the graph model. Match with errors.Is.
var (
	// ErrMediaMismatch reports an attempt to wire filters of different
	// media types together.
	ErrMediaMismatch = errors.New("media type mismatch")

	// ErrDuplicateFilter reports a second filter with an already used name.
	ErrDuplicateFilter = errors.New("duplicate filter name")

	// ErrUnknownMedia reports a filter declared with an unregistered media
	// type.
	ErrUnknownMedia = errors.New("unknown media type")

	// ErrNilSet reports a nil candidate set where one is required.
	ErrNilSet = errors.New("nil candidate set")
)
