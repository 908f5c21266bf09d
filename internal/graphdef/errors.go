// SPDX-License-Identifier: MIT

package graphdef

import "errors"

var (
	ErrNoName         = errors.New("filter has no name")
	ErrDuplicateName  = errors.New("duplicate filter name")
	ErrUnknownFilter  = errors.New("link references undeclared filter")
	ErrAudioOnlyField = errors.New("audio-only field on non-audio filter")
	ErrBadValue       = errors.New("value out of range")
)
