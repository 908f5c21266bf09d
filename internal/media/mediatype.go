// SPDX-License-Identifier: MIT

// Package media is the static registry of data representations the
// negotiation core chooses between: pixel formats, sample formats and
// channel layouts. The tables are read-only process-wide data; nothing in
// this package allocates after init.
package media

import "fmt"

// Type identifies the kind of data flowing through a pipeline link.
type Type string

const (
	TypeVideo Type = "video"
	TypeAudio Type = "audio"
)

// IsValid reports whether t is a known media type.
func (t Type) IsValid() bool {
	switch t {
	case TypeVideo, TypeAudio:
		return true
	}
	return false
}

func (t Type) String() string {
	return string(t)
}

// ParseType converts a string into a Type.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown media type %q", s)
	}
	return t, nil
}
