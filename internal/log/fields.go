// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRunID = "run_id"
	FieldGraph = "graph"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Negotiation fields
	FieldFilter  = "filter"
	FieldLink    = "link"
	FieldMedia   = "media"
	FieldKind    = "kind"
	FieldPass    = "pass"
	FieldPasses  = "passes"
	FieldOutcome = "outcome"

	// Resolved representation fields
	FieldFormat     = "format"
	FieldSampleRate = "sample_rate"
	FieldLayout     = "layout"
	FieldChannels   = "channels"

	// Path fields
	FieldPath = "path"
)
