// SPDX-License-Identifier: MIT

package negotiate

import "errors"

var (
	// ErrNoCandidates means a link endpoint never received a candidate set
	// during the query phase.
	ErrNoCandidates = errors.New("no candidate set attached")

	// ErrUnresolved means a wildcard candidate set survived merging, so no
	// concrete representation can be chosen.
	ErrUnresolved = errors.New("wildcard candidates left unresolved")

	// ErrNoSettle means the merge loop was still making progress when the
	// pass limit was reached.
	ErrNoSettle = errors.New("negotiation did not settle")
)
