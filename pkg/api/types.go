package api

import (
	"encoding/json"

	"github.com/platinummonkey/axle/pkg/history"
	"github.com/platinummonkey/axle/pkg/validation"
)

// CheckRequest is the payload of POST /api/v1/check: a set of documents to
// validate together, independent of the configured corpus.
type CheckRequest struct {
	// Label names the submission in the report's source field. Optional;
	// defaults to "request".
	Label string `json:"label,omitempty"`
	// Documents are the definition documents to check against each other.
	Documents []CheckDocument `json:"documents"`
}

// CheckDocument is one document of an ad-hoc check request.
type CheckDocument struct {
	// Path identifies the document in violation origins, e.g.
	// "someip/door_control.json".
	Path string `json:"path"`
	// Namespace overrides the namespace inferred from the path prefix.
	// Optional.
	Namespace string `json:"namespace,omitempty"`
	// Content is the raw document body.
	Content json.RawMessage `json:"content"`
}

// RunList is the response of GET /api/v1/runs.
type RunList struct {
	Runs   []*history.RunSummary `json:"runs"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// KindInfo describes one violation kind for GET /api/v1/kinds.
type KindInfo struct {
	Kind        validation.Kind `json:"kind"`
	Description string          `json:"description"`
}
