package validation

import (
	"errors"
	"fmt"
)

// Kind is the stable machine-readable code of a consistency violation.
type Kind string

const (
	// KindContentMismatch marks a document that lacks the content section
	// its namespace requires.
	KindContentMismatch Kind = "CONTENT_MISMATCH"
	// KindMalformedDocument marks a document that could not be parsed
	// against the definition schema.
	KindMalformedDocument Kind = "MALFORMED_DOCUMENT"
	// KindDuplicateServiceID marks a service id already registered by
	// another interface anywhere in the corpus.
	KindDuplicateServiceID Kind = "DUPLICATE_SERVICE_ID"
	// KindDuplicateMethodID marks a method id used twice within one
	// interface block.
	KindDuplicateMethodID Kind = "DUPLICATE_METHOD_ID"
	// KindDuplicateEventID marks an event id used twice within one
	// interface block.
	KindDuplicateEventID Kind = "DUPLICATE_EVENT_ID"
	// KindDuplicateJobID marks a diagnostic job sub-service id claimed
	// twice, within one document or across the corpus.
	KindDuplicateJobID Kind = "DUPLICATE_JOB_ID"
	// KindDuplicateDTCID marks a diagnostic trouble-code id claimed twice,
	// within one document or across the corpus.
	KindDuplicateDTCID Kind = "DUPLICATE_DTC_ID"
)

// Kinds returns the full taxonomy in reporting order.
func Kinds() []Kind {
	return []Kind{
		KindMalformedDocument,
		KindContentMismatch,
		KindDuplicateServiceID,
		KindDuplicateMethodID,
		KindDuplicateEventID,
		KindDuplicateJobID,
		KindDuplicateDTCID,
	}
}

// Description returns a one-line human explanation of the kind, suitable for
// the kinds listing in the CLI and the HTTP API.
func (k Kind) Description() string {
	switch k {
	case KindContentMismatch:
		return "document does not carry the content section its namespace requires"
	case KindMalformedDocument:
		return "document is not valid JSON or does not match the definition schema"
	case KindDuplicateServiceID:
		return "service id is already registered by another interface in the corpus"
	case KindDuplicateMethodID:
		return "method id is used more than once within one interface"
	case KindDuplicateEventID:
		return "event id is used more than once within one interface"
	case KindDuplicateJobID:
		return "diagnostic job sub-service id is claimed more than once"
	case KindDuplicateDTCID:
		return "diagnostic trouble code id is claimed more than once"
	default:
		return "unknown violation kind"
	}
}

// Violation is one concrete rule failure. It is both the machine-readable
// report record and a Go error, so extraction and admission can fail with it
// directly.
//
// ID is meaningful only for the duplicate-identifier kinds. Conflict and
// ConflictOrigin name the party that registered the identifier first; for
// violations contained within a single document, ConflictOrigin equals
// Origin and is omitted from messages.
type Violation struct {
	Kind           Kind   `json:"kind"`
	ID             uint32 `json:"id"`
	Name           string `json:"name,omitempty"`
	Conflict       string `json:"conflict,omitempty"`
	Origin         string `json:"origin,omitempty"`
	ConflictOrigin string `json:"conflict_origin,omitempty"`
	Message        string `json:"message"`
}

// Error implements the error interface.
func (v *Violation) Error() string {
	if v.Origin != "" {
		return fmt.Sprintf("%s: %s (%s)", v.Kind, v.Message, v.Origin)
	}
	return fmt.Sprintf("%s: %s", v.Kind, v.Message)
}

// AsViolation unwraps err into a Violation. The second return is false when
// err carries no Violation anywhere in its chain.
func AsViolation(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// NewMalformedDocument wraps a parse failure into the taxonomy. The cause's
// text is preserved so reports show what the decoder rejected.
func NewMalformedDocument(origin string, cause error) *Violation {
	return &Violation{
		Kind:    KindMalformedDocument,
		Origin:  origin,
		Message: cause.Error(),
	}
}
