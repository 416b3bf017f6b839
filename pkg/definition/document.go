package definition

import (
	"encoding/json"
	"fmt"
)

// Document is the parsed form of one service-definition file. Both sections
// are optional at the schema level; which ones must be present for a given
// file is a namespace contract, not a schema rule.
type Document struct {
	SomeIP map[string]InterfaceBlock `json:"someip,omitempty"`
	Diag   *DiagBlock                `json:"diag,omitempty"`
}

// InterfaceBlock is one named service interface. A block without a declared
// service id is a template or an include fragment and produces no entity.
type InterfaceBlock struct {
	ServiceID *uint32           `json:"service_id,omitempty"`
	Methods   map[string]Member `json:"methods,omitempty"`
	Events    map[string]Member `json:"events,omitempty"`
}

// Member is a single method or event entry. Entries without an id are
// placeholders and are skipped during extraction.
type Member struct {
	ID *uint32 `json:"id,omitempty"`
}

// DiagBlock is the diagnostics section of a document: jobs addressed by
// sub-service identifier and diagnostic trouble codes addressed by DTC
// identifier.
type DiagBlock struct {
	Jobs map[string]Job `json:"job,omitempty"`
	DTCs map[string]DTC `json:"dtc,omitempty"`
}

// Job is one diagnostic job entry.
type Job struct {
	SubServiceID *uint32 `json:"sub_service_id,omitempty"`
}

// DTC is one diagnostic trouble code entry.
type DTC struct {
	ID *uint32 `json:"id,omitempty"`
}

// Parse decodes a service-definition document. Any shape the schema cannot
// express (non-object root, string where an identifier is expected, negative
// or fractional identifiers) fails here; nothing downstream re-validates
// structure. Unknown keys are tolerated so documents may carry sections this
// tool does not inspect.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse service definition: %w", err)
	}
	return &doc, nil
}

// HasInterfaces reports whether the document carries an interface section,
// even an empty one. Absent and empty sections are distinct: an absent
// section fails the interface namespace contract, an empty one does not.
func (d *Document) HasInterfaces() bool {
	return d != nil && d.SomeIP != nil
}

// HasDiagnostics reports whether the document carries a diagnostics section.
func (d *Document) HasDiagnostics() bool {
	return d != nil && d.Diag != nil
}
