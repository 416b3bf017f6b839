package validation

import (
	"fmt"

	"github.com/platinummonkey/axle/pkg/definition"
)

// ExtractServices converts the interface blocks of a document into Service
// entities. Blocks that declare no service id are skipped, as are methods
// and events that declare no id; neither is an error. Blocks and members are
// visited in sorted-name order so attribution is stable across runs.
//
// The first duplicate method or event id inside a block aborts extraction of
// the whole document with a DuplicateMethodID or DuplicateEventID violation:
// a document that cannot be trusted contributes no entities at all.
//
// Uniqueness here is per entity. Two blocks in the same document may reuse
// the same method ids freely, and cross-document service id collisions are
// the registry's concern, not the extractor's.
func ExtractServices(doc *definition.Document, origin string) ([]*Service, error) {
	if doc == nil || len(doc.SomeIP) == 0 {
		return nil, nil
	}

	services := make([]*Service, 0, len(doc.SomeIP))
	for _, name := range sortedNames(doc.SomeIP) {
		block := doc.SomeIP[name]
		if block.ServiceID == nil {
			continue
		}

		svc := &Service{
			Name:      name,
			ServiceID: *block.ServiceID,
			Origin:    origin,
			Methods:   make(map[uint32]string, len(block.Methods)),
			Events:    make(map[uint32]string, len(block.Events)),
		}

		for _, member := range sortedNames(block.Methods) {
			id := block.Methods[member].ID
			if id == nil {
				continue
			}
			if existing, exists := svc.Methods[*id]; exists {
				return nil, &Violation{
					Kind:     KindDuplicateMethodID,
					ID:       *id,
					Name:     member,
					Conflict: existing,
					Origin:   origin,
					Message:  fmt.Sprintf("method id %d in interface %q is already used by method %q", *id, name, existing),
				}
			}
			svc.Methods[*id] = member
		}

		for _, member := range sortedNames(block.Events) {
			id := block.Events[member].ID
			if id == nil {
				continue
			}
			if existing, exists := svc.Events[*id]; exists {
				return nil, &Violation{
					Kind:     KindDuplicateEventID,
					ID:       *id,
					Name:     member,
					Conflict: existing,
					Origin:   origin,
					Message:  fmt.Sprintf("event id %d in interface %q is already used by event %q", *id, name, existing),
				}
			}
			svc.Events[*id] = member
		}

		services = append(services, svc)
	}
	return services, nil
}

// ExtractDiagnostic converts the diagnostics section of a document into a
// single Diagnostic entity. Entries that declare no identifier are skipped.
// A document without a diagnostics section, or whose section yields no
// identifiers at all, produces no entity and no error.
//
// Job and trouble-code identifiers are independent spaces; a duplicate
// within either aborts the document with a DuplicateJobID or DuplicateDTCID
// violation.
func ExtractDiagnostic(doc *definition.Document, origin string) (*Diagnostic, error) {
	if doc == nil || doc.Diag == nil {
		return nil, nil
	}

	diag := &Diagnostic{
		Origin: origin,
		Jobs:   make(map[uint32]string, len(doc.Diag.Jobs)),
		DTCs:   make(map[uint32]string, len(doc.Diag.DTCs)),
	}

	for _, name := range sortedNames(doc.Diag.Jobs) {
		id := doc.Diag.Jobs[name].SubServiceID
		if id == nil {
			continue
		}
		if existing, exists := diag.Jobs[*id]; exists {
			return nil, &Violation{
				Kind:     KindDuplicateJobID,
				ID:       *id,
				Name:     name,
				Conflict: existing,
				Origin:   origin,
				Message:  fmt.Sprintf("diagnostic job id %d is already used by job %q", *id, existing),
			}
		}
		diag.Jobs[*id] = name
	}

	for _, name := range sortedNames(doc.Diag.DTCs) {
		id := doc.Diag.DTCs[name].ID
		if id == nil {
			continue
		}
		if existing, exists := diag.DTCs[*id]; exists {
			return nil, &Violation{
				Kind:     KindDuplicateDTCID,
				ID:       *id,
				Name:     name,
				Conflict: existing,
				Origin:   origin,
				Message:  fmt.Sprintf("trouble code id %d is already used by %q", *id, existing),
			}
		}
		diag.DTCs[*id] = name
	}

	if len(diag.Jobs) == 0 && len(diag.DTCs) == 0 {
		return nil, nil
	}
	return diag, nil
}
