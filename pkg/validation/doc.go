// Package validation implements the consistency rules for bus definition
// corpora: the namespace content contract, entity extraction with per-entity
// identifier checks, and the corpus-wide identifier registry.
//
// # Overview
//
// Generated bus stacks dispatch purely on numeric identifiers, so two
// definitions claiming the same identifier produce silent routing faults at
// runtime rather than build failures. This package catches those collisions
// statically.
//
// Three layers cooperate:
//
// Classifier: a document found under a namespace must carry that namespace's
// content section. A diagnostics file without a diag section is misfiled or
// mistyped and is rejected before extraction.
//
// Extractors: convert a parsed document into entities. ExtractServices yields
// one Service per interface block that declares a service id, checking method
// and event identifiers for uniqueness within the block (methods and events
// are independent identifier spaces). ExtractDiagnostic yields at most one
// Diagnostic per document, checking job and trouble-code identifiers the same
// way. Extraction is pure: the same bytes always produce the same outcome.
//
// Registry: the corpus-wide identifier table. Service ids are globally unique
// across all documents; diagnostic job and DTC identifiers each form a global
// space of their own. Admission is atomic per entity: either every identifier
// the entity claims is free and all are committed, or none are and the
// registry is untouched. First registration wins; the conflicting entity is
// reported and dropped.
//
// # Violations
//
// Every rule failure is a Violation, which doubles as a Go error. Violations
// carry a stable machine-readable kind plus the offending identifier, both
// claimants and both document origins, so reports stay actionable without
// string parsing.
//
// # Usage Example
//
//	doc, err := definition.Parse(data)
//	if err != nil { ... }
//	if err := validation.Classify(doc, definition.NamespaceInterfaces, origin); err != nil { ... }
//	services, err := validation.ExtractServices(doc, origin)
//	if err != nil { ... }
//	registry := validation.NewRegistry()
//	for _, svc := range services {
//		if err := registry.AdmitService(svc); err != nil {
//			v, _ := validation.AsViolation(err)
//			// report v, continue with remaining entities
//		}
//	}
//
// # Related Packages
//
// - pkg/definition: document schema and parsing
// - pkg/corpus: drives this package over whole corpus trees
package validation
