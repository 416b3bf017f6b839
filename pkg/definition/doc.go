// Package definition models the JSON service-definition documents that make
// up a vehicle bus corpus.
//
// # Overview
//
// A corpus is a tree of JSON files describing what runs on the in-vehicle
// communication bus. Each file may carry an interface section (named service
// blocks with numeric service, method and event identifiers) and a
// diagnostics section (diagnostic jobs keyed by sub-service identifier and
// trouble codes keyed by DTC identifier).
//
// The package owns the document schema and the single parsing step. All
// structural validation happens here, once: optional fields are explicit
// pointers, identifier fields are typed integers, and any shape the schema
// cannot express is rejected at parse time. Downstream packages never
// re-check document shapes.
//
// # Namespaces
//
// Corpora are organized into namespaces, one directory subtree per kind of
// content. The namespace a document was found under determines what content
// it is required to carry; that contract is enforced by the classifier in
// the validation package.
//
// # Related Packages
//
// - pkg/validation: classifier, entity extraction and the identifier registry
// - pkg/corpus: walks corpus sources and drives validation
package definition
