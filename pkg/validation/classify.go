package validation

import (
	"fmt"

	"github.com/platinummonkey/axle/pkg/definition"
)

// Classify enforces the namespace content contract: a document under the
// interfaces namespace must carry an interface section, a document under the
// diagnostics namespace must carry a diagnostics section. Extra sections are
// always allowed, and an empty-but-present section satisfies the contract.
// Namespaces this tool does not know impose no constraint.
//
// A failed classification is a ContentMismatch violation.
func Classify(doc *definition.Document, ns definition.Namespace, origin string) error {
	switch ns {
	case definition.NamespaceInterfaces:
		if !doc.HasInterfaces() {
			return &Violation{
				Kind:    KindContentMismatch,
				Origin:  origin,
				Message: fmt.Sprintf("document under the %q namespace declares no interface content", ns),
			}
		}
	case definition.NamespaceDiagnostics:
		if !doc.HasDiagnostics() {
			return &Violation{
				Kind:    KindContentMismatch,
				Origin:  origin,
				Message: fmt.Sprintf("document under the %q namespace declares no diagnostics content", ns),
			}
		}
	}
	return nil
}
