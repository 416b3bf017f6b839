package definition

import (
	"path"
	"strings"
)

// Namespace identifies which corpus subtree a document was found under. The
// namespace determines the content contract the document must satisfy.
type Namespace string

const (
	// NamespaceInterfaces holds bus interface definitions.
	NamespaceInterfaces Namespace = "someip"
	// NamespaceDiagnostics holds diagnostic job and trouble-code definitions.
	NamespaceDiagnostics Namespace = "diag"
)

// Namespaces returns the known namespaces in processing order: interfaces
// before diagnostics.
func Namespaces() []Namespace {
	return []Namespace{NamespaceInterfaces, NamespaceDiagnostics}
}

// Known reports whether n is a namespace this tool enforces a content
// contract for. Documents under other namespaces are still parsed and
// extracted but carry no presence requirement.
func (n Namespace) Known() bool {
	return n == NamespaceInterfaces || n == NamespaceDiagnostics
}

// NamespaceForPath infers a namespace from the first element of a
// corpus-relative path, e.g. "someip/engine/engine.json" belongs to the
// interfaces namespace. The second return is false when the path sits under
// no known namespace.
func NamespaceForPath(p string) (Namespace, bool) {
	clean := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	clean = strings.TrimPrefix(clean, "/")
	first, _, _ := strings.Cut(clean, "/")
	ns := Namespace(first)
	if ns.Known() {
		return ns, true
	}
	return "", false
}
