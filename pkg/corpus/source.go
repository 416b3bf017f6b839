package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/platinummonkey/axle/pkg/definition"
)

// Entry is one document in a corpus: its corpus-relative path (which doubles
// as the origin label in reports) and the namespace it was found under.
type Entry struct {
	Path      string               `json:"path"`
	Namespace definition.Namespace `json:"namespace"`
}

// Source enumerates and reads the documents of a corpus.
type Source interface {
	// Label names the corpus for logs and reports, e.g. "./corpus" or
	// "s3://bus-definitions/release".
	Label() string
	// List returns every document entry. Order need not be stable; the
	// runner sorts entries before processing.
	List(ctx context.Context) ([]Entry, error)
	// Read returns the raw bytes of one listed document.
	Read(ctx context.Context, path string) ([]byte, error)
}

// sortEntries orders entries the way runs process them: interfaces namespace
// first, then diagnostics, then anything else, paths sorted within each.
func sortEntries(entries []Entry) {
	rank := func(ns definition.Namespace) int {
		switch ns {
		case definition.NamespaceInterfaces:
			return 0
		case definition.NamespaceDiagnostics:
			return 1
		default:
			return 2
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if ri, rj := rank(entries[i].Namespace), rank(entries[j].Namespace); ri != rj {
			return ri < rj
		}
		return entries[i].Path < entries[j].Path
	})
}

// DirectorySource reads a corpus from local directory trees, one root per
// namespace. Only .json files count; hidden directories and vendored trees
// are skipped.
type DirectorySource struct {
	label string
	roots map[definition.Namespace]string
}

// NewDirectorySource builds a source from per-namespace roots. Either root
// may be empty, in which case that namespace is simply absent from the run.
func NewDirectorySource(interfacesDir, diagnosticsDir string) *DirectorySource {
	roots := make(map[definition.Namespace]string)
	if interfacesDir != "" {
		roots[definition.NamespaceInterfaces] = interfacesDir
	}
	if diagnosticsDir != "" {
		roots[definition.NamespaceDiagnostics] = diagnosticsDir
	}

	parts := make([]string, 0, 2)
	for _, ns := range definition.Namespaces() {
		if root, ok := roots[ns]; ok {
			parts = append(parts, root)
		}
	}
	return &DirectorySource{
		label: strings.Join(parts, " + "),
		roots: roots,
	}
}

// Label implements Source.
func (s *DirectorySource) Label() string {
	return s.label
}

// List implements Source. Entry paths are namespace-prefixed and
// slash-separated regardless of platform, e.g. "someip/engine/engine.json".
func (s *DirectorySource) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	for _, ns := range definition.Namespaces() {
		root, ok := s.roots[ns]
		if !ok {
			continue
		}
		if _, err := os.Stat(root); os.IsNotExist(err) {
			// A corpus need not populate every namespace; an absent tree
			// contributes no documents.
			continue
		}
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				name := info.Name()
				if path != root && (strings.HasPrefix(name, ".") || name == "vendor" || name == "third_party") {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) != ".json" {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			entries = append(entries, Entry{
				Path:      string(ns) + "/" + filepath.ToSlash(rel),
				Namespace: ns,
			})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s corpus at %s: %w", ns, root, err)
		}
	}
	sortEntries(entries)
	return entries, nil
}

// Read implements Source by resolving the namespace prefix back to its root.
func (s *DirectorySource) Read(ctx context.Context, path string) ([]byte, error) {
	prefix, rel, found := strings.Cut(path, "/")
	if !found {
		return nil, fmt.Errorf("entry path %q carries no namespace prefix", path)
	}
	root, ok := s.roots[definition.Namespace(prefix)]
	if !ok {
		return nil, fmt.Errorf("no corpus root for namespace %q", prefix)
	}
	return os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
}

// MemoryDocument is one document handed to a MemorySource, used for ad-hoc
// checks over request payloads and in tests.
type MemoryDocument struct {
	Path      string
	Namespace definition.Namespace
	Data      []byte
}

// MemorySource serves documents straight from memory.
type MemorySource struct {
	label string
	docs  map[string]MemoryDocument
	order []Entry
}

// NewMemorySource builds a source over the given documents. Documents
// without an explicit namespace get one inferred from their path; paths
// under no known namespace stay unclassified and are checked without a
// content contract.
func NewMemorySource(label string, docs []MemoryDocument) *MemorySource {
	s := &MemorySource{
		label: label,
		docs:  make(map[string]MemoryDocument, len(docs)),
	}
	for _, doc := range docs {
		if doc.Namespace == "" {
			if ns, ok := definition.NamespaceForPath(doc.Path); ok {
				doc.Namespace = ns
			}
		}
		s.docs[doc.Path] = doc
		s.order = append(s.order, Entry{Path: doc.Path, Namespace: doc.Namespace})
	}
	return s
}

// Label implements Source.
func (s *MemorySource) Label() string {
	return s.label
}

// List implements Source.
func (s *MemorySource) List(ctx context.Context) ([]Entry, error) {
	entries := make([]Entry, len(s.order))
	copy(entries, s.order)
	return entries, nil
}

// Read implements Source.
func (s *MemorySource) Read(ctx context.Context, path string) ([]byte, error) {
	doc, ok := s.docs[path]
	if !ok {
		return nil, fmt.Errorf("no such document %q", path)
	}
	return doc.Data, nil
}
