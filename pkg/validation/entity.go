package validation

import "sort"

// Service is one addressable bus interface: a service id plus its method and
// event identifier tables, each mapping an id to the member name that claimed
// it. Methods and events are independent identifier spaces, so the same
// number may appear once in each.
type Service struct {
	Name      string            `json:"name"`
	ServiceID uint32            `json:"service_id"`
	Origin    string            `json:"origin,omitempty"`
	Methods   map[uint32]string `json:"methods,omitempty"`
	Events    map[uint32]string `json:"events,omitempty"`
}

// Diagnostic is the diagnostics content of one document: job entries keyed
// by sub-service id and trouble codes keyed by DTC id. A document yields at
// most one Diagnostic.
type Diagnostic struct {
	Origin string            `json:"origin"`
	Jobs   map[uint32]string `json:"jobs,omitempty"`
	DTCs   map[uint32]string `json:"dtcs,omitempty"`
}

// sortedNames returns the keys of a name-keyed map in lexical order. Corpus
// checking must be reproducible run to run, so every map walk in this
// package is ordered.
func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sortedIDs returns the keys of an id-keyed map in ascending order.
func sortedIDs(m map[uint32]string) []uint32 {
	ids := make([]uint32, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
