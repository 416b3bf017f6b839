package validation

import (
	"fmt"
	"sort"
	"sync"
)

// owner records which entity holds a global identifier and where it came
// from, for conflict attribution.
type owner struct {
	name   string
	origin string
}

// Registry is the corpus-wide identifier table. It is memory-only and
// strictly additive: entities are admitted or rejected, never amended or
// evicted, so a full corpus walk either ends with a consistent table or
// with a violation for every entity that could not be admitted.
//
// Admission is serialized by a mutex so documents may be prepared in
// parallel and admitted from multiple goroutines. Which of two conflicting
// entities is admitted depends on admission order, but whether a conflict
// exists does not.
type Registry struct {
	mu          sync.Mutex
	services    map[uint32]*Service
	diagnostics []*Diagnostic
	jobs        map[uint32]owner
	dtcs        map[uint32]owner
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		services: make(map[uint32]*Service),
		jobs:     make(map[uint32]owner),
		dtcs:     make(map[uint32]owner),
	}
}

// AdmitService registers a service entity. Service ids are globally unique
// across the whole corpus; a collision returns a DuplicateServiceID
// violation naming both claimants and both origins, and leaves the registry
// unchanged. First registration wins.
//
// Method and event ids are not checked here: they are scoped to their
// entity and already verified at extraction.
func (r *Registry) AdmitService(svc *Service) error {
	if svc == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.services[svc.ServiceID]; exists {
		return &Violation{
			Kind:           KindDuplicateServiceID,
			ID:             svc.ServiceID,
			Name:           svc.Name,
			Conflict:       existing.Name,
			Origin:         svc.Origin,
			ConflictOrigin: existing.Origin,
			Message: fmt.Sprintf("service id %d claimed by %q is already registered to %q (%s)",
				svc.ServiceID, svc.Name, existing.Name, existing.Origin),
		}
	}
	r.services[svc.ServiceID] = svc
	return nil
}

// AdmitDiagnostic registers a diagnostic entity against the global job and
// trouble-code tables. Admission is atomic: every identifier the entity
// claims is checked first, and only if all are free are any committed. A
// rejected entity leaves no trace, so one bad document can never poison the
// tables for documents processed after it.
func (r *Registry) AdmitDiagnostic(diag *Diagnostic) error {
	if diag == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check phase. Sorted so the reported conflict is stable when an
	// entity collides on more than one identifier.
	for _, id := range sortedIDs(diag.Jobs) {
		if holder, exists := r.jobs[id]; exists {
			return &Violation{
				Kind:           KindDuplicateJobID,
				ID:             id,
				Name:           diag.Jobs[id],
				Conflict:       holder.name,
				Origin:         diag.Origin,
				ConflictOrigin: holder.origin,
				Message: fmt.Sprintf("diagnostic job id %d claimed by %q is already registered to %q (%s)",
					id, diag.Jobs[id], holder.name, holder.origin),
			}
		}
	}
	for _, id := range sortedIDs(diag.DTCs) {
		if holder, exists := r.dtcs[id]; exists {
			return &Violation{
				Kind:           KindDuplicateDTCID,
				ID:             id,
				Name:           diag.DTCs[id],
				Conflict:       holder.name,
				Origin:         diag.Origin,
				ConflictOrigin: holder.origin,
				Message: fmt.Sprintf("trouble code id %d claimed by %q is already registered to %q (%s)",
					id, diag.DTCs[id], holder.name, holder.origin),
			}
		}
	}

	// Commit phase.
	for id, name := range diag.Jobs {
		r.jobs[id] = owner{name: name, origin: diag.Origin}
	}
	for id, name := range diag.DTCs {
		r.dtcs[id] = owner{name: name, origin: diag.Origin}
	}
	r.diagnostics = append(r.diagnostics, diag)
	return nil
}

// Service looks up an admitted service by id.
func (r *Registry) Service(id uint32) (*Service, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	svc, ok := r.services[id]
	return svc, ok
}

// Services returns all admitted services sorted by service id.
func (r *Registry) Services() []*Service {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Service, 0, len(r.services))
	for _, svc := range r.services {
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServiceID < out[j].ServiceID })
	return out
}

// Diagnostics returns all admitted diagnostic entities in admission order.
func (r *Registry) Diagnostics() []*Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Diagnostic, len(r.diagnostics))
	copy(out, r.diagnostics)
	return out
}

// JobOwner reports which job holds a global sub-service id.
func (r *Registry) JobOwner(id uint32) (name, origin string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	holder, exists := r.jobs[id]
	return holder.name, holder.origin, exists
}

// DTCOwner reports which trouble code holds a global DTC id.
func (r *Registry) DTCOwner(id uint32) (name, origin string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	holder, exists := r.dtcs[id]
	return holder.name, holder.origin, exists
}

// Stats summarizes the registry for reports and the HTTP API.
type Stats struct {
	Services    int `json:"services"`
	Diagnostics int `json:"diagnostics"`
	JobIDs      int `json:"job_ids"`
	DTCIDs      int `json:"dtc_ids"`
}

// Stats returns current table sizes.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		Services:    len(r.services),
		Diagnostics: len(r.diagnostics),
		JobIDs:      len(r.jobs),
		DTCIDs:      len(r.dtcs),
	}
}
