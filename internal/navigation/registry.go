package navigation

import (
	"navindex/internal/domain"
	"navindex/internal/ports"
)

// Registry owns one Service per item kind, four trees in total.
type Registry struct {
	services []*Service
}

// Ensure Registry implements NavigationRegistry
var _ ports.NavigationRegistry = (*Registry)(nil)

// NewRegistry creates empty live and bin trees for every item kind.
// The options apply to every tree.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{}
	for _, kind := range domain.ItemKinds {
		r.services = append(r.services, NewService(kind, opts...))
	}
	return r
}

// Service returns the navigation service for kind.
func (r *Registry) Service(kind domain.ItemKind) (ports.NavigationService, bool) {
	s, ok := r.lookupService(kind)
	if !ok {
		return nil, false
	}
	return s, true
}

// Services returns every service in domain.ItemKinds order.
func (r *Registry) Services() []ports.NavigationService {
	out := make([]ports.NavigationService, len(r.services))
	for i, s := range r.services {
		out[i] = s
	}
	return out
}

// Lookup returns the tree for kind, the bin when trashed is set.
func (r *Registry) Lookup(kind domain.ItemKind, trashed bool) (*Index, bool) {
	s, ok := r.lookupService(kind)
	if !ok {
		return nil, false
	}
	if trashed {
		return s.Bin(), true
	}
	return s.Live(), true
}

// Indexes returns all four trees, live before bin for each kind.
func (r *Registry) Indexes() []*Index {
	out := make([]*Index, 0, 2*len(r.services))
	for _, s := range r.services {
		out = append(out, s.Live(), s.Bin())
	}
	return out
}

func (r *Registry) lookupService(kind domain.ItemKind) (*Service, bool) {
	for _, s := range r.services {
		if s.Kind() == kind {
			return s, true
		}
	}
	return nil, false
}
