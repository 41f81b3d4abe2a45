package schema

import (
	"fmt"
	"sort"
)

// Registry holds every registered content type and component, keyed by UID.
// It is populated once at startup and read-only afterwards.
type Registry struct {
	types map[string]*ContentType
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*ContentType)}
}

// Register adds a descriptor. Registering the same UID twice is an error.
func (r *Registry) Register(ct *ContentType) error {
	if ct.UID == "" {
		return fmt.Errorf("content type has no uid")
	}
	if _, ok := r.types[ct.UID]; ok {
		return fmt.Errorf("content type %q already registered", ct.UID)
	}
	if ct.ModelType == "" {
		ct.ModelType = ModelContentType
	}
	r.types[ct.UID] = ct
	return nil
}

// MustRegister registers a descriptor, panicking on error. Test fixture use.
func (r *Registry) MustRegister(ct *ContentType) {
	if err := r.Register(ct); err != nil {
		panic(err)
	}
}

// Get returns the descriptor for a UID.
func (r *Registry) Get(uid string) (*ContentType, error) {
	ct, ok := r.types[uid]
	if !ok {
		return nil, fmt.Errorf("unknown content type %q", uid)
	}
	return ct, nil
}

// UIDs returns every registered UID in sorted order.
func (r *Registry) UIDs() []string {
	uids := make([]string, 0, len(r.types))
	for uid := range r.types {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	return uids
}

// ContentTypes returns all top-level content types, sorted by UID.
func (r *Registry) ContentTypes() []*ContentType {
	var cts []*ContentType
	for _, uid := range r.UIDs() {
		if !r.types[uid].IsComponent() {
			cts = append(cts, r.types[uid])
		}
	}
	return cts
}

// Components returns all component models, sorted by UID.
func (r *Registry) Components() []*ContentType {
	var cts []*ContentType
	for _, uid := range r.UIDs() {
		if r.types[uid].IsComponent() {
			cts = append(cts, r.types[uid])
		}
	}
	return cts
}
