package domain

import "strings"

// Identifier names an entity in the model. Name preserves case for display;
// ID is the lower-cased form identity comparisons use. BasePath is the sequence
// of enclosing container names (e.g. a CCF group name, a sub-tree name) and
// IsPublic says whether the entity is visible outside that container.
type Identifier struct {
	Name     string
	ID       string
	BasePath []string
	IsPublic bool
}

// NewIdentifier builds an Identifier, deriving ID from Name.
func NewIdentifier(name string, basePath []string, isPublic bool) Identifier {
	return Identifier{
		Name:     name,
		ID:       strings.ToLower(name),
		BasePath: append([]string(nil), basePath...),
		IsPublic: isPublic,
	}
}

// Scope is the (container path, visibility) pair an Identifier is registered under.
type Scope struct {
	path     string
	isPublic bool
}

func scopeOf(id Identifier) Scope {
	return Scope{path: strings.Join(id.BasePath, "/"), isPublic: id.IsPublic}
}

// Registry maps (scope, id) to an arbitrary handle (an index into a model-owned
// arena, per spec §9's "stable indices" design note) and resolves names by
// walking from the originating scope outward through enclosing containers.
type Registry struct {
	entries map[Scope]map[string]interface{}
	order   []Identifier
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Scope]map[string]interface{})}
}

// Register records handle under (scope, id). A second registration under the
// same scope and id raises RedefinitionError.
func (r *Registry) Register(id Identifier, handle interface{}) error {
	scope := scopeOf(id)
	bucket, ok := r.entries[scope]
	if !ok {
		bucket = make(map[string]interface{})
		r.entries[scope] = bucket
	}
	if _, exists := bucket[id.ID]; exists {
		return NewRedefinitionError(Location{}, scope.path, id.ID)
	}
	bucket[id.ID] = handle
	r.order = append(r.order, id)
	return nil
}

// Lookup resolves id starting in the scope rooted at basePath/isPublic, then
// walks outward one container at a time, skipping private entries of outer
// scopes (privacy only shields an entity from containers it isn't nested in).
func (r *Registry) Lookup(id string, basePath []string, isPublic bool) (interface{}, bool) {
	id = strings.ToLower(id)
	for depth := len(basePath); depth >= 0; depth-- {
		scope := Scope{path: strings.Join(basePath[:depth], "/"), isPublic: isPublic}
		if bucket, ok := r.entries[scope]; ok {
			if h, ok := bucket[id]; ok {
				return h, true
			}
		}
		// Public entries of an enclosing scope are visible regardless of our
		// own visibility; private ones require an exact scope match (handled above).
		if depth > 0 {
			pubScope := Scope{path: strings.Join(basePath[:depth], "/"), isPublic: true}
			if bucket, ok := r.entries[pubScope]; ok {
				if h, ok := bucket[id]; ok {
					return h, true
				}
			}
		}
	}
	return nil, false
}

// All returns every registered identifier in registration order.
func (r *Registry) All() []Identifier {
	return append([]Identifier(nil), r.order...)
}
