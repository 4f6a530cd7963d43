// Package registry maps short model keys (e.g. "gpt", "gemini", "grok") to
// backend identifiers and display names. The set of keys is fixed at
// process start; lookups never fail.
package registry

import "strings"

// Model describes one configured council backend.
type Model struct {
	// Key is the short stable identifier used in flags, markers and
	// artifact names.
	Key string

	// ID is the opaque backend identifier passed to the transport.
	ID string

	// Name is the human-facing display name.
	Name string
}

// Registry is an immutable ordered lookup over configured models.
type Registry struct {
	models []Model
	index  map[string]Model
}

// New builds a registry from an ordered model list. Keys are normalized
// to lower case; order defines council dispatch and display order.
func New(models []Model) *Registry {
	r := &Registry{index: make(map[string]Model, len(models))}
	for _, m := range models {
		m.Key = strings.ToLower(m.Key)
		if _, dup := r.index[m.Key]; dup {
			continue
		}
		r.models = append(r.models, m)
		r.index[m.Key] = m
	}
	return r
}

// Resolve returns the backend identifier for a key. An unknown key is
// returned as-is so ad-hoc model ids pass through to the transport
// uninterpreted.
func (r *Registry) Resolve(key string) string {
	if m, ok := r.index[strings.ToLower(key)]; ok {
		return m.ID
	}
	return key
}

// Name returns the display name for a key, or the key itself when unknown.
func (r *Registry) Name(key string) string {
	if m, ok := r.index[strings.ToLower(key)]; ok {
		return m.Name
	}
	return key
}

// Keys returns all configured keys in registration order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.models))
	for i, m := range r.models {
		keys[i] = m.Key
	}
	return keys
}

// Has reports whether key names a configured model.
func (r *Registry) Has(key string) bool {
	_, ok := r.index[strings.ToLower(key)]
	return ok
}
