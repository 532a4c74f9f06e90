package engine

import (
	"fmt"

	"github.com/vk/usdcheck/internal/usd"
)

// Validator is a structural check over one prim. It returns whether the prim
// is locally valid, plus the violations it found; the engine concatenates
// the returned records itself, so validators never share a mutable sink.
// A validator returning false must return at least one record.
type Validator func(prim *usd.Prim, verbose bool) (bool, []Record)

// Registry maps prim kinds to at most one structural validator each.
// Dispatch is a plain lookup: a prim whose kind has no validator is skipped,
// which is policy rather than an error.
type Registry struct {
	validators map[usd.Kind]Validator
}

// NewRegistry creates an empty validator registry.
func NewRegistry() *Registry {
	return &Registry{validators: make(map[usd.Kind]Validator)}
}

// Register binds a validator to a prim kind. Registering the same kind twice
// is a programmer error and panics.
func (r *Registry) Register(kind usd.Kind, v Validator) {
	if _, exists := r.validators[kind]; exists {
		panic(fmt.Sprintf("validator for prim kind '%s' already registered", kind))
	}
	r.validators[kind] = v
}

// Lookup returns the validator for a kind, if one is registered.
func (r *Registry) Lookup(kind usd.Kind) (Validator, bool) {
	v, ok := r.validators[kind]
	return v, ok
}

// Len returns the number of registered validators.
func (r *Registry) Len() int { return len(r.validators) }

// ValidationPredicate is the traversal filter for structural validation: a
// prim participates iff it is active, defined and not abstract. Instanced
// subtrees are seen through their resolved proxies, never as prototypes.
func ValidationPredicate(p *usd.Prim) bool {
	return p.IsActive() && p.IsDefined() && !p.IsAbstract()
}
