// Package resolver fixes the effective source language of a request.
//
// A concrete source is taken as given. The "auto" sentinel is resolved
// against a capability graph snapshot: English first, because it is the best
// connected language in typical model sets, then the first installed language
// with a direct model toward any requested target. Resolution may fail; the
// outcome is then Unresolved and every target is reported unroutable later.
package resolver

import "github.com/valpere/argobridge/internal/capability"

// Auto is the request sentinel asking for source inference.
const Auto = "auto"

// Source is the outcome of resolution: either a concrete language code or
// Unresolved.
type Source struct {
	code     string
	resolved bool
}

// Resolved returns a Source fixed to code.
func Resolved(code string) Source {
	return Source{code: code, resolved: true}
}

// Unresolved returns the Source produced when "auto" finds no candidate.
func Unresolved() Source {
	return Source{}
}

// Code returns the resolved language and whether resolution succeeded.
func (s Source) Code() (string, bool) {
	return s.code, s.resolved
}

// IsResolved reports whether s carries a concrete language.
func (s Source) IsResolved() bool {
	return s.resolved
}

// String renders s for the wire: the language code, or "auto" when unresolved.
func (s Source) String() string {
	if !s.resolved {
		return Auto
	}
	return s.code
}

type options struct {
	hint string
}

// Option tunes resolution of the "auto" sentinel.
type Option func(*options)

// WithHint supplies a detected source language. The hint is tried before the
// English-first rule and is used only if it has a direct model toward one of
// the requested targets.
func WithHint(code string) Option {
	return func(o *options) {
		o.hint = code
	}
}

// Resolve returns the effective source for a request.
func Resolve(source string, targets []string, g *capability.Graph, opts ...Option) Source {
	if source != Auto {
		return Resolved(source)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.hint != "" && reachesAny(g, o.hint, targets) {
		return Resolved(o.hint)
	}

	if g.HasLanguage(capability.Pivot) && reachesAny(g, capability.Pivot, targets) {
		return Resolved(capability.Pivot)
	}

	for _, lang := range g.Languages() {
		if reachesAny(g, lang, targets) {
			return Resolved(lang)
		}
	}

	return Unresolved()
}

// reachesAny reports whether from has a direct edge to any target, scanning
// targets in request order.
func reachesAny(g *capability.Graph, from string, targets []string) bool {
	for _, t := range targets {
		if g.HasDirectEdge(from, t) {
			return true
		}
	}
	return false
}
