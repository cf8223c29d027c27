// Package capability models the set of installed translation models as a
// directed graph of language pairs.
package capability

import (
	"maps"
	"slices"
)

// Pivot is the language used to bridge pairs that lack a direct model.
const Pivot = "en"

// Language is one installed language together with the languages it can be
// translated into directly.
type Language struct {
	Code    string   `json:"code"`
	Targets []string `json:"targets"`
}

// Edge is a single directed translation capability.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is an immutable snapshot of installed translation capabilities.
// Edges are directional: a->b says nothing about b->a.
type Graph struct {
	order []string
	edges map[string]map[string]struct{}
}

// NewGraph builds a graph from the engine's installed-language registry.
// The enumeration order of langs is preserved for Languages.
func NewGraph(langs []Language) *Graph {
	g := &Graph{
		order: make([]string, 0, len(langs)),
		edges: make(map[string]map[string]struct{}, len(langs)),
	}

	for _, l := range langs {
		to, seen := g.edges[l.Code]
		if !seen {
			to = make(map[string]struct{}, len(l.Targets))
			g.edges[l.Code] = to
			g.order = append(g.order, l.Code)
		}
		for _, t := range l.Targets {
			to[t] = struct{}{}
		}
	}

	return g
}

// HasDirectEdge reports whether a model translates from -> to without a pivot.
func (g *Graph) HasDirectEdge(from, to string) bool {
	if g == nil {
		return false
	}
	_, ok := g.edges[from][to]
	return ok
}

// HasLanguage reports whether code is an installed language.
func (g *Graph) HasLanguage(code string) bool {
	if g == nil {
		return false
	}
	_, ok := g.edges[code]
	return ok
}

// Languages returns installed language codes in engine enumeration order.
func (g *Graph) Languages() []string {
	if g == nil {
		return nil
	}
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Targets returns the sorted direct targets of code.
func (g *Graph) Targets(code string) []string {
	if g == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(g.edges[code]))
}

// Edges lists every edge, grouped by source in enumeration order and sorted
// by target within a source.
func (g *Graph) Edges() []Edge {
	if g == nil {
		return nil
	}
	var out []Edge
	for _, from := range g.order {
		for _, to := range slices.Sorted(maps.Keys(g.edges[from])) {
			out = append(out, Edge{From: from, To: to})
		}
	}
	return out
}

// Len returns the number of edges.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	n := 0
	for _, to := range g.edges {
		n += len(to)
	}
	return n
}
