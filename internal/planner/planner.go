// Package planner decides, per requested target, how a translation is routed
// through the installed models.
package planner

import (
	"fmt"

	"github.com/valpere/argobridge/internal/capability"
	"github.com/valpere/argobridge/internal/resolver"
)

// Kind discriminates the plan variants.
type Kind int

const (
	Unsatisfiable Kind = iota
	Direct
	Pivoted
)

func (k Kind) String() string {
	switch k {
	case Direct:
		return "direct"
	case Pivoted:
		return "pivoted"
	default:
		return "unsatisfiable"
	}
}

// Plan is the routing decision for one target. Pivot is set only for Pivoted
// plans and Reason only for Unsatisfiable ones.
type Plan struct {
	Kind   Kind
	From   string
	Pivot  string
	To     string
	Reason string
}

// Hops returns the language pairs the plan translates through, in order.
func (p Plan) Hops() []capability.Edge {
	switch p.Kind {
	case Direct:
		return []capability.Edge{{From: p.From, To: p.To}}
	case Pivoted:
		return []capability.Edge{{From: p.From, To: p.Pivot}, {From: p.Pivot, To: p.To}}
	default:
		return nil
	}
}

func (p Plan) String() string {
	switch p.Kind {
	case Direct:
		return fmt.Sprintf("%s -> %s", p.From, p.To)
	case Pivoted:
		return fmt.Sprintf("%s -> %s -> %s", p.From, p.Pivot, p.To)
	default:
		return p.Reason
	}
}

// Route plans a single target. Only one pivot, capability.Pivot, is ever
// tried.
func Route(source resolver.Source, target string, g *capability.Graph) Plan {
	from, ok := source.Code()
	if !ok {
		return unsatisfiable(source.String(), target)
	}

	if g.HasDirectEdge(from, target) {
		return Plan{Kind: Direct, From: from, To: target}
	}

	if from != capability.Pivot &&
		g.HasDirectEdge(from, capability.Pivot) &&
		g.HasDirectEdge(capability.Pivot, target) {
		return Plan{Kind: Pivoted, From: from, Pivot: capability.Pivot, To: target}
	}

	return unsatisfiable(from, target)
}

// RouteAll plans every target independently, keyed by target.
func RouteAll(source resolver.Source, targets []string, g *capability.Graph) map[string]Plan {
	plans := make(map[string]Plan, len(targets))
	for _, t := range targets {
		plans[t] = Route(source, t, g)
	}
	return plans
}

func unsatisfiable(from, to string) Plan {
	return Plan{
		Kind:   Unsatisfiable,
		From:   from,
		To:     to,
		Reason: fmt.Sprintf("No model for %s -> %s", from, to),
	}
}
