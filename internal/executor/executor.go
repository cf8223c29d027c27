// Package executor runs routing plans against a translation engine.
package executor

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/valpere/argobridge/internal/planner"
)

// Translator is the engine capability the executor needs.
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// Outcome holds per-target results. A target is present in exactly one of
// the two maps.
type Outcome struct {
	Translations map[string]string
	Errors       map[string]string
}

// Execute runs one plan. For a pivoted plan the second hop consumes the first
// hop's output and is skipped when the first hop fails.
func Execute(ctx context.Context, plan planner.Plan, text string, tr Translator) (string, error) {
	switch plan.Kind {
	case planner.Direct, planner.Pivoted:
		out := text
		for _, hop := range plan.Hops() {
			var err error
			out, err = tr.Translate(ctx, out, hop.From, hop.To)
			if err != nil {
				return "", err
			}
		}
		return out, nil
	default:
		return "", errors.New(plan.Reason)
	}
}

// ExecuteAll runs every plan and collects the results by target. With
// concurrency <= 1 plans run one after another in targets order; otherwise at
// most concurrency plans run at once. A failing target never affects another.
// A panic in a worker is re-raised on the calling goroutine once all workers
// have returned.
func ExecuteAll(ctx context.Context, targets []string, plans map[string]planner.Plan, text string, tr Translator, concurrency int) *Outcome {
	out := &Outcome{
		Translations: make(map[string]string),
		Errors:       make(map[string]string),
	}

	if concurrency < 1 {
		concurrency = 1
	}

	var mu sync.Mutex
	record := func(target, translated string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			out.Errors[target] = err.Error()
			return
		}
		out.Translations[target] = translated
	}

	var (
		g         errgroup.Group
		panicOnce sync.Once
		panicked  any
	)
	g.SetLimit(concurrency)

	for _, target := range targets {
		plan, ok := plans[target]
		if !ok {
			continue
		}
		if concurrency == 1 {
			translated, err := Execute(ctx, plan, text, tr)
			record(target, translated, err)
			continue
		}
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					panicOnce.Do(func() { panicked = r })
				}
			}()
			translated, err := Execute(ctx, plan, text, tr)
			record(target, translated, err)
			return nil
		})
	}

	_ = g.Wait()
	if panicked != nil {
		panic(panicked)
	}
	return out
}
