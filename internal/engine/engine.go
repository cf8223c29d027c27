// Package engine defines the translation-engine collaborator the bridge
// drives. Concrete engines live in sub-packages.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/valpere/argobridge/internal/capability"
)

// ErrUnavailable reports that the engine cannot be reached or loaded at all.
var ErrUnavailable = errors.New("translation engine unavailable")

// Engine is an offline or remote translation backend.
type Engine interface {
	Name() string
	// ListInstalledLanguages returns every installed language with its direct
	// targets, in the engine's own enumeration order.
	ListInstalledLanguages(ctx context.Context) ([]capability.Language, error)
	Translate(ctx context.Context, text, from, to string) (string, error)
	IsAvailable(ctx context.Context) error
}

// Unavailable wraps err so that errors.Is(err, ErrUnavailable) holds.
func Unavailable(name string, err error) error {
	return fmt.Errorf("%s: %w: %w", name, ErrUnavailable, err)
}

// Snapshot lists installed languages and builds an immutable capability graph.
func Snapshot(ctx context.Context, e Engine) (*capability.Graph, error) {
	langs, err := e.ListInstalledLanguages(ctx)
	if err != nil {
		return nil, err
	}
	return capability.NewGraph(langs), nil
}
