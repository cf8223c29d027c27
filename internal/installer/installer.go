// Package installer makes sure the local model set contains a desired list of
// language pairs. It runs administratively, never on the request path.
package installer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/valpere/argobridge/internal/capability"
)

// ErrPackageNotFound is returned when the index has no package for a pair.
var ErrPackageNotFound = errors.New("package not found")

// Status is the outcome for one pair.
type Status string

const (
	StatusInstalled Status = "installed"
	StatusNotFound  Status = "not_found"
	StatusError     Status = "error"
)

// Package is an installable model published in the remote index.
type Package struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Version string `json:"version,omitempty"`
}

// PackageIndex is the remote index plus local installation.
type PackageIndex interface {
	UpdateIndex(ctx context.Context) error
	AvailablePackages(ctx context.Context) ([]Package, error)
	InstallPackage(ctx context.Context, pkg Package) error
}

// PairResult is the outcome of installing one pair.
type PairResult struct {
	Pair   capability.Edge
	Status Status
	Detail string
}

// Report summarises one installer run.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []PairResult
}

// Count returns how many pairs ended with status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Ledger persists installer runs.
type Ledger interface {
	SaveInstallRun(ctx context.Context, report *Report) error
}

// DefaultPairs is English to and from every language the bridge ships with.
var DefaultPairs = func() []capability.Edge {
	var pairs []capability.Edge
	for _, l := range []string{"hi", "fr", "es", "ar", "zh", "ru", "ja", "ta", "ml"} {
		pairs = append(pairs,
			capability.Edge{From: capability.Pivot, To: l},
			capability.Edge{From: l, To: capability.Pivot},
		)
	}
	return pairs
}()

// ParsePair parses "from:to" (also accepting "from-to" and "from->to").
func ParsePair(s string) (capability.Edge, error) {
	for _, sep := range []string{"->", ":", "-"} {
		if from, to, ok := strings.Cut(s, sep); ok {
			from, to = strings.TrimSpace(from), strings.TrimSpace(to)
			if from == "" || to == "" {
				break
			}
			return capability.Edge{From: from, To: to}, nil
		}
	}
	return capability.Edge{}, fmt.Errorf("invalid pair %q, expected from:to", s)
}

// Installer installs pairs from a package index.
type Installer struct {
	index  PackageIndex
	ledger Ledger
	logger logrus.FieldLogger
}

// New returns an installer. ledger may be nil.
func New(index PackageIndex, ledger Ledger, logger logrus.FieldLogger) *Installer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Installer{index: index, ledger: ledger, logger: logger}
}

// Install updates the index once, then installs each pair in order. A pair
// that fails does not stop the run. The returned error covers only index
// failures; per-pair outcomes are in the report.
func (i *Installer) Install(ctx context.Context, pairs []capability.Edge) (*Report, error) {
	report := &Report{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}
	log := i.logger.WithField("run_id", report.RunID)

	log.Info("updating package index")
	if err := i.index.UpdateIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to update package index: %w", err)
	}

	available, err := i.index.AvailablePackages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list available packages: %w", err)
	}

	for _, pair := range pairs {
		res := PairResult{Pair: pair}
		pkg, ok := find(available, pair)

		switch {
		case !ok:
			res.Status = StatusNotFound
		default:
			log.WithField("pair", pairString(pair)).Info("installing package")
			err := i.index.InstallPackage(ctx, pkg)
			switch {
			case err == nil:
				res.Status = StatusInstalled
			case errors.Is(err, ErrPackageNotFound):
				res.Status = StatusNotFound
			default:
				res.Status = StatusError
				res.Detail = err.Error()
			}
		}

		entry := log.WithFields(logrus.Fields{"pair": pairString(pair), "status": res.Status})
		if res.Status == StatusError {
			entry.WithField("error", res.Detail).Warn("package install failed")
		} else {
			entry.Info("package processed")
		}
		report.Results = append(report.Results, res)
	}

	report.FinishedAt = time.Now()

	if i.ledger != nil {
		if err := i.ledger.SaveInstallRun(ctx, report); err != nil {
			log.WithError(err).Warn("failed to record install run")
		}
	}

	return report, nil
}

func find(available []Package, pair capability.Edge) (Package, bool) {
	for _, p := range available {
		if p.From == pair.From && p.To == pair.To {
			return p, true
		}
	}
	return Package{}, false
}

func pairString(p capability.Edge) string {
	return p.From + "->" + p.To
}
