// Package argos drives the argostranslate Python package through a python3
// subprocess. Each call starts a fresh interpreter and exchanges one JSON
// document over stdin/stdout.
package argos

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/valpere/argobridge/internal/capability"
	"github.com/valpere/argobridge/internal/engine"
	"github.com/valpere/argobridge/internal/installer"
)

const DefaultPython = "python3"

// Runner executes a Python script with input on stdin and returns stdout.
type Runner interface {
	Run(ctx context.Context, script string, input []byte) ([]byte, error)
}

// ExecRunner runs scripts with a local interpreter.
type ExecRunner struct {
	Python string
}

func (r ExecRunner) Run(ctx context.Context, script string, input []byte) ([]byte, error) {
	python := r.Python
	if python == "" {
		python = DefaultPython
	}

	cmd := exec.CommandContext(ctx, python, "-c", script)
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return nil, engine.Unavailable("argos", err)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("python process failed: %w", err)
		}
		return nil, fmt.Errorf("python process failed: %w: %s", err, lastLine(msg))
	}
	return stdout.Bytes(), nil
}

// Engine is the argostranslate-backed engine.
type Engine struct {
	runner Runner
	logger logrus.FieldLogger
}

// New returns an engine using the given interpreter path.
func New(python string, logger logrus.FieldLogger) *Engine {
	return NewWithRunner(ExecRunner{Python: python}, logger)
}

// NewWithRunner returns an engine backed by runner.
func NewWithRunner(runner Runner, logger logrus.FieldLogger) *Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Engine{runner: runner, logger: logger}
}

func (e *Engine) Name() string {
	return "argos"
}

type reply struct {
	Unavailable string                `json:"unavailable"`
	Error       string                `json:"error"`
	Text        *string               `json:"text"`
	Languages   []capability.Language `json:"languages"`
	Packages    []installer.Package   `json:"packages"`
	Status      string                `json:"status"`
}

func (e *Engine) call(ctx context.Context, op, script string, payload any) (*reply, error) {
	var input []byte
	if payload != nil {
		var err error
		input, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
	}

	start := time.Now()
	out, err := e.runner.Run(ctx, script, input)
	e.logger.WithFields(logrus.Fields{
		"op":      op,
		"latency": time.Since(start).Round(time.Millisecond),
	}).Debug("argos call finished")
	if err != nil {
		return nil, err
	}

	var r reply
	if err := json.Unmarshal(bytes.TrimSpace(out), &r); err != nil {
		return nil, fmt.Errorf("failed to decode %s reply: %w", op, err)
	}
	if r.Unavailable != "" {
		return nil, engine.Unavailable("argos", fmt.Errorf("argostranslate import error: %s", r.Unavailable))
	}
	return &r, nil
}

func (e *Engine) ListInstalledLanguages(ctx context.Context) ([]capability.Language, error) {
	r, err := e.call(ctx, "list", listLanguagesScript, nil)
	if err != nil {
		return nil, err
	}
	return r.Languages, nil
}

func (e *Engine) Translate(ctx context.Context, text, from, to string) (string, error) {
	r, err := e.call(ctx, "translate", translateScript, map[string]string{
		"text": text,
		"from": from,
		"to":   to,
	})
	if err != nil {
		return "", err
	}
	if r.Error != "" {
		return "", errors.New(r.Error)
	}
	if r.Text == nil {
		return "", fmt.Errorf("empty reply for %s -> %s", from, to)
	}
	return *r.Text, nil
}

func (e *Engine) IsAvailable(ctx context.Context) error {
	_, err := e.ListInstalledLanguages(ctx)
	return err
}

// UpdateIndex refreshes the remote package index.
func (e *Engine) UpdateIndex(ctx context.Context) error {
	r, err := e.call(ctx, "update-index", updateIndexScript, nil)
	if err != nil {
		return err
	}
	if r.Error != "" {
		return fmt.Errorf("failed to update package index: %s", r.Error)
	}
	return nil
}

// AvailablePackages lists packages published in the index.
func (e *Engine) AvailablePackages(ctx context.Context) ([]installer.Package, error) {
	r, err := e.call(ctx, "available", availablePackagesScript, nil)
	if err != nil {
		return nil, err
	}
	return r.Packages, nil
}

// InstallPackage downloads and installs the package for pkg's pair.
func (e *Engine) InstallPackage(ctx context.Context, pkg installer.Package) error {
	r, err := e.call(ctx, "install", installPackageScript, map[string]string{
		"from": pkg.From,
		"to":   pkg.To,
	})
	if err != nil {
		return err
	}
	switch r.Status {
	case "installed":
		return nil
	case "not_found":
		return installer.ErrPackageNotFound
	default:
		return fmt.Errorf("failed to install %s -> %s: %s", pkg.From, pkg.To, r.Error)
	}
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
