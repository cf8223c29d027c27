// Package bridge runs one translation request end to end: decode, snapshot
// the installed models, resolve the source, plan, execute and encode.
package bridge

import (
	"context"
	"fmt"
	"io"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/valpere/argobridge/internal/codec"
	"github.com/valpere/argobridge/internal/engine"
	"github.com/valpere/argobridge/internal/executor"
	"github.com/valpere/argobridge/internal/planner"
	"github.com/valpere/argobridge/internal/resolver"
)

// Hinter guesses the language of a text. An empty string means no guess.
type Hinter interface {
	Hint(text string) string
}

type Options struct {
	// Concurrency bounds how many targets translate at once. Values <= 1
	// translate targets one after another.
	Concurrency int
	// Hinter, when set, is consulted before the English-first rule for
	// requests whose source is "auto".
	Hinter Hinter
	Logger logrus.FieldLogger
}

type Bridge struct {
	engine      engine.Engine
	concurrency int
	hinter      Hinter
	logger      logrus.FieldLogger
}

func New(e engine.Engine, opts Options) *Bridge {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Bridge{
		engine:      e,
		concurrency: opts.Concurrency,
		hinter:      opts.Hinter,
		logger:      logger,
	}
}

// Run reads the whole request from r and writes exactly one JSON document to
// w. The returned error only reports a failure to write.
func (b *Bridge) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		b.logger.WithError(err).Error("failed to read request")
		return codec.Encode(w, codec.NewFailure(codec.MsgNoInput, err.Error()))
	}
	return codec.Encode(w, b.Handle(ctx, raw))
}

// Handle turns raw request bytes into a response: either *codec.Result or
// *codec.Failure. It never panics.
func (b *Bridge) Handle(ctx context.Context, raw []byte) (resp any) {
	log := b.logger.WithField("request_id", uuid.NewString())

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("unhandled failure")
			f := codec.NewFailure(codec.MsgUnhandled, fmt.Sprint(r))
			f.Trace = string(debug.Stack())
			resp = f
		}
	}()

	req, failure := codec.Decode(raw)
	if failure != nil {
		log.WithField("details", failure.Details).Warn(failure.Message)
		return failure
	}

	res, err := b.translate(ctx, req, log)
	if err != nil {
		log.WithError(err).Error("translation engine unavailable")
		return codec.NewFailure(codec.MsgEngineUnavailable, err.Error())
	}
	return res
}

// Translate serves a decoded request. The only error it returns is a failure
// to load the engine's installed models; per-target problems are reported in
// the result.
func (b *Bridge) Translate(ctx context.Context, req *codec.Request) (*codec.Result, error) {
	return b.translate(ctx, req, b.logger)
}

func (b *Bridge) translate(ctx context.Context, req *codec.Request, log logrus.FieldLogger) (*codec.Result, error) {
	graph, err := engine.Snapshot(ctx, b.engine)
	if err != nil {
		return nil, fmt.Errorf("failed to list installed languages: %w", err)
	}

	var opts []resolver.Option
	if b.hinter != nil && req.SourceLanguage == resolver.Auto {
		if hint := b.hinter.Hint(req.Text); hint != "" {
			log.WithField("hint", hint).Debug("detected source language")
			opts = append(opts, resolver.WithHint(hint))
		}
	}

	source := resolver.Resolve(req.SourceLanguage, req.Targets, graph, opts...)
	plans := planner.RouteAll(source, req.Targets, graph)

	log.WithFields(logrus.Fields{
		"engine":     b.engine.Name(),
		"source":     source.String(),
		"targets":    len(req.Targets),
		"edges":      graph.Len(),
		"unresolved": !source.IsResolved(),
	}).Info("routing request")
	for _, t := range req.Targets {
		log.WithField("target", t).Debug(plans[t].String())
	}

	out := executor.ExecuteAll(ctx, req.Targets, plans, req.Text, b.engine, b.concurrency)

	res := codec.NewResult(source.String())
	res.Translations = out.Translations
	res.Errors = out.Errors

	if len(res.Errors) > 0 {
		log.WithField("failed", len(res.Errors)).Warn("some targets were not translated")
	}
	return res, nil
}
