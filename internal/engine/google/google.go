// Package google adapts Cloud Translation to the engine contract. Every
// supported language can be translated into every other one, so the
// capability graph is a full mesh.
package google

import (
	"context"
	"fmt"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"

	"github.com/valpere/argobridge/internal/capability"
	"github.com/valpere/argobridge/internal/engine"
)

type Service struct {
	credentials string
}

// New returns a Cloud Translation engine. An empty credentials path uses
// application default credentials.
func New(credentials string) *Service {
	return &Service{credentials: credentials}
}

func (s *Service) Name() string {
	return "google"
}

func (s *Service) client(ctx context.Context) (*translate.Client, error) {
	var opts []option.ClientOption
	if s.credentials != "" {
		opts = append(opts, option.WithCredentialsFile(s.credentials))
	}
	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return nil, engine.Unavailable(s.Name(), err)
	}
	return client, nil
}

func (s *Service) ListInstalledLanguages(ctx context.Context) ([]capability.Language, error) {
	client, err := s.client(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	supported, err := client.SupportedLanguages(ctx, language.English)
	if err != nil {
		return nil, engine.Unavailable(s.Name(), err)
	}

	codes := make([]string, 0, len(supported))
	for _, l := range supported {
		codes = append(codes, l.Tag.String())
	}
	return Mesh(codes), nil
}

func (s *Service) Translate(ctx context.Context, text, from, to string) (string, error) {
	sourceTag, err := language.Parse(from)
	if err != nil {
		return "", fmt.Errorf("invalid source language: %w", err)
	}
	targetTag, err := language.Parse(to)
	if err != nil {
		return "", fmt.Errorf("invalid target language: %w", err)
	}

	client, err := s.client(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	translations, err := client.Translate(ctx, []string{text}, targetTag, &translate.Options{
		Source: sourceTag,
		Format: translate.Text,
	})
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}
	if len(translations) == 0 {
		return "", fmt.Errorf("no translation returned")
	}
	return translations[0].Text, nil
}

func (s *Service) IsAvailable(ctx context.Context) error {
	client, err := s.client(ctx)
	if err != nil {
		return err
	}
	return client.Close()
}

// Mesh connects every code to every other code.
func Mesh(codes []string) []capability.Language {
	out := make([]capability.Language, 0, len(codes))
	for _, from := range codes {
		targets := make([]string, 0, len(codes))
		for _, to := range codes {
			if to != from {
				targets = append(targets, to)
			}
		}
		out = append(out, capability.Language{Code: from, Targets: targets})
	}
	return out
}
