// Package libretranslate talks to a LibreTranslate server, which serves the
// same argos models over HTTP.
package libretranslate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/valpere/argobridge/internal/capability"
	"github.com/valpere/argobridge/internal/engine"
)

const (
	DefaultBaseURL = "http://localhost:5001"
	DefaultTimeout = 60 * time.Second
)

type Service struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func New(baseURL, apiKey string, timeout time.Duration) *Service {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *Service) Name() string {
	return "libretranslate"
}

func (s *Service) ListInstalledLanguages(ctx context.Context) ([]capability.Language, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/languages", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, engine.Unavailable(s.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, engine.Unavailable(s.Name(), fmt.Errorf("API returned status %d", resp.StatusCode))
	}

	var langs []struct {
		Code    string   `json:"code"`
		Name    string   `json:"name"`
		Targets []string `json:"targets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&langs); err != nil {
		return nil, fmt.Errorf("failed to decode languages: %w", err)
	}

	out := make([]capability.Language, 0, len(langs))
	for _, l := range langs {
		targets := make([]string, 0, len(l.Targets))
		for _, t := range l.Targets {
			// LibreTranslate lists each language as its own target.
			if t != l.Code {
				targets = append(targets, t)
			}
		}
		out = append(out, capability.Language{Code: l.Code, Targets: targets})
	}
	return out, nil
}

func (s *Service) Translate(ctx context.Context, text, from, to string) (string, error) {
	payload := map[string]string{
		"q":      text,
		"source": from,
		"target": to,
		"format": "text",
	}
	if s.apiKey != "" {
		payload["api_key"] = s.apiKey
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var out struct {
		TranslatedText *string `json:"translatedText"`
		Error          string  `json:"error"`
	}
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && out.Error != "" {
			return "", errors.New(out.Error)
		}
		return "", fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if out.TranslatedText == nil {
		return "", fmt.Errorf("no translation returned")
	}
	return *out.TranslatedText, nil
}

func (s *Service) IsAvailable(ctx context.Context) error {
	_, err := s.ListInstalledLanguages(ctx)
	return err
}
