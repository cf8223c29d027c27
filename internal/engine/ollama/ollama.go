// Package ollama translates with a local LLM served by Ollama. Models are
// language-agnostic, so the capability graph is a full mesh over a
// configured language list.
package ollama

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/valpere/argobridge/internal/capability"
	"github.com/valpere/argobridge/internal/engine"
	"github.com/valpere/argobridge/internal/engine/google"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultTimeout = 120 * time.Second
)

var DefaultModels = []string{
	"llama3.2",
	"gemma2:2b",
	"qwen2.5:3b",
	"mistral:7b",
	"phi4:14b",
}

var DefaultLanguages = []string{"en", "es", "fr", "de", "it", "pt", "ru", "zh", "ja", "ko", "ar", "uk", "hi"}

type Service struct {
	baseURL   string
	models    []string
	languages []string
	client    *http.Client

	mu     sync.Mutex
	active string
}

// New returns an Ollama engine. Empty arguments fall back to the defaults.
func New(baseURL string, models, languages []string, timeout time.Duration) *Service {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if len(models) == 0 {
		models = DefaultModels
	}
	if len(languages) == 0 {
		languages = DefaultLanguages
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		baseURL:   strings.TrimRight(baseURL, "/"),
		models:    models,
		languages: languages,
		client:    &http.Client{Timeout: timeout},
	}
}

func (s *Service) Name() string {
	return "ollama"
}

// ListInstalledLanguages checks that one of the configured models is pulled
// and, if so, offers every configured language pair.
func (s *Service) ListInstalledLanguages(ctx context.Context) ([]capability.Language, error) {
	pulled, err := s.tags(ctx)
	if err != nil {
		return nil, err
	}

	model, ok := pickModel(s.models, pulled)
	if !ok {
		return nil, engine.Unavailable(s.Name(), fmt.Errorf("none of the models %v is pulled", s.models))
	}
	s.mu.Lock()
	s.active = model
	s.mu.Unlock()

	return google.Mesh(s.languages), nil
}

func (s *Service) Translate(ctx context.Context, text, from, to string) (string, error) {
	prompt := fmt.Sprintf(`Translate the following text from %s to %s.
Only respond with the translation, nothing else.

Text: "%s"

Translation:`, from, to, text)

	body, err := json.Marshal(map[string]any{
		"model":  s.model(),
		"prompt": prompt,
		"stream": false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var out struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	translated := clean(out.Response)
	if translated == "" {
		return "", fmt.Errorf("empty translation for %s -> %s", from, to)
	}
	return translated, nil
}

func (s *Service) IsAvailable(ctx context.Context) error {
	_, err := s.tags(ctx)
	return err
}

func (s *Service) model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != "" {
		return s.active
	}
	return s.models[0]
}

// tags lists the models pulled on the server.
func (s *Service) tags(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, engine.Unavailable(s.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, engine.Unavailable(s.Name(), fmt.Errorf("status %d", resp.StatusCode))
	}

	var out struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, engine.Unavailable(s.Name(), fmt.Errorf("failed to decode tags: %w", err))
	}

	names := make([]string, 0, len(out.Models))
	for _, m := range out.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// pickModel returns the first wanted model that is pulled. A wanted name
// without a tag matches its ":latest" form.
func pickModel(wanted, pulled []string) (string, bool) {
	for _, w := range wanted {
		if slices.Contains(pulled, w) {
			return w, true
		}
		if !strings.Contains(w, ":") && slices.Contains(pulled, w+":latest") {
			return w, true
		}
	}
	return "", false
}

var (
	thinkingBlockRe = regexp.MustCompile(`(?is)<(thinking|think|reasoning)>.*?</(thinking|think|reasoning)>`)
	echoRe          = regexp.MustCompile(`(?i)^(?:here(?:'s| is)(?: the)? )?(?:translation|translated text)\s*:`)
)

// clean strips reasoning blocks, a leading "Translation:" echo and quotes
// wrapping the whole reply.
func clean(text string) string {
	text = strings.TrimSpace(thinkingBlockRe.ReplaceAllString(text, ""))
	if loc := echoRe.FindStringIndex(text); loc != nil {
		text = strings.TrimSpace(text[loc[1]:])
	}

	runes := []rune(text)
	if n := len(runes); n >= 2 {
		first, last := runes[0], runes[n-1]
		if (first == '"' && last == '"') || (first == '“' && last == '”') || (first == '«' && last == '»') {
			text = strings.TrimSpace(string(runes[1 : n-1]))
		}
	}
	return text
}
