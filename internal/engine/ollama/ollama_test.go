package ollama

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/valpere/argobridge/internal/engine"
)

func newOllamaServer(t *testing.T, pulled []string, reply string, status int) (*httptest.Server, *[]string) {
	t.Helper()
	var models []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			type tag struct {
				Name string `json:"name"`
			}
			var tags []tag
			for _, p := range pulled {
				tags = append(tags, tag{Name: p})
			}
			json.NewEncoder(w).Encode(map[string]any{"models": tags})
		case "/api/generate":
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			var req struct {
				Model  string `json:"model"`
				Prompt string `json:"prompt"`
				Stream bool   `json:"stream"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("bad request body: %v", err)
				return
			}
			if req.Stream {
				t.Error("expected stream=false")
			}
			if !strings.Contains(req.Prompt, "from en to fr") {
				t.Errorf("prompt does not name the pair: %q", req.Prompt)
			}
			models = append(models, req.Model)
			if status != http.StatusOK {
				w.WriteHeader(status)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"response": reply})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server, &models
}

func TestService_Name(t *testing.T) {
	if New("", nil, nil, 0).Name() != "ollama" {
		t.Error("unexpected name")
	}
}

func TestService_ListInstalledLanguages(t *testing.T) {
	server, _ := newOllamaServer(t, []string{"mistral:7b", "gemma2:2b"}, "", http.StatusOK)
	svc := New(server.URL, nil, []string{"en", "fr", "de"}, 0)

	langs, err := svc.ListInstalledLanguages(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(langs) != 3 {
		t.Fatalf("expected 3 languages, got %d", len(langs))
	}
	for _, l := range langs {
		if len(l.Targets) != 2 {
			t.Errorf("%s targets = %v, want the two other languages", l.Code, l.Targets)
		}
	}
	if got := svc.model(); got != "gemma2:2b" {
		t.Errorf("active model = %q, want first configured pulled model gemma2:2b", got)
	}
}

func TestService_ListInstalledLanguages_NoModelPulled(t *testing.T) {
	server, _ := newOllamaServer(t, []string{"some-other-model:1b"}, "", http.StatusOK)
	svc := New(server.URL, []string{"llama3.2"}, nil, 0)

	_, err := svc.ListInstalledLanguages(context.Background())
	if !errors.Is(err, engine.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestService_ListInstalledLanguages_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := New(url, nil, nil, 0).ListInstalledLanguages(context.Background())
	if !errors.Is(err, engine.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestService_Translate(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		status  int
		want    string
		wantErr bool
	}{
		{name: "plain", reply: "Bonjour", status: http.StatusOK, want: "Bonjour"},
		{name: "quoted with echo", reply: "Translation: \"Bonjour\"", status: http.StatusOK, want: "Bonjour"},
		{name: "thinking block", reply: "<think>greeting</think>\nBonjour", status: http.StatusOK, want: "Bonjour"},
		{name: "empty reply", reply: "  ", status: http.StatusOK, wantErr: true},
		{name: "server error", status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, models := newOllamaServer(t, []string{"llama3.2:latest"}, tt.reply, tt.status)
			svc := New(server.URL, []string{"llama3.2"}, nil, 0)

			got, err := svc.Translate(context.Background(), "Hello", "en", "fr")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Translate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Translate() = %q, want %q", got, tt.want)
			}
			if len(*models) != 1 || (*models)[0] != "llama3.2" {
				t.Errorf("models used = %v, want [llama3.2]", *models)
			}
		})
	}
}

func TestService_IsAvailable(t *testing.T) {
	server, _ := newOllamaServer(t, nil, "", http.StatusOK)
	if err := New(server.URL, nil, nil, 0).IsAvailable(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPickModel(t *testing.T) {
	tests := []struct {
		wanted, pulled []string
		want           string
		wantOK         bool
	}{
		{[]string{"a", "b"}, []string{"b", "a"}, "a", true},
		{[]string{"a:7b"}, []string{"a:latest"}, "", false},
		{[]string{"a"}, []string{"a:latest"}, "a", true},
		{[]string{"a"}, nil, "", false},
	}

	for _, tt := range tests {
		got, ok := pickModel(tt.wanted, tt.pulled)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("pickModel(%v, %v) = %q, %v; want %q, %v", tt.wanted, tt.pulled, got, ok, tt.want, tt.wantOK)
		}
	}
}
