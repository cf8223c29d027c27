package config

import (
	"net"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Engine != EngineArgos {
		t.Errorf("Engine = %q, want argos", cfg.Engine)
	}
	if cfg.Python != "python3" {
		t.Errorf("Python = %q", cfg.Python)
	}
	if cfg.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want 1", cfg.Concurrency)
	}
	if cfg.LibreTranslate.Timeout != 60*time.Second {
		t.Errorf("LibreTranslate.Timeout = %v", cfg.LibreTranslate.Timeout)
	}
	if cfg.DetectSource {
		t.Error("DetectSource should default to false")
	}
	if cfg.Server.TranslateTimeout != 30*time.Second {
		t.Errorf("Server.TranslateTimeout = %v, want 30s", cfg.Server.TranslateTimeout)
	}
	if cfg.Ollama.URL != "http://localhost:11434" || len(cfg.Ollama.Models) == 0 {
		t.Errorf("unexpected Ollama defaults: %+v", cfg.Ollama)
	}
}

// The HTTP front and a local LibreTranslate must not share a port, or serve
// would forward engine calls to itself.
func TestLoad_DefaultPortsDiffer(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	u, err := url.Parse(cfg.LibreTranslate.URL)
	if err != nil {
		t.Fatalf("bad libretranslate.url %q: %v", cfg.LibreTranslate.URL, err)
	}
	_, serverPort, err := net.SplitHostPort(cfg.Server.Addr)
	if err != nil {
		t.Fatalf("bad server.addr %q: %v", cfg.Server.Addr, err)
	}
	if u.Port() == serverPort {
		t.Errorf("libretranslate.url %q and server.addr %q share port %s", cfg.LibreTranslate.URL, cfg.Server.Addr, serverPort)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := `
engine: libretranslate
concurrency: 4
detect_source: true
libretranslate:
  url: http://lt.internal:5000
  timeout: 5s
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(New(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Engine != EngineLibreTranslate {
		t.Errorf("Engine = %q", cfg.Engine)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency = %d", cfg.Concurrency)
	}
	if !cfg.DetectSource {
		t.Error("expected DetectSource")
	}
	if cfg.LibreTranslate.URL != "http://lt.internal:5000" {
		t.Errorf("URL = %q", cfg.LibreTranslate.URL)
	}
	if cfg.LibreTranslate.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v", cfg.LibreTranslate.Timeout)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestLoad_DiscoveredFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, "argobridge.yaml"), []byte("engine: google\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Engine != EngineGoogle {
		t.Errorf("Engine = %q, want google", cfg.Engine)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ARGOBRIDGE_ENGINE", "libretranslate")
	t.Setenv("ARGOBRIDGE_LIBRETRANSLATE_URL", "http://env:5000")
	t.Setenv("ARGOBRIDGE_CONCURRENCY", "3")

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Engine != EngineLibreTranslate || cfg.LibreTranslate.URL != "http://env:5000" || cfg.Concurrency != 3 {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "valid argos", cfg: Config{Engine: EngineArgos, Concurrency: 1}},
		{name: "unknown engine", cfg: Config{Engine: "deepl", Concurrency: 1}, wantErr: true},
		{name: "zero concurrency", cfg: Config{Engine: EngineArgos}, wantErr: true},
		{name: "libretranslate without url", cfg: Config{Engine: EngineLibreTranslate, Concurrency: 1}, wantErr: true},
		{name: "ollama without models", cfg: Config{Engine: EngineOllama, Concurrency: 1, Ollama: OllamaConfig{URL: "http://localhost:11434"}}, wantErr: true},
		{name: "valid ollama", cfg: Config{Engine: EngineOllama, Concurrency: 1, Ollama: OllamaConfig{URL: "http://localhost:11434", Models: []string{"llama3.2"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
