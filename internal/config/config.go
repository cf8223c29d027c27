// Package config loads argobridge settings.
//
// Sources, lowest precedence first: built-in defaults, an optional config
// file, ARGOBRIDGE_* environment variables, then command-line flags bound by
// the caller.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix = "ARGOBRIDGE"
	FileName  = "argobridge"
)

const (
	EngineArgos          = "argos"
	EngineLibreTranslate = "libretranslate"
	EngineGoogle         = "google"
	EngineOllama         = "ollama"
)

type LibreTranslateConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type GoogleConfig struct {
	Credentials string `mapstructure:"credentials"`
}

type OllamaConfig struct {
	URL string `mapstructure:"url"`
	// Models are tried in order; the first one pulled on the server is used.
	Models    []string      `mapstructure:"models"`
	Languages []string      `mapstructure:"languages"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
	// MaxSizeMB caps a log file before rotation.
	MaxSizeMB  int `mapstructure:"max_size_mb"`
	MaxBackups int `mapstructure:"max_backups"`
}

type ServerConfig struct {
	Addr             string        `mapstructure:"addr"`
	TranslateTimeout time.Duration `mapstructure:"translate_timeout"`
}

type Config struct {
	Engine         string               `mapstructure:"engine"`
	Python         string               `mapstructure:"python"`
	LibreTranslate LibreTranslateConfig `mapstructure:"libretranslate"`
	Google         GoogleConfig         `mapstructure:"google"`
	Ollama         OllamaConfig         `mapstructure:"ollama"`
	// Concurrency bounds how many targets are translated at once.
	Concurrency  int          `mapstructure:"concurrency"`
	DetectSource bool         `mapstructure:"detect_source"`
	DBPath       string       `mapstructure:"db"`
	Log          LogConfig    `mapstructure:"log"`
	Server       ServerConfig `mapstructure:"server"`
}

// New returns a viper instance with defaults and environment lookup wired.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("engine", EngineArgos)
	v.SetDefault("python", "python3")
	v.SetDefault("libretranslate.url", "http://localhost:5001")
	v.SetDefault("libretranslate.api_key", "")
	v.SetDefault("libretranslate.timeout", 60*time.Second)
	v.SetDefault("google.credentials", "")
	v.SetDefault("ollama.url", "http://localhost:11434")
	v.SetDefault("ollama.models", []string{"llama3.2", "gemma2:2b", "qwen2.5:3b", "mistral:7b", "phi4:14b"})
	v.SetDefault("ollama.languages", []string{})
	v.SetDefault("ollama.timeout", 120*time.Second)
	v.SetDefault("concurrency", 1)
	v.SetDefault("detect_source", false)
	v.SetDefault("db", "./data/argobridge.db")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.translate_timeout", 30*time.Second)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file (path, or argobridge.* discovered in the working
// directory and $HOME/.config/argobridge) into v and decodes the result. A
// missing discovered file is not an error; a missing explicit one is.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/argobridge")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Engine {
	case EngineArgos, EngineLibreTranslate, EngineGoogle, EngineOllama:
	default:
		return fmt.Errorf("unknown engine %q", c.Engine)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.Engine == EngineLibreTranslate && c.LibreTranslate.URL == "" {
		return fmt.Errorf("libretranslate.url is required")
	}
	if c.Engine == EngineOllama && (c.Ollama.URL == "" || len(c.Ollama.Models) == 0) {
		return fmt.Errorf("ollama.url and ollama.models are required")
	}
	return nil
}
