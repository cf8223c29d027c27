/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/valpere/argobridge/internal/bridge"
	"github.com/valpere/argobridge/internal/config"
	"github.com/valpere/argobridge/internal/detector"
	"github.com/valpere/argobridge/internal/engine"
	"github.com/valpere/argobridge/internal/engine/argos"
	"github.com/valpere/argobridge/internal/engine/google"
	"github.com/valpere/argobridge/internal/engine/libretranslate"
	"github.com/valpere/argobridge/internal/engine/ollama"
	"github.com/valpere/argobridge/internal/store"
)

// buildEngine constructs the configured translation engine.
func buildEngine(c *config.Config) (engine.Engine, error) {
	switch c.Engine {
	case config.EngineArgos:
		return argos.New(c.Python, logger.WithField("engine", config.EngineArgos)), nil
	case config.EngineLibreTranslate:
		return libretranslate.New(c.LibreTranslate.URL, c.LibreTranslate.APIKey, c.LibreTranslate.Timeout), nil
	case config.EngineGoogle:
		return google.New(c.Google.Credentials), nil
	case config.EngineOllama:
		return ollama.New(c.Ollama.URL, c.Ollama.Models, c.Ollama.Languages, c.Ollama.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown engine: %s", c.Engine)
	}
}

// buildBridge wires the engine and, when enabled, the source detector.
func buildBridge(c *config.Config, e engine.Engine) *bridge.Bridge {
	opts := bridge.Options{
		Concurrency: c.Concurrency,
		Logger:      logger,
	}
	if c.DetectSource {
		opts.Hinter = detector.New()
	}
	return bridge.New(e, opts)
}

// openStore opens the install ledger, creating its directory if needed.
func openStore(path string) (*store.Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return store.New(path)
}
