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
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/valpere/argobridge/internal/config"
	"github.com/valpere/argobridge/internal/logging"
)

var version = "0.1.0"

var (
	cfgFile      string
	engineID     string
	logLevel     string
	concurrency  int
	detectSource bool

	v      = config.New()
	cfg    *config.Config
	logger = log.New()

	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "argobridge",
	Short: "Offline multi-target translation bridge",
	Long: `A bridge between JSON callers and an offline translation engine.

A request names the text, an optional source language ("auto" when omitted)
and a list of targets. Each target is translated directly when a model is
installed, through English when only a two-hop route exists, or reported as
unroutable.

Supported engines: argos (default), libretranslate, google, ollama

Use "argobridge translate --help" for the request format.`,
	Version:            version,
	SilenceUsage:       true,
	PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return setup() },
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return teardown() },
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads .env, the config file and the environment, then configures
// logging. Logs never go to stdout.
func setup() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	c, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = c

	closer, err := logging.Setup(logger, logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	logCloser = closer
	return nil
}

func teardown() error {
	if logCloser == nil {
		return nil
	}
	return logCloser.Close()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./argobridge.yaml or ~/.config/argobridge/argobridge.yaml)")
	rootCmd.PersistentFlags().StringVar(&engineID, "engine", config.EngineArgos, "Translation engine: argos, libretranslate, google, ollama")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 1, "Targets translated at once (1 = sequential)")
	rootCmd.PersistentFlags().BoolVar(&detectSource, "detect-source", false, "Use language detection as a hint for \"auto\" requests")

	_ = v.BindPFlag("engine", rootCmd.PersistentFlags().Lookup("engine"))
	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("concurrency", rootCmd.PersistentFlags().Lookup("concurrency"))
	_ = v.BindPFlag("detect_source", rootCmd.PersistentFlags().Lookup("detect-source"))
}
