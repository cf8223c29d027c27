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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/argobridge/internal/server"
)

var (
	serveAddr        string
	translateTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve translation requests over HTTP",
	Long: `Serve the bridge over HTTP.

Endpoints:
  POST /multi-translate  same request and response bodies as "translate"
                         (400 for bad input, 500 when the engine is unavailable,
                         504 when --translate-timeout expires)
  GET  /health           engine availability`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := buildEngine(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(buildBridge(cfg, eng), eng, server.Options{
			TranslateTimeout: cfg.Server.TranslateTimeout,
			Logger:           logger,
		})
		if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":5000", "Listen address")

	serveCmd.Flags().DurationVar(&translateTimeout, "translate-timeout", server.DefaultTranslateTimeout, "Per-request translation limit (0 = none)")

	_ = v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = v.BindPFlag("server.translate_timeout", serveCmd.Flags().Lookup("translate-timeout"))
}
