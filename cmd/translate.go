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
	"github.com/spf13/cobra"

	"github.com/valpere/argobridge/internal/codec"
)

// setupErr defers a setup failure so that translate can still answer in JSON.
var setupErr error

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate one JSON request from stdin",
	Long: `Read one JSON request from standard input and write one JSON response to
standard output.

Request:
  {"text": "Hello", "sourceLanguage": "auto", "targets": ["fr", "hi"]}

Response:
  {"success": true, "usedSource": "en",
   "translations": {"fr": "Bonjour"}, "errors": {"hi": "No model for en -> hi"}}

Failures are reported as {"success": false, "error": "..."}. The command
always exits 0 once it has started; logs go to stderr or the configured file.`,
	Args: cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupErr = setup()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if setupErr != nil {
			return codec.Encode(out, codec.NewFailure(codec.MsgUnhandled, setupErr.Error()))
		}

		eng, err := buildEngine(cfg)
		if err != nil {
			return codec.Encode(out, codec.NewFailure(codec.MsgEngineUnavailable, err.Error()))
		}

		return buildBridge(cfg, eng).Run(cmd.Context(), cmd.InOrStdin(), out)
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)
}
