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
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/argobridge/internal/capability"
	"github.com/valpere/argobridge/internal/codec"
	"github.com/valpere/argobridge/internal/config"
	"github.com/valpere/argobridge/internal/engine"
	"github.com/valpere/argobridge/internal/installer"
)

var (
	cfgDBPath    string
	modelsJSON   bool
	installPairs []string
	historyLimit int
	historyRun   string
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect and install translation models",
	Long:  `List installed translation pairs, install new ones and review past installer runs.`,
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed translation pairs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := buildEngine(cfg)
		if err != nil {
			return err
		}

		graph, err := engine.Snapshot(cmd.Context(), eng)
		if err != nil {
			return fmt.Errorf("failed to list installed languages: %w", err)
		}

		out := cmd.OutOrStdout()
		if modelsJSON {
			edges := graph.Edges()
			if edges == nil {
				edges = []capability.Edge{}
			}
			return codec.Encode(out, edges)
		}

		if graph.Len() == 0 {
			fmt.Fprintln(out, "No translation models installed.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FROM\tTO")
		for _, from := range graph.Languages() {
			targets := graph.Targets(from)
			if len(targets) == 0 {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\n", from, strings.Join(targets, ", "))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Fprintf(out, "\n%d languages, %d pairs (engine: %s)\n", len(graph.Languages()), graph.Len(), eng.Name())
		return nil
	},
}

var modelsInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install translation models from the package index",
	Long: `Update the package index and install the requested pairs.

Without --pair the default set is installed: English to and from
hi, fr, es, ar, zh, ru, ja, ta and ml.

Only the argos engine can install models. Every run is recorded in the
install ledger (see "argobridge models history").`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Engine != config.EngineArgos {
			return fmt.Errorf("model installation requires the %s engine, configured engine is %s", config.EngineArgos, cfg.Engine)
		}

		pairs := installer.DefaultPairs
		if len(installPairs) > 0 {
			pairs = nil
			for _, p := range installPairs {
				pair, err := installer.ParsePair(p)
				if err != nil {
					return err
				}
				pairs = append(pairs, pair)
			}
		}

		eng, err := buildEngine(cfg)
		if err != nil {
			return err
		}
		index, ok := eng.(installer.PackageIndex)
		if !ok {
			return fmt.Errorf("engine %s has no package index", eng.Name())
		}

		db, err := openStore(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		report, err := installer.New(index, db, logger).Install(cmd.Context(), pairs)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PAIR\tSTATUS\tDETAIL")
		for _, r := range report.Results {
			fmt.Fprintf(w, "%s -> %s\t%s\t%s\n", r.Pair.From, r.Pair.To, r.Status, r.Detail)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Fprintf(out, "\nInstalled: %d, not found: %d, failed: %d (run %s)\n",
			report.Count(installer.StatusInstalled),
			report.Count(installer.StatusNotFound),
			report.Count(installer.StatusError),
			report.RunID)

		if n := report.Count(installer.StatusError); n > 0 {
			return fmt.Errorf("%d pairs failed to install", n)
		}
		return nil
	},
}

var modelsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past installer runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		out := cmd.OutOrStdout()

		if historyRun != "" {
			results, err := db.InstallResults(cmd.Context(), historyRun)
			if err != nil {
				return fmt.Errorf("failed to load run %s: %w", historyRun, err)
			}
			if len(results) == 0 {
				fmt.Fprintf(out, "No results for run %s.\n", historyRun)
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PAIR\tSTATUS\tDETAIL")
			for _, r := range results {
				fmt.Fprintf(w, "%s -> %s\t%s\t%s\n", r.Pair.From, r.Pair.To, r.Status, r.Detail)
			}
			return w.Flush()
		}

		runs, err := db.ListInstallRuns(cmd.Context(), historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Fprintln(out, "No installer runs recorded.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tSTARTED\tDURATION\tINSTALLED\tNOT FOUND\tFAILED")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
				r.ID,
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				r.FinishedAt.Sub(r.StartedAt).Round(time.Second),
				r.Installed, r.NotFound, r.Failed)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		pairs, err := db.LastInstalled(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to summarise installed pairs: %w", err)
		}
		fmt.Fprintf(out, "\n%d pairs installed as of the latest runs\n", len(pairs))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)

	modelsCmd.PersistentFlags().StringVar(&cfgDBPath, "db", "./data/argobridge.db", "Install ledger database path")
	_ = v.BindPFlag("db", modelsCmd.PersistentFlags().Lookup("db"))

	modelsListCmd.Flags().BoolVar(&modelsJSON, "json", false, "Print edges as JSON")
	modelsInstallCmd.Flags().StringSliceVar(&installPairs, "pair", nil, "Pair to install as from:to (repeatable; default set if empty)")
	modelsHistoryCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of runs to show (0 = all)")
	modelsHistoryCmd.Flags().StringVar(&historyRun, "run", "", "Show per-pair results of one run")

	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsInstallCmd)
	modelsCmd.AddCommand(modelsHistoryCmd)
}
