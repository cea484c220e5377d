package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"meikan/internal/reconcile"
	"meikan/internal/registry/webreg"
	"meikan/internal/roster"
	"meikan/internal/similarity"
	"meikan/internal/verifycache"
)

func newRunCommand(cctx *commandContext) *cobra.Command {
	var institution string
	var correctedPath string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "run <dataset.csv>",
		Short: "Verify a roster file against the registry and print results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			if institution == "" {
				return fmt.Errorf("--institution is required")
			}

			dataset, err := roster.Load(args[0])
			if err != nil {
				return err
			}

			client, err := webreg.New(
				cfg.Registry.BaseURL,
				cfg.Registry.Username,
				cfg.Registry.Password,
				time.Duration(cfg.Registry.RequestTimeout)*time.Second,
				cfg.Registry.RequestsPerMinute,
				nil,
			)
			if err != nil {
				return fmt.Errorf("create registry client: %w", err)
			}

			var verify *verifycache.Cache
			if cfg.VerifyCache.Enabled && !noCache {
				verify = verifycache.NewCache(cfg.VerifyCache.Path, cfg.VerifyCache.StoreNotFound, nil)
			}

			scheduler := reconcile.New(client, verify, reconcile.Options{
				MaxWorkers:    cfg.Reconcile.MaxWorkers,
				WorkerHardCap: cfg.Reconcile.WorkerHardCap,
				Policy: similarity.Policy{
					ExactThreshold:     cfg.Matching.ExactThreshold,
					CandidateThreshold: cfg.Matching.CandidateThreshold,
				},
			}, nil)

			run, err := scheduler.Run(cmd.Context(), dataset, roster.NewInstitution(institution))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderResultsTable(dataset, run.Results, colorize))
			fmt.Fprintln(out, renderSummary(run.Summary, colorize))

			if correctedPath != "" {
				if err := run.Corrected.WriteCSV(correctedPath); err != nil {
					return fmt.Errorf("write corrected dataset: %w", err)
				}
				fmt.Fprintf(out, "Corrected dataset written to %s\n", correctedPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&institution, "institution", "i", "", "Institution name the roster belongs to")
	cmd.Flags().StringVar(&correctedPath, "corrected", "", "Write a corrected copy of the dataset to this path")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the persistent verification cache")
	return cmd
}

func renderResultsTable(dataset roster.Dataset, results []reconcile.Result, colorize bool) string {
	headers := []string{"Row", "Player", "Status", "Similarity", "Corrections", "Note"}
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		name := ""
		if result.RowIndex >= 0 && result.RowIndex < len(dataset.Rows) {
			name, _ = dataset.Rows[result.RowIndex].PlayerName()
		}
		similarityCell := ""
		if result.Status == reconcile.StatusMatch || result.Status == reconcile.StatusPartialMatch {
			similarityCell = fmt.Sprintf("%.2f", result.Similarity)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", result.RowIndex+1),
			name,
			colorizeStatus(string(result.Status), colorize),
			similarityCell,
			fmt.Sprintf("%d", len(result.Corrections)),
			result.Message,
		})
	}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft}
	return renderTable(headers, rows, aligns)
}

func renderSummary(summary map[reconcile.Status]int, colorize bool) string {
	statuses := make([]string, 0, len(summary))
	for status := range summary {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)

	line := "Summary:"
	for _, status := range statuses {
		line += fmt.Sprintf(" %s=%d", colorizeStatus(status, colorize), summary[reconcile.Status(status)])
	}
	return line
}
