package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"meikan/internal/api"
	"meikan/internal/jobs"
)

func newJobsCommand(cctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Submit and inspect reconciliation jobs on the daemon",
	}

	jobsCmd.AddCommand(newJobsSubmitCommand(cctx))
	jobsCmd.AddCommand(newJobsListCommand(cctx))
	jobsCmd.AddCommand(newJobsShowCommand(cctx))
	jobsCmd.AddCommand(newJobsDeleteCommand(cctx))

	return jobsCmd
}

func newJobsSubmitCommand(cctx *commandContext) *cobra.Command {
	var institution string
	var wait bool

	cmd := &cobra.Command{
		Use:   "submit <dataset.csv>",
		Short: "Queue a roster file for verification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if institution == "" {
				return fmt.Errorf("--institution is required")
			}
			datasetPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve dataset path: %w", err)
			}

			client := cctx.apiClient()
			view, err := client.Submit(cmd.Context(), jobs.Request{
				DatasetPath: datasetPath,
				Institution: institution,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Submitted job %s (%s)\n", view.ID, view.Status)
			if !wait {
				return nil
			}
			return waitForJob(cmd, client, view.ID)
		},
	}

	cmd.Flags().StringVarP(&institution, "institution", "i", "", "Institution name the roster belongs to")
	cmd.Flags().BoolVar(&wait, "wait", false, "Poll until the job reaches a terminal state")
	return cmd
}

func waitForJob(cmd *cobra.Command, client *apiClient, id string) error {
	out := cmd.OutOrStdout()
	lastProgress := -1.0
	for {
		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case <-time.After(2 * time.Second):
		}

		view, err := client.Job(cmd.Context(), id)
		if err != nil {
			return err
		}
		if view.Progress != lastProgress {
			fmt.Fprintf(out, "  %s %3.0f%%\n", view.Status, view.Progress*100)
			lastProgress = view.Progress
		}
		if view.Status == string(jobs.StatusDone) || view.Status == string(jobs.StatusError) {
			printJobView(cmd, view)
			if view.Status == string(jobs.StatusError) {
				return fmt.Errorf("job %s failed: %s", id, view.Error)
			}
			return nil
		}
	}
}

func newJobsListCommand(cctx *commandContext) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			views, err := cctx.apiClient().Jobs(cmd.Context(), status)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(views) == 0 {
				fmt.Fprintln(out, "No jobs")
				return nil
			}

			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(views))
			for _, view := range views {
				rows = append(rows, []string{
					view.ID,
					colorizeStatus(view.Status, colorize),
					fmt.Sprintf("%3.0f%%", view.Progress*100),
					view.Institution,
					filepath.Base(view.Dataset),
					view.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
				})
			}
			headers := []string{"ID", "Status", "Progress", "Institution", "Dataset", "Updated"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (queued|processing|done|error)")
	return cmd
}

func newJobsShowCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := cctx.apiClient().Job(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printJobView(cmd, view)
			return nil
		},
	}
}

func newJobsDeleteCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <job-id>",
		Short: "Delete a job record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cctx.apiClient().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted job %s\n", args[0])
			return nil
		},
	}
}

func printJobView(cmd *cobra.Command, view api.JobView) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	fmt.Fprintf(out, "Job:         %s\n", view.ID)
	fmt.Fprintf(out, "Status:      %s\n", colorizeStatus(view.Status, colorize))
	fmt.Fprintf(out, "Progress:    %3.0f%%\n", view.Progress*100)
	if view.Institution != "" {
		fmt.Fprintf(out, "Institution: %s\n", view.Institution)
	}
	if view.Dataset != "" {
		fmt.Fprintf(out, "Dataset:     %s\n", view.Dataset)
	}
	if view.Message != "" {
		fmt.Fprintf(out, "Message:     %s\n", view.Message)
	}
	if view.OutputRef != "" {
		fmt.Fprintf(out, "Output:      %s\n", view.OutputRef)
	}
	if view.Error != "" {
		fmt.Fprintf(out, "Error:       %s\n", view.Error)
	}
	fmt.Fprintf(out, "Updated:     %s\n", view.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
}
