package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jaye773/summarizer-core/internal/job"
	"github.com/jaye773/summarizer-core/internal/statestore/jsonstore"
	"github.com/jaye773/summarizer-core/pkg/config"
)

// jobsCmd groups query operations against the JSON-on-disk state store,
// in the style of the teacher's cmd/cli/status command against a running
// node — reading the file directly rather than over a client, since this
// core has no status RPC of its own.
var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Query the job state store",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Args:  cobra.NoArgs,
	Short: "List jobs recorded in the state store",
	RunE:  runJobsList,
}

var jobsGetCmd = &cobra.Command{
	Use:   "get <job-id>",
	Args:  cobra.ExactArgs(1),
	Short: "Print one job's full record as JSON",
	RunE:  runJobsGet,
}

var jobsClientFilter string

func init() {
	jobsListCmd.Flags().StringVar(&jobsClientFilter, "client-id", "", "only list jobs for this client")
	jobsCmd.AddCommand(jobsListCmd, jobsGetCmd)
}

func loadJobs() ([]*job.Job, error) {
	dataDir := viper.GetString("repo.data_dir")
	if dataDir == "" {
		dataDir = config.DefaultDataDir
	}
	store := jsonstore.New(filepath.Join(dataDir, "jobs.json"), nil)
	return store.Load()
}

func runJobsList(cmd *cobra.Command, _ []string) error {
	jobs, err := loadJobs()
	if err != nil {
		return fmt.Errorf("loading state store: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tSTATUS\tPROGRESS\tCLIENT\tATTEMPT")
	for _, j := range jobs {
		if jobsClientFilter != "" && j.ClientID != jobsClientFilter {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0f%%\t%s\t%d\n",
			j.ID, j.Kind, j.Status, j.Progress*100, j.ClientID, j.Attempt)
	}
	return w.Flush()
}

func runJobsGet(cmd *cobra.Command, args []string) error {
	jobs, err := loadJobs()
	if err != nil {
		return fmt.Errorf("loading state store: %w", err)
	}

	for _, j := range jobs {
		if j.ID == args[0] {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(j)
		}
	}
	return fmt.Errorf("job %q not found", args[0])
}
