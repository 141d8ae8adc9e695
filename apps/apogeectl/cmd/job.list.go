package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/apogeehq/apogee/pkg/asdk"
	"github.com/apogeehq/apogee/pkg/asdk/jobs"
)

var (
	listStatuses []string
	listName     string
	listDesc     string
	listQuiet    bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs",
	Long: `List jobs, newest first, in the order the platform returns them.

Examples:
  apogeectl job list
  apogeectl job list --status all
  apogeectl job list -s pending -s running -q
  apogeectl job list --description "my favourite job"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig(cmd)
		if err != nil {
			return err
		}
		sdk, err := asdk.New(cfg)
		if err != nil {
			return err
		}

		statuses, err := resolveStatuses(listStatuses)
		if err != nil {
			return err
		}

		descriptors, err := sdk.Jobs.List(cmd.Context(), jobs.ListOptions{
			Statuses:    statuses,
			Name:        listName,
			Description: listDesc,
		})
		if err != nil {
			exitIfSdkError(err)
			return nil
		}

		if listQuiet {
			for _, job := range descriptors {
				fmt.Println(job.ID)
			}
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "NAME", "STATUS", "IMAGE", "COMMAND", "DESCRIPTION"})
		for _, job := range descriptors {
			t.AppendRow(table.Row{
				job.ID, job.Name, job.Status,
				job.Container.Image, job.Container.Command, job.Description,
			})
		}
		t.SetStyle(table.StyleLight)
		t.Render()
		return nil
	},
}

// resolveStatuses validates -s values. No flags defaults to the active
// states; "all" clears the filter entirely.
func resolveStatuses(flags []string) ([]jobs.JobStatus, error) {
	if len(flags) == 0 {
		return []jobs.JobStatus{jobs.StatusRunning, jobs.StatusPending}, nil
	}
	known := map[string]bool{"all": true}
	for _, s := range jobs.Statuses() {
		known[string(s)] = true
	}
	out := make([]jobs.JobStatus, 0, len(flags))
	for _, f := range flags {
		if !known[f] {
			return nil, fmt.Errorf("unknown status %q", f)
		}
		if f == "all" {
			return nil, nil
		}
		out = append(out, jobs.JobStatus(f))
	}
	return out, nil
}

func init() {
	jobCmd.AddCommand(listCmd)
	listCmd.Flags().StringArrayVarP(&listStatuses, "status", "s", nil, "Filter by status (pending|running|succeeded|failed|all); repeatable")
	listCmd.Flags().StringVarP(&listName, "name", "n", "", "Filter by job name (exact match)")
	listCmd.Flags().StringVarP(&listDesc, "description", "d", "", "Filter by job description (exact match)")
	listCmd.Flags().BoolVarP(&listQuiet, "quiet", "q", false, "Print only job ids")
}
