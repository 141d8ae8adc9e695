package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/apogeehq/apogee/pkg/asdk"
)

var statusCmd = &cobra.Command{
	Use:   "status ID",
	Short: "Display the status of a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig(cmd)
		if err != nil {
			return err
		}
		sdk, err := asdk.New(cfg)
		if err != nil {
			return err
		}

		job, err := sdk.Jobs.Status(cmd.Context(), args[0])
		if err != nil {
			exitIfSdkError(err)
			return nil
		}

		fmt.Printf("Job: %s\n", job.ID)
		if job.Name != "" {
			fmt.Printf("Name: %s\n", job.Name)
		}
		fmt.Printf("Owner: %s\n", job.Owner)
		fmt.Printf("Status: %s\n", job.Status)
		if job.Description != "" {
			fmt.Printf("Description: %s\n", job.Description)
		}
		fmt.Printf("Image: %s\n", job.Container.Image)
		if job.Container.Command != "" {
			fmt.Printf("Command: %s\n", job.Container.Command)
		}
		res := job.Container.Resources
		fmt.Printf("Resources: cpu=%g memory=%dM", res.CPU, int(res.MemoryMB))
		if res.GPU > 0 {
			fmt.Printf(" gpu=%d", res.GPU)
			if res.GPUModel != "" {
				fmt.Printf(" (%s)", res.GPUModel)
			}
		}
		fmt.Println()
		fmt.Printf("Preemptible: %v\n", job.IsPreemptible)
		if job.HTTPURL != "" {
			fmt.Printf("HTTP URL: %s\n", job.HTTPURL)
		}
		if job.History.Reason != "" {
			fmt.Printf("Reason: %s\n", job.History.Reason)
		}
		if job.History.Description != "" {
			fmt.Printf("Detail: %s\n", job.History.Description)
		}
		printWhen("Created", job.History.CreatedAt)
		printWhen("Started", job.History.StartedAt)
		printWhen("Finished", job.History.FinishedAt)
		return nil
	},
}

func printWhen(label, stamp string) {
	if stamp == "" {
		return
	}
	if ts, err := time.Parse(time.RFC3339Nano, stamp); err == nil {
		fmt.Printf("%s: %s (%s)\n", label, ts.Format(time.RFC3339), humanize.Time(ts))
		return
	}
	fmt.Printf("%s: %s\n", label, stamp)
}

func init() {
	jobCmd.AddCommand(statusCmd)
}
