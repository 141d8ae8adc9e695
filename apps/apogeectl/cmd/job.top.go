package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/apogeehq/apogee/pkg/asdk"
)

var topCmd = &cobra.Command{
	Use:   "top ID",
	Short: "Stream live resource telemetry for a running job",
	Long: `Print live CPU, memory, and GPU usage samples for a running job, one line
per sample, until the job stops or the stream is interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig(cmd)
		if err != nil {
			return err
		}
		sdk, err := asdk.New(cfg)
		if err != nil {
			return err
		}

		stream, err := sdk.Jobs.Top(cmd.Context(), args[0])
		if err != nil {
			exitIfSdkError(err)
			return nil
		}
		defer stream.Close()

		fmt.Printf("%-25s %8s %10s %8s %10s\n", "TIMESTAMP", "CPU", "MEMORY", "GPU", "GPU MEM")
		for {
			sample, err := stream.Next()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				exitIfSdkError(err)
				return nil
			}
			ts := time.Unix(int64(sample.Timestamp), 0).Format(time.RFC3339)
			fmt.Printf("%-25s %7.1f%% %9.1fM %7.0f%% %9.1fM\n",
				ts, sample.CPU*100, sample.Memory, sample.GPUDutyCycle, sample.GPUMemory)
		}
	},
}

func init() {
	jobCmd.AddCommand(topCmd)
}
