package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/apogeehq/apogee/pkg/asdk"
)

var logsCmd = &cobra.Command{
	Use:   "logs ID",
	Short: "Stream the output of a job",
	Long: `Stream a job's log output to stdout. The stream follows the job until its
log closes; interrupt with Ctrl-C to stop early.`,
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

		stream, err := sdk.Jobs.Monitor(cmd.Context(), args[0])
		if err != nil {
			exitIfSdkError(err)
			return nil
		}
		defer stream.Close()

		if _, err := stream.WriteTo(os.Stdout); err != nil {
			exitIfSdkError(err)
		}
		return nil
	},
}

func init() {
	jobCmd.AddCommand(logsCmd)
}
