package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/apogeehq/apogee/pkg/asdk"
)

var killCmd = &cobra.Command{
	Use:   "kill ID [ID...]",
	Short: "Kill one or more jobs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig(cmd)
		if err != nil {
			return err
		}
		sdk, err := asdk.New(cfg)
		if err != nil {
			return err
		}

		failed := false
		for _, id := range args {
			if err := sdk.Jobs.Kill(cmd.Context(), id); err != nil {
				failed = true
				fmt.Fprintf(os.Stderr, "Cannot kill job %s: %v\n", id, err)
				continue
			}
			fmt.Println(id)
		}
		if failed {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	jobCmd.AddCommand(killCmd)
}
