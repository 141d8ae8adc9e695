package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apogeehq/apogee/pkg/asdk"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove cached apogee credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig(cmd)
		if err != nil {
			return err
		}
		sdk, err := asdk.New(cfg)
		if err != nil {
			return err
		}
		if err := sdk.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out")
		return nil
	},
}

func init() {
	authCmd.AddCommand(logoutCmd)
}
