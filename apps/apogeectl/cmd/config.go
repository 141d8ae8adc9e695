package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved client configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig(cmd)
		if err != nil {
			return err
		}
		fmt.Printf("Base URL: %s\n", cfg.BaseURL)
		fmt.Printf("API version: %s\n", cfg.APIVersion)
		fmt.Printf("Auth URL: %s\n", cfg.Auth.URL)
		fmt.Printf("Callback ports: %v\n", cfg.Auth.CallbackPorts)
		if file := cfg.ConfigFileUsed(); file != "" {
			fmt.Printf("Config file: %s\n", file)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
