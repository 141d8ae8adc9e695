package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/apogeehq/apogee/pkg/asdk"
)

type contextKey string

const configContextKey contextKey = "apogeeconfig"

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "apogeectl",
		Short: "CLI for the apogee compute platform (auth, jobs, logs, telemetry)",
		Long: `apogeectl is a command-line client for the apogee compute platform.
It authenticates via a browser-based sign-in, submits containerized jobs,
streams their logs and live resource telemetry, and manages their lifecycle.

Use the auth subcommands to obtain and manage credentials; use job to
submit, list, inspect, kill, and follow jobs.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := asdk.LoadConfig(cfgFile)
			if err != nil {
				return err
			}

			if err := cfg.Viper().BindPFlags(cmd.Flags()); err != nil {
				return err
			}

			ctx := context.WithValue(cmd.Context(), configContextKey, cfg)
			cmd.SetContext(ctx)

			return nil
		},
	}
)

// GetConfig retrieves the Config from the command context.
func GetConfig(cmd *cobra.Command) (*asdk.Config, error) {
	cfg, ok := cmd.Context().Value(configContextKey).(*asdk.Config)
	if !ok {
		return nil, errors.New("no config in context")
	}
	return cfg, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML). Searches: apogee.yaml, .apogee/config.yaml")
	rootCmd.PersistentFlags().String("base-url", "", "Base URL for the apogee platform API (overrides config)")
}
