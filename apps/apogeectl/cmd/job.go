package cmd

import (
	"github.com/spf13/cobra"

	"github.com/apogeehq/apogee/pkg/asdk"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Submit and manage jobs (submit, list, status, kill, logs, top)",
	Long: `Job operations against the apogee platform.

Examples:
  apogeectl job submit --cpu 2 --memory 4G pytorch:latest -- python train.py
  apogeectl job list -s running -s pending
  apogeectl job logs job-abc123
  apogeectl job top job-abc123
  apogeectl job kill job-abc123`,
}

// resolveOwner determines whose storage root relative volume paths resolve
// against: an explicit username from config wins, otherwise the subject of
// the cached token.
func resolveOwner(cfg *asdk.Config, sdk *asdk.Sdk) string {
	if cfg.Username != "" {
		return cfg.Username
	}
	if tok := sdk.Token(); tok != nil {
		if claims, err := asdk.ParseTokenClaims(tok.AccessToken); err == nil {
			return claims.Subject
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(jobCmd)
}
