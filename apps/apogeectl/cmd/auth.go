package cmd

import (
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication with the apogee platform (login, logout, status)",
	Long: `Manage authentication against the apogee platform.

login runs the browser-based sign-in and caches the resulting credentials
in the OS keyring; logout invalidates them; status inspects what is
currently cached.

Examples:
  apogeectl auth login
  apogeectl auth logout
  apogeectl auth status`,
}

func init() {
	rootCmd.AddCommand(authCmd)
}
