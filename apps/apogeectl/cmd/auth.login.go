package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/apogeehq/apogee/pkg/asdk"
	"github.com/apogeehq/apogee/pkg/asdk/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate to the apogee platform",
	Long: `Start an interactive browser-based sign-in with the apogee platform.

A temporary local callback server captures the authorization code when the
browser redirects back, and the resulting credentials are stored in the OS
keyring for subsequent commands.

Examples:
  # start the interactive browser-based login
  apogeectl auth login`,
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig(cmd)
	if err != nil {
		return err
	}

	dispatcher := auth.AnnouncedDispatcher{Next: auth.BrowserDispatcher{}, W: os.Stdout}
	sdk, err := asdk.New(cfg, asdk.WithDispatcher(dispatcher))
	if err != nil {
		return err
	}

	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	spin.Suffix = " waiting for sign-in to finish in the browser..."
	spin.Start()
	tok, err := sdk.Login(cmd.Context())
	spin.Stop()
	if err != nil {
		exitIfSdkError(err)
		return nil
	}

	if claims, cerr := asdk.ParseTokenClaims(tok.AccessToken); cerr == nil && claims.Subject != "" {
		fmt.Printf("Logged in as: %s\n", claims.Subject)
	}
	fmt.Printf("Token will refresh after: %s\n", tok.ExpirationTime.Format(time.RFC3339))
	fmt.Println("Access token saved")
	return nil
}

func init() {
	authCmd.AddCommand(loginCmd)
}
