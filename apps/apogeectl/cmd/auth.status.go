package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/apogeehq/apogee/pkg/asdk"
)

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current authentication status",
	Long: `Show whether credentials are cached for the configured platform and when
they expire. Performs no network calls.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig(cmd)
		if err != nil {
			return err
		}
		sdk, err := asdk.New(cfg)
		if err != nil {
			return err
		}

		tok := sdk.Token()
		if tok == nil {
			fmt.Printf("Not logged in to %s. Run 'apogeectl auth login'.\n", cfg.BaseURL)
			return nil
		}

		fmt.Printf("Platform: %s\n", cfg.BaseURL)
		if claims, cerr := asdk.ParseTokenClaims(tok.AccessToken); cerr == nil {
			if claims.Subject != "" {
				fmt.Printf("User: %s\n", claims.Subject)
			}
			if claims.Issuer != "" {
				fmt.Printf("Issuer: %s\n", claims.Issuer)
			}
		}
		now := time.Now()
		if tok.IsExpiredAt(now) {
			fmt.Printf("Token: expired (will refresh on next use)\n")
		} else {
			fmt.Printf("Token: valid for another %s\n", tok.ExpirationTime.Sub(now).Round(time.Second))
		}
		return nil
	},
}

func init() {
	authCmd.AddCommand(authStatusCmd)
}
