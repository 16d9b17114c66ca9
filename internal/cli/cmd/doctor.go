package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"polship/internal/auth"
	"polship/internal/dirs"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "doctor",
		Short:         "Diagnose configuration (API URL, token, config directory)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			apiURL := stringSetting(cmd, "api-url", "api_url")
			fmt.Fprintf(out, "API URL:    %s\n", apiURL)

			if cfgDir, err := dirs.ConfigDir(); err == nil {
				fmt.Fprintf(out, "Config dir: %s\n", cfgDir)
			}

			token, err := auth.ResolveToken(getPersistentString(cmd, "token", ""))
			if err != nil {
				return &ExitError{Code: ExitAuthError, Err: err}
			}
			fmt.Fprintln(out, "Token:      present")

			info, err := auth.Inspect(token)
			if err != nil {
				fmt.Fprintln(out, "Token type: opaque (not a JWT, nothing to inspect)")
				return nil
			}
			if info.Subject != "" {
				fmt.Fprintf(out, "Subject:    %s\n", info.Subject)
			}
			if info.ExpiresAt != nil {
				fmt.Fprintf(out, "Expires:    %s\n", info.ExpiresAt.Format(time.RFC3339))
				if info.Expired(time.Now()) {
					return &ExitError{Code: ExitAuthError, Err: fmt.Errorf("token expired at %s", info.ExpiresAt.Format(time.RFC3339))}
				}
			}
			return nil
		},
	}
}
