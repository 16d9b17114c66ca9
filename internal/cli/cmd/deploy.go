package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"polship/internal/api"
	"polship/internal/model"
)

func newDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "deploy <bundle-ref>",
		Short:         "Trigger a policy-bundle deployment and wait for it to land",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := assembleOptions(cmd)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			client, err := newClient(opts)
			if err != nil {
				return &ExitError{Code: ExitAuthError, Err: err}
			}

			message, _ := cmd.Flags().GetString("message")
			run, err := client.TriggerDeployment(cmd.Context(), opts.EntityID, api.DeployRequest{
				BundleRef: args[0],
				Message:   message,
			})
			if err != nil {
				if api.IsPermissionDenied(err) {
					return &ExitError{Code: ExitAuthError, Err: err}
				}
				return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("trigger deployment: %w", err)}
			}

			if opts.Verbosity != model.VerbosityNone {
				fmt.Fprintf(cmd.OutOrStdout(), "Deployment run %s started for entity %s\n", run.ID, opts.EntityID)
			}
			return watchRun(cmd, client, opts, run.ID)
		},
	}
	bindPollFlags(cmd)
	cmd.Flags().String("message", "", "Optional description recorded with the run")
	return cmd
}
