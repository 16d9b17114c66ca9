package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"polship/internal/config"
)

const (
	ExitOK           = 0
	ExitCLIError     = 1
	ExitAuthError    = 2
	ExitDeployFailed = 3
	ExitTimeout      = 4
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "polship",
		Short:         "Ship policy bundles and watch them land",
		Long:          "Polship triggers a policy-bundle deployment pipeline on the control plane and follows its log stream until the run succeeds, fails, or runs out of time. Phase transitions and timings are reported live.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags available to all subcommands
	root.PersistentFlags().String("api-url", "https://api.polship.io", "Control-plane API base URL")
	root.PersistentFlags().StringP("entity", "e", "", "Entity (policy store) identifier")
	root.PersistentFlags().String("token", "", "API token (falls back to POLSHIP_TOKEN, then the token file)")
	root.PersistentFlags().String("verbosity", "normal", "Progress output: none, quiet, normal, verbose")
	root.PersistentFlags().Bool("debug", false, "Enable debug logging to stderr")
	root.PersistentFlags().Bool("no-ui", false, "Disable TUI; use plain textual output")

	// Subcommands
	root.AddCommand(newDeployCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	_ = config.Init(root)
	return root.ExecuteContext(ctx)
}

// Helpers
func getPersistentString(cmd *cobra.Command, name, def string) string {
	v, err := cmd.InheritedFlags().GetString(name)
	if err != nil || v == "" {
		return def
	}
	return v
}

func getPersistentBool(cmd *cobra.Command, name string, def bool) bool {
	v, err := cmd.InheritedFlags().GetBool(name)
	if err != nil {
		return def
	}
	return v
}
