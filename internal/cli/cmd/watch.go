package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"polship/internal/api"
	"polship/internal/auth"
	"polship/internal/logger"
	"polship/internal/model"
	"polship/internal/poller"
	"polship/internal/progress"
	"polship/internal/ui"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "watch <run-id>",
		Short:         "Follow a running deployment to its terminal outcome",
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
			return watchRun(cmd, client, opts, args[0])
		},
	}
	bindPollFlags(cmd)
	return cmd
}

func bindPollFlags(cmd *cobra.Command) {
	cmd.Flags().Int("timeout-minutes", 10, "Wall-clock budget for the whole session (1-120)")
	cmd.Flags().Int("poll-delay-ms", int(poller.DefaultPollDelay.Milliseconds()), "Fixed delay between log fetches")
	cmd.Flags().Int("log-limit", poller.DefaultLogLimit, "Max log entries per fetch (1-1000)")
}

// assembleOptions resolves options with flag > env/config > default
// precedence and validates ranges the poller itself does not enforce.
func assembleOptions(cmd *cobra.Command) (model.Options, error) {
	opts := model.Options{
		APIURL:   stringSetting(cmd, "api-url", "api_url"),
		EntityID: stringSetting(cmd, "entity", "entity"),
		Token:    getPersistentString(cmd, "token", ""),
		Debug:    getPersistentBool(cmd, "debug", false) || viper.GetBool("debug"),
		NoUI:     getPersistentBool(cmd, "no-ui", false),
	}

	rawVerbosity := stringSetting(cmd, "verbosity", "verbosity")
	verbosity, ok := progress.ParseVerbosity(rawVerbosity)
	if !ok {
		return opts, fmt.Errorf("invalid --verbosity: %q (valid: none|quiet|normal|verbose)", rawVerbosity)
	}
	opts.Verbosity = verbosity

	opts.TimeoutMinutes = intSetting(cmd, "timeout-minutes", "timeout_minutes", 10)
	if opts.TimeoutMinutes < 1 || opts.TimeoutMinutes > 120 {
		return opts, fmt.Errorf("invalid --timeout-minutes: %d (valid: 1-120)", opts.TimeoutMinutes)
	}

	opts.PollDelayMs = intSetting(cmd, "poll-delay-ms", "poll_delay_ms", int(poller.DefaultPollDelay.Milliseconds()))
	if opts.PollDelayMs < 100 {
		return opts, fmt.Errorf("invalid --poll-delay-ms: %d (minimum 100)", opts.PollDelayMs)
	}

	opts.LogLimit = intSetting(cmd, "log-limit", "log_limit", poller.DefaultLogLimit)
	if opts.LogLimit < 1 || opts.LogLimit > 1000 {
		return opts, fmt.Errorf("invalid --log-limit: %d (valid: 1-1000)", opts.LogLimit)
	}

	if opts.EntityID == "" {
		return opts, errors.New("an entity is required: pass --entity or set POLSHIP_ENTITY")
	}

	if opts.Debug {
		logger.Init("debug")
	} else {
		logger.Init("warn")
	}
	return opts, nil
}

// newClient resolves the token and builds an authenticated API client,
// warning early when a JWT token is already expired.
func newClient(opts model.Options) (*api.Client, error) {
	token, err := auth.ResolveToken(opts.Token)
	if err != nil {
		return nil, err
	}
	if info, ierr := auth.Inspect(token); ierr == nil && info.Expired(time.Now()) {
		logger.Warnf("API token expired at %s; the control plane will likely reject it", info.ExpiresAt.Format(time.RFC3339))
	}
	return api.NewClient(opts.APIURL).WithToken(token), nil
}

// watchRun polls the run to a terminal outcome, in the TUI when stdout is a
// terminal (and --no-ui was not given), plain text otherwise. The outcome
// maps onto the process exit code.
func watchRun(cmd *cobra.Command, client *api.Client, opts model.Options, runID string) error {
	ctx := cmd.Context()

	if !opts.NoUI && isTerminal() {
		result, err := ui.Run(ctx, client, opts, runID)
		if err != nil {
			return &ExitError{Code: ExitCLIError, Err: err}
		}
		return exitForResult(result)
	}

	reporter := progress.NewConsole(cmd.OutOrStdout(), opts.Verbosity)
	p := poller.New(client,
		poller.WithTimeout(time.Duration(opts.TimeoutMinutes)*time.Minute),
		poller.WithPollDelay(time.Duration(opts.PollDelayMs)*time.Millisecond),
		poller.WithLogLimit(opts.LogLimit),
		poller.WithReporter(reporter),
	)
	result, err := p.Wait(ctx, opts.EntityID, runID)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	return exitForResult(result)
}

func exitForResult(result model.PollResult) error {
	switch result.Status {
	case model.StatusFailed:
		msg := result.ErrorMessage
		if msg == "" {
			msg = "deployment failed"
		}
		return &ExitError{Code: ExitDeployFailed, Err: errors.New(msg)}
	case model.StatusTimeout:
		return &ExitError{Code: ExitTimeout, Err: errors.New("deployment did not finish within the timeout")}
	default:
		return nil
	}
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// changedFlag returns the flag only when it was set explicitly on the
// command line.
func changedFlag(fs *pflag.FlagSet, name string) *pflag.Flag {
	if f := fs.Lookup(name); f != nil && f.Changed {
		return f
	}
	return nil
}

// stringSetting resolves a string with flag > viper (env/config) > flag
// default precedence.
func stringSetting(cmd *cobra.Command, flagName, viperKey string) string {
	if f := changedFlag(cmd.InheritedFlags(), flagName); f != nil {
		return f.Value.String()
	}
	if viper.IsSet(viperKey) {
		if v := viper.GetString(viperKey); v != "" {
			return v
		}
	}
	return getPersistentString(cmd, flagName, "")
}

// intSetting resolves an int with the same precedence; local flags first.
func intSetting(cmd *cobra.Command, flagName, viperKey string, def int) int {
	if changedFlag(cmd.Flags(), flagName) != nil {
		if v, err := cmd.Flags().GetInt(flagName); err == nil {
			return v
		}
	}
	if viper.IsSet(viperKey) {
		if v := viper.GetInt(viperKey); v > 0 {
			return v
		}
	}
	if f := cmd.Flags().Lookup(flagName); f != nil {
		if v, err := cmd.Flags().GetInt(flagName); err == nil {
			return v
		}
	}
	return def
}
