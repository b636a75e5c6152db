package cli

import (
	"context"
	"fmt"
	"io"

	"gitwebsync/internal/config"
	"gitwebsync/internal/sync_checker"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. Flags write straight into cfg, so a
// flag overrides the environment value it defaults to. The exit code of the
// check is stored in exitCode.
func NewRootCmd(cfg *config.Config, exitCode *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check_gitweb",
		Short: "Check that a gitweb mirror is in sync with its master",
		Long: `check_gitweb compares the project list of a slave gitweb with its master's.
Every repository whose last change differs is looked up on both sides and
counted as unsynced. The exit code follows monitoring plugin conventions:
0 OK, 1 WARNING, 2 CRITICAL, 3 UNKNOWN.`,
		Example: `check_gitweb -s https://git.example.com -d https://mirror.example.com -w 0 -c 10`,
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			*exitCode = runCheck(cmd.Context(), cfg, cmd.OutOrStdout())
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&cfg.MasterURL, "source", "s", cfg.MasterURL, "URL of master gitweb")
	flags.StringVarP(&cfg.SlaveURL, "destination", "d", cfg.SlaveURL, "URL of slave gitweb")
	flags.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "Timeout of every request")
	flags.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Number of repositories looked up at once")
	flags.IntVar(&cfg.MaxBodySize, "max-body-size", cfg.MaxBodySize, "Largest accepted response body in bytes, 0 for no limit")
	flags.StringVar(&cfg.LastChangeSource, "last-change-source", cfg.LastChangeSource, "Where last change timestamps are read from: html or atom")

	cmd.Flags().IntVarP(&cfg.WarnThreshold, "warn", "w", cfg.WarnThreshold, "Number of repos unsynced for warning")
	cmd.Flags().IntVarP(&cfg.CritThreshold, "crit", "c", cfg.CritThreshold, "Number of repos unsynced for critical")

	cmd.AddCommand(NewUnsyncedCmd(cfg))
	cmd.AddCommand(NewMissingCmd(cfg))

	return cmd
}

// Execute runs the command line in args and returns the process exit code.
// Anything that prevents a check from running is reported as UNKNOWN.
func Execute(ctx context.Context, args []string, out io.Writer) int {
	cfg, err := config.NewConfig()
	if err != nil {
		return unknown(out, fmt.Errorf("error parsing config: %w", err))
	}

	exitCode := int(sync_checker.StateOK)
	root := NewRootCmd(cfg, &exitCode)
	root.SetArgs(args)
	root.SetOut(out)

	if err := root.ExecuteContext(ctx); err != nil {
		return unknown(out, err)
	}

	return exitCode
}

func unknown(out io.Writer, err error) int {
	result := sync_checker.Failed(err, sync_checker.Thresholds{})
	_ = sync_checker.StdOutSyncNotifier{Out: out}.Notify(result)
	return result.ExitCode()
}
