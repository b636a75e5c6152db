package cli

import (
	"fmt"
	"time"

	"gitwebsync/internal/config"
	"gitwebsync/internal/report"

	"github.com/spf13/cobra"
)

func NewUnsyncedCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unsynced",
		Short: "List repositories whose last change differs, with the time skew",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}

			d, err := newDiffer(cfg, nil)
			if err != nil {
				return err
			}

			unsynced, err := d.Unsynced(cmd.Context())
			if err != nil {
				return err
			}

			doc := report.Document{
				CheckedAt: time.Now(),
				Master:    cfg.MasterURL,
				Slave:     cfg.SlaveURL,
				Unsynced:  report.UnsyncedEntries(unsynced),
			}
			return report.RenderUnsynced(cmd.OutOrStdout(), format, doc)
		},
	}

	addOutputFlag(cmd)
	return cmd
}

func NewMissingCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "missing",
		Short: "List repositories the slave does not have, with master's last change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}

			d, err := newDiffer(cfg, nil)
			if err != nil {
				return err
			}

			missing, err := d.Missing(cmd.Context())
			if err != nil {
				return err
			}

			doc := report.Document{
				CheckedAt: time.Now(),
				Master:    cfg.MasterURL,
				Slave:     cfg.SlaveURL,
				Missing:   report.MissingEntries(missing),
			}
			return report.RenderMissing(cmd.OutOrStdout(), format, doc)
		},
	}

	addOutputFlag(cmd)
	return cmd
}

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", report.FormatTable, "Output format: table, json or yaml")
}

func outputFormat(cmd *cobra.Command) (string, error) {
	format, err := cmd.Flags().GetString("output")
	if err != nil {
		return "", err
	}

	if !report.ValidFormat(format) {
		return "", fmt.Errorf("unknown output format %q", format)
	}

	return format, nil
}
