package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Veraticus/platewise/internal/cli"
	"github.com/Veraticus/platewise/internal/common"
	"github.com/Veraticus/platewise/internal/history"
	"github.com/Veraticus/platewise/internal/model"
	"github.com/Veraticus/platewise/internal/tui"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage saved analyses",
		Long:  `List, inspect, delete and export saved analysis sessions.`,
		RunE:  runHistoryList,
	}

	cmd.AddCommand(historyListCmd())
	cmd.AddCommand(historyShowCmd())
	cmd.AddCommand(historyDeleteCmd())
	cmd.AddCommand(historyResetCmd())
	cmd.AddCommand(historyExportCmd())
	cmd.AddCommand(historyBrowseCmd())

	return cmd
}

// historyError points the user at reset when the stored history is
// unreadable.
func historyError(err error) error {
	if errors.Is(err, common.ErrHistoryCorrupted) {
		return common.NewUserError("Saved history could not be read. Run 'platewise history reset' to start over", err)
	}
	return err
}

func historyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the most recent saved analyses",
		Args:  cobra.NoArgs,
		RunE:  runHistoryList,
	}
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	sess, err := newSession(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.Close()

	entries, err := sess.app.History(cmd.Context())
	if err != nil {
		return historyError(err)
	}

	out := cmd.OutOrStdout()
	writeln(out, cli.FormatTitle("Recent analyses"))
	writeln(out, cli.RenderHistory(entries))
	return nil
}

func historyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved analysis in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParseHistoryID(args[0])
			if err != nil {
				return err
			}

			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			record, err := sess.app.HistoryStore().Get(cmd.Context(), id)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return common.NewUserError(fmt.Sprintf("No saved analysis with ID %s", id), err)
				}
				return historyError(err)
			}

			writeln(cmd.OutOrStdout(), cli.RenderRecord(record, history.Describe(record, nil)))
			return nil
		},
	}
}

func historyDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParseHistoryID(args[0])
			if err != nil {
				return err
			}

			if !yes {
				ok, err := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).
					Confirm(cmd.Context(), fmt.Sprintf("Delete session %s?", id), false)
				if err != nil || !ok {
					return err
				}
			}

			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			removed, err := sess.app.DeleteHistory(cmd.Context(), id)
			if err != nil {
				return historyError(err)
			}

			out := cmd.OutOrStdout()
			if !removed {
				writeln(out, cli.FormatInfo(fmt.Sprintf("No saved analysis with ID %s", id)))
				return nil
			}
			writeln(out, cli.FormatSuccess(fmt.Sprintf("Deleted session %s", id)))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	return cmd
}

func historyResetCmd() *cobra.Command {
	var (
		yes      bool
		noBackup bool
	)
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all saved analyses",
		Long: `Reset removes every saved analysis, including a history that can no
longer be read. A backup of the database is taken first unless --no-backup
is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if !yes {
				ok, err := cli.NewPrompter(cmd.InOrStdin(), out).
					Confirm(ctx, "This deletes all saved analyses. Continue?", false)
				if err != nil || !ok {
					return err
				}
			}

			sess, err := newSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			if !noBackup {
				path, err := sess.store.Backup(ctx, "pre-reset-"+time.Now().Format("20060102-150405"))
				if err != nil {
					return fmt.Errorf("failed to back up history: %w", err)
				}
				writeln(out, cli.FormatInfo(fmt.Sprintf("Backup written to %s", path)))
			}

			if err := sess.app.HistoryStore().Reset(ctx); err != nil {
				return err
			}
			writeln(out, cli.FormatSuccess("History cleared"))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "do not back up the database first")
	return cmd
}

func historyExportCmd() *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all saved analyses as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateExportFormat(format); err != nil {
				return err
			}

			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			records, err := sess.app.HistoryStore().Load(cmd.Context())
			if err != nil {
				return historyError(err)
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}

			if err := exportRecords(w, history.Sorted(records), format); err != nil {
				return err
			}
			if output != "" {
				writeln(cmd.ErrOrStderr(), cli.FormatSuccess(fmt.Sprintf("Exported %d session(s) to %s", len(records), output)))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json, yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func validateExportFormat(format string) error {
	switch format {
	case "json", "yaml", "yml":
		return nil
	default:
		return fmt.Errorf("%w: export format %q (want json or yaml)", common.ErrInvalidConfig, format)
	}
}

// exportRecords writes records with the same field names in both formats.
func exportRecords(w io.Writer, records []model.HistoryRecord, format string) error {
	if err := validateExportFormat(format); err != nil {
		return err
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("failed to encode history: %w", err)
		}
		return nil

	case "yaml", "yml":
		// Round-trip through JSON so YAML keys match the stored field names.
		data, err := json.Marshal(records)
		if err != nil {
			return fmt.Errorf("failed to encode history: %w", err)
		}
		var generic []any
		if err := json.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("failed to encode history: %w", err)
		}

		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return fmt.Errorf("failed to encode history: %w", err)
		}
		return enc.Close()
	}
	return nil
}

func historyBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse and delete saved analyses interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			// Fail early with the reset hint rather than inside the UI.
			if _, err := sess.app.History(cmd.Context()); err != nil {
				return historyError(err)
			}

			err = tui.Run(cmd.Context(), sess.app.HistoryStore())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
