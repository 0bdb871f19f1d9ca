package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
)

func exportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export records as CSV or a JSON backup",
	}

	var csvOut string
	csvCmd := &cobra.Command{
		Use:   "csv <kind>",
		Short: "Write one record kind as CSV (transactions, bills, goals, investments)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := export.ParseKind(args[0])
			if err != nil {
				return err
			}
			snap, err := a.dashboards.LoadSnapshot(cmd.Context(), a.sess)
			if err != nil {
				return err
			}
			return writeOutput(cmd, csvOut, func(w io.Writer) error {
				return export.WriteCSV(w, export.SnapshotRows(snap, kind, core.Today()))
			}, a, string(kind))
		},
	}
	csvCmd.Flags().StringVarP(&csvOut, "output", "o", "-", "output file, - for stdout")

	var backupOut string
	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Write every record of the user as one JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := a.dashboards.LoadSnapshot(cmd.Context(), a.sess)
			if err != nil {
				return err
			}
			return writeOutput(cmd, backupOut, func(w io.Writer) error {
				return export.WriteBackup(w, export.NewBackup(snap, time.Now()))
			}, a, "backup")
		},
	}
	backupCmd.Flags().StringVarP(&backupOut, "output", "o", "-", "output file, - for stdout")

	cmd.AddCommand(csvCmd, backupCmd)
	return cmd
}

// writeOutput runs write against stdout or a freshly created file.
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error, a *app, what string) error {
	if path == "" || path == "-" {
		return write(cmd.OutOrStdout())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	a.logger.Info("Export written",
		log.FieldOperation, log.OpExport,
		log.FieldUserID, a.sess.UserID,
		log.FieldRecordKind, what,
		"path", path)
	return nil
}
