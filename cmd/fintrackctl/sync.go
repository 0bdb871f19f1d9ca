package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/worker"
)

var errSheetsNotConfigured = errors.New("spreadsheet mirror not configured: set GOOGLE_SPREADSHEET_ID and a service account")

func syncCmd(a *app) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Rewrite the user's spreadsheet tabs from the store",
		Long: `Rewrite the user's Google Sheets tabs from the current records. Use it
after the worker missed change events, or to seed a new spreadsheet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			writer, remote, err := cli.SheetsWriter(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			if !remote {
				return errSheetsNotConfigured
			}

			mirror := worker.NewMirrorWorker(a.backend.Store, writer)
			a.logger.Info("Starting resync", log.FieldOperation, log.OpSync, log.FieldUserID, a.sess.UserID)
			if kind == "" {
				return mirror.MirrorUser(cmd.Context(), a.sess)
			}
			k, err := export.ParseKind(kind)
			if err != nil {
				return err
			}
			if err := mirror.MirrorKind(cmd.Context(), a.sess, k); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mirrored %s\n", k)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "mirror only this kind (transactions, bills, goals, investments)")
	return cmd
}
