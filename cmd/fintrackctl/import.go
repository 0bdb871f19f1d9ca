package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"fintrack/internal/export"
	"fintrack/internal/importer/ofx"
	"fintrack/internal/log"
)

func importOFXCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import-ofx <files...>",
		Short: "Import transactions from OFX/QFX bank statements",
		Long: `Import transactions from OFX or QFX files exported from a bank.
Transactions already present for the user are skipped, so overlapping
statements can be imported safely.

  fintrackctl import-ofx -u alice ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			for _, pattern := range args {
				matches, err := filepath.Glob(pattern)
				if err != nil {
					return fmt.Errorf("invalid pattern %s: %w", pattern, err)
				}
				if len(matches) == 0 {
					matches = []string{pattern}
				}
				files = append(files, matches...)
			}

			parser := ofx.NewParser()
			var total ofx.Result
			for _, path := range files {
				res, err := importFile(cmd, a, parser, path)
				if err != nil {
					return err
				}
				total.Parsed += res.Parsed
				total.Imported += res.Imported
				total.Skipped += res.Skipped
			}

			a.logger.Info("Import finished",
				log.FieldOperation, log.OpImport,
				log.FieldUserID, a.sess.UserID,
				"files", len(files),
				"imported", total.Imported,
				"skipped", total.Skipped)
			return printJSON(cmd, total)
		},
	}
}

func importFile(cmd *cobra.Command, a *app, parser *ofx.Parser, path string) (ofx.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return ofx.Result{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	res, err := parser.Import(cmd.Context(), a.sess, f, a.records)
	if err != nil {
		return res, fmt.Errorf("import %s: %w", filepath.Base(path), err)
	}
	a.logger.Debug("Imported file", "file", filepath.Base(path), "parsed", res.Parsed, "imported", res.Imported)
	return res, nil
}

func restoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup.json>",
		Short: "Recreate the records of a JSON backup for the user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			b, err := export.ReadBackup(f)
			if err != nil {
				return err
			}
			res, err := a.records.Restore(cmd.Context(), a.sess, b.Snapshot())
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
