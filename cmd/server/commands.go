package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"metadata-repository/internal/analysis"
	"metadata-repository/internal/archive"
	"metadata-repository/internal/record"
	"metadata-repository/internal/rules"
)

var (
	analyzeRulesFile string

	backupLogsCmd = &cobra.Command{
		Use:   "backup-logs",
		Short: "Run one activity log archival cycle and exit",
		Args:  cobra.NoArgs,
		RunE:  runBackupLogs,
	}

	analyzeCmd = &cobra.Command{
		Use:   "analyze [file]",
		Short: "Print the normalization, domain, privacy and lineage analysis of a dataset JSON file",
		Long: `Reads one dataset (bare or wrapped in a {"result", "data"} envelope) from
the given file, or from stdin when the file is "-" or omitted, and prints the
analysis report as JSON. Nothing is stored.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeRulesFile, "rules", os.Getenv("RULES_FILE"), "YAML rule file overriding the built-in tables")
}

func runBackupLogs(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.backup.Run(cmd.Context())
	if errors.Is(err, archive.ErrNotConfigured) {
		return fmt.Errorf("no object store configured, set ARCHIVE_BACKEND")
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if res.Skipped {
		fmt.Fprintln(out, "Nothing to back up.")
		return nil
	}
	fmt.Fprintf(out, "Uploaded %d bytes to %s\n", res.Bytes, a.store.Location(res.Key))
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	set, err := rules.Load(analyzeRulesFile)
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	rec := record.New()
	if err := json.Unmarshal(data, rec); err != nil {
		return fmt.Errorf("parse dataset: %w", err)
	}

	report := analysis.New(set).Analyze(rec)
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
