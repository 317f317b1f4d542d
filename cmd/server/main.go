package main

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "metadata-repository",
	Short: "Metadata repository backend for government open data",
	Long: `Accepts dataset metadata submissions, normalizes and classifies them,
stores them in the document store or the data lake and archives the
activity log to cold storage.

Run without a subcommand to start the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, backupLogsCmd, analyzeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}
