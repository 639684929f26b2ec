package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "legal-aid-api",
	Short:        "Legal aid API: appointments between citizens and lawyers, documents, reviews",
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute runs the command line, serve is the default
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(recomputeCmd)
}
