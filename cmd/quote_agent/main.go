// Package main provides the quote_agent CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quote_agent",
	Short: "Deterministic renovation quote pipeline",
	Long: `quote_agent turns a customer request, optionally with a model-proposed draft, into a priced and validated renovation quote.

Every number in the final quote is recomputed from the job catalog; model output is only a hint.`,
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
