package main

import (
	"fmt"
	"os"

	"github.com/horizon-ai/sowlens/internal/cli"
	"github.com/horizon-ai/sowlens/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "sowlens",
		Short: "Sowlens CLI - SOW field extraction and staffing recommendations",
		Long: `Sowlens CLI extracts structured fields from Statement of Work documents
and recommends staffing candidates for them.

Environment variables:
  SOWLENS_API_KEY   API key for authentication (required)
  SOWLENS_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-key", "", "API key for authentication (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.ExtractCmd())
	rootCmd.AddCommand(client.RecommendCmd())
	rootCmd.AddCommand(client.ForgetCmd())
	rootCmd.AddCommand(client.HealthCmd())
	rootCmd.AddCommand(client.AuthCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
