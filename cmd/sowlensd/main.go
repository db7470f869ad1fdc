package main

import (
	"fmt"
	"os"

	"github.com/horizon-ai/sowlens/internal/cli"
	"github.com/horizon-ai/sowlens/internal/cli/admin"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "sowlensd",
		Short:   "Sowlens daemon",
		Long:    "Sowlens daemon for running the SOW extraction and staffing recommendation API server",
		Version: version,
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.SeedCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
