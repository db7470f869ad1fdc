package client

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// RecommendCmd creates the recommend command
func RecommendCmd() *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "recommend <requirements.json>",
		Short: "Get staffing recommendations for a SOW",
		Long: `Send extracted SOW requirements to the recommendation endpoint.

Pass '-' to read the requirements JSON from stdin, so the output of
'sowlens extract' can be piped through.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommend(cmd, args[0], full)
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "Return the full decision artifact instead of the trimmed view")

	return cmd
}

func runRecommend(cmd *cobra.Command, path string, full bool) error {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read requirements: %w", err)
	}

	var req map[string]interface{}
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("invalid requirements JSON: %w", err)
	}

	apiClient, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	endpoint := "/recommendations"
	if full {
		endpoint = "/recommendations/full"
	}

	resp, err := apiClient.Post(endpoint, req)
	if err != nil {
		return err
	}

	return printData(resp.Data)
}

// HealthCmd creates the health command
func HealthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check API server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			resp, err := apiClient.Get("/health")
			if err != nil {
				return err
			}
			return printData(resp.Data)
		},
	}

	return cmd
}
