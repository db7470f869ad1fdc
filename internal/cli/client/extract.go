package client

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type extractRequest struct {
	DocumentID string `json:"document_id,omitempty"`
	Text       string `json:"text"`
}

// ExtractCmd creates the extract command
func ExtractCmd() *cobra.Command {
	var docID string

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract SOW fields from a document",
		Long:  "Read a plain-text SOW document and extract its structured fields via the API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args[0], docID)
		},
	}

	cmd.Flags().StringVar(&docID, "doc-id", "", "Document ID (generated by the server when empty)")

	return cmd
}

func runExtract(cmd *cobra.Command, path, docID string) error {
	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	apiClient, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := apiClient.Post("/sow/extract", extractRequest{
		DocumentID: docID,
		Text:       string(text),
	})
	if err != nil {
		return err
	}

	return printData(resp.Data)
}

// ForgetCmd creates the forget command, removing an indexed document
func ForgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forget <doc-id>",
		Short: "Remove an indexed document",
		Long:  "Delete a document's chunks and archived text from the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			if _, err := apiClient.Delete("/sow/" + args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted document %s\n", args[0])
			return nil
		},
	}

	return cmd
}

func printData(data json.RawMessage) error {
	var buf interface{}
	if err := json.Unmarshal(data, &buf); err != nil {
		return fmt.Errorf("failed to parse response data: %w", err)
	}
	pretty, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format response data: %w", err)
	}
	fmt.Println(string(pretty))
	return nil
}
