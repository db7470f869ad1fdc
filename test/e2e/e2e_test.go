//go:build e2e

package e2e

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleSOW = `STATEMENT OF WORK

Project: Fleet Tracking Platform
Client: Northwind Logistics
Partner: Horizon AI
Engagement Manager: Dana Whitfield

Northwind Logistics engages Horizon AI to design and build a fleet tracking
platform. The system ingests GPS telemetry from delivery vehicles, stores it
in PostgreSQL, and exposes dashboards for dispatchers. The backend is written
in Python and deployed on AWS.

Timeline: the project starts January 15, 2026 and completes July 31, 2026.
Budgeted effort: 1200 hours under a Time and Material arrangement.
The project is currently in progress.

Deliverables include a telemetry ingestion service, a dispatcher dashboard,
and integration testing across three carrier APIs.`

// TestE2E_HealthAndAuth verifies the open health endpoint and that all
// API routes reject unauthenticated requests
func TestE2E_HealthAndAuth(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}

	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("health endpoint is open", func(t *testing.T) {
		resp, err := env.HTTPClient.Get(env.ServerURL + "/health")
		if err != nil {
			t.Fatalf("health request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != 200 {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
	})

	t.Run("extract requires auth", func(t *testing.T) {
		_, err := env.Post("/sow/extract", map[string]string{"text": sampleSOW}, "")
		if err == nil {
			t.Fatal("expected error for unauthenticated request")
		}
		if !strings.Contains(err.Error(), "401") {
			t.Errorf("expected 401, got: %v", err)
		}
	})

	t.Run("recommendations require auth", func(t *testing.T) {
		_, err := env.Post("/recommendations", map[string]interface{}{"technology": []string{"Python"}}, "wrong-key")
		if err == nil {
			t.Fatal("expected error for bad API key")
		}
		if !strings.Contains(err.Error(), "401") {
			t.Errorf("expected 401, got: %v", err)
		}
	})
}

// TestE2E_ExtractLifecycle tests document extraction, archival, and deletion
func TestE2E_ExtractLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}

	env := SetupE2EEnv(t)
	defer env.Cleanup()

	var extracted struct {
		DocumentID string `json:"document_id"`
		Fields     struct {
			ProjectName string   `json:"Project Name"`
			Practice    string   `json:"Practice"`
			Technology  []string `json:"Technology"`
			Category    string   `json:"Category"`
			Client      string   `json:"Client"`
			BillingType string   `json:"Billing Type"`
			Status      string   `json:"Status"`
			StartDate   string   `json:"Start date"`
			EndDate     string   `json:"End Date"`
		} `json:"fields"`
		ArchiveURL string `json:"archive_url"`
	}

	t.Run("extract all fields", func(t *testing.T) {
		resp, err := env.Post("/sow/extract", map[string]string{
			"document_id": "e2e-doc-1",
			"text":        sampleSOW,
		}, env.APIKey)
		if err != nil {
			t.Fatalf("extract failed: %v", err)
		}
		if err := json.Unmarshal(resp.Data, &extracted); err != nil {
			t.Fatalf("failed to parse extract response: %v", err)
		}

		if extracted.DocumentID != "e2e-doc-1" {
			t.Errorf("expected document_id e2e-doc-1, got %s", extracted.DocumentID)
		}
		if extracted.Fields.ProjectName != "Fleet Tracking Platform" {
			t.Errorf("unexpected project name: %s", extracted.Fields.ProjectName)
		}
		if extracted.Fields.Client != "Northwind Logistics" {
			t.Errorf("unexpected client: %s", extracted.Fields.Client)
		}
		if extracted.Fields.StartDate != "01/15/2026" || extracted.Fields.EndDate != "07/31/2026" {
			t.Errorf("unexpected dates: %s - %s", extracted.Fields.StartDate, extracted.Fields.EndDate)
		}
		if len(extracted.Fields.Technology) != 3 {
			t.Errorf("expected 3 technologies, got %v", extracted.Fields.Technology)
		}
		if extracted.Fields.Status != "In Progress" {
			t.Errorf("unexpected status: %s", extracted.Fields.Status)
		}
		if extracted.Fields.BillingType != "Time and Material" {
			t.Errorf("unexpected billing type: %s", extracted.Fields.BillingType)
		}
	})

	t.Run("document text is archived", func(t *testing.T) {
		if extracted.ArchiveURL == "" {
			t.Fatal("expected archive_url in response")
		}
		content, err := env.DownloadFile(extracted.ArchiveURL)
		if err != nil {
			t.Fatalf("failed to download archived document: %v", err)
		}
		if string(content) != sampleSOW {
			t.Error("archived content does not match submitted text")
		}
	})

	t.Run("chunks are stored", func(t *testing.T) {
		var count int
		err := env.Pool.QueryRow(env.Ctx,
			"SELECT COUNT(*) FROM sow_chunks WHERE doc_id = $1", "e2e-doc-1").Scan(&count)
		if err != nil {
			t.Fatalf("failed to count chunks: %v", err)
		}
		if count == 0 {
			t.Error("expected stored chunks for document")
		}
	})

	t.Run("re-extract reuses existing index", func(t *testing.T) {
		var before int
		env.Pool.QueryRow(env.Ctx,
			"SELECT COUNT(*) FROM sow_chunks WHERE doc_id = $1", "e2e-doc-1").Scan(&before)

		_, err := env.Post("/sow/extract", map[string]string{
			"document_id": "e2e-doc-1",
			"text":        sampleSOW,
		}, env.APIKey)
		if err != nil {
			t.Fatalf("second extract failed: %v", err)
		}

		var after int
		env.Pool.QueryRow(env.Ctx,
			"SELECT COUNT(*) FROM sow_chunks WHERE doc_id = $1", "e2e-doc-1").Scan(&after)
		if after != before {
			t.Errorf("chunk count changed on re-extract: %d -> %d", before, after)
		}
	})

	t.Run("forget deletes chunks", func(t *testing.T) {
		if _, err := env.Delete("/sow/e2e-doc-1", env.APIKey); err != nil {
			t.Fatalf("delete failed: %v", err)
		}

		var count int
		err := env.Pool.QueryRow(env.Ctx,
			"SELECT COUNT(*) FROM sow_chunks WHERE doc_id = $1", "e2e-doc-1").Scan(&count)
		if err != nil {
			t.Fatalf("failed to count chunks: %v", err)
		}
		if count != 0 {
			t.Errorf("expected 0 chunks after delete, got %d", count)
		}
	})

	t.Run("empty text is rejected", func(t *testing.T) {
		_, err := env.Post("/sow/extract", map[string]string{"text": "   "}, env.APIKey)
		if err == nil {
			t.Fatal("expected error for empty document")
		}
		if !strings.Contains(err.Error(), "422") {
			t.Errorf("expected 422, got: %v", err)
		}
	})
}

// TestE2E_Recommendations tests candidate retrieval and ranking across pools
func TestE2E_Recommendations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}

	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.SeedProfiles()

	requirements := map[string]interface{}{
		"project_name":   "Fleet Tracking Platform",
		"technology":     []string{"Python", "PostgreSQL", "AWS"},
		"practice":       "Software Development",
		"category":       "Project",
		"client":         "Northwind Logistics",
		"start_date":     "01/15/2026",
		"end_date":       "07/31/2026",
		"budgeted_hours": "1200",
		"billing_type":   "Time and Material",
		"status":         "In Progress",
	}

	t.Run("clean view", func(t *testing.T) {
		resp, err := env.Post("/recommendations", requirements, env.APIKey)
		if err != nil {
			t.Fatalf("recommend failed: %v", err)
		}

		var clean struct {
			Recommendations []struct {
				Rank         int      `json:"rank"`
				Name         string   `json:"name"`
				KeyStrengths []string `json:"key_strengths"`
			} `json:"recommendations"`
			Summary struct {
				Status string `json:"status"`
			} `json:"summary"`
			SOWData struct {
				ProjectName string `json:"project_name"`
			} `json:"sow_data"`
		}
		if err := json.Unmarshal(resp.Data, &clean); err != nil {
			t.Fatalf("failed to parse clean response: %v", err)
		}

		if len(clean.Recommendations) != 4 {
			t.Fatalf("expected 4 recommendations, got %d", len(clean.Recommendations))
		}
		if clean.Summary.Status != "success" {
			t.Errorf("expected success status, got %s", clean.Summary.Status)
		}
		if clean.SOWData.ProjectName != "Fleet Tracking Platform" {
			t.Errorf("sow_data did not round-trip: %s", clean.SOWData.ProjectName)
		}

		names := make([]string, len(clean.Recommendations))
		for i, r := range clean.Recommendations {
			names[i] = r.Name
		}
		joined := strings.Join(names, ", ")
		for _, want := range []string{"Priya Nair", "Olu Adeyemi", "Mei Chen", "Jonas Weber"} {
			if !strings.Contains(joined, want) {
				t.Errorf("expected %s in recommendations, got: %s", want, joined)
			}
		}
	})

	t.Run("manager precedes tester precedes developers", func(t *testing.T) {
		resp, err := env.Post("/recommendations/full", requirements, env.APIKey)
		if err != nil {
			t.Fatalf("full recommend failed: %v", err)
		}

		var full struct {
			Recommendations []struct {
				Name string `json:"name"`
				Pool string `json:"pool"`
			} `json:"recommendations"`
			Composition struct {
				Managers   int `json:"managers"`
				Testers    int `json:"testers"`
				Developers int `json:"developers"`
				Total      int `json:"total"`
			} `json:"team_composition"`
			CandidatesFound struct {
				Total int `json:"total"`
			} `json:"candidates_found"`
		}
		if err := json.Unmarshal(resp.Data, &full); err != nil {
			t.Fatalf("failed to parse full response: %v", err)
		}

		pools := make([]string, len(full.Recommendations))
		for i, r := range full.Recommendations {
			pools[i] = r.Pool
		}
		expected := []string{"manager", "tester", "developer", "developer"}
		if len(pools) != len(expected) {
			t.Fatalf("expected pools %v, got %v", expected, pools)
		}
		for i := range expected {
			if pools[i] != expected[i] {
				t.Errorf("position %d: expected %s, got %s", i, expected[i], pools[i])
			}
		}

		if full.Composition.Total != 4 || full.Composition.Managers != 1 ||
			full.Composition.Testers != 1 || full.Composition.Developers != 2 {
			t.Errorf("unexpected composition: %+v", full.Composition)
		}
		if full.CandidatesFound.Total != 6 {
			t.Errorf("expected 6 shortlisted candidates, got %d", full.CandidatesFound.Total)
		}
	})

	t.Run("empty pools degrade to empty lists", func(t *testing.T) {
		if _, err := env.Pool.Exec(env.Ctx, "TRUNCATE TABLE candidate_profiles"); err != nil {
			t.Fatalf("failed to truncate profiles: %v", err)
		}

		resp, err := env.Post("/recommendations", requirements, env.APIKey)
		if err != nil {
			t.Fatalf("recommend with empty pools failed: %v", err)
		}

		var clean struct {
			Recommendations []json.RawMessage `json:"recommendations"`
			Summary         struct {
				Status string `json:"status"`
			} `json:"summary"`
		}
		if err := json.Unmarshal(resp.Data, &clean); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if len(clean.Recommendations) != 0 {
			t.Errorf("expected no recommendations, got %d", len(clean.Recommendations))
		}
	})
}

// TestE2E_CLIWorkflow tests the CLI commands end-to-end
func TestE2E_CLIWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}

	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.SeedProfiles()
	env.BuildCLI()

	workDir := t.TempDir()
	sowPath := filepath.Join(workDir, "sow.txt")
	if err := os.WriteFile(sowPath, []byte(sampleSOW), 0644); err != nil {
		t.Fatalf("failed to write SOW file: %v", err)
	}

	t.Run("health", func(t *testing.T) {
		out, err := env.RunSowlens(workDir, "health")
		if err != nil {
			t.Fatalf("health failed: %v\n%s", err, out)
		}
		if !strings.Contains(out, "ok") {
			t.Errorf("expected ok in output, got: %s", out)
		}
	})

	var extractOut string

	t.Run("extract", func(t *testing.T) {
		out, err := env.RunSowlens(workDir, "extract", "sow.txt", "--doc-id", "cli-doc-1")
		if err != nil {
			t.Fatalf("extract failed: %v\n%s", err, out)
		}
		if !strings.Contains(out, "Fleet Tracking Platform") {
			t.Errorf("expected project name in output, got: %s", out)
		}
		if !strings.Contains(out, "cli-doc-1") {
			t.Errorf("expected document id in output, got: %s", out)
		}
		extractOut = out
	})

	t.Run("recommend from piped requirements", func(t *testing.T) {
		var parsed struct {
			Fields map[string]interface{} `json:"fields"`
		}
		if err := json.Unmarshal([]byte(extractOut), &parsed); err != nil {
			t.Fatalf("extract output is not JSON: %v", err)
		}
		reqJSON := fmt.Sprintf(`{"project_name": %q, "technology": ["Python", "PostgreSQL"]}`,
			parsed.Fields["Project Name"])

		out, err := env.RunSowlensWithInput(workDir, reqJSON, "recommend", "-")
		if err != nil {
			t.Fatalf("recommend failed: %v\n%s", err, out)
		}
		if !strings.Contains(out, "Priya Nair") {
			t.Errorf("expected manager recommendation, got: %s", out)
		}
	})

	t.Run("forget", func(t *testing.T) {
		out, err := env.RunSowlens(workDir, "forget", "cli-doc-1")
		if err != nil {
			t.Fatalf("forget failed: %v\n%s", err, out)
		}
		if !strings.Contains(out, "cli-doc-1") {
			t.Errorf("expected document id in output, got: %s", out)
		}

		var count int
		env.Pool.QueryRow(env.Ctx,
			"SELECT COUNT(*) FROM sow_chunks WHERE doc_id = $1", "cli-doc-1").Scan(&count)
		if count != 0 {
			t.Errorf("expected 0 chunks after forget, got %d", count)
		}
	})

	t.Run("wrong key fails", func(t *testing.T) {
		cmdOut, err := env.RunSowlens(workDir, "extract", "sow.txt", "--api-key", "wrong-key")
		if err == nil {
			t.Fatalf("expected failure with wrong key, got: %s", cmdOut)
		}
	})
}

// TestE2E_FullWorkflow tests the complete extract-then-staff journey
func TestE2E_FullWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}

	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.SeedProfiles()

	resp, err := env.Post("/sow/extract", map[string]string{"text": sampleSOW}, env.APIKey)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	var extracted struct {
		DocumentID string                 `json:"document_id"`
		Fields     map[string]interface{} `json:"fields"`
	}
	if err := json.Unmarshal(resp.Data, &extracted); err != nil {
		t.Fatalf("failed to parse extract response: %v", err)
	}
	if extracted.DocumentID == "" {
		t.Fatal("expected generated document id")
	}

	// Feed the extraction result straight into the recommender
	requirements := map[string]interface{}{
		"project_name":   extracted.Fields["Project Name"],
		"technology":     extracted.Fields["Technology"],
		"practice":       extracted.Fields["Practice"],
		"category":       extracted.Fields["Category"],
		"client":         extracted.Fields["Client"],
		"start_date":     extracted.Fields["Start date"],
		"end_date":       extracted.Fields["End Date"],
		"budgeted_hours": extracted.Fields["Budgeted Hours"],
		"billing_type":   extracted.Fields["Billing Type"],
		"status":         extracted.Fields["Status"],
	}

	recResp, err := env.Post("/recommendations", requirements, env.APIKey)
	if err != nil {
		t.Fatalf("recommend failed: %v", err)
	}

	var clean struct {
		Recommendations []struct {
			Name string `json:"name"`
		} `json:"recommendations"`
		SOWData struct {
			Client string `json:"client"`
		} `json:"sow_data"`
	}
	if err := json.Unmarshal(recResp.Data, &clean); err != nil {
		t.Fatalf("failed to parse recommend response: %v", err)
	}

	if len(clean.Recommendations) == 0 {
		t.Fatal("expected recommendations for extracted SOW")
	}
	if clean.SOWData.Client != "Northwind Logistics" {
		t.Errorf("extracted client did not flow through: %s", clean.SOWData.Client)
	}

	if _, err := env.Delete("/sow/"+extracted.DocumentID, env.APIKey); err != nil {
		t.Fatalf("cleanup delete failed: %v", err)
	}
}
