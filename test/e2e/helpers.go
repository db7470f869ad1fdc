//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/horizon-ai/sowlens/internal/api/handlers"
	"github.com/horizon-ai/sowlens/internal/api/middleware"
	"github.com/horizon-ai/sowlens/internal/extract"
	"github.com/horizon-ai/sowlens/internal/openai"
	"github.com/horizon-ai/sowlens/internal/recommend"
	"github.com/horizon-ai/sowlens/internal/repository"
	"github.com/horizon-ai/sowlens/internal/server"
	"github.com/horizon-ai/sowlens/internal/storage"
	"github.com/horizon-ai/sowlens/internal/testutil"
)

const (
	testAPIKey     = "e2e-test-key"
	embeddingDims  = 1536
	testBucketName = "sowlens-e2e"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	RustFSC      *testutil.RustFSContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	S3Client     *storage.S3Client
	Indexer      *recommend.Indexer
	BinaryDir    string
	APIKey       string
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment with containers and server
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)

	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          testBucketName,
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	aiClient := openai.NewClientWithAPI(&scriptedModel{}, embeddingDims)
	chunkRepo := repository.NewChunkRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	indexer := recommend.NewIndexer(profileRepo, aiClient)

	serverURL, serverCloser := startServer(t, chunkRepo, profileRepo, aiClient, s3Client, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		RustFSC:      s3C,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		S3Client:     s3Client,
		Indexer:      indexer,
		APIKey:       testAPIKey,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
	if e.BinaryDir != "" {
		os.RemoveAll(e.BinaryDir)
	}
}

// SeedProfiles writes the candidate pool CSVs used throughout the suite
// and indexes them.
func (e *E2ETestEnv) SeedProfiles() {
	dir := e.T.TempDir()

	files := recommend.SourceFiles{
		Managers:   writeProfileCSV(e.T, dir, "managers.csv", managerRows),
		Testers:    writeProfileCSV(e.T, dir, "testers.csv", testerRows),
		Developers: writeProfileCSV(e.T, dir, "developers.csv", developerRows),
	}
	if err := e.Indexer.EnsureIndexed(e.Ctx, files); err != nil {
		e.T.Fatalf("failed to seed profiles: %v", err)
	}
}

const profileHeader = "ResourceId,ResourceName,ResourceDesignationName,ResourceDesignationLevel," +
	"ResourceDepartmentName,ResourceSubSkillWithProficiency,ResourceExperienceInMonths," +
	"ResourceAvailabilityInPercentage,HoursAvailableOutOf40"

var (
	managerRows = []string{
		`M001,Priya Nair,Senior Project Manager,L4,Delivery,"Agile (Expert), Scrum (Expert), JIRA (Advanced)",96,75,30`,
		`M002,Tom Becker,Project Manager,L3,Delivery,"Scrum (Advanced), Risk Management (Advanced)",60,50,20`,
	}
	testerRows = []string{
		`T001,Olu Adeyemi,QA Engineer,L3,Quality,"Selenium (Expert), API Testing (Advanced)",48,100,40`,
	}
	developerRows = []string{
		`D001,Mei Chen,Senior Software Engineer,L4,Engineering,"Python (Expert), PostgreSQL (Advanced)",84,80,32`,
		`D002,Jonas Weber,Software Engineer,L2,Engineering,"Python (Advanced), React (Advanced)",36,100,40`,
		`D003,Sara Haddad,Software Engineer,L3,Engineering,"Go (Expert), Kubernetes (Advanced)",52,60,24`,
	}
)

func writeProfileCSV(t *testing.T, dir, name string, rows []string) string {
	path := filepath.Join(dir, name)
	content := profileHeader + "\n" + strings.Join(rows, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// BuildCLI builds the sowlens client binary
func (e *E2ETestEnv) BuildCLI() {
	tmpDir, err := os.MkdirTemp("", "sowlens-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, "sowlens"), "./cmd/sowlens")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build sowlens: %v\n%s", err, out)
	}
}

// RunSowlens runs the sowlens CLI command
func (e *E2ETestEnv) RunSowlens(workDir string, args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "sowlens"), args...)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("SOWLENS_API_KEY=%s", e.APIKey),
		fmt.Sprintf("SOWLENS_API_URL=%s", e.ServerURL),
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// RunSowlensWithInput runs the sowlens CLI command with stdin input
func (e *E2ETestEnv) RunSowlensWithInput(workDir string, input string, args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "sowlens"), args...)
	cmd.Dir = workDir
	cmd.Stdin = bytes.NewReader([]byte(input))
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("SOWLENS_API_KEY=%s", e.APIKey),
		fmt.Sprintf("SOWLENS_API_URL=%s", e.ServerURL),
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path, authToken string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil, authToken)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}, authToken string) (*APIResponse, error) {
	return e.doRequest("POST", path, body, authToken)
}

// Delete performs a DELETE request
func (e *E2ETestEnv) Delete(path, authToken string) (*APIResponse, error) {
	return e.doRequest("DELETE", path, nil, authToken)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}, authToken string) (*APIResponse, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNoContent {
		return &APIResponse{}, nil
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// DownloadFile downloads a file from the presigned URL
func (e *E2ETestEnv) DownloadFile(downloadURL string) ([]byte, error) {
	resp, err := e.HTTPClient.Get(downloadURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// startServer starts the HTTP server with all handlers
func startServer(t *testing.T, chunkRepo *repository.ChunkRepository, profileRepo *repository.ProfileRepository, aiClient *openai.Client, s3Client *storage.S3Client, port int) (string, func()) {
	extractor := extract.NewExtractor(chunkRepo, aiClient, aiClient, nil, extract.Options{})
	recommender := recommend.NewRecommender(profileRepo, aiClient, aiClient, recommend.Options{})

	cfg := server.RouterConfig{
		AuthValidator:         middleware.NewStaticKeyValidator(testAPIKey),
		SOWHandler:            handlers.NewSOWHandler(extractor, chunkRepo, s3Client),
		RecommendationHandler: handlers.NewRecommendationHandler(recommender),
	}

	router := server.NewRouter(cfg)
	addr := fmt.Sprintf(":%d", port)

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// scriptedModel stands in for the completion service so the suite runs
// without network access. Embeddings are deterministic per input text;
// completions are dispatched on the prompt's trailing instruction line.
type scriptedModel struct{}

func (m *scriptedModel) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = deterministicEmbedding(text)
	}
	return out, nil
}

func (m *scriptedModel) CreateCompletion(ctx context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "PROJECT MANAGERS"):
		return `{"managers": [{"rank": 1, "name": "Priya Nair", "designation": "Senior Project Manager",
			"match_score": 88, "reasons": ["Agile delivery background", "Capacity available"],
			"concerns": [], "why_pick": "Strong delivery track record",
			"allocation_suggestion": 20, "recommended_skills": ["Risk Management"],
			"recommended_experience": 8, "recommendation": "Highly Recommended"}]}`, nil
	case strings.Contains(prompt, "QUALITY ASSURANCE TESTERS"):
		return `{"testers": [{"rank": 1, "name": "Olu Adeyemi", "designation": "QA Engineer",
			"match_score": 82, "reasons": ["Automation experience"], "concerns": [],
			"why_pick": "Full availability for the testing phases",
			"allocation_suggestion": 40, "recommended_skills": ["Playwright"],
			"recommended_experience": 4, "recommendation": "Recommended"}]}`, nil
	case strings.Contains(prompt, "SOFTWARE DEVELOPERS"):
		return `{"developers": [
			{"rank": 1, "name": "Mei Chen", "designation": "Senior Software Engineer",
			 "match_score": 91, "reasons": ["Python and PostgreSQL depth"], "concerns": [],
			 "why_pick": "Covers the core stack", "allocation_suggestion": 32,
			 "recommended_skills": [], "recommended_experience": 7, "recommendation": "Highly Recommended"},
			{"rank": 2, "name": "Jonas Weber", "designation": "Software Engineer",
			 "match_score": 78, "reasons": ["Frontend coverage"], "concerns": ["Less backend depth"],
			 "why_pick": "Rounds out the team", "allocation_suggestion": 40,
			 "recommended_skills": ["FastAPI"], "recommended_experience": 3, "recommendation": "Recommended"}]}`, nil
	case strings.HasSuffix(prompt, "Start Date:"):
		return "01/15/2026", nil
	case strings.HasSuffix(prompt, "End Date:"):
		return "07/31/2026", nil
	case strings.HasSuffix(prompt, "Client/Customer Name:"):
		return "Northwind Logistics", nil
	case strings.HasSuffix(prompt, "Technologies:"):
		return "['Python', 'PostgreSQL', 'AWS']", nil
	case strings.HasSuffix(prompt, "Practice:"):
		return "Software Development", nil
	case strings.HasSuffix(prompt, "Category:"):
		return "Project", nil
	case strings.HasSuffix(prompt, "Status:"):
		return "In Progress", nil
	case strings.HasSuffix(prompt, "Billing Type:"):
		return "Time and Material", nil
	case strings.HasSuffix(prompt, "Project Name:"):
		return "Fleet Tracking Platform", nil
	case strings.HasSuffix(prompt, "Manager:"):
		return "Dana Whitfield", nil
	case strings.HasSuffix(prompt, "Partner:"):
		return "Horizon AI", nil
	case strings.HasSuffix(prompt, "Budgeted Hours:"):
		return "1200", nil
	}
	return "Unknown", nil
}

// deterministicEmbedding produces a stable unit-length vector from the
// input text so nearest-neighbor queries behave consistently.
func deterministicEmbedding(text string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, embeddingDims)
	var norm float64
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		v := float64(int64(seed>>12)) / float64(1<<51)
		vec[i] = float32(v)
		norm += v * v
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}
