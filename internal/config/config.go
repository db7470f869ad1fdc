package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Single static key for the whole API; /health stays open.
	APIKey string `envconfig:"API_KEY"`

	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	AzureOpenAIEndpoint string `envconfig:"AZURE_OPENAI_ENDPOINT"`
	AzureAPIVersion     string `envconfig:"AZURE_OPENAI_API_VERSION"`
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL"`
	EmbeddingDims       int    `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`
	CompletionModel     string `envconfig:"COMPLETION_MODEL"`
	StreamCompletions   bool   `envconfig:"STREAM_COMPLETIONS" default:"true"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"600"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"60"`
	TopK         int `envconfig:"TOP_K" default:"5"`
	EarlyPages   int `envconfig:"EARLY_PAGES" default:"5"`

	VocabularyPath string `envconfig:"VOCABULARY_PATH"`

	ManagerCSVPath   string `envconfig:"MANAGER_CSV_PATH"`
	TesterCSVPath    string `envconfig:"TESTER_CSV_PATH"`
	DeveloperCSVPath string `envconfig:"DEVELOPER_CSV_PATH"`

	ManagersQuery    int `envconfig:"N_MANAGERS_QUERY" default:"5"`
	TestersQuery     int `envconfig:"N_TESTERS_QUERY" default:"5"`
	DevelopersQuery  int `envconfig:"N_DEVELOPERS_QUERY" default:"10"`
	ManagersTarget   int `envconfig:"N_MANAGERS" default:"1"`
	TestersTarget    int `envconfig:"N_TESTERS" default:"1"`
	DevelopersTarget int `envconfig:"N_DEVELOPERS" default:"4"`

	ProfileRefreshInterval time.Duration `envconfig:"PROFILE_REFRESH_INTERVAL" default:"5m"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"sowlens-documents"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	SentryDSN string `envconfig:"SENTRY_DSN"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("SOWLENS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasVocabulary() bool {
	return c.VocabularyPath != ""
}

func (c *Config) HasAuth() bool {
	return c.APIKey != ""
}
