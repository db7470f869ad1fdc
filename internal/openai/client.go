package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultEmbeddingModel is the OpenAI model used for generating embeddings
	DefaultEmbeddingModel = openai.AdaEmbeddingV2
	// DefaultEmbeddingDimensions is the expected dimension of embeddings from ada-002
	DefaultEmbeddingDimensions = 1536
	// DefaultCompletionModel is the chat model used for field extraction and ranking
	DefaultCompletionModel = openai.GPT4oMini

	completionTemperature = 0.5
	completionMaxTokens   = 1024
	completionTopP        = 0.9

	maxCompletionRetries = 3
	maxRetryElapsed      = 45 * time.Second
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when an embedding has unexpected dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoAPIKey is returned when the OpenAI API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
	// ErrEmptyCompletion is returned when the model produced no content
	ErrEmptyCompletion = errors.New("completion returned no content")
)

// API defines the OpenAI operations the service depends on
type API interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	CreateCompletion(ctx context.Context, prompt string) (string, error)
}

// Client wraps the OpenAI API client
type Client struct {
	api        API
	dimensions int
}

// SDKAdapter bridges the go-openai SDK to the API interface. It talks to
// either api.openai.com or an Azure OpenAI deployment depending on config.
type SDKAdapter struct {
	client          *openai.Client
	embeddingModel  openai.EmbeddingModel
	completionModel string
	stream          bool
}

// Config holds OpenAI client configuration. AzureEndpoint switches the
// transport to an Azure OpenAI deployment, where CompletionModel names the
// deployment rather than a public model.
type Config struct {
	APIKey              string
	AzureEndpoint       string
	AzureAPIVersion     string
	EmbeddingModel      openai.EmbeddingModel
	EmbeddingDimensions int
	CompletionModel     string
	Stream              bool
}

// NewSDKAdapter creates the SDK-backed adapter.
func NewSDKAdapter(cfg Config) *SDKAdapter {
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel
	}
	if cfg.CompletionModel == "" {
		cfg.CompletionModel = DefaultCompletionModel
	}

	var clientCfg openai.ClientConfig
	if cfg.AzureEndpoint != "" {
		clientCfg = openai.DefaultAzureConfig(cfg.APIKey, cfg.AzureEndpoint)
		if cfg.AzureAPIVersion != "" {
			clientCfg.APIVersion = cfg.AzureAPIVersion
		}
	} else {
		clientCfg = openai.DefaultConfig(cfg.APIKey)
	}

	return &SDKAdapter{
		client:          openai.NewClientWithConfig(clientCfg),
		embeddingModel:  cfg.EmbeddingModel,
		completionModel: cfg.CompletionModel,
		stream:          cfg.Stream,
	}
}

// CreateEmbeddings calls the embeddings API for a batch of texts.
func (a *SDKAdapter) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: a.embeddingModel,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}
	return out, nil
}

// CreateCompletion sends a single-user-message chat completion. With
// streaming enabled it accumulates tokens and still behaves as a blocking
// call from the caller's point of view.
func (a *SDKAdapter) CreateCompletion(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: a.completionModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: completionTemperature,
		MaxTokens:   completionMaxTokens,
		TopP:        completionTopP,
	}

	if !a.stream {
		resp, err := a.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", ErrEmptyCompletion
		}
		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	}

	req.Stream = true
	stream, err := a.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		// Azure sends empty control chunks with no choices
		if len(chunk.Choices) == 0 {
			continue
		}
		sb.WriteString(chunk.Choices[0].Delta.Content)
	}
	return strings.TrimSpace(sb.String()), nil
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &Client{
		api:        NewSDKAdapter(cfg),
		dimensions: dimensions,
	}
}

// NewClientFromEnv creates a new OpenAI client using OPENAI_API_KEY environment variable
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// NewClientWithAPI creates a client over a custom API implementation.
// Used by tests to inject doubles.
func NewClientWithAPI(api API, dimensions int) *Client {
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &Client{api: api, dimensions: dimensions}
}

// GenerateEmbedding generates an embedding for the given text
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	embeddings, err := c.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// GenerateEmbeddings generates embeddings for a batch of texts
func (c *Client) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyText
	}
	for _, t := range texts {
		if t == "" {
			return nil, ErrEmptyText
		}
	}

	embeddings, err := c.api.CreateEmbeddings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}

	for _, e := range embeddings {
		if len(e) != c.dimensions {
			return nil, ErrWrongDimensions
		}
	}
	return embeddings, nil
}

// Complete sends a prompt to the completion service and returns the raw
// model text. Transient failures are retried with exponential backoff;
// callers still treat any error as a recoverable empty result.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyText
	}

	expo := backoff.NewExponentialBackOff()
	expo.MaxElapsedTime = maxRetryElapsed
	policy := backoff.WithMaxRetries(backoff.WithContext(expo, ctx), maxCompletionRetries)

	var content string
	operation := func() error {
		out, err := c.api.CreateCompletion(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		if out == "" {
			return backoff.Permanent(ErrEmptyCompletion)
		}
		content = out
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	return content, nil
}
