package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	gai "github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// Request pacing for the Gemini API. The free tier allows roughly
// 10 requests per second across embed + generate; stay under it.
const (
	requestsPerSecond = 8
	requestBurst      = 4
)

// GeminiClient implements Embedder and Completer against the Gemini API via
// Genkit. Safe for concurrent use.
type GeminiClient struct {
	g         *genkit.Genkit
	embedder  gai.Embedder
	modelName string
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// GeminiConfig configures NewGeminiClient.
type GeminiConfig struct {
	// ModelName is the generation model (e.g. "gemini-2.5-flash").
	ModelName string
	// EmbedderModel is the embedding model (e.g. "gemini-embedding-001").
	EmbedderModel string
}

// NewGeminiClient initializes Genkit with the Google AI plugin and returns a
// client usable as both Embedder and Completer. The API key is read from the
// GEMINI_API_KEY environment variable by the plugin.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig, logger *slog.Logger) (*GeminiClient, error) {
	if cfg.ModelName == "" {
		return nil, errors.New("model name is required")
	}
	if cfg.EmbedderModel == "" {
		return nil, errors.New("embedder model is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit with googleai provider")
	}

	return &GeminiClient{
		g:         g,
		embedder:  googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel),
		modelName: cfg.ModelName,
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		logger:    logger,
	}, nil
}

// Embed generates embeddings for the given texts in a single batch request.
// The result is parallel to the input.
func (c *GeminiClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	docs := make([]*gai.Document, len(texts))
	for i, t := range texts {
		docs[i] = gai.DocumentFromText(t, nil)
	}

	dim := VectorDimension
	resp, err := c.embedder.Embed(ctx, &gai.EmbedRequest{
		Input:   docs,
		Options: &genai.EmbedContentConfig{OutputDimensionality: &dim},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding %d texts: %w", len(texts), err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d",
			len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if len(e.Embedding) == 0 {
			return nil, fmt.Errorf("empty embedding at index %d", i)
		}
		vectors[i] = e.Embedding
	}
	return vectors, nil
}

// Complete generates a text completion for the given system and user prompt.
func (c *GeminiClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}

	resp, err := genkit.Generate(ctx, c.g,
		gai.WithModelName("googleai/"+c.modelName),
		gai.WithSystem(system),
		gai.WithPrompt(prompt),
	)
	if err != nil {
		return "", fmt.Errorf("generating completion: %w", err)
	}

	text := resp.Text()
	c.logger.Debug("completion generated", "prompt_len", len(prompt), "response_len", len(text))
	return text, nil
}

// Compile-time interface checks.
var (
	_ Embedder  = (*GeminiClient)(nil)
	_ Completer = (*GeminiClient)(nil)
)
