// Package ai defines the narrow model-service interfaces the engine depends
// on, plus the Gemini-backed production implementation.
//
// Components never construct model clients themselves; they receive an
// Embedder or Completer via their constructor. This keeps the reasoning
// layer testable with hand-rolled fakes.
package ai

import "context"

// VectorDimension is the embedding dimensionality stored in pgvector.
// gemini-embedding-001 outputs 3072 dimensions by default but supports
// truncation to 768 via OutputDimensionality (Matryoshka Representation
// Learning). The chunks.embedding column is vector(768).
const VectorDimension int32 = 768

// Embedder generates fixed-dimension vector embeddings for a batch of texts.
// The returned slice is parallel to the input: result[i] embeds texts[i].
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer produces a text completion from a system and user prompt.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}
