package knowledge

import (
	"time"

	"github.com/google/uuid"
)

// Content type tags for documents. Tabular documents are answered by the
// structured computation path; unstructured ones by semantic retrieval.
const (
	ContentTypeTabular      = "tabular"
	ContentTypeUnstructured = "unstructured"
)

// Document is an ingested source file. Seq is a storage-assigned insertion
// counter used for deterministic tie-breaking in search results.
type Document struct {
	ID          uuid.UUID
	FolderID    uuid.UUID
	Filename    string
	ContentType string
	ObjectKey   string
	Seq         int64
	CreatedAt   time.Time
}

// Chunk is one overlapping window of a document's text, the atomic unit of
// retrieval. Chunks are immutable after ingestion; re-ingestion replaces the
// whole set for a document.
type Chunk struct {
	ID         uuid.UUID
	DocumentID uuid.UUID
	Ordinal    int
	Content    string
}

// Match is a single search result.
type Match struct {
	Chunk      Chunk
	Filename   string
	FolderID   uuid.UUID
	FolderName string
	Similarity float64
}

// FolderStats summarizes the retrievable content of one folder.
type FolderStats struct {
	FolderID   uuid.UUID
	FolderName string
	Documents  int64
	Chunks     int64
}

// SearchOption configures search behavior using the functional options
// pattern.
type SearchOption func(*searchConfig)

type searchConfig struct {
	limit         int
	minSimilarity float64
}

// WithLimit sets the maximum number of results. Default is 5.
func WithLimit(n int) SearchOption {
	return func(c *searchConfig) {
		c.limit = n
	}
}

// WithMinSimilarity sets the cosine similarity threshold in [0,1].
// Chunks below the threshold are not returned. Default is 0.3.
func WithMinSimilarity(s float64) SearchOption {
	return func(c *searchConfig) {
		c.minSimilarity = s
	}
}

func buildSearchConfig(opts []SearchOption) *searchConfig {
	cfg := &searchConfig{
		limit:         5,
		minSimilarity: 0.3,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
