package knowledge

import (
	"fmt"
	"strings"
)

// Chunker splits document text into overlapping windows. Chunking must be
// reproducible: the same text with the same parameters always yields the
// same chunks, because chunk ordinals are the retrieval unit's identity.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a Chunker. size is the window length in runes, overlap
// the number of runes shared between consecutive windows; the stride is
// size - overlap.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("overlap must be in [0, size), got size=%d overlap=%d", size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split returns the overlapping windows of text. Whitespace is normalized
// first (runs of whitespace collapse to a single space) so that formatting
// differences in the source never shift chunk boundaries. Empty or
// whitespace-only text yields no chunks.
func (c *Chunker) Split(text string) []string {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return nil
	}

	runes := []rune(normalized)
	if len(runes) <= c.size {
		return []string{normalized}
	}

	stride := c.size - c.overlap
	var chunks []string
	for start := 0; start < len(runes); start += stride {
		end := start + c.size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
