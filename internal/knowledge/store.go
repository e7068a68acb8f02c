// Package knowledge implements the semantic retrieval index: chunked
// document ingestion with vector embeddings and authorization-scoped
// similarity search over PostgreSQL + pgvector.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/radexhq/radex/internal/ai"
)

// ErrDocumentNotFound indicates the referenced document does not exist.
var ErrDocumentNotFound = errors.New("document not found")

// EmbedTimeout bounds a single embedding call during ingestion or search.
const EmbedTimeout = 30 * time.Second

// searchTimeout bounds the vector search query.
const searchTimeout = 10 * time.Second

// Store manages document chunks with vector search capabilities.
//
// Store is safe for concurrent use by multiple goroutines. Ingestion for a
// given document is delete-then-insert inside one transaction, so readers
// never observe a document with a partial chunk set.
type Store struct {
	pool     *pgxpool.Pool
	embedder ai.Embedder
	chunker  *Chunker
	logger   *slog.Logger
}

// NewStore creates a knowledge Store. A nil logger falls back to
// slog.Default().
func NewStore(pool *pgxpool.Pool, embedder ai.Embedder, chunker *Chunker, logger *slog.Logger) (*Store, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if chunker == nil {
		return nil, errors.New("chunker is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, embedder: embedder, chunker: chunker, logger: logger}, nil
}

// CreateDocument registers a document in a folder. Re-uploading the same
// filename replaces the record (and implicitly invalidates prior chunks via
// re-ingestion by the caller).
func (s *Store) CreateDocument(ctx context.Context, folderID uuid.UUID, filename, contentType, objectKey string) (Document, error) {
	var d Document
	err := s.pool.QueryRow(ctx,
		`INSERT INTO documents (folder_id, filename, content_type, object_key)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (folder_id, filename) DO UPDATE SET
		   content_type = EXCLUDED.content_type,
		   object_key = EXCLUDED.object_key
		 RETURNING id, folder_id, filename, content_type, object_key, seq, created_at`,
		folderID, filename, contentType, objectKey,
	).Scan(&d.ID, &d.FolderID, &d.Filename, &d.ContentType, &d.ObjectKey, &d.Seq, &d.CreatedAt)
	if err != nil {
		return Document{}, fmt.Errorf("creating document %q: %w", filename, err)
	}
	return d, nil
}

// IngestText chunks the document's full text, embeds every chunk, and
// replaces the document's chunk set. The delete and inserts run inside one
// transaction, so a concurrent search never sees the document half-ingested.
//
// Embedding failures propagate: silently indexing a document without
// vectors would make it unretrievable with no visible symptom.
func (s *Store) IngestText(ctx context.Context, documentID uuid.UUID, text string) (int, error) {
	chunks := s.chunker.Split(text)
	if len(chunks) == 0 {
		s.logger.Debug("no chunks produced, skipping ingestion", "document_id", documentID)
		return 0, nil
	}

	embedCtx, cancel := context.WithTimeout(ctx, EmbedTimeout)
	defer cancel()

	vectors, err := s.embedder.Embed(embedCtx, chunks)
	if err != nil {
		return 0, fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(chunks))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning ingestion transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Debug("ingestion rollback", "error", rbErr)
		}
	}()

	// Old chunks go first: the chunk set is replaced wholesale, never mixed.
	if _, err := tx.Exec(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID); err != nil {
		return 0, fmt.Errorf("deleting prior chunks: %w", err)
	}

	for i, chunk := range chunks {
		vec := pgvector.NewVector(vectors[i])
		if _, err := tx.Exec(ctx,
			`INSERT INTO chunks (document_id, ordinal, content, embedding)
			 VALUES ($1, $2, $3, $4)`,
			documentID, i, chunk, vec,
		); err != nil {
			return 0, fmt.Errorf("inserting chunk %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing ingestion: %w", err)
	}

	s.logger.Info("document ingested", "document_id", documentID, "chunks", len(chunks))
	return len(chunks), nil
}

// Search returns the chunks most similar to the query vector, restricted to
// documents whose folder is in folderScope. The scope filter is applied in
// SQL, so unauthorized content never leaves the storage layer.
//
// Results are ordered by descending cosine similarity, ties broken by
// ascending chunk ordinal, then by document insertion order. An empty result
// is a nil slice, never an error. An empty folderScope short-circuits to no
// results without touching the database.
func (s *Store) Search(ctx context.Context, queryVec []float32, folderScope []uuid.UUID, opts ...SearchOption) ([]Match, error) {
	if len(folderScope) == 0 {
		return nil, nil
	}
	cfg := buildSearchConfig(opts)

	queryCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	vec := pgvector.NewVector(queryVec)
	rows, err := s.pool.Query(queryCtx,
		`SELECT c.id, c.document_id, c.ordinal, c.content,
		        d.filename, d.folder_id, f.name,
		        1 - (c.embedding <=> $1) AS similarity
		 FROM chunks c
		 JOIN documents d ON d.id = c.document_id
		 JOIN folders f ON f.id = d.folder_id
		 WHERE d.folder_id = ANY($2)
		   AND 1 - (c.embedding <=> $1) >= $3
		 ORDER BY c.embedding <=> $1, c.ordinal ASC, d.seq ASC
		 LIMIT $4`,
		vec, folderScope, cfg.minSimilarity, cfg.limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(
			&m.Chunk.ID, &m.Chunk.DocumentID, &m.Chunk.Ordinal, &m.Chunk.Content,
			&m.Filename, &m.FolderID, &m.FolderName, &m.Similarity,
		); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matches: %w", err)
	}
	return matches, nil
}

// SearchText embeds the query and delegates to Search. Embedding failures
// propagate as retrieval failures.
func (s *Store) SearchText(ctx context.Context, query string, folderScope []uuid.UUID, opts ...SearchOption) ([]Match, error) {
	if len(folderScope) == 0 {
		return nil, nil
	}

	embedCtx, cancel := context.WithTimeout(ctx, EmbedTimeout)
	defer cancel()

	vectors, err := s.embedder.Embed(embedCtx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, errors.New("empty embedding returned for query")
	}

	return s.Search(ctx, vectors[0], folderScope, opts...)
}

// TabularDocuments lists tabular documents within the folder scope, in
// insertion order. Used by the query router to discover candidate datasets.
func (s *Store) TabularDocuments(ctx context.Context, folderScope []uuid.UUID) ([]Document, error) {
	if len(folderScope) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, folder_id, filename, content_type, object_key, seq, created_at
		 FROM documents
		 WHERE folder_id = ANY($1) AND content_type = $2
		 ORDER BY seq`,
		folderScope, ContentTypeTabular,
	)
	if err != nil {
		return nil, fmt.Errorf("listing tabular documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.FolderID, &d.Filename, &d.ContentType, &d.ObjectKey, &d.Seq, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// FolderStats returns per-folder document and chunk counts for the scope.
func (s *Store) FolderStats(ctx context.Context, folderScope []uuid.UUID) ([]FolderStats, error) {
	if len(folderScope) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT f.id, f.name, COUNT(DISTINCT d.id), COUNT(c.id)
		 FROM folders f
		 LEFT JOIN documents d ON d.folder_id = f.id
		 LEFT JOIN chunks c ON c.document_id = d.id
		 WHERE f.id = ANY($1)
		 GROUP BY f.id, f.name
		 ORDER BY f.name`,
		folderScope,
	)
	if err != nil {
		return nil, fmt.Errorf("querying folder stats: %w", err)
	}
	defer rows.Close()

	var stats []FolderStats
	for rows.Next() {
		var fs FolderStats
		if err := rows.Scan(&fs.FolderID, &fs.FolderName, &fs.Documents, &fs.Chunks); err != nil {
			return nil, fmt.Errorf("scanning folder stats: %w", err)
		}
		stats = append(stats, fs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating folder stats: %w", err)
	}
	return stats, nil
}

// DeleteDocument removes a document and (by cascade) its chunks.
// Returns ErrDocumentNotFound if no such document exists.
func (s *Store) DeleteDocument(ctx context.Context, documentID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", documentID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, documentID)
	}
	s.logger.Debug("deleted document", "document_id", documentID)
	return nil
}
