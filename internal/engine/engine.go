// Package engine orchestrates a question's full path: resolve the user's
// folder scope, reformulate the question against conversation history, route
// it to structured computation or semantic retrieval, and synthesize the
// final answer.
//
// Failure handling follows one rule throughout: retrieval and authorization
// failures propagate, reasoning-layer failures degrade. A broken completion
// service must never turn a retrievable answer into an error.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/radexhq/radex/internal/access"
	"github.com/radexhq/radex/internal/ai"
	"github.com/radexhq/radex/internal/knowledge"
	"github.com/radexhq/radex/internal/object"
	"github.com/radexhq/radex/internal/reformulate"
	"github.com/radexhq/radex/internal/router"
)

// NoResultsMessage is returned verbatim when retrieval finds nothing within
// the user's scope, including when the scope itself is empty.
const NoResultsMessage = "No relevant documents found for your query."

// computationFallback explains a failed tabular computation without leaking
// internals.
const computationFallback = "I couldn't compute an answer from the available tabular data for: %s. Try naming the file or column you're interested in."

const synthesizeTimeout = 30 * time.Second

const answerSystemPrompt = `You answer questions using only the provided document excerpts.
Cite the source filename when you draw on an excerpt.
If the excerpts do not contain the answer, say so plainly.
Never invent facts that are not in the excerpts.`

const suggestSystemPrompt = `Given a question and its answer, propose three short follow-up questions
the user might ask next. Return one question per line, no numbering.`

// AccessResolver answers authorization questions. Satisfied by
// *access.Resolver.
type AccessResolver interface {
	Accessible(ctx context.Context, user access.User) ([]access.Folder, error)
	Can(ctx context.Context, user access.User, folderID uuid.UUID, action access.Action) (bool, error)
}

// KnowledgeStore is the slice of the retrieval index the engine uses.
// Satisfied by *knowledge.Store.
type KnowledgeStore interface {
	SearchText(ctx context.Context, query string, folderScope []uuid.UUID, opts ...knowledge.SearchOption) ([]knowledge.Match, error)
	TabularDocuments(ctx context.Context, folderScope []uuid.UUID) ([]knowledge.Document, error)
	FolderStats(ctx context.Context, folderScope []uuid.UUID) ([]knowledge.FolderStats, error)
	CreateDocument(ctx context.Context, folderID uuid.UUID, filename, contentType, objectKey string) (knowledge.Document, error)
	IngestText(ctx context.Context, documentID uuid.UUID, text string) (int, error)
	DeleteDocument(ctx context.Context, documentID uuid.UUID) error
}

// Reformulator rewrites follow-up questions. Satisfied by
// *reformulate.Reformulator.
type Reformulator interface {
	Reformulate(ctx context.Context, turns []reformulate.Turn, maxHistory int) string
}

// QueryRouter classifies and answers structured questions. Satisfied by
// *router.Router.
type QueryRouter interface {
	Classify(ctx context.Context, question string, datasets []router.Dataset) router.Route
	Dataset(ctx context.Context, userID uuid.UUID, doc knowledge.Document) (router.Dataset, error)
	Answer(ctx context.Context, userID uuid.UUID, question string, docs []knowledge.Document) (string, error)
	Invalidate(userID, folderID uuid.UUID, filename string)
}

// Source identifies one retrieved chunk backing an answer.
type Source struct {
	Filename   string
	FolderName string
	Ordinal    int
	Similarity float64
	Excerpt    string
}

// Answer is the engine's response envelope.
type Answer struct {
	Text             string
	Route            router.Route
	Query            string
	Sources          []Source
	TotalChunks      int
	SuggestedQueries []string
}

// IngestResult reports what one upload produced.
type IngestResult struct {
	Document knowledge.Document
	Chunks   int
}

// Config tunes retrieval behavior.
type Config struct {
	TopK          int
	MinSimilarity float64
	MaxHistory    int
}

// Engine wires the components behind Ask and Ingest.
type Engine struct {
	access       AccessResolver
	knowledge    KnowledgeStore
	objects      object.Store
	reformulator Reformulator
	router       QueryRouter
	completer    ai.Completer
	cfg          Config
	logger       *slog.Logger
}

// New creates an Engine. A nil logger falls back to slog.Default().
func New(
	accessResolver AccessResolver,
	knowledgeStore KnowledgeStore,
	objects object.Store,
	reformulator Reformulator,
	queryRouter QueryRouter,
	completer ai.Completer,
	cfg Config,
	logger *slog.Logger,
) (*Engine, error) {
	switch {
	case accessResolver == nil:
		return nil, fmt.Errorf("access resolver is required")
	case knowledgeStore == nil:
		return nil, fmt.Errorf("knowledge store is required")
	case objects == nil:
		return nil, fmt.Errorf("object store is required")
	case reformulator == nil:
		return nil, fmt.Errorf("reformulator is required")
	case queryRouter == nil:
		return nil, fmt.Errorf("query router is required")
	case completer == nil:
		return nil, fmt.Errorf("completer is required")
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = 6
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		access:       accessResolver,
		knowledge:    knowledgeStore,
		objects:      objects,
		reformulator: reformulator,
		router:       queryRouter,
		completer:    completer,
		cfg:          cfg,
		logger:       logger,
	}, nil
}

// Ask answers the latest turn of a conversation within the user's folder
// scope.
func (e *Engine) Ask(ctx context.Context, user access.User, turns []reformulate.Turn) (Answer, error) {
	question := e.reformulator.Reformulate(ctx, turns, e.cfg.MaxHistory)
	if strings.TrimSpace(question) == "" {
		return Answer{}, ErrEmptyQuestion
	}

	folders, err := e.access.Accessible(ctx, user)
	if err != nil {
		return Answer{}, fmt.Errorf("resolving folder scope: %w", err)
	}
	if len(folders) == 0 {
		e.logger.Debug("user has no accessible folders", "user_id", user.ID)
		return Answer{Text: NoResultsMessage, Route: router.RouteUnstructured, Query: question}, nil
	}
	scope := make([]uuid.UUID, len(folders))
	for i, f := range folders {
		scope[i] = f.ID
	}

	docs, datasets := e.candidateDatasets(ctx, user, scope)

	route := e.router.Classify(ctx, question, datasets)
	e.logger.Info("question routed",
		"user_id", user.ID, "route", route, "folders", len(scope), "datasets", len(datasets))

	if route == router.RouteStructured {
		return e.answerStructured(ctx, user, question, docs)
	}
	return e.answerUnstructured(ctx, question, scope)
}

// candidateDatasets materializes the user's tabular documents for
// classification and selection. Listing failures and unreadable files are
// logged and skipped: a broken spreadsheet must not block text retrieval.
func (e *Engine) candidateDatasets(ctx context.Context, user access.User, scope []uuid.UUID) ([]knowledge.Document, []router.Dataset) {
	docs, err := e.knowledge.TabularDocuments(ctx, scope)
	if err != nil {
		e.logger.Warn("listing tabular documents failed", "error", err)
		return nil, nil
	}

	datasets := make([]router.Dataset, 0, len(docs))
	readable := make([]knowledge.Document, 0, len(docs))
	for _, doc := range docs {
		ds, err := e.router.Dataset(ctx, user.ID, doc)
		if err != nil {
			e.logger.Warn("skipping unreadable tabular document",
				"filename", doc.Filename, "error", err)
			continue
		}
		datasets = append(datasets, ds)
		readable = append(readable, doc)
	}
	return readable, datasets
}

func (e *Engine) answerStructured(ctx context.Context, user access.User, question string, docs []knowledge.Document) (Answer, error) {
	text, err := e.router.Answer(ctx, user.ID, question, docs)
	if err != nil {
		// Computation failures are recoverable: the user gets an
		// explanation, not an error.
		e.logger.Warn("structured computation failed", "error", err)
		return Answer{
			Text:  fmt.Sprintf(computationFallback, question),
			Route: router.RouteStructured,
			Query: question,
		}, nil
	}
	return Answer{
		Text:             text,
		Route:            router.RouteStructured,
		Query:            question,
		SuggestedQueries: e.suggestFollowUps(ctx, question, text),
	}, nil
}

func (e *Engine) answerUnstructured(ctx context.Context, question string, scope []uuid.UUID) (Answer, error) {
	matches, err := e.knowledge.SearchText(ctx, question, scope,
		knowledge.WithLimit(e.cfg.TopK), knowledge.WithMinSimilarity(e.cfg.MinSimilarity))
	if err != nil {
		return Answer{}, fmt.Errorf("retrieving chunks: %w", err)
	}
	if len(matches) == 0 {
		return Answer{Text: NoResultsMessage, Route: router.RouteUnstructured, Query: question}, nil
	}

	text, err := e.synthesize(ctx, question, matches)
	if err != nil {
		return Answer{}, fmt.Errorf("synthesizing answer: %w", err)
	}

	sources := make([]Source, len(matches))
	for i, m := range matches {
		sources[i] = Source{
			Filename:   m.Filename,
			FolderName: m.FolderName,
			Ordinal:    m.Chunk.Ordinal,
			Similarity: m.Similarity,
			Excerpt:    excerpt(m.Chunk.Content),
		}
	}
	return Answer{
		Text:             text,
		Route:            router.RouteUnstructured,
		Query:            question,
		Sources:          sources,
		TotalChunks:      len(matches),
		SuggestedQueries: e.suggestFollowUps(ctx, question, text),
	}, nil
}

// synthesize turns retrieved chunks into a grounded answer.
func (e *Engine) synthesize(ctx context.Context, question string, matches []knowledge.Match) (string, error) {
	var b strings.Builder
	b.WriteString("Document excerpts:\n\n")
	for _, m := range matches {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Filename, m.Chunk.Content)
	}
	fmt.Fprintf(&b, "Question: %s", question)

	callCtx, cancel := context.WithTimeout(ctx, synthesizeTimeout)
	defer cancel()

	text, err := e.completer.Complete(callCtx, answerSystemPrompt, b.String())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// suggestFollowUps is best-effort: any failure yields no suggestions.
func (e *Engine) suggestFollowUps(ctx context.Context, question, answer string) []string {
	prompt := fmt.Sprintf("Question: %s\n\nAnswer: %s", question, answer)
	raw, err := e.completer.Complete(ctx, suggestSystemPrompt, prompt)
	if err != nil {
		e.logger.Debug("follow-up suggestions unavailable", "error", err)
		return nil
	}

	var suggestions []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		suggestions = append(suggestions, line)
		if len(suggestions) == 3 {
			break
		}
	}
	return suggestions
}

// Ingest uploads a document into a folder and indexes it. The user needs
// write capability on the folder. Tabular files (.csv, .xlsx) are stored
// for on-demand computation; everything else is chunked and embedded.
func (e *Engine) Ingest(ctx context.Context, user access.User, folderID uuid.UUID, filename string, data []byte) (IngestResult, error) {
	allowed, err := e.access.Can(ctx, user, folderID, access.ActionWrite)
	if err != nil {
		return IngestResult{}, fmt.Errorf("checking write access: %w", err)
	}
	if !allowed {
		return IngestResult{}, ErrNotAuthorized
	}

	contentType := knowledge.ContentTypeUnstructured
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx":
		contentType = knowledge.ContentTypeTabular
	}

	objectKey := fmt.Sprintf("%s/%s", folderID, filename)
	if err := e.objects.Put(ctx, objectKey, data); err != nil {
		return IngestResult{}, fmt.Errorf("storing document bytes: %w", err)
	}

	doc, err := e.knowledge.CreateDocument(ctx, folderID, filename, contentType, objectKey)
	if err != nil {
		return IngestResult{}, err
	}

	var chunks int
	if contentType == knowledge.ContentTypeUnstructured {
		chunks, err = e.knowledge.IngestText(ctx, doc.ID, string(data))
		if err != nil {
			return IngestResult{}, fmt.Errorf("indexing %q: %w", filename, err)
		}
	} else {
		// Re-uploads must not serve stale cached rows.
		e.router.Invalidate(user.ID, folderID, filename)
	}

	e.logger.Info("document ingested",
		"user_id", user.ID, "folder_id", folderID,
		"filename", filename, "content_type", contentType, "chunks", chunks)
	return IngestResult{Document: doc, Chunks: chunks}, nil
}

// Delete removes a document and its index entries. The user needs delete
// capability on the document's folder.
func (e *Engine) Delete(ctx context.Context, user access.User, doc knowledge.Document) error {
	allowed, err := e.access.Can(ctx, user, doc.FolderID, access.ActionDelete)
	if err != nil {
		return fmt.Errorf("checking delete access: %w", err)
	}
	if !allowed {
		return ErrNotAuthorized
	}

	if err := e.knowledge.DeleteDocument(ctx, doc.ID); err != nil {
		return err
	}
	e.router.Invalidate(user.ID, doc.FolderID, doc.Filename)
	e.logger.Info("document deleted",
		"user_id", user.ID, "folder_id", doc.FolderID, "filename", doc.Filename)
	return nil
}

// Search runs a scoped similarity search without answer synthesis. Used by
// tool surfaces that want raw matches.
func (e *Engine) Search(ctx context.Context, user access.User, query string, limit int) ([]knowledge.Match, error) {
	folders, err := e.access.Accessible(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("resolving folder scope: %w", err)
	}
	if len(folders) == 0 {
		return nil, nil
	}
	scope := make([]uuid.UUID, len(folders))
	for i, f := range folders {
		scope[i] = f.ID
	}
	if limit <= 0 {
		limit = e.cfg.TopK
	}
	return e.knowledge.SearchText(ctx, query, scope,
		knowledge.WithLimit(limit), knowledge.WithMinSimilarity(e.cfg.MinSimilarity))
}

// Datasets materializes every readable tabular document in the user's scope.
func (e *Engine) Datasets(ctx context.Context, user access.User) ([]router.Dataset, error) {
	folders, err := e.access.Accessible(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("resolving folder scope: %w", err)
	}
	if len(folders) == 0 {
		return nil, nil
	}
	scope := make([]uuid.UUID, len(folders))
	for i, f := range folders {
		scope[i] = f.ID
	}
	_, datasets := e.candidateDatasets(ctx, user, scope)
	return datasets, nil
}

// Stats reports document and chunk counts for every folder the user can
// query.
func (e *Engine) Stats(ctx context.Context, user access.User) ([]knowledge.FolderStats, error) {
	folders, err := e.access.Accessible(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("resolving folder scope: %w", err)
	}
	if len(folders) == 0 {
		return nil, nil
	}
	scope := make([]uuid.UUID, len(folders))
	for i, f := range folders {
		scope[i] = f.ID
	}
	return e.knowledge.FolderStats(ctx, scope)
}

// excerpt shortens chunk content for the source listing.
func excerpt(content string) string {
	const maxLen = 160
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	return string(runes[:maxLen]) + "..."
}

var (
	_ AccessResolver = (*access.Resolver)(nil)
	_ KnowledgeStore = (*knowledge.Store)(nil)
	_ Reformulator   = (*reformulate.Reformulator)(nil)
	_ QueryRouter    = (*router.Router)(nil)
)
