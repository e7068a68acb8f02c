// Package router decides how a question gets answered: by deterministic
// computation over a tabular dataset, or by semantic retrieval over text
// chunks.
//
// Classification and plan generation lean on a completion service but every
// LLM-facing step has a deterministic fallback or a recoverable error, so
// the router never hard-fails a question it could still answer.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/radexhq/radex/internal/ai"
	"github.com/radexhq/radex/internal/knowledge"
)

// DefaultDatasetTTL is how long a materialized dataset stays cached.
const DefaultDatasetTTL = 5 * time.Minute

// Router classifies questions, selects datasets, and generates and executes
// computation plans.
type Router struct {
	completer    ai.Completer
	materializer Materializer
	cache        *datasetCache
	logger       *slog.Logger
}

// Option configures a Router.
type Option func(*options)

type options struct {
	ttl time.Duration
	now func() time.Time
}

// WithDatasetTTL overrides the dataset cache lifetime.
func WithDatasetTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithClock overrides the cache's time source. Tests use this to step
// through TTL expiry without sleeping.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates a Router. A nil logger falls back to slog.Default().
func New(completer ai.Completer, materializer Materializer, logger *slog.Logger, opts ...Option) (*Router, error) {
	if completer == nil {
		return nil, fmt.Errorf("completer is required")
	}
	if materializer == nil {
		return nil, fmt.Errorf("materializer is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	o := options{ttl: DefaultDatasetTTL}
	for _, opt := range opts {
		opt(&o)
	}

	return &Router{
		completer:    completer,
		materializer: materializer,
		cache:        newDatasetCache(o.ttl, o.now),
		logger:       logger,
	}, nil
}

// Dataset materializes doc for the given user, serving from cache when a
// fresh entry exists.
func (r *Router) Dataset(ctx context.Context, userID uuid.UUID, doc knowledge.Document) (Dataset, error) {
	key := cacheKey(userID, doc.FolderID, doc.Filename)
	if ds, ok := r.cache.get(key); ok {
		r.logger.Debug("dataset cache hit", "filename", doc.Filename)
		return ds, nil
	}

	ds, err := r.materializer.Materialize(ctx, doc.ObjectKey, doc.Filename)
	if err != nil {
		return Dataset{}, err
	}
	r.cache.put(key, ds)
	r.logger.Debug("dataset materialized",
		"filename", doc.Filename, "columns", len(ds.Columns), "rows", len(ds.Rows))
	return ds, nil
}

// Invalidate drops the cached dataset for one user, folder, and filename.
// Called after re-ingestion so stale rows never feed a computation.
func (r *Router) Invalidate(userID, folderID uuid.UUID, filename string) {
	r.cache.invalidate(cacheKey(userID, folderID, filename))
}

// Answer runs the full structured path for a question: select a dataset
// from docs, generate a plan, execute it.
func (r *Router) Answer(ctx context.Context, userID uuid.UUID, question string, docs []knowledge.Document) (string, error) {
	datasets := make([]Dataset, 0, len(docs))
	for _, doc := range docs {
		ds, err := r.Dataset(ctx, userID, doc)
		if err != nil {
			r.logger.Warn("skipping unreadable dataset", "filename", doc.Filename, "error", err)
			continue
		}
		datasets = append(datasets, ds)
	}

	ds, ok := SelectDataset(question, datasets)
	if !ok {
		return "", fmt.Errorf("%w: no readable tabular documents", ErrComputationInvalid)
	}

	plan, err := r.GeneratePlan(ctx, question, ds)
	if err != nil {
		return "", err
	}
	return Execute(plan, ds)
}
