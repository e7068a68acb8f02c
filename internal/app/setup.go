package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/radexhq/radex/internal/access"
	"github.com/radexhq/radex/internal/ai"
	"github.com/radexhq/radex/internal/config"
	"github.com/radexhq/radex/internal/database"
	"github.com/radexhq/radex/internal/engine"
	"github.com/radexhq/radex/internal/knowledge"
	"github.com/radexhq/radex/internal/object"
	"github.com/radexhq/radex/internal/reformulate"
	"github.com/radexhq/radex/internal/router"
)

// Setup creates and initializes the application. Returns an App with
// embedded cleanup; call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, retErr error) {
	if cfg == nil {
		return nil, config.ErrConfigNil
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{Config: cfg, Logger: logger}

	// On error, release everything already initialized.
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	pool, dbCleanup, err := database.Open(ctx, cfg.PostgresURL())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.dbCleanup = dbCleanup
	a.DBPool = pool

	gemini, err := ai.NewGeminiClient(ctx, ai.GeminiConfig{
		ModelName:     cfg.ModelName,
		EmbedderModel: cfg.EmbedderModel,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	a.Gemini = gemini

	objects, err := object.NewMinioStore(ctx, object.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("connecting to object storage: %w", err)
	}
	a.Objects = objects

	accessStore, err := access.NewPGStore(pool)
	if err != nil {
		return nil, fmt.Errorf("creating access store: %w", err)
	}
	a.Access = access.NewResolver(accessStore, logger)

	chunker, err := knowledge.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("creating chunker: %w", err)
	}
	knowledgeStore, err := knowledge.NewStore(pool, gemini, chunker, logger)
	if err != nil {
		return nil, fmt.Errorf("creating knowledge store: %w", err)
	}
	a.Knowledge = knowledgeStore

	queryRouter, err := router.New(gemini, router.NewBlobMaterializer(objects), logger,
		router.WithDatasetTTL(time.Duration(cfg.DatasetCacheTTLSeconds)*time.Second))
	if err != nil {
		return nil, fmt.Errorf("creating query router: %w", err)
	}
	a.Router = queryRouter

	reformulator := reformulate.New(gemini, logger)

	eng, err := engine.New(a.Access, knowledgeStore, objects, reformulator, queryRouter, gemini,
		engine.Config{
			TopK:          cfg.TopK,
			MinSimilarity: cfg.MinSimilarity,
			MaxHistory:    cfg.MaxHistoryTurns,
		}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	a.Engine = eng

	logger.Info("application initialized",
		"model", cfg.ModelName, "embedder", cfg.EmbedderModel)
	return a, nil
}
