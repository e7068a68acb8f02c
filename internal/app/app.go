// Package app assembles the application: configuration, database, object
// storage, AI clients, and the engine, with ordered teardown.
package app

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/radexhq/radex/internal/access"
	"github.com/radexhq/radex/internal/ai"
	"github.com/radexhq/radex/internal/config"
	"github.com/radexhq/radex/internal/engine"
	"github.com/radexhq/radex/internal/knowledge"
	"github.com/radexhq/radex/internal/object"
	"github.com/radexhq/radex/internal/router"
)

// App holds every initialized component. Components are exported so
// commands can reach the layer they need directly.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	DBPool    *pgxpool.Pool
	Gemini    *ai.GeminiClient
	Objects   object.Store
	Access    *access.Resolver
	Knowledge *knowledge.Store
	Router    *router.Router
	Engine    *engine.Engine

	dbCleanup func()
}

// Close releases resources in reverse initialization order. Safe to call
// on a partially initialized App.
func (a *App) Close() error {
	if a.dbCleanup != nil {
		a.dbCleanup()
		a.dbCleanup = nil
	}
	return nil
}
