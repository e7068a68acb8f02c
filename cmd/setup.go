package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/radexhq/radex/internal/access"
	"github.com/radexhq/radex/internal/app"
	"github.com/radexhq/radex/internal/config"
)

// setupApp initializes the full application for commands that need it.
// The returned cleanup must be deferred.
func setupApp(ctx context.Context) (*app.App, func(), error) {
	logger := initLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing application: %w", err)
	}

	cleanup := func() {
		if err := a.Close(); err != nil {
			logger.Warn("shutdown error", "error", err)
		}
	}
	return a, cleanup, nil
}

// resolveUser looks up the acting user for a command by username.
func resolveUser(ctx context.Context, a *app.App, username string) (access.User, error) {
	if username == "" {
		return access.User{}, fmt.Errorf("--user is required")
	}
	store, err := access.NewPGStore(a.DBPool)
	if err != nil {
		return access.User{}, err
	}
	return store.UserByName(ctx, username)
}
