// Package cmd provides shared construction helpers for the binaries.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/flowbridge/flowbridge/pkg/persistence"
	"github.com/flowbridge/flowbridge/pkg/persistence/file"
	"github.com/flowbridge/flowbridge/pkg/persistence/postgresql"
	"github.com/flowbridge/flowbridge/pkg/persistence/redis"
)

// NewPersistence selects a persistence backend by the database URL scheme.
// Unknown schemes fall back to file persistence rooted at the URL path.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parseProvider(databaseURL) {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	case "redis":
		return redis.NewPersistence(ctx, databaseURL)
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

func parseProvider(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return scheme
}
