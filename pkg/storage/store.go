package storage

import (
	"context"
	"fmt"
	"strings"

	"catalogscraper/pkg/config"
	"catalogscraper/pkg/logger"
	"catalogscraper/pkg/models"
)

// Store persists the whole collection as one durable snapshot
type Store interface {
	// Load returns the persisted collection. Missing, unreadable or corrupt
	// state yields an empty collection and a logged warning, never an error.
	Load(ctx context.Context) models.Collection
	// Save replaces the persisted collection with c. After a crash the old
	// or the new snapshot is present in full, never a mix.
	Save(ctx context.Context, c models.Collection) error
	// Location describes where the snapshot lives, for logs and status output
	Location() string
	Close() error
}

// IdentityKeys returns the set of locators in c
func IdentityKeys(c models.Collection) models.KeySet {
	keys := models.NewKeySet(len(c))
	for _, rec := range c {
		keys.Add(rec.Locator())
	}
	return keys
}

// Open creates the store selected by cfg.Backend
func Open(ctx context.Context, cfg config.StorageConfig, log logger.Logger) (Store, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	switch strings.ToLower(cfg.Backend) {
	case "", config.BackendJSON:
		return NewJSONStore(cfg.Path, log), nil
	case config.BackendSQLite:
		return OpenSQLite(ctx, cfg.Path, log)
	case config.BackendPostgres:
		return OpenPostgres(ctx, cfg.DSN, log)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// encodeRecord renders one record as the compact document stored by the
// database backends
func encodeRecord(rec models.MergedRecord) (string, error) {
	data, err := rec.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("failed to encode record %s: %w", rec.Locator(), err)
	}
	return string(data), nil
}
