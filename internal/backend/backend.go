// Package backend opens the recent-search store and tag source named by the config.
package backend

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"issuesearch/internal/api"
	"issuesearch/internal/config"
	"issuesearch/internal/domain"
	"issuesearch/internal/obs"
	"issuesearch/internal/recent"
	"issuesearch/internal/tags"
)

// Backend bundles the collaborators the search bar needs
type Backend struct {
	Name  string
	Store recent.Store
	Tags  tags.Loader
	// Catalog is nil for the remote backend
	Catalog *tags.Catalog

	client  *api.Client
	closers []func() error
	logger  zerolog.Logger
}

// Open builds the backend selected by cfg.Backend
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	b := &Backend{Name: cfg.Backend, logger: obs.Logger("backend")}

	if cfg.Backend == config.BackendRemote {
		client := api.NewClient(cfg.APIURL, cfg.Organization, cfg.APIToken, nil)
		b.client = client
		b.Store = client
		b.Tags = client.TagValues
		logger := b.logger
		logger.Info().Str("url", cfg.APIURL).Msg("using remote backend")
		return b, nil
	}

	b.Catalog = tags.NewCatalog(cfg.Tags)
	b.Tags = b.Catalog.Loader()

	switch cfg.Backend {
	case config.BackendMemory:
		b.Store = recent.NewMemoryStore(nil)
	case config.BackendSQLite:
		store, err := recent.OpenSQLite(cfg.SQLitePath, nil)
		if err != nil {
			return nil, err
		}
		b.Store = store
		b.closers = append(b.closers, store.Close)
	case config.BackendPostgres:
		store, err := recent.OpenPostgres(ctx, cfg.PostgresDSN, nil)
		if err != nil {
			return nil, err
		}
		b.Store = store
		b.closers = append(b.closers, func() error { store.Close(); return nil })
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	b.logger.Info().Str("backend", cfg.Backend).Int("tags", len(cfg.Tags)).Msg("using local backend")
	return b, nil
}

// IsRemote reports whether the backend talks to an API server
func (b *Backend) IsRemote() bool { return b.client != nil }

// TagKeys lists the known tag keys. A remote failure is logged and yields none.
func (b *Backend) TagKeys(ctx context.Context) []domain.Tag {
	if b.Catalog != nil {
		return b.Catalog.Keys()
	}
	keys, err := b.client.TagKeys(ctx)
	if err != nil {
		b.logger.Warn().Err(err).Msg("list tag keys")
		return nil
	}
	return keys
}

// Close releases the store
func (b *Backend) Close() error {
	var first error
	for _, c := range b.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
