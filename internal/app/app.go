package app

import (
	"fmt"

	"go.uber.org/zap"

	"bookbot/internal/catalog"
	"bookbot/internal/config"
	"bookbot/internal/conversation"
	"bookbot/internal/favorites"
	"bookbot/internal/genre"
	"bookbot/internal/history"
	"bookbot/internal/platform/googlebooks"
	"bookbot/internal/platform/metrics"
	"bookbot/internal/session"
)

// Core is the transport-independent part of the bot.
type Core struct {
	Sessions  *session.Store
	Favorites *favorites.Store
	History   *history.Log
	Genres    *genre.Vocabulary
	Breaker   *catalog.Breaker
	Gateway   catalog.Gateway
	Metrics   *metrics.Collector
}

// NewCore wires the stores and the catalog chain:
// lookup cache -> instrumentation -> circuit breaker -> Google Books.
func NewCore(cfg *config.Config, logger *zap.Logger) (*Core, error) {
	genres := genre.Default()
	if cfg.App.GenresFile != "" {
		v, err := genre.LoadFile(cfg.App.GenresFile)
		if err != nil {
			return nil, fmt.Errorf("load genres: %w", err)
		}
		genres = v
	}
	if err := conversation.ValidateGenres(genres); err != nil {
		return nil, fmt.Errorf("load genres: %w", err)
	}

	collector := metrics.NewCollector("bookbot")
	client := googlebooks.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.APIKey, cfg.Catalog.Timeout, cfg.Catalog.MaxRetries)
	breaker := catalog.NewBreaker(catalog.NewGoogleBooks(client), catalog.DefaultBreakerConfig(), logger)
	gateway := catalog.NewCachedLookup(catalog.NewInstrumented(breaker, collector), cfg.Catalog.LookupTTL)

	return &Core{
		Sessions:  session.NewStore(),
		Favorites: favorites.NewStore(),
		History:   history.NewLog(),
		Genres:    genres,
		Breaker:   breaker,
		Gateway:   gateway,
		Metrics:   collector,
	}, nil
}

func (c *Core) Service(cfg *config.Config, presenter conversation.Presenter, logger *zap.Logger) *conversation.Service {
	return conversation.NewService(
		c.Sessions,
		c.Favorites,
		c.History,
		c.Gateway,
		c.Genres,
		presenter,
		logger,
		conversation.WithMaxResults(cfg.Catalog.MaxResults),
		conversation.WithMetrics(c.Metrics),
	)
}
