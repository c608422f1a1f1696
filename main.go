package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/minigames/internal/catalog"
	"github.com/robalobadob/minigames/internal/httpserver"
	"github.com/robalobadob/minigames/internal/store"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.SessionSecret == "dev_secret_change_me" {
		log.Warn().Msg("SESSION_SECRET not set, using the development secret")
	}

	games, err := openCatalog(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load game catalog")
	}

	mem := store.NewMemoryStore(store.WithTTL(cfg.SessionTTL))
	if cfg.SessionTTL > 0 {
		go sweep(mem, cfg.SessionTTL)
	}

	srv := httpserver.New(games, mem, httpserver.Options{
		ClientOrigin: cfg.ClientOrigin,
		Secret:       []byte(cfg.SessionSecret),
		DailySalt:    cfg.DailySalt,
	})
	log.Info().Str("port", cfg.Port).Msg("starting minigames server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// openCatalog returns the embedded catalogue, or a SQLite mirror of it when CATALOG_DB is set.
func openCatalog(ctx context.Context, cfg Config) (catalog.Source, error) {
	embedded, err := catalog.Embedded()
	if err != nil {
		return nil, err
	}
	if cfg.CatalogDB == "" {
		return embedded, nil
	}

	db, err := catalog.OpenDB(ctx, cfg.CatalogDB)
	if err != nil {
		return nil, err
	}
	if err := catalog.Migrate(ctx, db); err != nil {
		return nil, err
	}
	repo := catalog.NewRepository(db)
	n, err := repo.Seed(ctx, embedded.Definitions())
	if err != nil {
		return nil, err
	}
	log.Info().Str("db", cfg.CatalogDB).Int("games", n).Msg("catalog seeded")
	return repo, nil
}

// sweep drops idle sessions every half TTL.
func sweep(mem *store.Memory, ttl time.Duration) {
	t := time.NewTicker(ttl / 2)
	defer t.Stop()
	for range t.C {
		if n := mem.Sweep(); n > 0 {
			log.Debug().Int("sessions", n).Msg("expired sessions dropped")
		}
	}
}
