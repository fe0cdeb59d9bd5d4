package main

import (
	"context"
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"LutStore/internal/catalog"
	"LutStore/pkg/config"
	"LutStore/pkg/db"
	"LutStore/pkg/kit"
	"LutStore/pkg/migrate"
)

func main() {
	service := "catalog"

	cfg, err := config.Load()
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.App.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("open store", zap.Error(err))
	}
	defer closeStore()

	s := &catalog.Server{
		Store:         store,
		Log:           log,
		WritesEnabled: cfg.Catalog.WritesEnabled,
		ExposeErrors:  cfg.App.ExposeErrors,
	}

	reg := prometheus.NewRegistry()
	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
	})

	port := cfg.HTTP.PortOr("8082")
	if err := kit.RunHTTPServer(":"+port, h, log, kit.ServerTimeouts{
		ReadHeader: cfg.HTTP.ReadHeaderTimeout,
		Shutdown:   cfg.HTTP.ShutdownTimeout,
	}); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (catalog.Store, func(), error) {
	if cfg.Catalog.Store != config.StorePostgres {
		log.Info("using memory store", zap.Bool("seed", cfg.Catalog.Seed))
		if cfg.Catalog.Seed {
			return catalog.NewMemStore(), func() {}, nil
		}
		return catalog.NewEmptyMemStore(), func() {}, nil
	}

	conn, err := db.Open(ctx, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() { _ = conn.Close() }

	if err := prepare(ctx, conn, cfg, log); err != nil {
		closeDB()
		return nil, nil, err
	}

	store := catalog.NewPostgresStore(conn)
	if cfg.Catalog.Seed {
		if err := store.Seed(ctx, catalog.SeedProducts(), catalog.SeedReviews(), catalog.SeedBeforeAfter()); err != nil {
			closeDB()
			return nil, nil, err
		}
	}
	log.Info("using postgres store", zap.Bool("seed", cfg.Catalog.Seed))
	return store, closeDB, nil
}

func prepare(ctx context.Context, conn *sql.DB, cfg *config.Config, log *zap.Logger) error {
	if !cfg.DB.AutoMigrate {
		return nil
	}
	log.Info("applying migrations")
	return migrate.Up(ctx, conn)
}
