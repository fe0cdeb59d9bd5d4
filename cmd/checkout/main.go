package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"LutStore/internal/checkout"
	"LutStore/pkg/config"
	"LutStore/pkg/db"
	"LutStore/pkg/kit"
	"LutStore/pkg/migrate"
	"LutStore/pkg/redis"
)

func main() {
	service := "checkout"

	cfg, err := config.Load()
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.App.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	pricer, err := checkout.NewPricer(cfg.Checkout.TaxRate, cfg.Checkout.Currency)
	if err != nil {
		log.Fatal("invalid pricing config", zap.Error(err))
	}

	s := &checkout.Server{
		Store:          checkout.NewStore(),
		Catalog:        checkout.NewCatalogClient(cfg.Checkout.CatalogURL, cfg.Checkout.CatalogTimeout),
		Pricer:         pricer,
		Log:            log,
		Idempotency:    checkout.NewMemIdempotencyStore(),
		IdempotencyTTL: cfg.Checkout.IdempotencyTTL,
		ExposeErrors:   cfg.App.ExposeErrors,
	}

	if cfg.Checkout.Store == config.StorePostgres {
		conn, err := db.Open(ctx, cfg.DB)
		if err != nil {
			log.Fatal("open db", zap.Error(err))
		}
		defer func() { _ = conn.Close() }()

		if cfg.DB.AutoMigrate {
			if err := migrate.Up(ctx, conn); err != nil {
				log.Fatal("migrate", zap.Error(err))
			}
		}
		s.Store = checkout.NewPostgresStore(conn)
	}

	if cfg.Redis.URL != "" {
		rc, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("connect redis", zap.Error(err))
		}
		defer func() { _ = rc.Close() }()
		s.Idempotency = rc
	}

	log.Info("checkout configured",
		zap.String("store", cfg.Checkout.Store),
		zap.Bool("redis_idempotency", cfg.Redis.URL != ""),
		zap.String("catalog_url", cfg.Checkout.CatalogURL),
	)

	reg := prometheus.NewRegistry()
	h := checkout.NewHandler(s, checkout.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
	})

	port := cfg.HTTP.PortOr("8083")
	if err := kit.RunHTTPServer(":"+port, h, log, kit.ServerTimeouts{
		ReadHeader: cfg.HTTP.ReadHeaderTimeout,
		Shutdown:   cfg.HTTP.ShutdownTimeout,
	}); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
