package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"LutStore/internal/gateway"
	"LutStore/pkg/config"
	"LutStore/pkg/kit"
	"LutStore/pkg/redis"
)

const rateLimitWindow = time.Minute

func main() {
	service := "gateway"

	cfg, err := config.Load()
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.App.LogLevel)
	defer func() { _ = log.Sync() }()

	deps := gateway.Deps{
		CatalogURL:      cfg.Gateway.CatalogURL,
		CheckoutURL:     cfg.Gateway.CheckoutURL,
		RateLimitWindow: rateLimitWindow,
	}

	if limit := cfg.Gateway.CheckoutRateLimit; limit > 0 {
		deps.CheckoutLimiter = kit.NewIPRateLimiter(limit, rateLimitWindow)

		if cfg.Redis.URL != "" {
			rc, err := redis.New(context.Background(), cfg.Redis)
			if err != nil {
				log.Fatal("connect redis", zap.Error(err))
			}
			defer func() { _ = rc.Close() }()
			deps.CheckoutLimiter = redis.NewRateLimiter(rc, limit, rateLimitWindow)
		}
	}

	reg := prometheus.NewRegistry()
	h, err := gateway.NewHandler(deps, gateway.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
	})
	if err != nil {
		log.Fatal("init gateway handler failed", zap.Error(err))
	}

	port := cfg.HTTP.PortOr("8080")
	if err := kit.RunHTTPServer(":"+port, h, log, kit.ServerTimeouts{
		ReadHeader: cfg.HTTP.ReadHeaderTimeout,
		Shutdown:   cfg.HTTP.ShutdownTimeout,
	}); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
