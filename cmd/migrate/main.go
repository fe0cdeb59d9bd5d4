package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/zap"

	"LutStore/pkg/config"
	"LutStore/pkg/db"
	"LutStore/pkg/kit"
	"LutStore/pkg/migrate"
)

// Usage: migrate [up|down|status|version|redo|reset]
func main() {
	flag.Parse()

	command := "up"
	var args []string
	if flag.NArg() > 0 {
		command = flag.Arg(0)
		args = flag.Args()[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		kit.NewLogger("migrate", "info").Fatal("load config", zap.Error(err))
	}

	log := kit.NewLogger("migrate", cfg.App.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.DB)
	if err != nil {
		log.Fatal("open db", zap.Error(err))
	}

	if err := migrate.Run(ctx, conn, command, args...); err != nil {
		_ = conn.Close()
		log.Error("migration failed", zap.String("command", command), zap.Error(err))
		os.Exit(1)
	}
	_ = conn.Close()
	log.Info("migration complete", zap.String("command", command))
}
