package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/atharvakonge/paper-trader/internal/config"
	"github.com/atharvakonge/paper-trader/internal/db"
	"github.com/atharvakonge/paper-trader/internal/log"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to a yaml config file")
	dir := flag.String("dir", "up", "migration direction: up, down or status")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		os.Exit(1)
	}
	if err := log.Configure(cfg.Log.Level, cfg.Log.Encoding); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to configure logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	conn, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	switch *dir {
	case "up":
		err = db.Migrate(conn)
	case "down":
		err = db.MigrateDown(conn)
	case "status":
		err = db.MigrationStatus(conn)
	default:
		err = fmt.Errorf("unknown -dir %q, want up, down or status", *dir)
	}
	if err != nil {
		log.Fatal("migration failed", zap.String("dir", *dir), zap.Error(err))
	}
	log.Info("migration done", zap.String("dir", *dir))
}
