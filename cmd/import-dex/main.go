// Package main loads the YAML dex and upserts it into postgres.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/evspread/internal/config"
	"github.com/cory-johannsen/evspread/internal/game/dex"
	"github.com/cory-johannsen/evspread/internal/observability"
	"github.com/cory-johannsen/evspread/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	sourceDir := flag.String("source", "", "dex content directory; overrides dex.dir")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	dir := cfg.Dex.Dir
	if *sourceDir != "" {
		dir = *sourceDir
	}
	if dir == "" {
		fmt.Fprintln(os.Stderr, "usage: import-dex [-config <file>] [-source <dir>]")
		os.Exit(1)
	}

	start := time.Now()
	registry, err := dex.LoadDir(dir)
	if err != nil {
		logger.Fatal("loading dex", zap.String("dir", dir), zap.Error(err))
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.CheckSchema(ctx); err != nil {
		logger.Fatal("checking schema", zap.Error(err))
	}
	counts, err := pool.Dex().Save(ctx, registry)
	if err != nil {
		logger.Fatal("saving dex", zap.Error(err))
	}
	logger.Info("dex imported",
		zap.String("dir", dir),
		zap.Int("types", counts.Types),
		zap.Int("chart_entries", counts.Entries),
		zap.Int("species", counts.Species),
		zap.Int("moves", counts.Moves),
		zap.Int("natures", counts.Natures),
	)
	fmt.Printf("import complete in %s\n", time.Since(start).Round(time.Millisecond))
}
