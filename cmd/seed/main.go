package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"accessgate/internal/config"
	"accessgate/internal/db"
	"accessgate/internal/logger"
	"accessgate/internal/seed"
)

var errMemoryStore = errors.New("nothing to seed: the memory store is seeded by the server at startup")

// Seeds roles and their permission sets from a YAML file into the configured
// store. Re-running replaces the permission set of every listed role.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	path := flag.String("file", cfg.RolesFile, "roles YAML file")
	flag.Parse()

	zl, err := logger.New(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	err = run(cfg, *path, zl)
	if err != nil {
		zl.Error("seed failed", zap.Error(err))
	}
	_ = zl.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, path string, zl *zap.Logger) error {
	if cfg.StoreDriver == config.StoreMemory {
		return errMemoryStore
	}

	defs, err := seed.LoadRoles(path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := db.OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	if err := seed.Apply(ctx, store.Roles, defs); err != nil {
		return err
	}
	for _, def := range defs {
		zl.Info("role seeded", zap.String("role", def.Name), zap.Strings("permissions", def.Permissions))
	}
	return nil
}
