package main

import (
	"context"
	"database/sql"
	"fmt"

	"impronta-api/internal/config"
	"impronta-api/internal/repository"
	"impronta-api/internal/repository/mysql"
	"impronta-api/internal/repository/sqlite"
)

type store struct {
	db     *sql.DB
	users  repository.UserRepository
	health repository.HealthChecker
}

func (s *store) Close() error {
	return s.db.Close()
}

// openStore connects to the configured driver and brings its schema up to date.
func openStore(ctx context.Context, cfg config.Config) (*store, error) {
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysql.Open(ctx, mysql.Options{
			URL:          cfg.Database.URL,
			CAPath:       cfg.Database.CAPath,
			MaxOpenConns: cfg.Database.MaxOpenConns,
		})
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		if err := mysql.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate mysql: %w", err)
		}
		repo := mysql.NewUserRepository(db)
		return &store{db: db, users: repo, health: repo}, nil
	case "sqlite":
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		repo := sqlite.NewUserRepository(db)
		if err := repo.Init(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		return &store{db: db, users: repo, health: repo}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}
