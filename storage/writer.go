package storage

import (
	"context"
	"fmt"

	"yad2-pets-scraper/config"
	"yad2-pets-scraper/models"
)

// Writer is the pets table. Rows are only ever appended.
type Writer interface {
	EnsureSchema(ctx context.Context) error
	// Insert appends one row, commits it and returns its generated id.
	Insert(ctx context.Context, pet models.Pet) (int64, error)
	// List returns every row ordered by id.
	List(ctx context.Context) ([]models.Pet, error)
	Close() error
}

// Open connects to the store selected by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config) (Writer, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		w, err := NewSQLiteWriter(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return w, nil
	case config.DriverPostgres:
		w, err := NewPostgresWriter(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return w, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
