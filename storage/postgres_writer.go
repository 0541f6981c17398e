package storage

import (
	"context"
	"fmt"
	"time"

	"yad2-pets-scraper/config"
	"yad2-pets-scraper/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresWriter stores pets in PostgreSQL. The table layout matches the
// SQLite one; BIGSERIAL stands in for AUTOINCREMENT.
type PostgresWriter struct {
	pool *pgxpool.Pool
}

func NewPostgresWriter(ctx context.Context, cfg *config.Config) (*PostgresWriter, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Storage.DBUser,
		cfg.Storage.DBPassword,
		cfg.Storage.DBHost,
		cfg.Storage.DBPort,
		cfg.Storage.DBName,
		cfg.Storage.DBSSLMode,
	)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres config: %w", err)
	}
	poolCfg.MaxConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}

	return &PostgresWriter{pool: pool}, nil
}

func (w *PostgresWriter) Close() error {
	if w.pool != nil {
		w.pool.Close()
	}
	return nil
}

func (w *PostgresWriter) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	sql := `
	CREATE TABLE IF NOT EXISTS pets (
		id BIGSERIAL PRIMARY KEY,
		description TEXT,
		location TEXT,
		price TEXT
	);
	`

	if _, err := w.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	return nil
}

func (w *PostgresWriter) Insert(ctx context.Context, pet models.Pet) (int64, error) {
	var id int64
	err := w.pool.QueryRow(ctx,
		"INSERT INTO pets (description, location, price) VALUES ($1, $2, $3) RETURNING id",
		pet.Description, pet.Location, pet.Price,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert pet: %w", err)
	}
	return id, nil
}

func (w *PostgresWriter) List(ctx context.Context) ([]models.Pet, error) {
	rows, err := w.pool.Query(ctx, "SELECT id, COALESCE(description, ''), COALESCE(location, ''), COALESCE(price, '') FROM pets ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query pets: %w", err)
	}

	pets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Pet, error) {
		var p models.Pet
		err := row.Scan(&p.ID, &p.Description, &p.Location, &p.Price)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read pets: %w", err)
	}
	return pets, nil
}
