package storage

import (
	"context"
	"database/sql"
	"fmt"

	"yad2-pets-scraper/models"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteWriter stores pets in a local SQLite file.
type SQLiteWriter struct {
	db *sql.DB
}

func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection: the scraper is single-threaded and SQLite serialises
	// writers anyway
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &SQLiteWriter{db: db}, nil
}

func (w *SQLiteWriter) EnsureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS pets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		description TEXT,
		location TEXT,
		price TEXT
	);
	`
	if _, err := w.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Insert runs outside a transaction, so each row is committed on return.
func (w *SQLiteWriter) Insert(ctx context.Context, pet models.Pet) (int64, error) {
	res, err := w.db.ExecContext(ctx,
		"INSERT INTO pets (description, location, price) VALUES (?, ?, ?)",
		pet.Description, pet.Location, pet.Price,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert pet: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return id, nil
}

func (w *SQLiteWriter) List(ctx context.Context) ([]models.Pet, error) {
	rows, err := w.db.QueryContext(ctx, "SELECT id, description, location, price FROM pets ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query pets: %w", err)
	}
	defer rows.Close()

	var pets []models.Pet
	for rows.Next() {
		var (
			p                             models.Pet
			description, location, price sql.NullString
		)
		if err := rows.Scan(&p.ID, &description, &location, &price); err != nil {
			return nil, fmt.Errorf("failed to scan pet: %w", err)
		}
		p.Description = description.String
		p.Location = location.String
		p.Price = price.String
		pets = append(pets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pets: %w", err)
	}
	return pets, nil
}

func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}
