package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"yad2-pets-scraper/models"
	"yad2-pets-scraper/utils"
)

// CSVWriter exports stored pets to a CSV file.
type CSVWriter struct {
	path string
}

func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

// Write saves all pets to the CSV file, creating its directory if needed.
//
// CSV columns: id, description, location, price
func (w *CSVWriter) Write(pets []models.Pet) error {
	if len(pets) == 0 {
		utils.Warn("No pets to write")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("could not create output dir: %w", err)
	}

	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write([]string{"id", "description", "location", "price"}); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}
	for _, p := range pets {
		if err := writer.Write([]string{
			strconv.FormatInt(p.ID, 10),
			p.Description,
			p.Location,
			p.Price,
		}); err != nil {
			return fmt.Errorf("csv write error: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}

	utils.Success("Saved %d pets → %s", len(pets), w.path)
	return nil
}
