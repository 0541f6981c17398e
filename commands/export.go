package commands

import (
	"fmt"

	"yad2-pets-scraper/config"
	"yad2-pets-scraper/storage"

	"github.com/spf13/cobra"
)

var exportOut string

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "CSV file to write (defaults to csv_path from the config).")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [--out <path/to/pets.csv>]",
	Short: "Writes every stored pet to a CSV file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(func(cfg *config.Config) {
			if exportOut != "" {
				cfg.CSVPath = exportOut
			}
		})
		if err != nil {
			return err
		}

		writer, err := storage.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("could not open storage: %w", err)
		}
		defer writer.Close()

		if err := writer.EnsureSchema(cmd.Context()); err != nil {
			return err
		}
		pets, err := writer.List(cmd.Context())
		if err != nil {
			return err
		}

		return storage.NewCSVWriter(cfg.CSVPath).Write(pets)
	},
}
