package commands

import (
	"fmt"
	"os"

	"yad2-pets-scraper/services"
	"yad2-pets-scraper/storage"

	"github.com/spf13/cobra"
)

var reportTop int

func init() {
	reportCmd.Flags().IntVar(&reportTop, "top", 20, "Number of locations to list (0 for all).")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Prints a summary of the stored pets.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(nil)
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

		services.PrintReport(os.Stdout, services.GenerateReport(pets), reportTop)
		return nil
	},
}
