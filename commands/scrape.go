package commands

import (
	"fmt"
	"os"

	"yad2-pets-scraper/captcha"
	"yad2-pets-scraper/config"
	"yad2-pets-scraper/scraper/yad2"
	"yad2-pets-scraper/storage"
	"yad2-pets-scraper/utils"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var scrapeFlags struct {
	baseURL     string
	pages       int
	captchaMode string
	driver      string
	db          string
	headless    bool
}

func init() {
	f := scrapeCmd.Flags()
	f.StringVar(&scrapeFlags.baseURL, "base-url", "", "Listing URL of the first page.")
	f.IntVar(&scrapeFlags.pages, "pages", 0, "Number of pages to visit.")
	f.StringVar(&scrapeFlags.captchaMode, "captcha-mode", "", "CAPTCHA handling: auto or manual.")
	f.StringVar(&scrapeFlags.driver, "driver", "", "Storage driver: sqlite or postgres.")
	f.StringVar(&scrapeFlags.db, "db", "", "SQLite database file.")
	f.BoolVar(&scrapeFlags.headless, "headless", false, "Run Chrome without a window.")
	rootCmd.AddCommand(scrapeCmd)
}

func applyScrapeFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("base-url") {
		cfg.BaseURL = scrapeFlags.baseURL
	}
	if f.Changed("pages") {
		cfg.MaxPages = scrapeFlags.pages
	}
	if f.Changed("captcha-mode") {
		cfg.Captcha.Mode = scrapeFlags.captchaMode
	}
	if f.Changed("driver") {
		cfg.Storage.Driver = scrapeFlags.driver
	}
	if f.Changed("db") {
		cfg.Storage.SQLitePath = scrapeFlags.db
	}
	if f.Changed("headless") {
		cfg.Headless = scrapeFlags.headless
	}
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrapes the listing pages and stores every pet found.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(func(cfg *config.Config) { applyScrapeFlags(cmd, cfg) })
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		runID := uuid.New()
		utils.Info("Scraper starting | run=%s pages=%d captcha=%s store=%s",
			runID, cfg.MaxPages, cfg.Captcha.Mode, cfg.Storage.Driver)

		writer, err := storage.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("could not open storage: %w", err)
		}
		defer writer.Close()

		if err := writer.EnsureSchema(ctx); err != nil {
			return err
		}

		session, err := yad2.NewSession(cfg)
		if err != nil {
			return fmt.Errorf("could not start browser: %w", err)
		}
		defer session.Close()

		prompt := captcha.NewConsolePrompt(os.Stdin, os.Stdout)
		handler := captcha.NewHandler(session, newSolver(cfg), prompt, captcha.Options{
			AutoSolve:     cfg.Captcha.Mode == config.CaptchaAuto,
			FrameSelector: cfg.Selectors.CaptchaFrame,
			ResponseField: cfg.Captcha.ResponseField,
			Callback:      cfg.Captcha.Callback,
			PollInterval:  cfg.Captcha.PollInterval,
			MaxAttempts:   cfg.Captcha.MaxAttempts,
		})

		scraper := yad2.NewScraper(cfg, session, handler, writer, prompt)
		stats, err := scraper.Run(ctx)
		if err != nil {
			return fmt.Errorf("run %s aborted after %d pages: %w", runID, stats.Pages, err)
		}

		printSummary(stats)
		return nil
	},
}

// newSolver returns nil when automatic solving cannot be used.
func newSolver(cfg *config.Config) captcha.Solver {
	if cfg.Captcha.Mode != config.CaptchaAuto {
		return nil
	}
	if cfg.Captcha.APIKey == "" {
		utils.Warn("No solving service API key configured, CAPTCHAs will need manual solving")
		return nil
	}
	return captcha.NewClient(captcha.ClientOptions{
		APIKey:    cfg.Captcha.APIKey,
		SubmitURL: cfg.Captcha.SubmitURL,
		ResultURL: cfg.Captcha.ResultURL,
		Timeout:   cfg.Captcha.RequestTimeout,
	})
}

func printSummary(stats yad2.Stats) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════╗")
	fmt.Println("║                SCRAPE COMPLETE               ║")
	fmt.Println("╠══════════════════════════════════════════════╣")
	fmt.Printf("║  Pages visited  : %-26d║\n", stats.Pages)
	fmt.Printf("║  Pages skipped  : %-26d║\n", stats.PagesSkipped)
	fmt.Printf("║  Rows inserted  : %-26d║\n", stats.Inserted)
	fmt.Printf("║  Item errors    : %-26d║\n", stats.ItemErrors)
	fmt.Println("╚══════════════════════════════════════════════╝")
	fmt.Println()
}
