package yad2

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"yad2-pets-scraper/captcha"
	"yad2-pets-scraper/config"
	"yad2-pets-scraper/models"
	"yad2-pets-scraper/utils"
)

// Sink receives every extracted pet.
type Sink interface {
	Insert(ctx context.Context, pet models.Pet) (int64, error)
}

// ChallengeHandler clears a verification challenge from the current page.
type ChallengeHandler interface {
	Handle(ctx context.Context, pageURL string) (captcha.State, error)
}

// SinkError stops the run: a row that cannot be stored is not skipped.
type SinkError struct {
	URL   string
	Index int
	Err   error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("failed to store item %d from %s: %v", e.Index, e.URL, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

// Stats summarises a run.
type Stats struct {
	Pages        int
	PagesSkipped int
	Inserted     int
	ItemErrors   int
}

// PageURLs returns base followed by base with page=2..pages set in its
// query string.
func PageURLs(base string, pages int) ([]string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", base, err)
	}
	if pages < 1 {
		return nil, fmt.Errorf("page count must be at least 1, got %d", pages)
	}

	urls := make([]string, 0, pages)
	urls = append(urls, base)
	for n := 2; n <= pages; n++ {
		q := u.Query()
		q.Set("page", strconv.Itoa(n))
		next := *u
		next.RawQuery = q.Encode()
		urls = append(urls, next.String())
	}
	return urls, nil
}

// PageJobs pairs every URL from PageURLs with its 1-based page number.
func PageJobs(base string, pages int) ([]models.ScrapeJob, error) {
	urls, err := PageURLs(base, pages)
	if err != nil {
		return nil, err
	}
	jobs := make([]models.ScrapeJob, len(urls))
	for i, u := range urls {
		jobs[i] = models.ScrapeJob{URL: u, PageNumber: i + 1}
	}
	return jobs, nil
}

type Scraper struct {
	cfg       *config.Config
	browser   Browser
	challenge ChallengeHandler
	extractor *Extractor
	sink      Sink
	confirmer captcha.Confirmer

	insertAttempts int
	insertBackoff  time.Duration
}

// NewScraper wires the page loop. confirmer is only used when the first
// page pause is enabled and may be nil otherwise.
func NewScraper(cfg *config.Config, browser Browser, challenge ChallengeHandler, sink Sink, confirmer captcha.Confirmer) *Scraper {
	return &Scraper{
		cfg:            cfg,
		browser:        browser,
		challenge:      challenge,
		extractor:      NewExtractor(browser, cfg),
		sink:           sink,
		confirmer:      confirmer,
		insertAttempts: 3,
		insertBackoff:  200 * time.Millisecond,
	}
}

// Run visits every page in order. A page that fails is logged and skipped;
// only a storage failure or ctx cancellation ends the run early.
func (s *Scraper) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	jobs, err := PageJobs(s.cfg.BaseURL, s.cfg.MaxPages)
	if err != nil {
		return stats, err
	}

	utils.Info("Processing %d pages", len(jobs))

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		utils.Section(fmt.Sprintf("Page %d/%d", job.PageNumber, len(jobs)))
		result := s.ScrapePage(ctx, job)
		stats.Pages++
		stats.Inserted += len(result.Pets)
		stats.ItemErrors += result.ItemErrors

		if result.Error == nil {
			continue
		}

		var sinkErr *SinkError
		if errors.As(result.Error, &sinkErr) {
			return stats, result.Error
		}
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		stats.PagesSkipped++
		utils.Error("Page %d failed: %v", result.PageNumber, result.Error)
	}

	utils.Success("Pages: %d | Skipped: %d | Rows: %d | Item errors: %d",
		stats.Pages, stats.PagesSkipped, stats.Inserted, stats.ItemErrors)
	return stats, nil
}

// ScrapePage loads one page, clears any challenge, extracts its items and
// stores them one by one.
//
// With the first page pause enabled, the operator's confirmation on page 1
// replaces the challenge check for that page.
func (s *Scraper) ScrapePage(ctx context.Context, job models.ScrapeJob) models.ScrapeResult {
	pageURL := job.URL
	result := models.ScrapeResult{PageNumber: job.PageNumber, URL: pageURL}
	utils.Info("Scraping %s...", pageURL)

	if err := s.browser.Navigate(ctx, pageURL); err != nil {
		result.Error = err
		return result
	}

	if job.PageNumber == 1 && s.cfg.Captcha.PauseOnFirstPage && s.confirmer != nil {
		if err := s.confirmer.Confirm(ctx, "Solve the CAPTCHA and press Enter to continue..."); err != nil {
			result.Error = err
			return result
		}
	} else {
		state, err := s.challenge.Handle(ctx, pageURL)
		if err != nil {
			result.Error = fmt.Errorf("challenge not cleared: %w", err)
			return result
		}
		utils.Debug("Challenge state for %s: %s", pageURL, state)
	}

	pets, itemErrs, err := s.extractor.Extract(ctx, pageURL)
	result.ItemErrors = len(itemErrs)
	if err != nil {
		result.Error = err
		return result
	}

	for i, pet := range pets {
		// Retrying is safe as long as a failed Insert never leaves a row
		// behind; both writers commit a single statement per call.
		var id int64
		err := utils.Retry(ctx, s.insertAttempts, s.insertBackoff, func() error {
			var err error
			id, err = s.sink.Insert(ctx, pet)
			return err
		})
		if err != nil {
			result.Error = &SinkError{URL: pageURL, Index: i, Err: err}
			return result
		}

		pet.ID = id
		result.Pets = append(result.Pets, pet)
		utils.Info("Description: %s, Location: %s, Price: %s", pet.Description, pet.Location, pet.Price)
	}

	return result
}
