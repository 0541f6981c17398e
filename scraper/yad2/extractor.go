package yad2

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"yad2-pets-scraper/config"
	"yad2-pets-scraper/models"
	"yad2-pets-scraper/utils"

	"github.com/PuerkitoBio/goquery"
)

// ErrContainerTimeout means no listing container showed up in time and the
// page was skipped.
var ErrContainerTimeout = errors.New("listing container did not appear")

var errNoDescription = errors.New("description element not found")

// ItemError is a listing item that could not be read. The rest of the page
// is unaffected.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

type Extractor struct {
	browser     Browser
	sel         config.Selectors
	waitTimeout time.Duration
	settleDelay time.Duration
	sleep       func(context.Context, time.Duration) error
}

func NewExtractor(browser Browser, cfg *config.Config) *Extractor {
	return &Extractor{
		browser:     browser,
		sel:         cfg.Selectors,
		waitTimeout: cfg.WaitTimeout,
		settleDelay: cfg.SettleDelay,
		sleep:       utils.Sleep,
	}
}

// Extract reads every listing item on the current page in document order.
// Items without a description are reported in the returned ItemErrors and
// skipped.
func (e *Extractor) Extract(ctx context.Context, pageURL string) ([]models.Pet, []*ItemError, error) {
	if err := e.browser.WaitFor(ctx, e.sel.Container, e.waitTimeout); err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, fmt.Errorf("failed waiting for listings on %s: %w", pageURL, err)
		}
		return nil, nil, fmt.Errorf("%w after %v: %v", ErrContainerTimeout, e.waitTimeout, err)
	}

	// client-side rendering keeps filling items in after the first one
	if err := e.sleep(ctx, e.settleDelay); err != nil {
		return nil, nil, err
	}

	items, err := e.browser.QueryAll(ctx, e.sel.Container)
	if err != nil {
		return nil, nil, err
	}

	var (
		pets   []models.Pet
		failed []*ItemError
	)
	items.Each(func(i int, item *goquery.Selection) {
		pet, err := e.ParseItem(item)
		if err != nil {
			itemErr := &ItemError{Index: i, Err: err}
			utils.Error("Error extracting data for one pet on %s: %v", pageURL, itemErr)
			failed = append(failed, itemErr)
			return
		}
		pets = append(pets, pet)
	})

	utils.Debug("Extracted %d of %d items from %s", len(pets), items.Length(), pageURL)
	return pets, failed, nil
}

// ParseItem reads one listing container. Location and price fall back to
// placeholders; a missing description is an error.
func (e *Extractor) ParseItem(item *goquery.Selection) (models.Pet, error) {
	description := item.Find(e.sel.Description).First()
	if description.Length() == 0 {
		return models.Pet{}, errNoDescription
	}

	return models.Pet{
		Description: strings.TrimSpace(description.Text()),
		Location:    textOr(item.Find(e.sel.Location).First(), models.NoLocation),
		Price:       textOr(item.Find(e.sel.Price).First(), models.NoPrice),
	}, nil
}

func textOr(s *goquery.Selection, fallback string) string {
	if s.Length() == 0 {
		return fallback
	}
	return strings.TrimSpace(s.Text())
}
