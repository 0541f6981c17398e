package yad2

import (
	"context"
	"fmt"
	"strings"
	"time"

	"yad2-pets-scraper/config"
	"yad2-pets-scraper/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

// Browser is what the navigator, extractor and challenge handler drive.
// Query and QueryAll read a snapshot of the rendered DOM; an empty
// selection means no match.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	Query(ctx context.Context, selector string) (*goquery.Selection, error)
	QueryAll(ctx context.Context, selector string) (*goquery.Selection, error)
	RunScript(ctx context.Context, js string, res any) error
}

// Session is a single Chrome tab controlled over the DevTools protocol.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	timeout     time.Duration
}

func NewSession(cfg *config.Config) (*Session, error) {
	utils.Info("Launching Chrome browser...")
	allocCtx, allocCancel := chromedp.NewExecAllocator(
		context.Background(),
		utils.BrowserOpts(cfg.Headless, cfg.WindowWidth, cfg.WindowHeight)...,
	)
	ctx, cancel := chromedp.NewContext(allocCtx)

	// The first Run starts the browser and ties its lifetime to ctx.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	utils.Success("Browser ready")
	return &Session{
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		timeout:     cfg.NavigateTimeout,
	}, nil
}

// Close shuts the browser down and waits for the process to exit.
func (s *Session) Close() {
	utils.Info("Closing browser...")
	if err := chromedp.Cancel(s.ctx); err != nil {
		utils.Warn("Browser did not close cleanly: %v", err)
	}
	s.cancel()
	s.allocCancel()
}

// run executes actions against the tab, bounded by timeout and by the
// caller's ctx.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, s.timeout, chromedp.Navigate(url), utils.HideWebDriver()); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	return nil
}

func (s *Session) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	return s.run(ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery))
}

func (s *Session) Query(ctx context.Context, selector string) (*goquery.Selection, error) {
	all, err := s.QueryAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	return all.First(), nil
}

func (s *Session) QueryAll(ctx context.Context, selector string) (*goquery.Selection, error) {
	doc, err := s.document(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Find(selector), nil
}

func (s *Session) RunScript(ctx context.Context, js string, res any) error {
	return s.run(ctx, s.timeout, chromedp.Evaluate(js, res))
}

func (s *Session) document(ctx context.Context) (*goquery.Document, error) {
	var html string
	if err := s.run(ctx, s.timeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("failed to read page html: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page html: %w", err)
	}
	return doc, nil
}
