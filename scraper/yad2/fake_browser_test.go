package yad2

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"yad2-pets-scraper/captcha"
	"yad2-pets-scraper/config"
	"yad2-pets-scraper/utils"

	"github.com/PuerkitoBio/goquery"
)

// fakeBrowser serves static HTML per URL.
type fakeBrowser struct {
	pages       map[string]string
	navigateErr map[string]error
	waitErr     error
	visited     []string
	scripts     []string
	current     *goquery.Document
}

func newFakeBrowser(pages map[string]string) *fakeBrowser {
	return &fakeBrowser{pages: pages, navigateErr: map[string]error{}}
}

func (b *fakeBrowser) Navigate(ctx context.Context, url string) error {
	b.visited = append(b.visited, url)
	if err := b.navigateErr[url]; err != nil {
		return err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(b.pages[url]))
	if err != nil {
		return err
	}
	b.current = doc
	return nil
}

func (b *fakeBrowser) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if b.waitErr != nil {
		return b.waitErr
	}
	if b.current.Find(selector).Length() == 0 {
		return context.DeadlineExceeded
	}
	return nil
}

func (b *fakeBrowser) Query(ctx context.Context, selector string) (*goquery.Selection, error) {
	return b.current.Find(selector).First(), nil
}

func (b *fakeBrowser) QueryAll(ctx context.Context, selector string) (*goquery.Selection, error) {
	return b.current.Find(selector), nil
}

func (b *fakeBrowser) RunScript(ctx context.Context, js string, res any) error {
	b.scripts = append(b.scripts, js)
	return nil
}

type fakeChallenge struct {
	calls []string
	state captcha.State
	err   error
}

func (c *fakeChallenge) Handle(ctx context.Context, pageURL string) (captcha.State, error) {
	c.calls = append(c.calls, pageURL)
	return c.state, c.err
}

type fakeConfirmer struct {
	calls int
}

func (c *fakeConfirmer) Confirm(ctx context.Context, message string) error {
	c.calls++
	return nil
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.BaseURL = "https://www.yad2.co.il/pets/all"
	cfg.SettleDelay = 0
	cfg.WaitTimeout = time.Second
	return cfg
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := utils.Logger()
	utils.SetLogger(utils.NewLogger(&buf, slog.LevelDebug, false))
	t.Cleanup(func() { utils.SetLogger(prev) })
	return &buf
}

type item struct {
	description *string
	location    *string
	price       *string
}

func str(s string) *string { return &s }

// listingPage renders items the way the live site nests them.
func listingPage(items ...item) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="feed_list">`)
	for _, it := range items {
		b.WriteString(`<div class="feeditem table"><div class="cell-table">`)
		if it.description != nil {
			b.WriteString(`<div class="row-1">` + *it.description + `</div>`)
		}
		if it.location != nil {
			b.WriteString(`<div class="second-obj"><span class="val">` + *it.location + `</span></div>`)
		}
		if it.price != nil {
			b.WriteString(`<div class="third-obj"><div class="price">` + *it.price + `</div></div>`)
		}
		b.WriteString(`</div></div>`)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}
