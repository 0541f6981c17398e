// Package captcha detects reCAPTCHA challenges on the current page and gets
// them out of the way, either through a solving service or by handing the
// browser to the operator.
package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"yad2-pets-scraper/utils"

	"github.com/PuerkitoBio/goquery"
)

type State int

const (
	NotPresent State = iota
	// KeyMissing means a challenge frame exists but carries no site key.
	// It is handled like NotPresent but logged.
	KeyMissing
	AutoSolving
	AutoSolved
	ManualFallback
)

func (s State) String() string {
	switch s {
	case NotPresent:
		return "not_present"
	case KeyMissing:
		return "key_missing"
	case AutoSolving:
		return "auto_solving"
	case AutoSolved:
		return "auto_solved"
	case ManualFallback:
		return "manual_fallback"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Page is the part of a browser session the handler needs.
type Page interface {
	Query(ctx context.Context, selector string) (*goquery.Selection, error)
	RunScript(ctx context.Context, js string, res any) error
}

// Solver submits challenges to a solving service.
type Solver interface {
	Submit(ctx context.Context, siteKey, pageURL string) (string, error)
	Result(ctx context.Context, id string) (string, error)
}

// Confirmer blocks until the operator says the challenge is solved.
type Confirmer interface {
	Confirm(ctx context.Context, message string) error
}

type Options struct {
	// AutoSolve enables the solving service. When false every detected
	// challenge goes straight to the operator.
	AutoSolve     bool
	FrameSelector string
	ResponseField string
	Callback      string
	PollInterval  time.Duration
	MaxAttempts   int
}

type Handler struct {
	page      Page
	solver    Solver
	confirmer Confirmer
	opts      Options
	sleep     func(context.Context, time.Duration) error
}

// NewHandler wires a handler. solver may be nil, in which case automatic
// solving is disabled whatever opts says.
func NewHandler(page Page, solver Solver, confirmer Confirmer, opts Options) *Handler {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if solver == nil {
		opts.AutoSolve = false
	}
	return &Handler{
		page:      page,
		solver:    solver,
		confirmer: confirmer,
		opts:      opts,
		sleep:     utils.Sleep,
	}
}

// Handle inspects the page loaded from pageURL and returns the state the
// challenge ended in. It blocks until the challenge is gone or handed off.
// The error is non-nil only when the operator could not be asked.
func (h *Handler) Handle(ctx context.Context, pageURL string) (State, error) {
	frame, err := h.page.Query(ctx, h.opts.FrameSelector)
	if err != nil {
		utils.Warn("Could not inspect %s for a challenge: %v", pageURL, err)
		return NotPresent, nil
	}
	if frame.Length() == 0 {
		return NotPresent, nil
	}

	src, _ := frame.Attr("src")
	siteKey, ok := SiteKey(src)
	if !ok {
		utils.Warn("Challenge frame on %s has no site key (src=%q), continuing as if none", pageURL, src)
		return KeyMissing, nil
	}

	utils.Info("Challenge detected on %s (site key %s)", pageURL, siteKey)

	if h.opts.AutoSolve {
		token, err := h.solve(ctx, siteKey, pageURL)
		if err == nil {
			h.inject(ctx, token)
			return AutoSolved, nil
		}
		utils.Warn("Automatic challenge solving failed: %v", err)
	}

	return ManualFallback, h.manual(ctx)
}

func (h *Handler) solve(ctx context.Context, siteKey, pageURL string) (string, error) {
	id, err := h.solver.Submit(ctx, siteKey, pageURL)
	if err != nil {
		return "", fmt.Errorf("submit: %w", err)
	}
	utils.Info("Challenge request %s sent, waiting for solution...", id)

	for attempt := 1; attempt <= h.opts.MaxAttempts; attempt++ {
		if err := h.sleep(ctx, h.opts.PollInterval); err != nil {
			return "", err
		}

		token, err := h.solver.Result(ctx, id)
		if err == nil {
			utils.Success("Challenge solved after %d polls", attempt)
			return token, nil
		}
		if !errors.Is(err, ErrNotReady) {
			return "", fmt.Errorf("poll %d: %w", attempt, err)
		}
		utils.Debug("Waiting for challenge solution (%d/%d)", attempt, h.opts.MaxAttempts)
	}

	return "", fmt.Errorf("no solution after %d polls", h.opts.MaxAttempts)
}

// inject writes token into the response field and fires the page callback.
// Nothing confirms the page accepted it.
func (h *Handler) inject(ctx context.Context, token string) {
	quoted, _ := json.Marshal(token)
	field, _ := json.Marshal(h.opts.ResponseField)
	callback, _ := json.Marshal(h.opts.Callback)

	script := fmt.Sprintf(`(() => {
		const field = document.getElementById(%s);
		if (field) {
			field.innerHTML = %s;
			field.value = %s;
		}
		const cb = window[%s];
		if (typeof cb === 'function') {
			cb(%s);
			return true;
		}
		return false;
	})()`, field, quoted, quoted, callback, quoted)

	var called bool
	if err := h.page.RunScript(ctx, script, &called); err != nil {
		utils.Warn("Failed to inject challenge token: %v", err)
		return
	}
	if !called {
		utils.Warn("Challenge callback %s not found on page", h.opts.Callback)
	}
}

func (h *Handler) manual(ctx context.Context) error {
	if h.confirmer == nil {
		return fmt.Errorf("challenge needs manual solving but no operator prompt is configured")
	}
	return h.confirmer.Confirm(ctx, "Please solve the CAPTCHA in the browser window, then press Enter to continue...")
}
