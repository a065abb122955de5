package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"NewsScanner/internal/config"
	"NewsScanner/internal/domain"
	"NewsScanner/internal/infrastructure/browser"
	"NewsScanner/internal/logging"
	"NewsScanner/internal/scanner"
)

// BrowserScanner renders a listing in a browser tab, expands it through its "load more"
// control and extracts article cards from the resulting DOM.
type BrowserScanner struct {
	browser browser.Browser
	cfg     config.BrowserConfig
	logger  *slog.Logger
}

var _ scanner.Scanner = (*BrowserScanner)(nil)

// NewBrowserScanner wires a browser session with pagination timings.
func NewBrowserScanner(b browser.Browser, cfg config.BrowserConfig, logger *slog.Logger) *BrowserScanner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &BrowserScanner{browser: b, cfg: cfg, logger: logger}
}

// Name identifies the strategy inside the registry.
func (b *BrowserScanner) Name() string {
	return "browser"
}

// Scan opens req.URL, expands the listing up to req.MaxExpansions times and returns the stubs.
// Navigation failures are returned; expansion failures only stop the expansion loop.
func (b *BrowserScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.ArticleStub, error) {
	if b.browser == nil {
		return nil, fmt.Errorf("browser scanner misconfigured")
	}

	page, err := b.browser.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", req.SiteName, err)
	}
	defer page.Close()

	if err := page.Navigate(ctx, req.URL, b.cfg.NavigationTimeout); err != nil {
		return nil, fmt.Errorf("site %s: %w", req.SiteName, err)
	}
	if err := page.WaitIdle(ctx, b.cfg.IdleTimeout); err != nil {
		b.logger.Debug("listing did not settle", "site", req.SiteName, "error", err)
	}

	expansions := b.expand(ctx, page, req)
	b.logger.Info("listing expanded", "site", req.SiteName, "expansions", expansions)

	html, err := page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", req.SiteName, err)
	}

	pageURL := req.URL
	if current, err := page.URL(ctx); err == nil && current != "" {
		pageURL = current
	}

	stubs, err := parseListing(html, pageURL, req.SiteName, listingSelectors{
		Card:  req.Option("cardSelector", defaultCardSelector),
		Title: req.Option("titleSelector", defaultTitleSelector),
		Date:  req.Option("dateSelector", defaultDateSelector),
	})
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", req.SiteName, err)
	}

	b.logger.Info("collected articles", "site", req.SiteName, "count", len(stubs))
	return stubs, nil
}

// expand clicks the load-more control until it disappears, a click fails or the limit is hit.
func (b *BrowserScanner) expand(ctx context.Context, page browser.Page, req scanner.Request) int {
	selector := req.Option("loadMoreSelector", defaultLoadMoreSelector)

	expansions := 0
	for i := 0; i < req.MaxExpansions; i++ {
		if err := page.Click(ctx, selector, b.cfg.LoadMoreTimeout); err != nil {
			if errors.Is(err, browser.ErrNotFound) {
				b.logger.Debug("no more load-more controls", "site", req.SiteName, "iteration", i+1)
			} else {
				b.logger.Warn("load-more failed", "site", req.SiteName, "iteration", i+1, "error", err)
			}
			break
		}
		expansions++

		if err := page.WaitIdle(ctx, b.cfg.IdleTimeout); err != nil {
			b.logger.Warn("listing did not settle after expansion", "site", req.SiteName, "error", err)
			break
		}
		if err := browser.Pause(ctx, b.cfg.ExpansionPause); err != nil {
			break
		}
	}
	return expansions
}
