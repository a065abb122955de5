package parser

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"NewsScanner/internal/config"
	"NewsScanner/internal/domain"
	"NewsScanner/internal/infrastructure/browser"
	"NewsScanner/internal/logging"
	"NewsScanner/internal/ports"
)

// extractionStrategy is one way of finding the conclusion in an article document.
// When wait is set the strategy is skipped unless that selector shows up in time.
type extractionStrategy struct {
	name    string
	wait    string
	extract func(doc *goquery.Document) (string, bool)
}

// ConclusionScraper implements ports.ConclusionFetcher with an ordered list of strategies.
type ConclusionScraper struct {
	browser    browser.Browser
	strategies []extractionStrategy
	cfg        config.ConclusionConfig
	logger     *slog.Logger
}

var _ ports.ConclusionFetcher = (*ConclusionScraper)(nil)

// NewConclusionScraper tries the anchor selector first and the fallback selector second.
func NewConclusionScraper(b browser.Browser, cfg config.ConclusionConfig, logger *slog.Logger) *ConclusionScraper {
	if logger == nil {
		logger = logging.Discard()
	}

	var strategies []extractionStrategy
	if cfg.AnchorSelector != "" {
		strategies = append(strategies, anchorParagraph(cfg.AnchorSelector))
	}
	if cfg.FallbackSelector != "" {
		strategies = append(strategies, lastMatch(cfg.FallbackSelector))
	}

	return &ConclusionScraper{browser: b, strategies: strategies, cfg: cfg, logger: logger}
}

// FetchConclusion returns the first strategy hit or domain.ConclusionUnavailable.
// The article tab is always closed before returning.
func (s *ConclusionScraper) FetchConclusion(ctx context.Context, articleURL string) string {
	if s.browser == nil || strings.TrimSpace(articleURL) == "" {
		return domain.ConclusionUnavailable
	}

	page, err := s.browser.NewPage(ctx)
	if err != nil {
		s.logger.Warn("open article tab", "url", articleURL, "error", err)
		return domain.ConclusionUnavailable
	}
	defer page.Close()

	if err := page.Navigate(ctx, articleURL, s.cfg.LoadTimeout); err != nil {
		// partial documents can still carry the fallback paragraph
		s.logger.Warn("article navigation", "url", articleURL, "error", err)
	}

	var doc *goquery.Document
	for _, strategy := range s.strategies {
		if strategy.wait != "" {
			if err := page.WaitFor(ctx, strategy.wait, s.cfg.WaitTimeout); err != nil {
				s.logger.Debug("strategy skipped", "strategy", strategy.name, "url", articleURL, "error", err)
				continue
			}
		}

		if doc == nil {
			doc, err = documentOf(ctx, page)
			if err != nil {
				s.logger.Warn("read article document", "url", articleURL, "error", err)
				return domain.ConclusionUnavailable
			}
		}

		if text, ok := strategy.extract(doc); ok {
			s.logger.Debug("conclusion scraped", "strategy", strategy.name, "url", articleURL)
			return text
		}
	}

	s.logger.Info("conclusion not found", "url", articleURL)
	return domain.ConclusionUnavailable
}

func documentOf(ctx context.Context, page browser.Page) (*goquery.Document, error) {
	html, err := page.HTML(ctx)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// anchorParagraph reads the paragraph immediately following the anchor element.
func anchorParagraph(selector string) extractionStrategy {
	return extractionStrategy{
		name: "anchor",
		wait: selector,
		extract: func(doc *goquery.Document) (string, bool) {
			next := doc.Find(selector).First().Next()
			if next.Length() == 0 || goquery.NodeName(next) != "p" {
				return "", false
			}
			text := normalizeText(next.Text())
			return text, text != ""
		},
	}
}

// lastMatch reads the text of the last element matching selector.
func lastMatch(selector string) extractionStrategy {
	return extractionStrategy{
		name: "fallback",
		extract: func(doc *goquery.Document) (string, bool) {
			text := normalizeText(doc.Find(selector).Last().Text())
			return text, text != ""
		},
	}
}
