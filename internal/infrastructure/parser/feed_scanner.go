package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/logging"
	"NewsScanner/internal/scanner"
)

// FeedScanner lists stubs from an RSS or Atom feed.
type FeedScanner struct {
	parser *gofeed.Parser
	logger *slog.Logger
}

var _ scanner.Scanner = (*FeedScanner)(nil)

// NewFeedScanner wires an HTTP client; nil defaults to a 20s timeout.
func NewFeedScanner(client *http.Client, logger *slog.Logger) *FeedScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if logger == nil {
		logger = logging.Discard()
	}

	fp := gofeed.NewParser()
	fp.Client = client
	fp.UserAgent = "NewsScanner/1.0"
	return &FeedScanner{parser: fp, logger: logger}
}

// Name identifies the strategy inside the registry.
func (f *FeedScanner) Name() string {
	return "feed"
}

// Scan reads the feed at req.URL. Items without a title are dropped.
func (f *FeedScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.ArticleStub, error) {
	feed, err := f.parser.ParseURLWithContext(req.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("site %s: parse feed: %w", req.SiteName, err)
	}

	stubs := make([]domain.ArticleStub, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		title := normalizeText(item.Title)
		if title == "" {
			continue
		}

		published := item.Published
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.Format("02 Jan 2006, 03:04 PM")
		}

		stubs = append(stubs, domain.ArticleStub{
			Title:          title,
			Link:           item.Link,
			PublishedLabel: normalizeText(published),
			Source:         req.SiteName,
		})
	}

	f.logger.Info("collected feed items", "site", req.SiteName, "count", len(stubs))
	return stubs, nil
}
