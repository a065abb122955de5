package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"NewsScanner/internal/config"
	"NewsScanner/internal/domain"
	"NewsScanner/internal/scanner"
)

type stubScanner struct {
	name  string
	stubs []domain.ArticleStub
	err   error
	reqs  []scanner.Request
}

func (s *stubScanner) Name() string { return s.name }

func (s *stubScanner) Scan(_ context.Context, req scanner.Request) ([]domain.ArticleStub, error) {
	s.reqs = append(s.reqs, req)
	return s.stubs, s.err
}

func TestStrategySourceAggregatesAndDeduplicates(t *testing.T) {
	t.Parallel()

	browserScanner := &stubScanner{name: "browser", stubs: []domain.ArticleStub{
		{Title: "A", Link: "https://x/a"},
		{Title: "B", Link: "https://x/b"},
	}}
	feedScanner := &stubScanner{name: "feed", stubs: []domain.ArticleStub{
		{Title: "A again", Link: "https://x/a", Source: "feed-site"},
		{Title: "C", Link: "https://x/c", Source: "feed-site"},
	}}

	reg := scanner.NewRegistry()
	reg.Register(browserScanner)
	reg.Register(feedScanner)

	src := NewStrategySource(reg, []config.SiteConfig{
		{Name: "portal", Scanner: "browser", URL: "https://x/news", Options: map[string]string{"cardSelector": "div.c"}},
		{Name: "feed-site", Scanner: "feed", URL: "https://x/rss"},
	}, 4, nil)

	stubs, err := src.FetchArticles(context.Background())
	require.NoError(t, err)
	require.Len(t, stubs, 3)
	require.Equal(t, "portal", stubs[0].Source)
	require.Equal(t, "C", stubs[2].Title)

	require.Len(t, browserScanner.reqs, 1)
	require.Equal(t, 4, browserScanner.reqs[0].MaxExpansions)
	require.Equal(t, "div.c", browserScanner.reqs[0].Option("cardSelector", ""))
}

func TestStrategySourceUnknownScanner(t *testing.T) {
	t.Parallel()

	src := NewStrategySource(scanner.NewRegistry(), []config.SiteConfig{{Name: "x", Scanner: "ftp"}}, 0, nil)
	_, err := src.FetchArticles(context.Background())
	require.Error(t, err)
}

func TestStrategySourceScanErrorIsFatal(t *testing.T) {
	t.Parallel()

	reg := scanner.NewRegistry()
	reg.Register(&stubScanner{name: "browser", err: errTabCrashed})

	src := NewStrategySource(reg, []config.SiteConfig{{Name: "portal", Scanner: "browser", URL: "u"}}, 1, nil)
	_, err := src.FetchArticles(context.Background())
	require.ErrorIs(t, err, errTabCrashed)
}
