package ports

import (
	"context"
	"time"

	"NewsScanner/internal/domain"
)

// ArticleSource lists headline stubs from the configured news sites.
type ArticleSource interface {
	FetchArticles(ctx context.Context) ([]domain.ArticleStub, error)
}

// Classifier asks a language model whether a headline concerns a listed company.
type Classifier interface {
	Classify(ctx context.Context, headline string) (*domain.Classification, error)
}

// ConclusionFetcher scrapes the conclusion paragraph of an article.
// It degrades to domain.ConclusionUnavailable instead of failing.
type ConclusionFetcher interface {
	FetchConclusion(ctx context.Context, articleURL string) string
}

// Sink persists a finished record (file, CMS endpoint, Notion, Telegram).
type Sink interface {
	Persist(ctx context.Context, record domain.NewsRecord) error
}

// HeadlineRepository remembers headlines handled by earlier runs.
type HeadlineRepository interface {
	AlreadyProcessed(ctx context.Context, links []string) (map[string]bool, error)
	SaveProcessed(ctx context.Context, headline domain.ProcessedHeadline) error
}

// Scheduler controls when runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
