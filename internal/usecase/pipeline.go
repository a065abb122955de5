package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/logging"
	"NewsScanner/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source        ports.ArticleSource
	Classifier    ports.Classifier
	Conclusions   ports.ConclusionFetcher
	Sink          ports.Sink
	Repository    ports.HeadlineRepository
	SymbolPattern *regexp.Regexp
	Logger        *slog.Logger
}

// Pipeline implements the headline-ingestion workflow.
type Pipeline struct {
	source      ports.ArticleSource
	classifier  ports.Classifier
	conclusions ports.ConclusionFetcher
	sink        ports.Sink
	repository  ports.HeadlineRepository
	pattern     *regexp.Regexp
	logger      *slog.Logger
}

type outcome int

const (
	outcomeIrrelevant outcome = iota
	outcomePersisted
	outcomeFailed
)

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	pattern := deps.SymbolPattern
	if pattern == nil {
		pattern = domain.DefaultSymbolPattern
	}
	return &Pipeline{
		source:      deps.Source,
		classifier:  deps.Classifier,
		conclusions: deps.Conclusions,
		sink:        deps.Sink,
		repository:  deps.Repository,
		pattern:     pattern,
		logger:      logger,
	}
}

// Run collects headlines and pushes every relevant one through to the sink.
// Only a failure to list headlines is returned; per-article failures are counted in RunStats.
func (p *Pipeline) Run(ctx context.Context) (domain.RunStats, error) {
	var stats domain.RunStats
	if p.source == nil || p.classifier == nil || p.sink == nil {
		return stats, fmt.Errorf("pipeline misconfigured: source, classifier and sink are required")
	}

	stubs, err := p.source.FetchArticles(ctx)
	if err != nil {
		return stats, fmt.Errorf("fetch articles: %w", err)
	}
	stats.Collected = len(stubs)
	p.logger.Info("headlines collected", "count", len(stubs))

	skip := p.loadProcessed(ctx, stubs)

	for _, stub := range stubs {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("run interrupted", "error", err)
			break
		}
		if stub.Link != "" && skip[stub.Link] {
			stats.Skipped++
			continue
		}

		switch p.processArticle(ctx, stub, &stats) {
		case outcomePersisted:
			stats.Persisted++
		case outcomeFailed:
			stats.Failed++
		}
	}

	p.logger.Info("run finished",
		"collected", stats.Collected,
		"skipped", stats.Skipped,
		"classified", stats.Classified,
		"relevant", stats.Relevant,
		"persisted", stats.Persisted,
		"failed", stats.Failed,
	)
	return stats, nil
}

func (p *Pipeline) processArticle(ctx context.Context, stub domain.ArticleStub, stats *domain.RunStats) (result outcome) {
	log := p.logger.With("headline", stub.Title, "link", stub.Link)

	defer func() {
		if r := recover(); r != nil {
			log.Error("article processing panicked", "panic", r)
			result = outcomeFailed
		}
	}()

	cls, err := p.classifier.Classify(ctx, stub.Title)
	if err != nil {
		log.Warn("classification failed", "error", err)
		return outcomeFailed
	}
	stats.Classified++

	if !cls.IsRelevant(p.pattern) {
		log.Info("headline not relevant", "symbol", cls.Symbol, "confidence", cls.Confidence)
		p.remember(ctx, stub, cls, domain.StatusIrrelevant)
		return outcomeIrrelevant
	}
	stats.Relevant++

	conclusion := domain.ConclusionUnavailable
	if p.conclusions != nil {
		conclusion = p.conclusions.FetchConclusion(ctx, stub.Link)
	}

	record, err := domain.NewNewsRecord(stub, cls, conclusion, p.pattern)
	if err != nil {
		log.Warn("build record", "error", err)
		return outcomeFailed
	}

	if err := p.sink.Persist(ctx, record); err != nil {
		log.Warn("persist record failed", "symbol", record.Symbol, "error", err)
		return outcomeFailed
	}

	log.Info("record persisted", "symbol", record.Symbol, "confidence", record.Confidence)
	p.remember(ctx, stub, cls, domain.StatusDelivered)
	return outcomePersisted
}

func (p *Pipeline) loadProcessed(ctx context.Context, stubs []domain.ArticleStub) map[string]bool {
	if p.repository == nil || len(stubs) == 0 {
		return map[string]bool{}
	}

	links := make([]string, 0, len(stubs))
	for _, stub := range stubs {
		if stub.Link != "" {
			links = append(links, stub.Link)
		}
	}

	skip, err := p.repository.AlreadyProcessed(ctx, links)
	if err != nil {
		p.logger.Warn("load processed headlines", "error", err)
		return map[string]bool{}
	}
	return skip
}

func (p *Pipeline) remember(ctx context.Context, stub domain.ArticleStub, cls *domain.Classification, status domain.ProcessingStatus) {
	if p.repository == nil || stub.Link == "" {
		return
	}

	headline := domain.ProcessedHeadline{
		Link:   stub.Link,
		Title:  stub.Title,
		Status: status,
	}
	if cls != nil {
		headline.Symbol = cls.Symbol
		headline.Confidence = cls.Confidence
	}

	if err := p.repository.SaveProcessed(ctx, headline); err != nil {
		p.logger.Warn("save processed headline", "link", stub.Link, "error", err)
	}
}
