package parser

import (
	"context"
	"fmt"
	"log/slog"

	"NewsScanner/internal/config"
	"NewsScanner/internal/domain"
	"NewsScanner/internal/logging"
	"NewsScanner/internal/ports"
	"NewsScanner/internal/scanner"
)

// StrategySource implements ArticleSource via registered scanner strategies.
type StrategySource struct {
	registry      *scanner.Registry
	sites         []config.SiteConfig
	maxExpansions int
	logger        *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, maxExpansions int, log *slog.Logger) *StrategySource {
	if log == nil {
		log = logging.Discard()
	}
	return &StrategySource{
		registry:      reg,
		sites:         sites,
		maxExpansions: maxExpansions,
		logger:        log,
	}
}

// FetchArticles iterates over configured sites and executes their scanners.
// Stubs are de-duplicated by link (or title when the link is empty), first occurrence wins.
func (s *StrategySource) FetchArticles(ctx context.Context) ([]domain.ArticleStub, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.logger.Debug("fetch articles", "sites", len(s.sites))

	seen := map[string]struct{}{}
	var aggregated []domain.ArticleStub
	for _, site := range s.sites {
		s.logger.Debug("process site", "site", site.Name, "scanner", site.Scanner)
		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", site.Name, err)
		}

		req := scanner.Request{
			SiteName:      site.Name,
			URL:           site.URL,
			MaxExpansions: s.maxExpansions,
			Options:       site.Options,
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("scan site %s: %w", site.Name, err)
		}

		for _, stub := range results {
			if stub.Source == "" {
				stub.Source = site.Name
			}
			key := stub.Link
			if key == "" {
				key = stub.Title
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			aggregated = append(aggregated, stub)
		}
		s.logger.Debug("site produced articles", "site", site.Name, "count", len(results))
	}

	s.logger.Debug("strategy source done", "total_articles", len(aggregated))
	return aggregated, nil
}
