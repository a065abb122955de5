package domain

import (
	"errors"
	"regexp"
	"strings"
)

// RelevanceThreshold is the confidence a classification must strictly exceed.
const RelevanceThreshold = 0.8

// ConclusionUnavailable is stored when no conclusion paragraph could be scraped.
const ConclusionUnavailable = "Conclusion not available"

// DefaultSymbolPattern matches NSE listed symbols such as NSE:RELIANCE.
var DefaultSymbolPattern = regexp.MustCompile(`(?i)^NSE:[A-Z0-9]{2,10}$`)

// ErrNotRelevant is returned when a record is built from a classification that fails IsRelevant.
var ErrNotRelevant = errors.New("classification is not relevant")

// ArticleStub is a headline card extracted from a listing page.
type ArticleStub struct {
	Title          string
	Link           string
	PublishedLabel string
	Source         string
}

// Classification is the validated model verdict for a single headline.
// Empty strings stand for null values in the model output.
type Classification struct {
	CompanyName string
	Symbol      string
	Confidence  float64
	NewsDate    string
}

// IsRelevant reports whether the headline names a listed company with enough confidence.
func (c *Classification) IsRelevant(pattern *regexp.Regexp) bool {
	if c == nil || c.Symbol == "" {
		return false
	}
	if pattern == nil {
		pattern = DefaultSymbolPattern
	}
	return pattern.MatchString(c.Symbol) && c.Confidence > RelevanceThreshold
}

// NewsRecord is the terminal entity handed to a sink.
type NewsRecord struct {
	Symbol         string
	CompanyName    string
	PublishedLabel string
	Headline       string
	Conclusion     string
	Confidence     float64
	NewsDate       string
	Link           string
}

// NewNewsRecord combines a stub with its relevant classification and scraped conclusion.
func NewNewsRecord(stub ArticleStub, cls *Classification, conclusion string, pattern *regexp.Regexp) (NewsRecord, error) {
	if !cls.IsRelevant(pattern) {
		return NewsRecord{}, ErrNotRelevant
	}

	conclusion = strings.TrimSpace(conclusion)
	if conclusion == "" {
		conclusion = ConclusionUnavailable
	}

	return NewsRecord{
		Symbol:         strings.ToUpper(cls.Symbol),
		CompanyName:    cls.CompanyName,
		PublishedLabel: stub.PublishedLabel,
		Headline:       stub.Title,
		Conclusion:     conclusion,
		Confidence:     cls.Confidence,
		NewsDate:       cls.NewsDate,
		Link:           stub.Link,
	}, nil
}

// ProcessingStatus enumerates ledger milestones for a headline.
type ProcessingStatus string

const (
	StatusIrrelevant ProcessingStatus = "irrelevant"
	StatusRelevant   ProcessingStatus = "relevant"
	StatusDelivered  ProcessingStatus = "delivered"
)

// ProcessedHeadline is persisted to the ledger for cross-run de-duplication.
type ProcessedHeadline struct {
	Link       string
	Title      string
	Symbol     string
	Confidence float64
	Status     ProcessingStatus
}

// RunStats summarises one pipeline run.
type RunStats struct {
	Collected  int
	Skipped    int
	Classified int
	Relevant   int
	Persisted  int
	Failed     int
}
