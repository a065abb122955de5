package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"NewsScanner/internal/config"
	"NewsScanner/internal/domain"
	"NewsScanner/internal/logging"
	"NewsScanner/internal/ports"
	"NewsScanner/internal/ratelimit"
)

// ErrNoClassification marks a request or response the pipeline must treat as "not relevant".
var ErrNoClassification = errors.New("no classification")

// completer sends one prompt to a provider and returns the first message content.
type completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Classifier implements ports.Classifier on top of a rate-limited completer.
type Classifier struct {
	completer completer
	limiter   *ratelimit.Limiter
	maxLen    int
	logger    *slog.Logger
}

var _ ports.Classifier = (*Classifier)(nil)

// NewClassifier picks the provider named in cfg and owns a limiter with cfg.Delay spacing.
func NewClassifier(cfg config.ClassifierConfig, logger *slog.Logger) (*Classifier, error) {
	if cfg.APIKey == "" || cfg.Model == "" {
		return nil, fmt.Errorf("classifier misconfigured")
	}

	var c completer
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		c = newOpenAICompleter(cfg)
	case config.ProviderAnthropic:
		c = newAnthropicCompleter(cfg)
	default:
		return nil, fmt.Errorf("unknown classifier provider %q", cfg.Provider)
	}

	return newClassifier(c, ratelimit.New(cfg.Delay), cfg.MaxHeadlineLength, logger), nil
}

func newClassifier(c completer, limiter *ratelimit.Limiter, maxLen int, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Classifier{completer: c, limiter: limiter, maxLen: maxLen, logger: logger}
}

// Classify asks the model about one headline. Any failure yields (nil, error wrapping ErrNoClassification).
func (c *Classifier) Classify(ctx context.Context, headline string) (*domain.Classification, error) {
	if c == nil || c.completer == nil {
		return nil, fmt.Errorf("%w: classifier is nil", ErrNoClassification)
	}

	headline = strings.TrimSpace(headline)
	if headline == "" {
		return nil, fmt.Errorf("%w: empty headline", ErrNoClassification)
	}

	release, err := c.limiter.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: wait for rate limit: %v", ErrNoClassification, err)
	}
	defer release()

	c.logger.Debug("classify headline", "provider", c.completer.Name(), "headline", truncateRunes(headline, 50))

	content, err := c.completer.Complete(ctx, buildPrompt(headline, c.maxLen))
	if err != nil {
		return nil, fmt.Errorf("%w: %s request: %v", ErrNoClassification, c.completer.Name(), err)
	}

	result, err := parseClassification(content)
	if err != nil {
		return nil, err
	}
	return result, nil
}
