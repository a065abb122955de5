package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
)

// RemoteSink posts records to a content-management endpoint.
type RemoteSink struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

var _ ports.Sink = (*RemoteSink)(nil)

type remotePayload struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Company    string  `json:"company"`
	NSC        string  `json:"nsc"`
	Confidence float64 `json:"confidence"`
	NewsDate   *string `json:"news_date"`
}

// NewRemoteSink creates a reusable HTTP client.
func NewRemoteSink(endpoint string, timeout time.Duration, logger *slog.Logger) (*RemoteSink, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("remote sink misconfigured: empty url")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RemoteSink{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}, nil
}

// Persist sends the record as JSON. Any non-2xx status is an error.
func (s *RemoteSink) Persist(ctx context.Context, record domain.NewsRecord) error {
	payload := remotePayload{
		Title:      record.Headline,
		Content:    record.Conclusion,
		Company:    record.CompanyName,
		NSC:        record.Symbol,
		Confidence: record.Confidence,
	}
	if record.NewsDate != "" {
		payload.NewsDate = &record.NewsDate
	}

	if err := s.post(ctx, payload); err != nil {
		return fmt.Errorf("remote sink: %w", err)
	}

	s.logger.Info("record stored remotely", "symbol", record.Symbol)
	return nil
}

func (s *RemoteSink) post(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, bytes.TrimSpace(snippet))
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
