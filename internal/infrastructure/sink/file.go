package sink

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
)

// FileSink appends one pipe-delimited line per record.
type FileSink struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

var _ ports.Sink = (*FileSink)(nil)

// NewFileSink validates the output path. The file is created on first write.
func NewFileSink(path string, logger *slog.Logger) (*FileSink, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("file sink misconfigured: empty path")
	}
	return &FileSink{path: path, logger: logger}, nil
}

// Persist appends `symbol | company | date | headline | conclusion`.
func (s *FileSink) Persist(ctx context.Context, record domain.NewsRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}

	if _, err := f.WriteString(formatLine(record)); err != nil {
		_ = f.Close()
		return fmt.Errorf("append %s: %w", s.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", s.path, err)
	}

	s.logger.Info("record appended", "symbol", record.Symbol, "path", s.path)
	return nil
}

func formatLine(r domain.NewsRecord) string {
	fields := []string{r.Symbol, r.CompanyName, r.PublishedLabel, r.Headline, r.Conclusion}
	for i, f := range fields {
		fields[i] = strings.Join(strings.Fields(f), " ")
	}
	return strings.Join(fields, " | ") + "\n"
}
