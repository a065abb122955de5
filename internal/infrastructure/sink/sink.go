package sink

import (
	"fmt"
	"log/slog"

	"NewsScanner/internal/config"
	"NewsScanner/internal/logging"
	"NewsScanner/internal/ports"
)

// New selects the sink implementation configured by cfg.Kind.
func New(cfg config.SinkConfig, logger *slog.Logger) (ports.Sink, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	switch cfg.Kind {
	case config.SinkFile:
		return NewFileSink(cfg.File.Path, logger)
	case config.SinkRemote:
		return NewRemoteSink(cfg.Remote.URL, cfg.Remote.Timeout, logger)
	case config.SinkNotion:
		return NewNotionSink(cfg.Notion.Token, cfg.Notion.DatabaseID, logger)
	case config.SinkTelegram:
		return NewTelegramSink(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger)
	default:
		return nil, fmt.Errorf("unknown sink kind %q", cfg.Kind)
	}
}
