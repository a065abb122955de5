package sink

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramSink sends each record to a Telegram chat via bot API.
type TelegramSink struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.Sink = (*TelegramSink)(nil)

// NewTelegramSink registers bot token and chat identifier.
func NewTelegramSink(botToken, chatID string, logger *slog.Logger) (*TelegramSink, error) {
	if botToken == "" || chatID == "" {
		return nil, fmt.Errorf("telegram sink misconfigured")
	}
	return &TelegramSink{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  telegramAPIBase,
		client:   &http.Client{Timeout: 5 * time.Second},
		logger:   logger,
	}, nil
}

// Persist posts a Markdown message to Telegram.
func (n *TelegramSink) Persist(ctx context.Context, record domain.NewsRecord) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", buildMessage(record))
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	n.logger.Info("record sent to telegram", "symbol", record.Symbol)
	return nil
}

// markdownEscaper escapes the characters legacy Telegram Markdown treats as entity delimiters.
var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// entityStripper removes delimiters from text placed inside an entity, where escaping is not allowed.
var entityStripper = strings.NewReplacer("_", "", "*", "", "`", "", "[", "")

func buildMessage(r domain.NewsRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s* (%s)\n", entityStripper.Replace(r.Symbol), markdownEscaper.Replace(r.CompanyName))
	b.WriteString(markdownEscaper.Replace(r.Headline))
	b.WriteString("\n")
	if label := entityStripper.Replace(r.PublishedLabel); label != "" {
		fmt.Fprintf(&b, "_%s_\n", label)
	}
	fmt.Fprintf(&b, "\n%s\n", markdownEscaper.Replace(r.Conclusion))
	if r.Link != "" {
		b.WriteString(markdownEscaper.Replace(r.Link))
	}
	return strings.TrimRight(b.String(), "\n")
}
