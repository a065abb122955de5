package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"NewsScanner/internal/config"
	"NewsScanner/internal/infrastructure/browser"
	"NewsScanner/internal/logging"
)

const feedBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Markets</title>
<item><title>Reliance Industries posts record quarterly profit</title><link>https://example.org/reliance</link></item>
<item><title>Monsoon arrives early in Kerala</title><link>https://example.org/monsoon</link></item>
<item><title>Rupee steady against dollar</title><link>https://example.org/rupee</link></item>
</channel></rss>`

type fakeSession struct {
	closed atomic.Bool
}

func (f *fakeSession) NewPage(context.Context) (browser.Page, error) {
	return nil, errors.New("no tabs in tests")
}

func (f *fakeSession) Close() error {
	f.closed.Store(true)
	return nil
}

func chatServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		content := `{"company_name":null,"nsc":null,"confidence":null,"news_date":null}`
		if len(body.Messages) > 0 && strings.Contains(body.Messages[0].Content, "Headline: Reliance") {
			content = `{"company_name":"Reliance Industries","nsc":"NSE:RELIANCE","confidence":0.92,"news_date":"2024-03-28"}`
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1711584000,
			"model":   "test",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
}

func testConfig(t *testing.T, feedURL, chatURL string) config.Config {
	t.Helper()
	return config.Config{
		Classifier: config.ClassifierConfig{
			Provider:          config.ProviderOpenAI,
			Endpoint:          chatURL + "/",
			Model:             "test",
			APIKey:            "key",
			Temperature:       0.1,
			Timeout:           5 * time.Second,
			MaxHeadlineLength: 1000,
		},
		Sink: config.SinkConfig{
			Kind: config.SinkFile,
			File: config.FileSinkConfig{Path: filepath.Join(t.TempDir(), "news.txt")},
		},
		Sites: []config.SiteConfig{{Name: "markets", Scanner: "feed", URL: feedURL}},
	}
}

func newTestApp(t *testing.T, cfg config.Config, sess *fakeSession) *Application {
	t.Helper()
	a, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	a.openSession = func(context.Context, config.BrowserConfig, *slog.Logger) (session, error) {
		return sess, nil
	}
	return a
}

func TestRunOnceEndToEnd(t *testing.T) {
	t.Parallel()

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feedBody))
	}))
	defer feed.Close()
	chat := chatServer(t)
	defer chat.Close()

	cfg := testConfig(t, feed.URL, chat.URL)
	sess := &fakeSession{}
	a := newTestApp(t, cfg, sess)

	stats, err := a.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, stats.Collected)
	require.Equal(t, 1, stats.Relevant)
	require.Equal(t, 1, stats.Persisted)
	require.True(t, sess.closed.Load())

	raw, err := os.ReadFile(cfg.Sink.File.Path)
	require.NoError(t, err)
	require.Equal(t,
		"NSE:RELIANCE | Reliance Industries |  | Reliance Industries posts record quarterly profit | Conclusion not available\n",
		string(raw))
	require.NoError(t, a.Close())
}

func TestRunOnceBrowserStartFailure(t *testing.T) {
	t.Parallel()

	chat := chatServer(t)
	defer chat.Close()

	a, err := New(context.Background(), testConfig(t, "http://127.0.0.1:1", chat.URL), logging.Discard())
	require.NoError(t, err)
	a.openSession = func(context.Context, config.BrowserConfig, *slog.Logger) (session, error) {
		return nil, errors.New("chrome not found")
	}

	_, err = a.RunOnce(context.Background())
	require.ErrorContains(t, err, "start browser")
}

func TestRunOnceListingFailureClosesSession(t *testing.T) {
	t.Parallel()

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer feed.Close()
	chat := chatServer(t)
	defer chat.Close()

	sess := &fakeSession{}
	a := newTestApp(t, testConfig(t, feed.URL, chat.URL), sess)

	_, err := a.RunOnce(context.Background())
	require.Error(t, err)
	require.True(t, sess.closed.Load())
}

func TestRunScheduledStopsOnCancel(t *testing.T) {
	t.Parallel()

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feedBody))
	}))
	defer feed.Close()
	chat := chatServer(t)
	defer chat.Close()

	cfg := testConfig(t, feed.URL, chat.URL)
	cfg.Scheduler.Interval = time.Hour

	var opened atomic.Int32
	a, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	a.openSession = func(context.Context, config.BrowserConfig, *slog.Logger) (session, error) {
		opened.Add(1)
		return &fakeSession{}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool { return opened.Load() == 1 }, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestNewRejectsBrokenClassifier(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, "http://example.org/rss", "http://example.org")
	cfg.Classifier.APIKey = ""
	_, err := New(context.Background(), cfg, logging.Discard())
	require.Error(t, err)
}
