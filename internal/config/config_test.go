package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		configPathEnv, databaseDSNEnv, classifierAPIKeyEnv, groqAPIKeyEnv, classifierModelEnv,
		classifierDelayEnv, maxExpansionsEnv, sinkKindEnv, sinkFilePathEnv, sinkRemoteURLEnv,
		notionTokenEnv, notionDatabaseIDEnv, telegramTokenEnv, telegramChatIDEnv, logLevelEnv,
		logFormatEnv, schedulerIntervalEnv, browserExecPathEnv,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	require.Equal(t, 5, cfg.Browser.MaxExpansions)
	require.Equal(t, 30*time.Second, cfg.Classifier.Delay)
	require.Equal(t, "deepseek-r1-distill-llama-70b", cfg.Classifier.Model)
	require.Equal(t, SinkFile, cfg.Sink.Kind)
	require.Equal(t, "nse_news.txt", cfg.Sink.File.Path)
	require.Empty(t, cfg.Classifier.APIKey)
	require.Len(t, cfg.Sites, 1)
	require.Equal(t, "browser", cfg.Sites[0].Scanner)
	require.True(t, cfg.Classifier.Pattern().MatchString("nse:reliance"))
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(groqAPIKeyEnv, "groq-key")
	t.Setenv(classifierModelEnv, "llama-3.3-70b")
	t.Setenv(classifierDelayEnv, "2s")
	t.Setenv(maxExpansionsEnv, "7")
	t.Setenv(sinkKindEnv, "Remote")
	t.Setenv(sinkRemoteURLEnv, "https://cms.example.org/news")
	t.Setenv(schedulerIntervalEnv, "1h")

	cfg := Load()

	require.Equal(t, "groq-key", cfg.Classifier.APIKey)
	require.Equal(t, "llama-3.3-70b", cfg.Classifier.Model)
	require.Equal(t, 2*time.Second, cfg.Classifier.Delay)
	require.Equal(t, 7, cfg.Browser.MaxExpansions)
	require.Equal(t, SinkRemote, cfg.Sink.Kind)
	require.Equal(t, "https://cms.example.org/news", cfg.Sink.Remote.URL)
	require.Equal(t, time.Hour, cfg.Scheduler.Interval)
	require.NoError(t, cfg.Validate())
}

func TestClassifierKeyEnvWinsOverGroqKey(t *testing.T) {
	clearEnv(t)
	t.Setenv(groqAPIKeyEnv, "groq-key")
	t.Setenv(classifierAPIKeyEnv, "explicit-key")

	cfg := Load()
	require.Equal(t, "explicit-key", cfg.Classifier.APIKey)
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
classifier:
  model: custom-model
  delay: 45s
  symbolPattern: "(?i)^BSE:[0-9]{6}$"
browser:
  maxExpansions: 2
sink:
  kind: telegram
  telegram:
    botToken: token
    chatId: "42"
sites:
  - name: feed
    scanner: feed
    url: https://example.org/rss
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	t.Setenv(configPathEnv, path)
	t.Setenv(classifierAPIKeyEnv, "key")

	cfg := Load()

	require.Equal(t, "custom-model", cfg.Classifier.Model)
	require.Equal(t, 45*time.Second, cfg.Classifier.Delay)
	require.Equal(t, 2, cfg.Browser.MaxExpansions)
	require.Equal(t, 5*time.Second, cfg.Browser.LoadMoreTimeout, "unset keys keep defaults")
	require.Equal(t, SinkTelegram, cfg.Sink.Kind)
	require.Equal(t, "42", cfg.Sink.Telegram.ChatID)
	require.Len(t, cfg.Sites, 1)
	require.Equal(t, "feed", cfg.Sites[0].Scanner)
	require.True(t, cfg.Classifier.Pattern().MatchString("BSE:500325"))
	require.NoError(t, cfg.Validate())
}

func TestLoadBrokenYAMLFallsBack(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("classifier: [unterminated"), 0o600))
	t.Setenv(configPathEnv, path)

	cfg := Load()
	require.Equal(t, "deepseek-r1-distill-llama-70b", cfg.Classifier.Model)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := defaultConfig()
	base.Classifier.APIKey = "key"
	require.NoError(t, base.Validate())

	noKey := defaultConfig()
	require.Error(t, noKey.Validate())

	badSink := base
	badSink.Sink.Kind = "ftp"
	require.Error(t, badSink.Validate())

	remote := base
	remote.Sink.Kind = SinkRemote
	require.Error(t, remote.Validate())

	badPattern := base
	badPattern.Classifier.SymbolPattern = "("
	require.Error(t, badPattern.Validate())

	badProvider := base
	badProvider.Classifier.Provider = "cohere"
	require.Error(t, badProvider.Validate())
}
