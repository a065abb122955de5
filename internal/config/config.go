package config

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv        = "NEWS_SCANNER_CONFIG"
	databaseDSNEnv       = "DATABASE_DSN"
	classifierAPIKeyEnv  = "CLASSIFIER_API_KEY"
	groqAPIKeyEnv        = "GROQ_API_KEY"
	classifierModelEnv   = "CLASSIFIER_MODEL"
	classifierDelayEnv   = "CLASSIFIER_DELAY"
	maxExpansionsEnv     = "MAX_EXPANSIONS"
	sinkKindEnv          = "SINK_KIND"
	sinkFilePathEnv      = "SINK_FILE_PATH"
	sinkRemoteURLEnv     = "SINK_REMOTE_URL"
	notionTokenEnv       = "NOTION_TOKEN"
	notionDatabaseIDEnv  = "NOTION_DATABASE_ID"
	telegramTokenEnv     = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv    = "TELEGRAM_CHAT_ID"
	logLevelEnv          = "LOG_LEVEL"
	logFormatEnv         = "LOG_FORMAT"
	schedulerIntervalEnv = "SCHEDULER_INTERVAL"
	browserExecPathEnv   = "BROWSER_EXEC_PATH"
	defaultSymbolPattern = `(?i)^NSE:[A-Z0-9]{2,10}$`
)

// Sink kinds accepted by SinkConfig.Kind.
const (
	SinkFile     = "file"
	SinkRemote   = "remote"
	SinkNotion   = "notion"
	SinkTelegram = "telegram"
)

// Classifier providers accepted by ClassifierConfig.Provider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Database   DatabaseConfig   `yaml:"database"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Browser    BrowserConfig    `yaml:"browser"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Conclusion ConclusionConfig `yaml:"conclusion"`
	Sink       SinkConfig       `yaml:"sink"`
	Sites      []SiteConfig     `yaml:"sites"`
}

// LoggingConfig selects slog level and handler format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DatabaseConfig describes the optional Postgres ledger. An empty DSN disables it.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig enables repeat mode when Interval is positive.
type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// BrowserConfig drives the headless browser session and the listing pagination.
type BrowserConfig struct {
	Headless          bool          `yaml:"headless"`
	NoSandbox         bool          `yaml:"noSandbox"`
	ExecPath          string        `yaml:"execPath"`
	UserAgent         string        `yaml:"userAgent"`
	NavigationTimeout time.Duration `yaml:"navigationTimeout"`
	IdleTimeout       time.Duration `yaml:"idleTimeout"`
	LoadMoreTimeout   time.Duration `yaml:"loadMoreTimeout"`
	ExpansionPause    time.Duration `yaml:"expansionPause"`
	MaxExpansions     int           `yaml:"maxExpansions"`
}

// ClassifierConfig defines how to contact the language model.
// An empty Endpoint means the provider default (Groq for "openai").
type ClassifierConfig struct {
	Provider          string        `yaml:"provider"`
	Endpoint          string        `yaml:"endpoint"`
	Model             string        `yaml:"model"`
	APIKey            string        `yaml:"apiKey"`
	Temperature       float64       `yaml:"temperature"`
	Timeout           time.Duration `yaml:"timeout"`
	Delay             time.Duration `yaml:"delay"`
	MaxHeadlineLength int           `yaml:"maxHeadlineLength"`
	SymbolPattern     string        `yaml:"symbolPattern"`
}

// Pattern compiles SymbolPattern; callers should run Validate first.
func (c ClassifierConfig) Pattern() *regexp.Regexp {
	pattern, err := regexp.Compile(c.SymbolPattern)
	if err != nil {
		return regexp.MustCompile(defaultSymbolPattern)
	}
	return pattern
}

// ConclusionConfig lists the selectors tried on an article page.
type ConclusionConfig struct {
	AnchorSelector   string        `yaml:"anchorSelector"`
	FallbackSelector string        `yaml:"fallbackSelector"`
	LoadTimeout      time.Duration `yaml:"loadTimeout"`
	WaitTimeout      time.Duration `yaml:"waitTimeout"`
}

// SinkConfig selects where finished records go.
type SinkConfig struct {
	Kind     string         `yaml:"kind"`
	File     FileSinkConfig `yaml:"file"`
	Remote   RemoteConfig   `yaml:"remote"`
	Notion   NotionConfig   `yaml:"notion"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// FileSinkConfig is the append-only text output.
type FileSinkConfig struct {
	Path string `yaml:"path"`
}

// RemoteConfig is the CMS endpoint receiving JSON records.
type RemoteConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// NotionConfig points at an existing Notion database.
type NotionConfig struct {
	Token      string `yaml:"token"`
	DatabaseID string `yaml:"databaseId"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SiteConfig describes a single listing with its scanner strategy.
type SiteConfig struct {
	Name    string            `yaml:"name"`
	Scanner string            `yaml:"scanner"`
	URL     string            `yaml:"url"`
	Options map[string]string `yaml:"options"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			cfg = defaultConfig()
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Sites) == 0 {
		cfg.Sites = defaultConfig().Sites
	}

	return cfg
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Classifier.APIKey == "" {
		return fmt.Errorf("classifier api key is required (set %s)", classifierAPIKeyEnv)
	}
	switch c.Classifier.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown classifier provider %q", c.Classifier.Provider)
	}
	if _, err := regexp.Compile(c.Classifier.SymbolPattern); err != nil {
		return fmt.Errorf("invalid symbol pattern: %w", err)
	}
	if c.Classifier.Delay < 0 {
		return fmt.Errorf("classifier delay cannot be negative")
	}
	if c.Browser.MaxExpansions < 0 {
		return fmt.Errorf("max expansions cannot be negative")
	}

	switch c.Sink.Kind {
	case SinkFile:
		if c.Sink.File.Path == "" {
			return fmt.Errorf("file sink requires a path")
		}
	case SinkRemote:
		if c.Sink.Remote.URL == "" {
			return fmt.Errorf("remote sink requires a url")
		}
	case SinkNotion:
		if c.Sink.Notion.Token == "" || c.Sink.Notion.DatabaseID == "" {
			return fmt.Errorf("notion sink requires token and database id")
		}
	case SinkTelegram:
		if c.Sink.Telegram.BotToken == "" || c.Sink.Telegram.ChatID == "" {
			return fmt.Errorf("telegram sink requires bot token and chat id")
		}
	default:
		return fmt.Errorf("unknown sink kind %q", c.Sink.Kind)
	}

	for _, site := range c.Sites {
		if site.URL == "" {
			return fmt.Errorf("site %s has no url", site.Name)
		}
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(groqAPIKeyEnv); v != "" {
		c.Classifier.APIKey = v
	}
	if v := os.Getenv(classifierAPIKeyEnv); v != "" {
		c.Classifier.APIKey = v
	}
	if v := os.Getenv(classifierModelEnv); v != "" {
		c.Classifier.Model = v
	}
	if v := os.Getenv(classifierDelayEnv); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Classifier.Delay = d
		} else {
			log.Printf("config: invalid %s=%q: %v", classifierDelayEnv, v, err)
		}
	}

	if v := os.Getenv(maxExpansionsEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Browser.MaxExpansions = n
		} else {
			log.Printf("config: invalid %s=%q: %v", maxExpansionsEnv, v, err)
		}
	}
	if v := os.Getenv(browserExecPathEnv); v != "" {
		c.Browser.ExecPath = v
	}

	if v := os.Getenv(sinkKindEnv); v != "" {
		c.Sink.Kind = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv(sinkFilePathEnv); v != "" {
		c.Sink.File.Path = v
	}
	if v := os.Getenv(sinkRemoteURLEnv); v != "" {
		c.Sink.Remote.URL = v
	}
	if v := os.Getenv(notionTokenEnv); v != "" {
		c.Sink.Notion.Token = v
	}
	if v := os.Getenv(notionDatabaseIDEnv); v != "" {
		c.Sink.Notion.DatabaseID = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Sink.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Sink.Telegram.ChatID = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(logFormatEnv); v != "" {
		c.Logging.Format = v
	}

	if v := os.Getenv(schedulerIntervalEnv); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Scheduler.Interval = d
		} else {
			log.Printf("config: invalid %s=%q: %v", schedulerIntervalEnv, v, err)
		}
	}
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Browser: BrowserConfig{
			Headless:          true,
			NoSandbox:         true,
			NavigationTimeout: 60 * time.Second,
			IdleTimeout:       30 * time.Second,
			LoadMoreTimeout:   5 * time.Second,
			ExpansionPause:    2 * time.Second,
			MaxExpansions:     5,
		},
		Classifier: ClassifierConfig{
			Provider:          ProviderOpenAI,
			Model:             "deepseek-r1-distill-llama-70b",
			Temperature:       0.1,
			Timeout:           30 * time.Second,
			Delay:             30 * time.Second,
			MaxHeadlineLength: 1000,
			SymbolPattern:     defaultSymbolPattern,
		},
		Conclusion: ConclusionConfig{
			AnchorSelector:   `[id^="conclusion-"]`,
			FallbackSelector: ".article-content p:last-of-type",
			LoadTimeout:      15 * time.Second,
			WaitTimeout:      5 * time.Second,
		},
		Sink: SinkConfig{
			Kind:   SinkFile,
			File:   FileSinkConfig{Path: "nse_news.txt"},
			Remote: RemoteConfig{Timeout: 15 * time.Second},
		},
		Sites: []SiteConfig{
			{
				Name:    "angelone",
				Scanner: "browser",
				URL:     "https://www.angelone.in/news",
				Options: map[string]string{
					"cardSelector":     "div.erblPH",
					"loadMoreSelector": "a.SfOz_M",
					"titleSelector":    "h4",
					"dateSelector":     "span",
				},
			},
		},
	}
}
