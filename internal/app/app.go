package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"NewsScanner/internal/config"
	"NewsScanner/internal/domain"
	"NewsScanner/internal/infrastructure/browser"
	"NewsScanner/internal/infrastructure/llm"
	"NewsScanner/internal/infrastructure/parser"
	"NewsScanner/internal/infrastructure/scheduler"
	"NewsScanner/internal/infrastructure/sink"
	"NewsScanner/internal/infrastructure/storage"
	"NewsScanner/internal/logging"
	"NewsScanner/internal/ports"
	"NewsScanner/internal/scanner"
	"NewsScanner/internal/usecase"
)

const shutdownTimeout = 2 * time.Minute

// session is a browser owned by one run.
type session interface {
	browser.Browser
	Close() error
}

type sessionOpener func(ctx context.Context, cfg config.BrowserConfig, logger *slog.Logger) (session, error)

func openChrome(ctx context.Context, cfg config.BrowserConfig, logger *slog.Logger) (session, error) {
	s, err := browser.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg         config.Config
	logger      *slog.Logger
	classifier  ports.Classifier
	sink        ports.Sink
	db          *sql.DB
	repository  ports.HeadlineRepository
	openSession sessionOpener
}

// New builds the long-lived collaborators: classifier, sink and the optional ledger.
// The browser is started per run.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	classifier, err := llm.NewClassifier(cfg.Classifier, baseLogger.With("component", "classifier"))
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}

	out, err := sink.New(cfg.Sink, baseLogger.With("component", "sink."+cfg.Sink.Kind))
	if err != nil {
		return nil, fmt.Errorf("sink: %w", err)
	}

	a := &Application{
		cfg:         cfg,
		logger:      baseLogger,
		classifier:  classifier,
		sink:        out,
		openSession: openChrome,
	}

	if cfg.Database.DSN != "" {
		db, err := storage.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("ledger: %w", err)
		}
		repo := storage.NewPostgresRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ledger: %w", err)
		}
		a.db = db
		a.repository = repo
		baseLogger.Info("headline ledger enabled")
	}

	return a, nil
}

// Close releases the ledger connection.
func (a *Application) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

// RunOnce starts a browser session, runs the pipeline and always closes the session.
func (a *Application) RunOnce(ctx context.Context) (domain.RunStats, error) {
	runLogger := a.logger.With("run_id", uuid.NewString())
	started := time.Now()
	runLogger.Info("run started", "sites", len(a.cfg.Sites), "sink", a.cfg.Sink.Kind)

	sess, err := a.openSession(ctx, a.cfg.Browser, runLogger.With("component", "browser"))
	if err != nil {
		return domain.RunStats{}, fmt.Errorf("start browser: %w", err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			runLogger.Warn("close browser", "error", cerr)
		}
	}()

	registry := scanner.NewRegistry()
	registry.Register(parser.NewBrowserScanner(sess, a.cfg.Browser, runLogger.With("component", "scanner.browser")))
	registry.Register(parser.NewFeedScanner(nil, runLogger.With("component", "scanner.feed")))

	source := parser.NewStrategySource(registry, a.cfg.Sites, a.cfg.Browser.MaxExpansions, runLogger.With("component", "source"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:        source,
		Classifier:    a.classifier,
		Conclusions:   parser.NewConclusionScraper(sess, a.cfg.Conclusion, runLogger.With("component", "conclusion")),
		Sink:          a.sink,
		Repository:    a.repository,
		SymbolPattern: a.cfg.Classifier.Pattern(),
		Logger:        runLogger.With("component", "pipeline"),
	})

	stats, err := pipeline.Run(ctx)
	if err != nil {
		runLogger.Error("run failed", "error", err, "elapsed", time.Since(started))
		return stats, err
	}
	runLogger.Info("run completed", "elapsed", time.Since(started))
	return stats, nil
}

// Run performs a single run, or repeats it on the configured interval until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if a.cfg.Scheduler.Interval <= 0 {
		_, err := a.RunOnce(ctx)
		return err
	}

	a.logger.Info("scheduler enabled", "interval", a.cfg.Scheduler.Interval)
	run := func(ctx context.Context) error {
		_, err := a.RunOnce(ctx)
		return err
	}
	onErr := func(err error) {
		a.logger.Error("scheduled run failed", "error", err)
	}

	s := usecase.NewScheduler(scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval), run, onErr)
	return s.RunUntilDone(ctx, shutdownTimeout)
}
