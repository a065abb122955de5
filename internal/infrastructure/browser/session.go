package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"NewsScanner/internal/config"
	"NewsScanner/internal/logging"
)

const (
	idleQuietWindow = 500 * time.Millisecond
	// documentReadTimeout bounds DOM reads when the session has no navigation timeout.
	documentReadTimeout = 30 * time.Second
)

// Session owns one headless Chrome process for the duration of a run.
type Session struct {
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	readTimeout   time.Duration
	logger        *slog.Logger

	closeOnce sync.Once
}

var _ Browser = (*Session)(nil)

// Open launches the browser; callers must Close the session on every exit path.
func Open(ctx context.Context, cfg config.BrowserConfig, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox, chromedp.Flag("disable-setuid-sandbox", true))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// the first Run starts the browser process
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	logger.Debug("browser started", "headless", cfg.Headless)
	return &Session{
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
		readTimeout:   cfg.NavigationTimeout,
		logger:        logger,
	}, nil
}

// NewPage opens a fresh tab that tracks in-flight requests for WaitIdle.
func (s *Session) NewPage(ctx context.Context) (Page, error) {
	if s == nil || s.browserCtx == nil {
		return nil, fmt.Errorf("browser session is not open")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tabCtx, cancel := chromedp.NewContext(s.browserCtx)
	p := &chromePage{ctx: tabCtx, cancel: cancel, readTimeout: s.readTimeout}

	chromedp.ListenTarget(tabCtx, p.onEvent)
	if err := chromedp.Run(tabCtx, network.Enable()); err != nil {
		cancel()
		return nil, fmt.Errorf("open tab: %w", err)
	}
	return p, nil
}

// Close shuts down the browser process. Safe to call more than once.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		s.cancelBrowser()
		s.cancelAlloc()
		s.logger.Debug("browser closed")
	})
	return nil
}

type chromePage struct {
	ctx         context.Context
	cancel      context.CancelFunc
	readTimeout time.Duration

	mu         sync.Mutex
	inflight   map[network.RequestID]struct{}
	lastChange time.Time
	closeOnce  sync.Once
}

func (p *chromePage) onEvent(ev any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inflight == nil {
		p.inflight = map[network.RequestID]struct{}{}
	}

	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		p.inflight[e.RequestID] = struct{}{}
	case *network.EventLoadingFinished:
		delete(p.inflight, e.RequestID)
	case *network.EventLoadingFailed:
		delete(p.inflight, e.RequestID)
	default:
		return
	}
	p.lastChange = time.Now()
}

func (p *chromePage) readLimit() time.Duration {
	if p.readTimeout > 0 {
		return p.readTimeout
	}
	return documentReadTimeout
}

func (p *chromePage) idleSince() (bool, time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inflight) == 0, p.lastChange
}

func (p *chromePage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := p.scoped(ctx, timeout)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// scoped derives a context from the tab so chromedp can find its target, bounded by
// both the caller's ctx and timeout. Cancelling it does not close the tab.
func (p *chromePage) scoped(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(p.ctx)
	stop := context.AfterFunc(ctx, cancel)
	if timeout > 0 {
		var cancelTimeout context.CancelFunc
		runCtx, cancelTimeout = context.WithTimeout(runCtx, timeout)
		return runCtx, func() {
			cancelTimeout()
			stop()
			cancel()
		}
	}
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (p *chromePage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if err := p.run(ctx, timeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (p *chromePage) WaitIdle(ctx context.Context, timeout time.Duration) error {
	runCtx, cancel := p.scoped(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	// the quiet window starts no earlier than the call itself
	start := time.Now()
	for {
		idle, since := p.idleSince()
		if since.Before(start) {
			since = start
		}
		if idle && time.Since(since) >= idleQuietWindow {
			return nil
		}
		select {
		case <-ticker.C:
		case <-runCtx.Done():
			return fmt.Errorf("wait for network idle: %w", runCtx.Err())
		}
	}
}

func (p *chromePage) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	err := p.run(ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery))
	return notFound(selector, err)
}

func (p *chromePage) Click(ctx context.Context, selector string, timeout time.Duration) error {
	err := p.run(ctx, timeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible),
	)
	return notFound(selector, err)
}

func (p *chromePage) HTML(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, p.readLimit(), chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return html, nil
}

func (p *chromePage) URL(ctx context.Context) (string, error) {
	var location string
	if err := p.run(ctx, p.readLimit(), chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return location, nil
}

func (p *chromePage) Close() error {
	p.closeOnce.Do(p.cancel)
	return nil
}

func notFound(selector string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", selector, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", selector, err)
}
