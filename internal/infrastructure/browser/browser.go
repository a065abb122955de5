package browser

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports a selector that did not appear before its timeout.
var ErrNotFound = errors.New("element not found")

// Page is a single browser tab. Implementations must be safe to Close more than once.
type Page interface {
	// Navigate loads url and waits for the document to be ready.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	// WaitIdle returns once no network request has been in flight for a short quiet window.
	WaitIdle(ctx context.Context, timeout time.Duration) error
	// WaitFor waits for selector to be present, returning ErrNotFound on timeout.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	// Click waits for selector to be visible and clicks it, returning ErrNotFound on timeout.
	Click(ctx context.Context, selector string, timeout time.Duration) error
	// HTML returns the serialized rendered document.
	HTML(ctx context.Context) (string, error)
	// URL returns the current document location.
	URL(ctx context.Context) (string, error)
	Close() error
}

// Browser opens tabs inside a running session.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
}

// Pause suspends the caller for d unless ctx ends first.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
