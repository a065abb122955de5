package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces a minimum delay between the end of one call and the start of the next.
// Holders are serialized: a second Acquire blocks until the first release.
type Limiter struct {
	delay time.Duration
	slot  chan struct{}
	now   func() time.Time

	mu   sync.Mutex
	last time.Time
}

// New builds a limiter; a non-positive delay only serializes callers.
func New(delay time.Duration) *Limiter {
	if delay < 0 {
		delay = 0
	}
	return &Limiter{
		delay: delay,
		slot:  make(chan struct{}, 1),
		now:   time.Now,
	}
}

// Delay reports the configured spacing.
func (l *Limiter) Delay() time.Duration {
	return l.delay
}

// Acquire waits for the slot and for the delay since the previous release to elapse.
// The returned release func must be called once the guarded call has finished.
func (l *Limiter) Acquire(ctx context.Context) (func(), error) {
	select {
	case l.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if wait := l.remaining(); wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			<-l.slot
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			l.last = l.now()
			l.mu.Unlock()
			<-l.slot
		})
	}
	return release, nil
}

func (l *Limiter) remaining() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.last.IsZero() {
		return 0
	}
	return l.delay - l.now().Sub(l.last)
}
