// SPDX-License-Identifier: MIT
package render

import (
	"sync"
	"time"

	applog "tonelab/internal/log"
)

// FrameFunc is invoked once per display frame with the elapsed animation
// clock since the loop started.
type FrameFunc func(elapsed time.Duration)

// Loop is an explicit cancellable repeating task driving the renderers at
// display cadence, rather than a self-rescheduling callback chain: teardown
// is a single Stop call, so no per-frame callback can outlive its owner.
type Loop struct {
	interval time.Duration
	frame    FrameFunc

	mu       sync.Mutex
	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewLoop creates a loop invoking frame every interval. A non-positive
// interval defaults to ~60 Hz.
func NewLoop(interval time.Duration, frame FrameFunc) *Loop {
	if interval <= 0 {
		interval = 16 * time.Millisecond
		applog.Warnf("RenderLoop: invalid interval, defaulting to %s", interval)
	}
	return &Loop{interval: interval, frame: frame}
}

// Start begins ticking. Safe to call while running; the extra call is a
// no-op.
func (l *Loop) Start() {
	l.mu.Lock()
	if l.ticker != nil {
		l.mu.Unlock()
		applog.Warnf("RenderLoop: Start called but already running")
		return
	}
	l.ticker = time.NewTicker(l.interval)
	l.doneChan = make(chan struct{})
	l.stopOnce = sync.Once{}

	ticker := l.ticker
	doneChan := l.doneChan
	l.mu.Unlock()

	start := time.Now()
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		applog.Debugf("RenderLoop: started (interval %s)", l.interval)
		for {
			select {
			case <-ticker.C:
				l.frame(time.Since(start))
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop cancels the loop and waits for the frame goroutine to exit.
// Idempotent; Stop before Start is a no-op.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.ticker == nil {
		l.mu.Unlock()
		return
	}
	l.stopOnce.Do(func() {
		close(l.doneChan)
		l.ticker.Stop()
		l.ticker = nil
	})
	l.mu.Unlock()

	l.wg.Wait()
	applog.Debugf("RenderLoop: stopped")
}
