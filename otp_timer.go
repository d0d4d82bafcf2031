package trustgate

import (
	"sync"
	"time"
)

// OtpTimer is the explicit countdown clock for one OTP challenge. It ticks
// at one-second granularity, flips to expired exactly when the remaining
// seconds reach zero, and then halts itself. The timer is an owned resource:
// the login flow cancels it whenever it is superseded by a resend or the
// flow leaves the OTP states. At most one live countdown exists per active
// challenge; Start on a running timer cancels the prior countdown first.
type OtpTimer struct {
	mu        sync.Mutex
	remaining int
	expired   bool
	ticker    *time.Ticker
	done      chan struct{}
	running   bool
	onExpire  func()
}

// NewOtpTimer creates a stopped timer. onExpire, when non-nil, runs once on
// the tick that reaches zero.
func NewOtpTimer(onExpire func()) *OtpTimer {
	return &OtpTimer{onExpire: onExpire}
}

// Start resets the countdown to d (rounded down to whole seconds) and begins
// ticking. A countdown already in progress is cancelled first.
func (t *OtpTimer) Start(d time.Duration) {
	t.mu.Lock()

	if t.running {
		t.stopLocked()
	}

	seconds := int(d / time.Second)
	if seconds <= 0 {
		seconds = 1
	}
	t.remaining = seconds
	t.expired = false
	t.ticker = time.NewTicker(time.Second)
	t.done = make(chan struct{})
	t.running = true

	ticker := t.ticker
	done := t.done
	t.mu.Unlock()

	go t.run(ticker, done)
}

func (t *OtpTimer) run(ticker *time.Ticker, done chan struct{}) {
	for {
		select {
		case <-ticker.C:
			if t.tick(done) {
				return
			}
		case <-done:
			return
		}
	}
}

// tick decrements the countdown and reports whether the goroutine should
// exit. The expiry callback runs outside the lock.
func (t *OtpTimer) tick(done chan struct{}) bool {
	t.mu.Lock()
	if !t.running || t.done != done {
		t.mu.Unlock()
		return true
	}

	t.remaining--
	if t.remaining > 0 {
		t.mu.Unlock()
		return false
	}

	t.remaining = 0
	t.expired = true
	t.stopLocked()
	onExpire := t.onExpire
	t.mu.Unlock()

	if onExpire != nil {
		onExpire()
	}
	return true
}

// Cancel stops the countdown without side effects on the expired flag: a
// timer cancelled before expiry stays unexpired permanently.
func (t *OtpTimer) Cancel() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		t.stopLocked()
	}
}

// stopLocked releases the ticker and signals the tick goroutine. Callers
// hold t.mu.
func (t *OtpTimer) stopLocked() {
	if t.ticker != nil {
		t.ticker.Stop()
		t.ticker = nil
	}
	if t.done != nil {
		close(t.done)
		t.done = nil
	}
	t.running = false
}

// Remaining reports the seconds left in the current countdown.
func (t *OtpTimer) Remaining() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Expired reports whether the countdown ran to zero.
func (t *OtpTimer) Expired() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expired
}

// Running reports whether a countdown is in progress.
func (t *OtpTimer) Running() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// expire is a test seam: it forces the countdown to its expired terminal
// state immediately, as if the final tick had elapsed.
func (t *OtpTimer) expire() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.remaining = 0
	t.expired = true
	t.stopLocked()
	onExpire := t.onExpire
	t.mu.Unlock()

	if onExpire != nil {
		onExpire()
	}
}
