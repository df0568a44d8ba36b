package clock

import (
	"sync"
	"time"
)

// DefaultTickRate is the default tick frequency in Hz.
const DefaultTickRate = 60

// Ticker calls a handler at a fixed rate from a single goroutine, so calls
// never overlap. Stop waits for the goroutine; no call starts after Stop
// returns.
type Ticker struct {
	interval time.Duration
	handler  func(now time.Time)

	ticker  *time.Ticker
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
}

// NewTicker creates a ticker firing rate times per second.
// A rate of 0 or less uses DefaultTickRate.
func NewTicker(rate int, handler func(now time.Time)) *Ticker {
	if rate <= 0 {
		rate = DefaultTickRate
	}
	return &Ticker{
		interval: time.Second / time.Duration(rate),
		handler:  handler,
	}
}

// Start begins ticking. Calling Start on a running ticker does nothing.
func (t *Ticker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return
	}

	t.running = true
	t.stopCh = make(chan struct{})
	t.doneCh = make(chan struct{})
	t.ticker = time.NewTicker(t.interval)

	go t.run(t.ticker, t.stopCh, t.doneCh)
}

func (t *Ticker) run(tk *time.Ticker, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	for {
		select {
		case <-stopCh:
			return
		case now := <-tk.C:
			// stop may have been requested while waiting
			select {
			case <-stopCh:
				return
			default:
			}
			if t.handler != nil {
				t.handler(now)
			}
		}
	}
}

// Stop halts ticking and waits for an in-flight handler call to return.
// Stopping a stopped ticker does nothing.
func (t *Ticker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	close(t.stopCh)
	tk, doneCh := t.ticker, t.doneCh
	t.ticker, t.stopCh, t.doneCh = nil, nil, nil
	t.mu.Unlock()

	// wait outside the lock so a handler calling IsRunning cannot deadlock
	<-doneCh
	tk.Stop()
}

// IsRunning reports whether the ticker is running.
func (t *Ticker) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Interval returns the time between ticks.
func (t *Ticker) Interval() time.Duration {
	return t.interval
}
