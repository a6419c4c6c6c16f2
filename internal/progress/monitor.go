// Package progress polls the backend's processing status until completion.
package progress

import (
	"context"
	"sync"
	"time"

	"github.com/tubemind/tubemind/pkg/log"
)

// Status is one sample of the backend's processing state.
type Status struct {
	Message    string `json:"message"`
	Percentage int    `json:"percentage"`
}

// StatusClient fetches the current processing status.
type StatusClient interface {
	GetProgress(ctx context.Context) (Status, error)
}

// Callbacks are the monitor's outputs. OnStatus relays every sample verbatim
// (the monitor does not enforce monotonic percentages). OnSlowHint fires at
// most once per Start, only when the slow delay elapses before completion.
// OnDone fires after the grace delay that follows the first sample at or
// above 100 percent.
type Callbacks struct {
	OnStatus   func(message string, percentage int)
	OnSlowHint func()
	OnDone     func()
}

// Timing groups the three delays the monitor owns.
type Timing struct {
	PollInterval time.Duration
	SlowDelay    time.Duration
	GraceDelay   time.Duration
}

// Monitor is a two-state machine: Idle and Polling. Start is a no-op while
// polling; Stop cancels both the poll ticker and the pending slow-hint timer
// so no stale callback can fire after completion.
type Monitor struct {
	client    StatusClient
	callbacks Callbacks
	timing    Timing

	mu      sync.Mutex
	polling bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func NewMonitor(client StatusClient, callbacks Callbacks, timing Timing) *Monitor {
	if timing.PollInterval <= 0 {
		timing.PollInterval = time.Second
	}
	if timing.SlowDelay <= 0 {
		timing.SlowDelay = 20 * time.Second
	}
	return &Monitor{
		client:    client,
		callbacks: callbacks,
		timing:    timing,
	}
}

// Polling reports whether the monitor is currently in the Polling state.
func (m *Monitor) Polling() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.polling
}

// Start transitions Idle→Polling. Returns false when already polling.
func (m *Monitor) Start(ctx context.Context) bool {
	m.mu.Lock()
	if m.polling {
		m.mu.Unlock()
		return false
	}
	m.polling = true
	m.stopCh = make(chan struct{})
	stopCh := m.stopCh
	m.mu.Unlock()

	m.wg.Add(1)
	go m.run(ctx, stopCh)
	return true
}

// Stop cancels polling and both timers, then waits for the loop to exit.
// Safe to call when idle.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.polling || m.stopCh == nil {
		m.mu.Unlock()
		return
	}
	stopCh := m.stopCh
	m.stopCh = nil
	m.mu.Unlock()

	close(stopCh)
	m.wg.Wait()
}

func (m *Monitor) run(ctx context.Context, stopCh <-chan struct{}) {
	defer m.wg.Done()
	defer m.setIdle()

	ticker := time.NewTicker(m.timing.PollInterval)
	defer ticker.Stop()

	slow := time.NewTimer(m.timing.SlowDelay)
	defer slow.Stop()
	slowC := slow.C

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-slowC:
			// Fires once; polling cadence is unaffected.
			slowC = nil
			if m.callbacks.OnSlowHint != nil {
				m.callbacks.OnSlowHint()
			}
		case <-ticker.C:
			status, err := m.client.GetProgress(ctx)
			if err != nil {
				// Retried on the next tick; no back-off, no abort.
				log.Warn("Progress poll failed: %v", err)
				continue
			}
			if m.callbacks.OnStatus != nil {
				m.callbacks.OnStatus(status.Message, status.Percentage)
			}
			if status.Percentage >= 100 {
				ticker.Stop()
				slow.Stop()
				m.finish(ctx, stopCh)
				return
			}
		}
	}
}

// finish waits out the grace delay and signals completion, unless the monitor
// is stopped in the meantime.
func (m *Monitor) finish(ctx context.Context, stopCh <-chan struct{}) {
	if m.timing.GraceDelay > 0 {
		grace := time.NewTimer(m.timing.GraceDelay)
		defer grace.Stop()
		select {
		case <-grace.C:
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
	if m.callbacks.OnDone != nil {
		m.callbacks.OnDone()
	}
}

func (m *Monitor) setIdle() {
	m.mu.Lock()
	m.polling = false
	m.mu.Unlock()
}
