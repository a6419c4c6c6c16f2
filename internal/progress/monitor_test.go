package progress

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient replays a fixed sequence of samples, repeating the last one.
type scriptedClient struct {
	mu      sync.Mutex
	samples []Status
	errs    []error
	calls   int
}

func (c *scriptedClient) GetProgress(_ context.Context) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.calls
	c.calls++
	if i < len(c.errs) && c.errs[i] != nil {
		return Status{}, c.errs[i]
	}
	if i >= len(c.samples) {
		i = len(c.samples) - 1
	}
	return c.samples[i], nil
}

func (c *scriptedClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func fastTiming() Timing {
	return Timing{
		PollInterval: 5 * time.Millisecond,
		SlowDelay:    time.Minute,
		GraceDelay:   5 * time.Millisecond,
	}
}

func TestMonitor_RelaysStatusesAndFinishes(t *testing.T) {
	client := &scriptedClient{samples: []Status{
		{Message: "Downloading subtitles...", Percentage: 20},
		{Message: "Extracting keywords...", Percentage: 60},
		{Message: "Done", Percentage: 100},
	}}

	var mu sync.Mutex
	var percentages []int
	var done atomic.Bool

	m := NewMonitor(client, Callbacks{
		OnStatus: func(_ string, pct int) {
			mu.Lock()
			percentages = append(percentages, pct)
			mu.Unlock()
		},
		OnDone: func() { done.Store(true) },
	}, fastTiming())

	require.True(t, m.Start(context.Background()))
	require.Eventually(t, done.Load, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return !m.Polling() }, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{20, 60, 100}, percentages)
}

func TestMonitor_StartWhilePollingIsNoOp(t *testing.T) {
	client := &scriptedClient{samples: []Status{{Message: "working", Percentage: 10}}}
	m := NewMonitor(client, Callbacks{}, fastTiming())
	defer m.Stop()

	require.True(t, m.Start(context.Background()))
	assert.False(t, m.Start(context.Background()))
}

func TestMonitor_CompletionStopsPollingAndSlowTimer(t *testing.T) {
	client := &scriptedClient{samples: []Status{{Message: "Done", Percentage: 100}}}

	var slowFired atomic.Bool
	var done atomic.Bool
	timing := fastTiming()
	timing.SlowDelay = 50 * time.Millisecond

	m := NewMonitor(client, Callbacks{
		OnSlowHint: func() { slowFired.Store(true) },
		OnDone:     func() { done.Store(true) },
	}, timing)

	require.True(t, m.Start(context.Background()))
	require.Eventually(t, done.Load, time.Second, 5*time.Millisecond)

	callsAtDone := client.callCount()
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, callsAtDone, client.callCount(), "polling must stop after completion")
	assert.False(t, slowFired.Load(), "slow hint must be cancelled by completion")
}

func TestMonitor_SlowHintFiresOnce(t *testing.T) {
	client := &scriptedClient{samples: []Status{{Message: "working", Percentage: 10}}}

	var slowCount atomic.Int32
	timing := fastTiming()
	timing.SlowDelay = 20 * time.Millisecond

	m := NewMonitor(client, Callbacks{
		OnSlowHint: func() { slowCount.Add(1) },
	}, timing)
	defer m.Stop()

	require.True(t, m.Start(context.Background()))
	require.Eventually(t, func() bool { return slowCount.Load() == 1 }, time.Second, 5*time.Millisecond)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), slowCount.Load())
}

func TestMonitor_StopCancelsPolling(t *testing.T) {
	client := &scriptedClient{samples: []Status{{Message: "working", Percentage: 10}}}
	var done atomic.Bool
	m := NewMonitor(client, Callbacks{OnDone: func() { done.Store(true) }}, fastTiming())

	require.True(t, m.Start(context.Background()))
	require.Eventually(t, func() bool { return client.callCount() > 0 }, time.Second, time.Millisecond)
	m.Stop()

	assert.False(t, m.Polling())
	calls := client.callCount()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, client.callCount())
	assert.False(t, done.Load())

	// Stop when idle is harmless.
	m.Stop()
}

func TestMonitor_FailedPollsAreRetried(t *testing.T) {
	client := &scriptedClient{
		samples: []Status{
			{Message: "x", Percentage: 50},
			{Message: "x", Percentage: 50},
			{Message: "Done", Percentage: 100},
		},
		errs: []error{errors.New("backend down"), nil, nil},
	}
	var done atomic.Bool
	m := NewMonitor(client, Callbacks{OnDone: func() { done.Store(true) }}, fastTiming())

	require.True(t, m.Start(context.Background()))
	require.Eventually(t, done.Load, time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, client.callCount(), 3)
}

func TestMonitor_RestartAfterCompletion(t *testing.T) {
	client := &scriptedClient{samples: []Status{{Message: "Done", Percentage: 100}}}
	var doneCount atomic.Int32
	m := NewMonitor(client, Callbacks{OnDone: func() { doneCount.Add(1) }}, fastTiming())

	require.True(t, m.Start(context.Background()))
	require.Eventually(t, func() bool { return doneCount.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return !m.Polling() }, time.Second, 5*time.Millisecond)

	require.True(t, m.Start(context.Background()))
	require.Eventually(t, func() bool { return doneCount.Load() == 2 }, time.Second, 5*time.Millisecond)
	m.Stop()
}
