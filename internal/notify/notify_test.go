package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tubemind/tubemind/internal/i18n"
)

type recordingListener struct {
	mu        sync.Mutex
	shown     []Notification
	dismissed []int64
}

func (l *recordingListener) NotificationShown(n Notification) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.shown = append(l.shown, n)
}

func (l *recordingListener) NotificationDismissed(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dismissed = append(l.dismissed, id)
}

func (l *recordingListener) dismissedCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.dismissed)
}

func TestCenter_NotificationsStack(t *testing.T) {
	c := NewCenter(time.Minute, nil)
	defer c.Close()

	c.Info("first")
	c.Error("second")
	c.Success("third")

	active := c.Active()
	require.Len(t, active, 3)
	assert.Equal(t, "first", active[0].Message)
	assert.Equal(t, SeverityError, active[1].Severity)
	assert.Equal(t, "third", active[2].Message)
}

func TestCenter_AutoDismissAfterTTL(t *testing.T) {
	c := NewCenter(30*time.Millisecond, nil)
	defer c.Close()

	listener := &recordingListener{}
	c.SetListener(listener)

	c.Info("ephemeral")
	require.Len(t, c.Active(), 1)

	require.Eventually(t, func() bool {
		return len(c.Active()) == 0 && listener.dismissedCount() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestCenter_ManualDismiss(t *testing.T) {
	c := NewCenter(time.Minute, nil)
	defer c.Close()

	n := c.Info("to be dismissed")
	c.Dismiss(n.ID)
	assert.Empty(t, c.Active())

	// A second dismiss of the same id is harmless.
	c.Dismiss(n.ID)
}

func TestCenter_AlignmentFollowsDirection(t *testing.T) {
	dir := i18n.DirectionLTR
	c := NewCenter(time.Minute, func() i18n.Direction { return dir })
	defer c.Close()

	assert.Equal(t, i18n.DirectionLTR, c.Alignment())
	dir = i18n.DirectionRTL
	assert.Equal(t, i18n.DirectionRTL, c.Alignment())
}

func TestCenter_CloseStopsTimers(t *testing.T) {
	c := NewCenter(20*time.Millisecond, nil)
	listener := &recordingListener{}
	c.SetListener(listener)

	c.Info("pending")
	c.Close()

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, listener.dismissedCount())

	// Notify after close is a no-op.
	n := c.Notify("late", SeverityInfo)
	assert.Zero(t, n.ID)
}
