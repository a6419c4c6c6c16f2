// Package notify holds ephemeral, auto-expiring user-facing messages.
package notify

import (
	"sort"
	"sync"
	"time"

	"github.com/tubemind/tubemind/internal/i18n"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

type Notification struct {
	ID        int64
	Message   string
	Severity  Severity
	CreatedAt time.Time
}

// Listener receives a notification when it is shown and when it expires.
type Listener interface {
	NotificationShown(n Notification)
	NotificationDismissed(id int64)
}

// Center queues visible notifications. Each one auto-dismisses after the TTL;
// concurrent notifications stack and never cancel each other. Message content
// is opaque caller-chosen text; the center does not translate.
type Center struct {
	ttl       time.Duration
	direction func() i18n.Direction

	mu       sync.Mutex
	seq      int64
	active   map[int64]Notification
	timers   map[int64]*time.Timer
	listener Listener
	closed   bool
}

func NewCenter(ttl time.Duration, direction func() i18n.Direction) *Center {
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	return &Center{
		ttl:       ttl,
		direction: direction,
		active:    make(map[int64]Notification),
		timers:    make(map[int64]*time.Timer),
	}
}

// SetListener wires the presentation layer. Only one listener; the terminal
// UI is the single consumer.
func (c *Center) SetListener(l Listener) {
	c.mu.Lock()
	c.listener = l
	c.mu.Unlock()
}

// Notify enqueues a notification and schedules its expiry.
func (c *Center) Notify(message string, severity Severity) Notification {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Notification{}
	}
	c.seq++
	n := Notification{
		ID:        c.seq,
		Message:   message,
		Severity:  severity,
		CreatedAt: time.Now(),
	}
	c.active[n.ID] = n
	c.timers[n.ID] = time.AfterFunc(c.ttl, func() { c.dismiss(n.ID) })
	listener := c.listener
	c.mu.Unlock()

	if listener != nil {
		listener.NotificationShown(n)
	}
	return n
}

// Info, Success and Error are severity shorthands.
func (c *Center) Info(message string) Notification    { return c.Notify(message, SeverityInfo) }
func (c *Center) Success(message string) Notification { return c.Notify(message, SeveritySuccess) }
func (c *Center) Error(message string) Notification   { return c.Notify(message, SeverityError) }

func (c *Center) dismiss(id int64) {
	c.mu.Lock()
	if _, ok := c.active[id]; !ok {
		c.mu.Unlock()
		return
	}
	delete(c.active, id)
	if timer, ok := c.timers[id]; ok {
		timer.Stop()
		delete(c.timers, id)
	}
	listener := c.listener
	c.mu.Unlock()

	if listener != nil {
		listener.NotificationDismissed(id)
	}
}

// Dismiss removes a notification before its TTL elapses.
func (c *Center) Dismiss(id int64) {
	c.dismiss(id)
}

// Active returns the visible notifications, oldest first.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, 0, len(c.active))
	for _, n := range c.active {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Alignment reports which edge notifications anchor to; it flips with the
// active text direction.
func (c *Center) Alignment() i18n.Direction {
	if c.direction == nil {
		return i18n.DirectionLTR
	}
	return c.direction()
}

// Close stops every pending expiry timer.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for id, timer := range c.timers {
		timer.Stop()
		delete(c.timers, id)
	}
}
