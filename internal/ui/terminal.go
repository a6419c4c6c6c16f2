// Package ui renders the conversation in the terminal.
package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/tubemind/tubemind/internal/i18n"
	"github.com/tubemind/tubemind/internal/notify"
	"github.com/tubemind/tubemind/internal/session"
	"github.com/tubemind/tubemind/internal/videocache"
)

var (
	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	waitingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

const lineWidth = 80

// Terminal writes styled output to a single writer. It implements the
// conversation view, the locale anchor surface and the notification listener.
type Terminal struct {
	mu      sync.Mutex
	out     io.Writer
	anchors map[i18n.Anchor]string
	dir     i18n.Direction
	enabled bool
}

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{
		out:     out,
		anchors: make(map[i18n.Anchor]string),
		dir:     i18n.DirectionLTR,
		enabled: true,
	}
}

// Anchor returns the current text for a fixed UI label.
func (t *Terminal) Anchor(a i18n.Anchor) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.anchors[a]
}

// SetAnchor swaps a fixed label's text; part of the locale-switch rewrite.
func (t *Terminal) SetAnchor(a i18n.Anchor, text string) {
	t.mu.Lock()
	t.anchors[a] = text
	t.mu.Unlock()
}

// ApplyDirection re-aligns output without touching message text.
func (t *Terminal) ApplyDirection(dir i18n.Direction) {
	t.mu.Lock()
	t.dir = dir
	t.mu.Unlock()
}

// SubmissionEnabled reports whether input is currently accepted.
func (t *Terminal) SubmissionEnabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

func (t *Terminal) SetSubmissionEnabled(enabled bool) {
	t.mu.Lock()
	t.enabled = enabled
	t.mu.Unlock()
}

func (t *Terminal) align(s string) string {
	t.mu.Lock()
	dir := t.dir
	t.mu.Unlock()
	if dir == i18n.DirectionRTL {
		return lipgloss.NewStyle().Width(lineWidth).Align(lipgloss.Right).Render(s)
	}
	return s
}

func (t *Terminal) print(s string) {
	t.mu.Lock()
	out := t.out
	t.mu.Unlock()
	fmt.Fprintln(out, s)
}

// RenderMessage prints one conversation message with a sender prefix.
func (t *Terminal) RenderMessage(sender session.Sender, text string) {
	var line string
	if sender == session.SenderUser {
		line = userStyle.Render("you") + " " + text
	} else {
		line = assistantStyle.Render(text)
	}
	t.print(t.align(line))
}

// ShowVideoInfo prints the loaded video's details.
func (t *Terminal) ShowVideoInfo(entry videocache.Entry) {
	var b strings.Builder
	b.WriteString(titleStyle.Render(entry.Title))
	if entry.Channel != "" {
		b.WriteString("\n" + dimStyle.Render(entry.Channel))
	}
	if len(entry.Keywords) > 0 {
		b.WriteString("\n" + dimStyle.Render(strings.Join(entry.Keywords, ", ")))
	}
	b.WriteString("\n" + dimStyle.Render(entry.ThumbnailURL))
	t.print(t.align(b.String()))
}

// ClearVideoInfo marks that no video is loaded anymore.
func (t *Terminal) ClearVideoInfo() {
	t.print(t.align(dimStyle.Render("(no video loaded)")))
}

// ShowWaiting prints a progress line. A negative percentage hides the number.
func (t *Terminal) ShowWaiting(message string, percentage int) {
	line := message
	if percentage >= 0 {
		line = fmt.Sprintf("%s %d%%", message, percentage)
	}
	t.print(t.align(waitingStyle.Render(line)))
}

// SwapWaitingMessage replaces the waiting text, keeping the progress hidden.
func (t *Terminal) SwapWaitingMessage(message string) {
	t.ShowWaiting(message, -1)
}

func (t *Terminal) HideWaiting() {}

// NotificationShown prints a transient notification.
func (t *Terminal) NotificationShown(n notify.Notification) {
	style := dimStyle
	switch n.Severity {
	case notify.SeveritySuccess:
		style = successStyle
	case notify.SeverityError:
		style = errorStyle
	}
	t.print(t.align(style.Render("• " + n.Message)))
}

// NotificationDismissed is a no-op; printed lines cannot be withdrawn.
func (t *Terminal) NotificationDismissed(int64) {}

// SessionList prints all sessions, marking the active one.
func (t *Terminal) SessionList(sessions []session.ChatSession, activeID string) {
	for _, s := range sessions {
		marker := "  "
		if s.ID == activeID {
			marker = successStyle.Render("* ")
		}
		line := marker + s.Title + " " + dimStyle.Render(s.ID)
		if s.BoundVideoID != "" {
			line += " " + dimStyle.Render("["+s.BoundVideoID+"]")
		}
		t.print(line)
	}
}
