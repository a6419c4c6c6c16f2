// Package session owns the chat-session collection, the active pointer and
// the session-to-video bindings, persisting everything through the kv store.
package session

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tubemind/tubemind/internal/i18n"
	"github.com/tubemind/tubemind/internal/store"
	"github.com/tubemind/tubemind/pkg/log"
)

const (
	// KeySessions holds the serialized session list.
	KeySessions = "tubemind.sessions"
	// KeyActiveSession holds the id of the active session.
	KeyActiveSession = "tubemind.session.active"

	// Titles derived from a video title are cut to this many runes.
	titleMaxRunes = 30
	titleTimeFmt  = "2006-01-02 15:04"
)

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

type Message struct {
	Sender Sender    `json:"sender"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// ChatSession is one conversation thread. ID and CreatedAt never change after
// creation; Messages only grows except through Clear.
type ChatSession struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	TitleCustomized bool      `json:"title_customized"`
	CreatedAt       time.Time `json:"created_at"`
	BoundVideoID    string    `json:"bound_video_id,omitempty"`
	Messages        []Message `json:"messages"`
}

// Hooks are supplied by the conversation layer after construction.
type Hooks struct {
	// CurrentVideo reports the currently loaded video, empty id when none.
	CurrentVideo func() (id string, title string)
	// ActiveBindingChanged fires when SetActive lands on a session whose
	// binding differs from the loaded video, so the caller can load it.
	ActiveBindingChanged func(videoID string)
}

// Store keeps the collection most-recent-first; sessions[0] is the newest.
// The in-memory state is authoritative; persistence is write-through.
type Store struct {
	kv     store.Store
	locale func() i18n.Locale

	mu       sync.Mutex
	sessions []*ChatSession
	activeID string
	hooks    Hooks
}

func NewStore(kv store.Store, locale func() i18n.Locale) *Store {
	s := &Store{kv: kv, locale: locale}
	s.restore()
	return s
}

func (s *Store) SetHooks(h Hooks) {
	s.mu.Lock()
	s.hooks = h
	s.mu.Unlock()
}

func (s *Store) restore() {
	raw, ok := s.kv.Get(KeySessions)
	if !ok {
		return
	}
	var sessions []*ChatSession
	if err := json.Unmarshal(raw, &sessions); err != nil {
		log.Warn("Discarding unreadable session list: %v", err)
		return
	}
	s.sessions = sessions

	if raw, ok := s.kv.Get(KeyActiveSession); ok {
		id := string(raw)
		if s.indexOf(id) >= 0 {
			s.activeID = id
		}
	}
	// A stored active pointer that no longer resolves falls back to the
	// newest session.
	if s.activeID == "" && len(s.sessions) > 0 {
		s.activeID = s.sessions[0].ID
	}
}

// persist writes the session list and the active pointer back-to-back to keep
// the window between the paired writes as small as possible.
func (s *Store) persist() {
	raw, err := json.Marshal(s.sessions)
	if err != nil {
		log.Error("Failed to serialize sessions: %v", err)
		return
	}
	s.kv.Set(KeySessions, raw)
	s.kv.Set(KeyActiveSession, []byte(s.activeID))
}

func (s *Store) indexOf(id string) int {
	for i, sess := range s.sessions {
		if sess.ID == id {
			return i
		}
	}
	return -1
}

func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= titleMaxRunes {
		return title
	}
	return string(runes[:titleMaxRunes]) + "..."
}

// deriveTitle prefers the loaded video's title; otherwise a generic localized
// chat label. Both get a timestamp suffix. Caller holds the lock.
func (s *Store) deriveTitle(now time.Time) string {
	if s.hooks.CurrentVideo != nil {
		if _, title := s.hooks.CurrentVideo(); title != "" {
			return truncateTitle(title) + " " + now.Format(titleTimeFmt)
		}
	}
	return i18n.GenericChatLabel(s.locale()) + " " + now.Format(titleTimeFmt)
}

// Create inserts a new session at the front of the list and makes it active.
// An empty explicitTitle means the title is derived.
func (s *Store) Create(explicitTitle string) ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(explicitTitle)
}

func (s *Store) createLocked(explicitTitle string) ChatSession {
	now := time.Now()
	sess := &ChatSession{
		ID:        uuid.New().String(),
		CreatedAt: now,
		Messages: []Message{{
			Sender: SenderAssistant,
			Text:   i18n.Welcome(s.locale()),
			SentAt: now,
		}},
	}
	if title := strings.TrimSpace(explicitTitle); title != "" {
		sess.Title = title
		sess.TitleCustomized = true
	} else {
		sess.Title = s.deriveTitle(now)
	}
	s.sessions = append([]*ChatSession{sess}, s.sessions...)
	s.activeID = sess.ID
	s.persist()
	return *copySession(sess)
}

// Rename overwrites the title and pins it against auto-derivation. A title
// that is blank after trimming leaves the session untouched.
func (s *Store) Rename(id, newTitle string) {
	newTitle = strings.TrimSpace(newTitle)
	if newTitle == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.sessions[i].Title = newTitle
	s.sessions[i].TitleCustomized = true
	s.persist()
}

// Delete removes the session. Deleting the active one activates the newest
// remaining session; deleting the last one creates a fresh default session so
// the collection never stays empty.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
	if s.activeID == id {
		if len(s.sessions) > 0 {
			s.activeID = s.sessions[0].ID
		} else {
			s.createLocked("")
			return
		}
	}
	s.persist()
}

// Clear truncates the session to a single fresh welcome message. ID, creation
// time and video binding are preserved.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.sessions[i].Messages = []Message{{
		Sender: SenderAssistant,
		Text:   i18n.Welcome(s.locale()),
		SentAt: time.Now(),
	}}
	s.persist()
}

// SetActive switches the active pointer. When the target session is bound to
// a video other than the loaded one, the binding-changed hook fires so the
// conversation layer can load it.
func (s *Store) SetActive(id string) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.activeID = id
	bound := s.sessions[i].BoundVideoID
	hooks := s.hooks
	s.persist()
	s.mu.Unlock()

	if bound == "" || hooks.ActiveBindingChanged == nil {
		return
	}
	loaded := ""
	if hooks.CurrentVideo != nil {
		loaded, _ = hooks.CurrentVideo()
	}
	if bound != loaded {
		hooks.ActiveBindingChanged(bound)
	}
}

// AppendMessage adds a message to the active session, creating one first when
// none is active. An assistant message carrying the processed marker rebinds
// the session to the loaded video and re-derives its title unless the user
// renamed it.
func (s *Store) AppendMessage(sender Sender, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(s.activeID)
	if i < 0 {
		s.createLocked("")
		i = 0
	}
	sess := s.sessions[i]
	sess.Messages = append(sess.Messages, Message{
		Sender: sender,
		Text:   text,
		SentAt: time.Now(),
	})

	if sender == SenderAssistant && i18n.IsProcessedMessage(text) && s.hooks.CurrentVideo != nil {
		if videoID, videoTitle := s.hooks.CurrentVideo(); videoID != "" {
			sess.BoundVideoID = videoID
			if !sess.TitleCustomized && videoTitle != "" {
				sess.Title = truncateTitle(videoTitle) + " " + time.Now().Format(titleTimeFmt)
			}
		}
	}
	s.persist()
}

// BindActive attaches the video to the active session.
func (s *Store) BindActive(videoID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(s.activeID)
	if i < 0 {
		return
	}
	if s.sessions[i].BoundVideoID != videoID {
		s.sessions[i].BoundVideoID = videoID
		s.persist()
	}
}

// UnbindVideo clears the binding on every session pointing at the video.
func (s *Store) UnbindVideo(videoID string) {
	if videoID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for _, sess := range s.sessions {
		if sess.BoundVideoID == videoID {
			sess.BoundVideoID = ""
			changed = true
		}
	}
	if changed {
		s.persist()
	}
}

// ActiveID returns the active session id, empty when the collection is empty.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Active returns a copy of the active session.
func (s *Store) Active() (ChatSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(s.activeID)
	if i < 0 {
		return ChatSession{}, false
	}
	return *copySession(s.sessions[i]), true
}

// ActiveBoundVideo returns the active session's video binding.
func (s *Store) ActiveBoundVideo() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(s.activeID)
	if i < 0 {
		return ""
	}
	return s.sessions[i].BoundVideoID
}

// Sessions returns copies of all sessions, newest first.
func (s *Store) Sessions() []ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChatSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, *copySession(sess))
	}
	return out
}

// ReplaceSoleWelcome swaps the text of the one existing message when exactly
// one message exists across all sessions. Used on locale switches so a fresh
// install greets in the new language.
func (s *Store) ReplaceSoleWelcome(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var only *Message
	total := 0
	for _, sess := range s.sessions {
		total += len(sess.Messages)
		if len(sess.Messages) == 1 {
			only = &sess.Messages[0]
		}
	}
	if total != 1 || only == nil {
		return
	}
	only.Text = text
	s.persist()
}

func copySession(sess *ChatSession) *ChatSession {
	out := *sess
	out.Messages = make([]Message, len(sess.Messages))
	copy(out.Messages, sess.Messages)
	return &out
}
