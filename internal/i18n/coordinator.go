package i18n

import (
	"context"
	"sync"
	"time"

	"github.com/tubemind/tubemind/internal/store"
	"github.com/tubemind/tubemind/pkg/log"
)

// KeyLocale is the persisted-store key holding the active locale code.
const KeyLocale = "tubemind.locale"

// AnchorRenderer is the presentation surface the coordinator rewrites on a
// locale change. ApplyDirection must re-style already-rendered messages
// without touching their text.
type AnchorRenderer interface {
	SetAnchor(anchor Anchor, text string)
	ApplyDirection(dir Direction)
}

// WelcomeLog lets the coordinator swap the initial welcome message when it
// is the only message anywhere. Implemented by the session store.
type WelcomeLog interface {
	ReplaceSoleWelcome(text string)
}

// RemoteNotifier pushes the language preference for a video to the backend.
type RemoteNotifier interface {
	SetVideoLanguage(ctx context.Context, videoID, language string) error
}

// Coordinator owns the active locale. Every renderer reads it; mutation goes
// through SetLanguage only.
type Coordinator struct {
	kv       store.Store
	renderer AnchorRenderer
	remote   RemoteNotifier

	mu         sync.RWMutex
	locale     Locale
	welcomeLog WelcomeLog
	boundVideo func() string
}

// NewCoordinator restores the persisted locale, falling back to defaultLocale
// when nothing was stored or the stored code no longer parses.
func NewCoordinator(kv store.Store, renderer AnchorRenderer, remote RemoteNotifier, defaultLocale string) *Coordinator {
	locale, err := ParseLocale(defaultLocale)
	if err != nil {
		log.Warn("Invalid default locale %q, using English: %v", defaultLocale, err)
		locale = LocaleEnglish
	}
	if raw, ok := kv.Get(KeyLocale); ok {
		if stored, err := ParseLocale(string(raw)); err == nil {
			locale = stored
		} else {
			log.Warn("Ignoring persisted locale %q: %v", string(raw), err)
		}
	}
	return &Coordinator{
		kv:       kv,
		renderer: renderer,
		remote:   remote,
		locale:   locale,
	}
}

// AttachWelcomeLog wires the session store in after construction; the two
// depend on each other so one side has to come late.
func (c *Coordinator) AttachWelcomeLog(l WelcomeLog) {
	c.mu.Lock()
	c.welcomeLog = l
	c.mu.Unlock()
}

// SetBoundVideoFunc wires the supplier of the currently bound video ID.
func (c *Coordinator) SetBoundVideoFunc(f func() string) {
	c.mu.Lock()
	c.boundVideo = f
	c.mu.Unlock()
}

func (c *Coordinator) Locale() Locale {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.locale
}

func (c *Coordinator) Direction() Direction {
	return c.Locale().Direction()
}

// Apply pushes the current locale's anchors and direction to the renderer.
// Called once at startup and from SetLanguage.
func (c *Coordinator) Apply() {
	locale := c.Locale()
	for _, anchor := range Anchors() {
		c.renderer.SetAnchor(anchor, AnchorText(anchor, locale))
	}
	c.renderer.ApplyDirection(locale.Direction())
}

// SetLanguage switches the active locale: persists the code, rewrites the UI
// anchors, re-applies direction to everything already rendered, swaps the
// sole welcome message if that is all that exists, and tells the backend
// about the preference for the bound video (best effort).
func (c *Coordinator) SetLanguage(code string) error {
	locale, err := ParseLocale(code)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.locale = locale
	welcomeLog := c.welcomeLog
	boundVideo := c.boundVideo
	c.mu.Unlock()

	c.kv.Set(KeyLocale, []byte(locale))
	c.Apply()

	if welcomeLog != nil {
		welcomeLog.ReplaceSoleWelcome(Welcome(locale))
	}

	if c.remote != nil && boundVideo != nil {
		if videoID := boundVideo(); videoID != "" {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := c.remote.SetVideoLanguage(ctx, videoID, string(locale)); err != nil {
					log.Warn("Failed to push language preference for video %s: %v", videoID, err)
				}
			}()
		}
	}
	return nil
}
