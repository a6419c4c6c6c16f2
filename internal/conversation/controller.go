// Package conversation is the façade every user action goes through. It keeps
// the session store, the video cache and the rendered view consistent.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/tubemind/tubemind/internal/api"
	"github.com/tubemind/tubemind/internal/i18n"
	"github.com/tubemind/tubemind/internal/langdetect"
	"github.com/tubemind/tubemind/internal/notify"
	"github.com/tubemind/tubemind/internal/progress"
	"github.com/tubemind/tubemind/internal/session"
	"github.com/tubemind/tubemind/internal/videocache"
	"github.com/tubemind/tubemind/pkg/icron"
	"github.com/tubemind/tubemind/pkg/log"
)

// videoIDPatterns cover the URL shapes that embed an 11-character id.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[?&]v=([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`/embed/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`/shorts/([A-Za-z0-9_-]{11})`),
}

// ExtractVideoID pulls the 11-character video identifier out of a URL.
// Returns false when the URL carries none.
func ExtractVideoID(rawURL string) (string, bool) {
	for _, pattern := range videoIDPatterns {
		if m := pattern.FindStringSubmatch(rawURL); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// ThumbnailURL is computed locally; the backend never sends one.
func ThumbnailURL(videoID string) string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/0.jpg", videoID)
}

// Backend is the slice of the REST client the controller needs.
type Backend interface {
	ProcessVideo(ctx context.Context, url, language string) (api.Video, error)
	AskQuestion(ctx context.Context, videoID, query, language string) (api.Answer, error)
	Summarize(ctx context.Context, videoID, length, language string) (string, error)
	ListVideos(ctx context.Context) ([]api.Video, error)
	DeleteVideo(ctx context.Context, videoID string) error
}

// View is the presentation surface the controller drives.
type View interface {
	RenderMessage(sender session.Sender, text string)
	ShowVideoInfo(entry videocache.Entry)
	ClearVideoInfo()
	SetSubmissionEnabled(enabled bool)
	ShowWaiting(message string, percentage int)
	SwapWaitingMessage(message string)
	HideWaiting()
}

// Controller wires the backend, the session store, the video cache, the
// progress monitor and the view together. All exported methods are safe for
// concurrent use; overlapping loads of the same video are collapsed.
type Controller struct {
	backend       Backend
	sessions      *session.Store
	cache         *videocache.Cache
	monitor       *progress.Monitor
	notifications *notify.Center
	view          View
	locale        func() i18n.Locale

	group singleflight.Group

	mu          sync.Mutex
	loadedVideo string

	cronRunner *cron.Cron
}

func NewController(
	backend Backend,
	sessions *session.Store,
	cache *videocache.Cache,
	statusClient progress.StatusClient,
	timing progress.Timing,
	notifications *notify.Center,
	view View,
	locale func() i18n.Locale,
) *Controller {
	c := &Controller{
		backend:       backend,
		sessions:      sessions,
		cache:         cache,
		notifications: notifications,
		view:          view,
		locale:        locale,
	}
	c.monitor = progress.NewMonitor(statusClient, progress.Callbacks{
		OnStatus:   func(message string, pct int) { view.ShowWaiting(message, pct) },
		OnSlowHint: func() { view.SwapWaitingMessage(i18n.SlowHint(c.locale())) },
		OnDone: func() {
			view.HideWaiting()
			view.SetSubmissionEnabled(true)
		},
	}, timing)

	sessions.SetHooks(session.Hooks{
		CurrentVideo:         c.CurrentVideo,
		ActiveBindingChanged: c.loadVideoAsync,
	})
	return c
}

// CurrentVideo reports the loaded video's id and title, both empty when none
// is loaded.
func (c *Controller) CurrentVideo() (string, string) {
	c.mu.Lock()
	id := c.loadedVideo
	c.mu.Unlock()
	if id == "" {
		return "", ""
	}
	if entry, ok := c.cache.Get(id); ok {
		return id, entry.Title
	}
	return id, ""
}

// CurrentVideoID returns just the loaded video's id.
func (c *Controller) CurrentVideoID() string {
	id, _ := c.CurrentVideo()
	return id
}

// Append renders the message and durably logs it into the active session.
// This is the single interception point: rendering and persistence never
// diverge because nothing else writes messages.
func (c *Controller) Append(sender session.Sender, text string) {
	c.view.RenderMessage(sender, text)
	c.sessions.AppendMessage(sender, text)
}

// LoadVideo shows the video's info, serving from cache when possible and
// falling back to the remote list. Concurrent loads of the same id collapse
// into one fetch. Either path ends with the active session bound to the id.
func (c *Controller) LoadVideo(ctx context.Context, videoID string) error {
	_, err, _ := c.group.Do("load:"+videoID, func() (interface{}, error) {
		entry, ok := c.cache.Get(videoID)
		if !ok {
			if _, err := c.RefreshVideos(ctx); err != nil {
				return nil, err
			}
			entry, ok = c.cache.Get(videoID)
			if !ok {
				return nil, fmt.Errorf("video %s not known to the backend", videoID)
			}
		}
		c.mu.Lock()
		c.loadedVideo = videoID
		c.mu.Unlock()
		c.view.ShowVideoInfo(entry)
		return nil, nil
	})
	if err != nil {
		return err
	}
	c.sessions.BindActive(videoID)
	return nil
}

func (c *Controller) loadVideoAsync(videoID string) {
	go func() {
		if err := c.LoadVideo(context.Background(), videoID); err != nil {
			log.Warn("Failed to load video %s: %v", videoID, err)
			c.notifications.Error(err.Error())
		}
	}()
}

// ProcessVideo submits a URL for ingestion. A URL whose id is already cached
// short-circuits to LoadVideo without touching the process endpoint.
func (c *Controller) ProcessVideo(ctx context.Context, rawURL string) error {
	locale := c.locale()
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		c.notifications.Error(i18n.InvalidURL(locale))
		return errors.New("empty url")
	}

	videoID, ok := ExtractVideoID(rawURL)
	if !ok {
		c.notifications.Error(i18n.InvalidURL(locale))
		return fmt.Errorf("no video id in %q", rawURL)
	}

	if _, hit := c.cache.Get(videoID); hit {
		return c.LoadVideo(ctx, videoID)
	}

	_, err, _ := c.group.Do("process:"+videoID, func() (interface{}, error) {
		c.monitor.Start(ctx)
		c.view.SetSubmissionEnabled(false)

		video, err := c.backend.ProcessVideo(ctx, rawURL, string(locale))
		if err != nil {
			c.monitor.Stop()
			c.view.HideWaiting()
			c.view.SetSubmissionEnabled(true)
			c.Append(session.SenderAssistant, i18n.ProcessError(locale, errorDetail(err)))
			return nil, err
		}

		c.cache.Put(video.VideoID, videocache.Entry{
			Title:        video.Title,
			ThumbnailURL: ThumbnailURL(video.VideoID),
			Keywords:     video.Keywords,
			Language:     video.Language,
			Channel:      video.Channel,
		})
		c.mu.Lock()
		c.loadedVideo = video.VideoID
		c.mu.Unlock()

		if entry, ok := c.cache.Get(video.VideoID); ok {
			c.view.ShowVideoInfo(entry)
		}
		// The processed marker rebinds the active session and re-derives
		// its title.
		c.Append(session.SenderAssistant, i18n.ProcessedMessage(locale, video.Title))

		c.monitor.Stop()
		c.view.HideWaiting()
		c.view.SetSubmissionEnabled(true)

		if _, err := c.RefreshVideos(ctx); err != nil {
			log.Warn("Video list refresh after processing failed: %v", err)
		}
		return nil, nil
	})
	return err
}

// Ask routes a question about the bound video. The outgoing language follows
// the question's script, not the UI locale. Failures surface in the
// conversation; summary-style questions get one direct-summary fallback.
func (c *Controller) Ask(ctx context.Context, query string) {
	locale := c.locale()
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}

	videoID := c.sessions.ActiveBoundVideo()
	if videoID == "" {
		c.Append(session.SenderAssistant, i18n.NoVideoAlert(locale))
		return
	}

	c.Append(session.SenderUser, query)
	lang := langdetect.DetectLocale(query, string(locale))

	answer, err := c.backend.AskQuestion(ctx, videoID, query, lang)
	if err == nil {
		text := answer.Answer
		if answer.Cached {
			text = i18n.CachedMarker(locale) + " " + text
		}
		c.Append(session.SenderAssistant, text)
		return
	}

	log.Warn("Question failed for video %s: %v", videoID, err)
	c.Append(session.SenderAssistant, i18n.AskError(locale, errorDetail(err)))

	if !i18n.IsSummaryIntent(query) {
		return
	}
	summary, err := c.backend.Summarize(ctx, videoID, "short", lang)
	if err != nil {
		log.Warn("Fallback summary failed for video %s: %v", videoID, err)
		c.Append(session.SenderAssistant, i18n.Apology(locale))
		return
	}
	c.Append(session.SenderAssistant, summary)
}

// Summarize requests a summary of the bound video directly.
func (c *Controller) Summarize(ctx context.Context, length string) {
	locale := c.locale()
	videoID := c.sessions.ActiveBoundVideo()
	if videoID == "" {
		c.Append(session.SenderAssistant, i18n.NoVideoAlert(locale))
		return
	}
	if length == "" {
		length = "short"
	}
	summary, err := c.backend.Summarize(ctx, videoID, length, string(locale))
	if err != nil {
		c.Append(session.SenderAssistant, i18n.AskError(locale, errorDetail(err)))
		return
	}
	c.Append(session.SenderAssistant, summary)
}

// RefreshVideos reloads the remote video list into the cache, replacing
// entries wholesale.
func (c *Controller) RefreshVideos(ctx context.Context) ([]api.Video, error) {
	videos, err := c.backend.ListVideos(ctx)
	if err != nil {
		return nil, err
	}
	for _, v := range videos {
		c.cache.Put(v.VideoID, videocache.Entry{
			Title:        v.Title,
			ThumbnailURL: ThumbnailURL(v.VideoID),
			Keywords:     v.Keywords,
			Language:     v.Language,
			Channel:      v.Channel,
		})
	}
	return videos, nil
}

// DeleteVideo removes the video remotely, evicts the cache entry and clears
// every session binding pointing at it.
func (c *Controller) DeleteVideo(ctx context.Context, videoID string) error {
	if err := c.backend.DeleteVideo(ctx, videoID); err != nil {
		c.notifications.Error(errorDetail(err))
		return err
	}
	c.cache.Delete(videoID)
	c.sessions.UnbindVideo(videoID)

	c.mu.Lock()
	wasLoaded := c.loadedVideo == videoID
	if wasLoaded {
		c.loadedVideo = ""
	}
	c.mu.Unlock()
	if wasLoaded {
		c.view.ClearVideoInfo()
	}
	return nil
}

// StartRefreshSchedule refreshes the video list on the given cron expression
// until StopRefreshSchedule or Close.
func (c *Controller) StartRefreshSchedule(cronExpr string) error {
	info, err := icron.GetTriggerInfo(cronExpr, time.Now())
	if err != nil {
		return fmt.Errorf("invalid refresh schedule: %w", err)
	}
	log.Info("Video list refresh scheduled, next run in %s", info.TimeUntilNext)

	runner := cron.New()
	if _, err := runner.AddFunc(cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := c.RefreshVideos(ctx); err != nil {
			log.Warn("Scheduled video list refresh failed: %v", err)
		}
	}); err != nil {
		return err
	}
	runner.Start()

	c.mu.Lock()
	c.cronRunner = runner
	c.mu.Unlock()
	return nil
}

// StopRefreshSchedule halts the periodic refresh.
func (c *Controller) StopRefreshSchedule() {
	c.mu.Lock()
	runner := c.cronRunner
	c.cronRunner = nil
	c.mu.Unlock()
	if runner != nil {
		runner.Stop()
	}
}

// Close stops the progress monitor and the refresh schedule.
func (c *Controller) Close() {
	c.monitor.Stop()
	c.StopRefreshSchedule()
}

// errorDetail prefers the structured backend message when one exists.
func errorDetail(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return ""
}
