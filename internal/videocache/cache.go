package videocache

import "sync"

// Entry holds the metadata the client keeps for a processed video. Entries
// are replaced wholesale on refresh, never merged field by field.
type Entry struct {
	VideoID      string   `json:"video_id"`
	Title        string   `json:"title"`
	ThumbnailURL string   `json:"thumbnail_url"`
	Keywords     []string `json:"keywords"`
	Language     string   `json:"language"`
	Channel      string   `json:"channel"`
}

// Cache is an in-process map of video metadata keyed by video identifier.
// It is volatile: contents are reconstructable from the remote list call.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func New() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Put stores an entry, overwriting any previous one for the same video.
func (c *Cache) Put(videoID string, entry Entry) {
	if videoID == "" {
		return
	}
	entry.VideoID = videoID
	entry.Keywords = append([]string(nil), entry.Keywords...)

	c.mu.Lock()
	c.entries[videoID] = entry
	c.mu.Unlock()
}

func (c *Cache) Get(videoID string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[videoID]
	if !ok {
		return Entry{}, false
	}
	entry.Keywords = append([]string(nil), entry.Keywords...)
	return entry, true
}

func (c *Cache) Delete(videoID string) {
	c.mu.Lock()
	delete(c.entries, videoID)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// IDs returns the cached video identifiers in no particular order.
func (c *Cache) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	return ids
}
