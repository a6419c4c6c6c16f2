package videocache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_PutGet(t *testing.T) {
	c := New()

	_, ok := c.Get("dQw4w9WgXcQ")
	assert.False(t, ok)

	c.Put("dQw4w9WgXcQ", Entry{
		Title:    "Some Video",
		Channel:  "Some Channel",
		Keywords: []string{"music"},
		Language: "en",
	})

	got, ok := c.Get("dQw4w9WgXcQ")
	require.True(t, ok)
	assert.Equal(t, "dQw4w9WgXcQ", got.VideoID)
	assert.Equal(t, "Some Video", got.Title)
	assert.Equal(t, []string{"music"}, got.Keywords)
}

func TestCache_PutReplacesWholesale(t *testing.T) {
	c := New()
	c.Put("a1b2c3d4e5f", Entry{Title: "Old", Channel: "Old Channel", Keywords: []string{"x"}})
	c.Put("a1b2c3d4e5f", Entry{Title: "New"})

	got, ok := c.Get("a1b2c3d4e5f")
	require.True(t, ok)
	assert.Equal(t, "New", got.Title)
	assert.Empty(t, got.Channel)
	assert.Empty(t, got.Keywords)
	assert.Equal(t, 1, c.Len())
}

func TestCache_Delete(t *testing.T) {
	c := New()
	c.Put("a1b2c3d4e5f", Entry{Title: "T"})
	c.Delete("a1b2c3d4e5f")

	_, ok := c.Get("a1b2c3d4e5f")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_GetReturnsCopy(t *testing.T) {
	c := New()
	c.Put("a1b2c3d4e5f", Entry{Keywords: []string{"k1"}})

	got, _ := c.Get("a1b2c3d4e5f")
	got.Keywords[0] = "mutated"

	again, _ := c.Get("a1b2c3d4e5f")
	assert.Equal(t, []string{"k1"}, again.Keywords)
}
