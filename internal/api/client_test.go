package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessVideo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/videos/process", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", payload["url"])
		assert.Equal(t, "en", payload["language"])

		json.NewEncoder(w).Encode(map[string]any{
			"video_id": "dQw4w9WgXcQ",
			"title":    "Never Gonna Give You Up",
			"channel":  "Rick Astley",
			"keywords": []string{"music", "80s"},
			"language": "en",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	video, err := c.ProcessVideo(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "en")
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", video.VideoID)
	assert.Equal(t, "Rick Astley", video.Channel)
	assert.Equal(t, []string{"music", "80s"}, video.Keywords)
}

func TestAskQuestion_CachedFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/videos/dQw4w9WgXcQ/question", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"answer": "It is a song.", "cached": true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	answer, err := c.AskQuestion(context.Background(), "dQw4w9WgXcQ", "what is this?", "en")
	require.NoError(t, err)
	assert.Equal(t, "It is a song.", answer.Answer)
	assert.True(t, answer.Cached)
}

func TestListVideos(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/videos", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"videos": []map[string]any{
				{"video_id": "a_bc-DEF123", "title": "First", "channel": "c1"},
				{"video_id": "dQw4w9WgXcQ", "title": "Second", "channel": "c2"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	videos, err := c.ListVideos(context.Background())
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, "First", videos[0].Title)
}

func TestGetProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/progress", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"message": "Transcribing...", "percentage": 40})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	status, err := c.GetProgress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Transcribing...", status.Message)
	assert.Equal(t, 40, status.Percentage)
}

func TestDeleteVideo(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	require.NoError(t, c.DeleteVideo(context.Background(), "dQw4w9WgXcQ"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/videos/dQw4w9WgXcQ", gotPath)
}

func TestSetVideoLanguage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/videos/dQw4w9WgXcQ/language", r.URL.Path)
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "ar", payload["language"])
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	require.NoError(t, c.SetVideoLanguage(context.Background(), "dQw4w9WgXcQ", "ar"))
}

func TestMakeRequest_ExtractsErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid YouTube URL"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.ProcessVideo(context.Background(), "nonsense", "en")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "Invalid YouTube URL", apiErr.Detail)
}

func TestMakeRequest_UnparseableErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>boom</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.ListVideos(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Empty(t, apiErr.Detail)
	assert.Contains(t, apiErr.Error(), "500")
}

func TestMakeRequest_ContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := NewClient(srv.URL, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.GetProgress(ctx)
	require.Error(t, err)
}
