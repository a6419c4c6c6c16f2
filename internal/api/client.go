// Package api is the HTTP client for the video-assistant backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/tubemind/tubemind/internal/progress"
)

// Client talks to the backend REST API. Thread-safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Video is the backend's description of a processed video.
type Video struct {
	VideoID  string   `json:"video_id"`
	Title    string   `json:"title"`
	Channel  string   `json:"channel"`
	Keywords []string `json:"keywords"`
	Language string   `json:"language"`
}

// Answer is the response to a question, with a flag marking answers served
// from the backend's cache.
type Answer struct {
	Answer string `json:"answer"`
	Cached bool   `json:"cached"`
}

// APIError is a structured rejection from the backend. Detail carries the
// human-readable message from the error body.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// ProcessVideo asks the backend to ingest the video at url, answering in the
// given language. Long-running; progress is reported through GET /progress.
func (c *Client) ProcessVideo(ctx context.Context, url, language string) (Video, error) {
	var video Video
	payload := map[string]string{"url": url, "language": language}
	if err := c.makeRequest(ctx, http.MethodPost, "/videos/process", payload, &video); err != nil {
		return Video{}, fmt.Errorf("process video: %w", err)
	}
	return video, nil
}

// AskQuestion routes a question about the video.
func (c *Client) AskQuestion(ctx context.Context, videoID, query, language string) (Answer, error) {
	var answer Answer
	payload := map[string]string{"query": query, "language": language}
	path := fmt.Sprintf("/videos/%s/question", videoID)
	if err := c.makeRequest(ctx, http.MethodPost, path, payload, &answer); err != nil {
		return Answer{}, fmt.Errorf("ask question: %w", err)
	}
	return answer, nil
}

// Summarize requests a summary of the video. length is a free-form hint such
// as "short" or "detailed".
func (c *Client) Summarize(ctx context.Context, videoID, length, language string) (string, error) {
	var out struct {
		Summary string `json:"summary"`
	}
	payload := map[string]string{"length": length, "language": language}
	path := fmt.Sprintf("/videos/%s/summary", videoID)
	if err := c.makeRequest(ctx, http.MethodPost, path, payload, &out); err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return out.Summary, nil
}

// ListVideos returns every video the backend has processed.
func (c *Client) ListVideos(ctx context.Context) ([]Video, error) {
	var out struct {
		Videos []Video `json:"videos"`
	}
	if err := c.makeRequest(ctx, http.MethodGet, "/videos", nil, &out); err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return out.Videos, nil
}

// GetProgress samples the backend's processing status.
func (c *Client) GetProgress(ctx context.Context) (progress.Status, error) {
	var status progress.Status
	if err := c.makeRequest(ctx, http.MethodGet, "/progress", nil, &status); err != nil {
		return progress.Status{}, fmt.Errorf("get progress: %w", err)
	}
	return status, nil
}

// DeleteVideo removes a processed video from the backend.
func (c *Client) DeleteVideo(ctx context.Context, videoID string) error {
	path := fmt.Sprintf("/videos/%s", videoID)
	if err := c.makeRequest(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	return nil
}

// SetVideoLanguage pushes the preferred answer language for a video.
func (c *Client) SetVideoLanguage(ctx context.Context, videoID, language string) error {
	path := fmt.Sprintf("/videos/%s/language", videoID)
	payload := map[string]string{"language": language}
	if err := c.makeRequest(ctx, http.MethodPost, path, payload, nil); err != nil {
		return fmt.Errorf("set video language: %w", err)
	}
	return nil
}

// makeRequest makes a raw HTTP request and decodes the JSON response into
// out when out is non-nil. Non-2xx responses become an *APIError with the
// "detail" field extracted from the body when one is present.
func (c *Client) makeRequest(ctx context.Context, method, path string, payload, out interface{}) error {
	url := c.baseURL + path

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if os.IsTimeout(err) {
			return fmt.Errorf("request timed out: %w", err)
		}
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(responseBody, &errBody) == nil {
			apiErr.Detail = errBody.Detail
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(responseBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}
