// Package client talks to the ytinsight HTTP API. It implements the same
// collaborator interfaces as the in-process fetchers, so an orchestrator can
// run against a remote server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ewintr.nl/ytinsight/model"
	"golang.org/x/exp/slog"
)

// APIError is a failed API response. Its text is a JSON object so that it
// survives being passed around as a plain error message.
type APIError struct {
	Status  int    `json:"status"`
	Title   string `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Message)
	}
	return string(body)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api",
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *Client) VideoInfo(ctx context.Context, url string) (model.VideoMetadata, error) {
	var video model.VideoMetadata
	err := c.do(ctx, http.MethodPost, "/video/info", map[string]string{"url": url}, &video)
	return video, err
}

func (c *Client) ExtractCaptions(ctx context.Context, videoID model.YoutubeVideoID) (model.Transcript, error) {
	var tr model.Transcript
	err := c.do(ctx, http.MethodPost, "/transcript/extract", map[string]string{"videoId": string(videoID)}, &tr)
	return tr, err
}

func (c *Client) TranscribeAudio(ctx context.Context, videoURL string) (model.Transcript, error) {
	var tr model.Transcript
	err := c.do(ctx, http.MethodPost, "/transcribe/audio", map[string]string{"videoUrl": videoURL}, &tr)
	return tr, err
}

func (c *Client) Analyze(ctx context.Context, segments []model.Segment, videoTitle string) (model.Analysis, error) {
	req := struct {
		Transcript []model.Segment `json:"transcript"`
		VideoTitle string          `json:"videoTitle,omitempty"`
	}{
		Transcript: segments,
		VideoTitle: videoTitle,
	}
	var analysis model.Analysis
	err := c.do(ctx, http.MethodPost, "/analysis/analyze", req, &analysis)
	return analysis, err
}

type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	err := c.do(ctx, http.MethodGet, "/health", nil, &h)
	return h, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	url := c.baseURL + path

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("could not marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeAPIError(resp, url)
		c.logger.Warn("api request failed", slog.String("url", url), slog.Int("status", resp.StatusCode), slog.String("error", apiErr.Title))
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not decode response from %s: %w", url, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response, url string) *APIError {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	// a body that is not JSON leaves the defaults below in place
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload)

	apiErr := &APIError{
		Status:  resp.StatusCode,
		Title:   payload.Error,
		Message: payload.Message,
	}
	if apiErr.Title == "" {
		apiErr.Title = fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("Request to %s failed with status %d", url, resp.StatusCode)
	}
	return apiErr
}
