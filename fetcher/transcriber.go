package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ewintr.nl/ytinsight/model"
	"golang.org/x/exp/slog"
)

type TranscriberInfo struct {
	Endpoint string
	APIKey   string
}

// Transcriber delegates speech-to-text to a remote backend. It expects
// {"url": "..."} and answers with segments in seconds. Failures are not
// retried.
type Transcriber struct {
	info       TranscriberInfo
	httpClient *http.Client
	logger     *slog.Logger
}

func NewTranscriber(info TranscriberInfo, httpClient *http.Client, logger *slog.Logger) *Transcriber {
	return &Transcriber{
		info:       info,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (t *Transcriber) TranscribeAudio(ctx context.Context, videoURL string) (model.Transcript, error) {
	if strings.TrimSpace(videoURL) == "" {
		return model.Transcript{}, InvalidInput("Video URL is required", errors.New("empty video url"))
	}
	if t.info.Endpoint == "" {
		return model.Transcript{}, TranscriptionFailed(http.StatusServiceUnavailable, errors.New("audio transcription backend is not configured"))
	}

	payload, err := json.Marshal(map[string]string{"url": videoURL})
	if err != nil {
		return model.Transcript{}, TranscriptionFailed(0, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.info.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return model.Transcript{}, TranscriptionFailed(0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.info.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.info.APIKey)
	}

	t.logger.Info("transcribing audio", slog.String("url", videoURL))
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return model.Transcript{}, TranscriptionFailed(0, fmt.Errorf("backend unreachable: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := readSnippet(resp)
		return model.Transcript{}, TranscriptionFailed(resp.StatusCode, backendError(resp.StatusCode, body))
	}
	defer resp.Body.Close()

	var out struct {
		Transcript []model.Segment `json:"transcript"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return model.Transcript{}, TranscriptionFailed(0, fmt.Errorf("could not decode backend response: %w", err))
	}
	if out.Transcript == nil {
		return model.Transcript{}, TranscriptionFailed(0, errors.New("backend response has no transcript"))
	}
	for i, s := range out.Transcript {
		if s.Start < 0 || s.Duration < 0 {
			return model.Transcript{}, TranscriptionFailed(0, fmt.Errorf("segment %d has negative timing", i))
		}
	}

	t.logger.Info("transcribed audio", slog.String("url", videoURL), slog.Int("segments", len(out.Transcript)))
	return model.NewTranscript(out.Transcript), nil
}

// backendError keeps the backend's own {error, message} wording when it
// sends one.
func backendError(status int, body string) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err == nil {
		switch {
		case payload.Message != "":
			return errors.New(payload.Message)
		case payload.Error != "":
			return errors.New(payload.Error)
		}
	}
	if body == "" {
		return fmt.Errorf("backend returned status %d", status)
	}
	return fmt.Errorf("backend returned status %d: %s", status, body)
}
