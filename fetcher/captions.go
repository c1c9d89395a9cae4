package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"ewintr.nl/ytinsight/model"
	"golang.org/x/exp/slog"
)

const (
	DefaultInnertubeEndpoint = "https://www.youtube.com/youtubei/v1/player"
	innertubeClientName      = "ANDROID"
	innertubeClientVersion   = "19.09.37"
	innertubeUserAgent       = "com.google.android.youtube/19.09.37 (Linux; Android 2.3.7)"
)

var (
	errTranscriptDisabled = errors.New("Transcript is disabled on this video")
	errVideoUnavailable   = errors.New("Video unavailable")
)

type CaptionsInfo struct {
	PlayerEndpoint string
	Language       string
	Retry          RetryConfig
}

// Captions fetches the caption track YouTube already has for a video.
type Captions struct {
	info       CaptionsInfo
	httpClient *http.Client
	logger     *slog.Logger
}

func NewCaptions(info CaptionsInfo, httpClient *http.Client, logger *slog.Logger) *Captions {
	if info.PlayerEndpoint == "" {
		info.PlayerEndpoint = DefaultInnertubeEndpoint
	}
	if info.Language == "" {
		info.Language = "en"
	}
	if info.Retry.MaxTries == 0 {
		info.Retry = DefaultRetryConfig
	}
	return &Captions{
		info:       info,
		httpClient: httpClient,
		logger:     logger,
	}
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

func (c *Captions) ExtractCaptions(ctx context.Context, videoID model.YoutubeVideoID) (model.Transcript, error) {
	if videoID == "" {
		return model.Transcript{}, InvalidInput("Video ID is required", errors.New("empty video id"))
	}

	c.logger.Info("extracting captions", slog.String("video", string(videoID)))
	segments, err := c.fetch(ctx, videoID)
	if err != nil {
		return model.Transcript{}, c.classify(videoID, err)
	}

	c.logger.Info("extracted captions", slog.String("video", string(videoID)), slog.Int("segments", len(segments)))
	return model.NewTranscript(segments), nil
}

func (c *Captions) fetch(ctx context.Context, videoID model.YoutubeVideoID) ([]model.Segment, error) {
	tracks, err := c.tracks(ctx, videoID)
	if err != nil {
		return nil, err
	}
	track, ok := pickTrack(tracks, c.info.Language)
	if !ok {
		return nil, errTranscriptDisabled
	}

	trackURL, err := url.Parse(track.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid caption track url: %w", err)
	}
	q := trackURL.Query()
	q.Set("fmt", "json3")
	trackURL.RawQuery = q.Encode()

	resp, err := doWithRetry(ctx, c.httpClient, c.info.Retry, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, trackURL.String(), nil)
	})
	if err != nil {
		return nil, fmt.Errorf("caption track request failed: %w", err)
	}
	defer resp.Body.Close()

	var timedText struct {
		Events []struct {
			TStartMs    float64 `json:"tStartMs"`
			DDurationMs float64 `json:"dDurationMs"`
			Segs        []struct {
				UTF8 string `json:"utf8"`
			} `json:"segs"`
		} `json:"events"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&timedText); err != nil {
		return nil, fmt.Errorf("could not decode caption track: %w", err)
	}

	segments := make([]model.Segment, 0, len(timedText.Events))
	for _, ev := range timedText.Events {
		var b strings.Builder
		for _, s := range ev.Segs {
			b.WriteString(s.UTF8)
		}
		text := strings.Join(strings.Fields(b.String()), " ")
		if text == "" {
			continue
		}
		segments = append(segments, model.Segment{
			Text:     text,
			Start:    ev.TStartMs / 1000,
			Duration: ev.DDurationMs / 1000,
		})
	}
	if len(segments) == 0 {
		return nil, errTranscriptDisabled
	}

	return segments, nil
}

func (c *Captions) tracks(ctx context.Context, videoID model.YoutubeVideoID) ([]captionTrack, error) {
	body := map[string]any{
		"videoId": string(videoID),
		"context": map[string]any{
			"client": map[string]any{
				"hl":            c.info.Language,
				"gl":            "US",
				"clientName":    innertubeClientName,
				"clientVersion": innertubeClientVersion,
			},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	resp, err := doWithRetry(ctx, c.httpClient, c.info.Retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.info.PlayerEndpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", innertubeUserAgent)
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("player request failed: %w", err)
	}
	defer resp.Body.Close()

	var player struct {
		PlayabilityStatus struct {
			Status string `json:"status"`
			Reason string `json:"reason"`
		} `json:"playabilityStatus"`
		Captions struct {
			Renderer struct {
				CaptionTracks []captionTrack `json:"captionTracks"`
			} `json:"playerCaptionsTracklistRenderer"`
		} `json:"captions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&player); err != nil {
		return nil, fmt.Errorf("could not decode player response: %w", err)
	}

	if status := player.PlayabilityStatus.Status; status != "" && status != "OK" {
		return nil, fmt.Errorf("%w: %s %s", errVideoUnavailable, status, player.PlayabilityStatus.Reason)
	}

	return player.Captions.Renderer.CaptionTracks, nil
}

// pickTrack prefers the configured language, and manual tracks over
// auto-generated ones.
func pickTrack(tracks []captionTrack, lang string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if t.BaseURL != "" {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}

	matches := []func(captionTrack) bool{
		func(t captionTrack) bool { return t.LanguageCode == lang && t.Kind != "asr" },
		func(t captionTrack) bool { return t.LanguageCode == lang },
		func(t captionTrack) bool { return t.Kind != "asr" },
	}
	for _, match := range matches {
		for _, t := range usable {
			if match(t) {
				return t, true
			}
		}
	}

	return usable[0], true
}

type reasonError struct {
	msg string
	err error
}

func (e *reasonError) Error() string { return e.msg }
func (e *reasonError) Unwrap() error { return e.err }

// classify maps a raw extraction failure to the error reported to callers.
// The disabled and unavailable cases are told apart by their text.
func (c *Captions) classify(videoID model.YoutubeVideoID, err error) error {
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "Transcript is disabled"):
		c.logger.Info("captions disabled", slog.String("video", string(videoID)))
		return CaptionsUnavailable("Transcript not available", &reasonError{msg: "This video does not have captions enabled or available.", err: err})
	case strings.Contains(msg, "Video unavailable"):
		c.logger.Info("video unavailable", slog.String("video", string(videoID)), slog.String("error", msg))
		return CaptionsUnavailable("Video not found", &reasonError{msg: "The video is private, deleted, or does not exist.", err: err})
	}

	c.logger.Error("failed to extract captions", slog.String("video", string(videoID)), slog.String("error", msg))
	return UpstreamUnavailable(http.StatusInternalServerError, "Failed to extract transcript", err)
}
