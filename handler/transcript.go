package handler

import (
	"errors"
	"net/http"
	"strings"

	"ewintr.nl/ytinsight/fetcher"
	"ewintr.nl/ytinsight/model"
	"golang.org/x/exp/slog"
)

type TranscriptAPI struct {
	captions fetcher.CaptionFetcher
	logger   *slog.Logger
}

func NewTranscriptAPI(captions fetcher.CaptionFetcher, logger *slog.Logger) *TranscriptAPI {
	return &TranscriptAPI{
		captions: captions,
		logger:   logger,
	}
}

func (t *TranscriptAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sub, _ := ShiftPath(r.URL.Path)

	switch {
	case sub == "extract" && r.Method == http.MethodPost:
		t.Extract(w, r)
	case sub == "extract":
		MethodNotAllowed(w, r, http.MethodPost)
	default:
		NotFound(w, r)
	}
}

func (t *TranscriptAPI) Extract(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VideoID string `json:"videoId"`
	}
	if err := decodeBody(w, r, &req); err != nil || strings.TrimSpace(req.VideoID) == "" {
		Error(w, http.StatusBadRequest, "Video ID is required", errors.New("request body must be {\"videoId\": string}"))
		return
	}

	tr, err := t.captions.ExtractCaptions(r.Context(), model.YoutubeVideoID(req.VideoID))
	if err != nil {
		Failure(w, err)
		return
	}

	JSON(w, http.StatusOK, tr)
}

type TranscribeAPI struct {
	audio  fetcher.AudioTranscriber
	logger *slog.Logger
}

func NewTranscribeAPI(audio fetcher.AudioTranscriber, logger *slog.Logger) *TranscribeAPI {
	return &TranscribeAPI{
		audio:  audio,
		logger: logger,
	}
}

func (t *TranscribeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sub, _ := ShiftPath(r.URL.Path)

	switch {
	case sub == "audio" && r.Method == http.MethodPost:
		t.Audio(w, r)
	case sub == "audio":
		MethodNotAllowed(w, r, http.MethodPost)
	default:
		NotFound(w, r)
	}
}

// Audio accepts the video url as either youtube_url or videoUrl.
func (t *TranscribeAPI) Audio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		YoutubeURL string `json:"youtube_url"`
		VideoURL   string `json:"videoUrl"`
	}
	err := decodeBody(w, r, &req)
	videoURL := strings.TrimSpace(req.YoutubeURL)
	if videoURL == "" {
		videoURL = strings.TrimSpace(req.VideoURL)
	}
	if err != nil || videoURL == "" {
		Error(w, http.StatusBadRequest, "Video URL is required", errors.New("request body must be {\"youtube_url\": string} or {\"videoUrl\": string}"))
		return
	}

	tr, err := t.audio.TranscribeAudio(r.Context(), videoURL)
	if err != nil {
		t.logger.Error("could not transcribe audio", slog.String("url", videoURL), slog.String("error", err.Error()))
		Failure(w, err)
		return
	}

	JSON(w, http.StatusOK, tr)
}
