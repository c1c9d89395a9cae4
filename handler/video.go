package handler

import (
	"errors"
	"net/http"
	"strings"

	"ewintr.nl/ytinsight/fetcher"
	"golang.org/x/exp/slog"
)

type VideoAPI struct {
	resolver fetcher.VideoInfoFetcher
	logger   *slog.Logger
}

func NewVideoAPI(resolver fetcher.VideoInfoFetcher, logger *slog.Logger) *VideoAPI {
	return &VideoAPI{
		resolver: resolver,
		logger:   logger,
	}
}

func (v *VideoAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sub, _ := ShiftPath(r.URL.Path)

	switch {
	case sub == "info" && r.Method == http.MethodPost:
		v.Info(w, r)
	case sub == "info":
		MethodNotAllowed(w, r, http.MethodPost)
	default:
		NotFound(w, r)
	}
}

func (v *VideoAPI) Info(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := decodeBody(w, r, &req); err != nil || strings.TrimSpace(req.URL) == "" {
		Error(w, http.StatusBadRequest, "URL is required and must be a string", errors.New("request body must be {\"url\": string}"))
		return
	}

	video, err := v.resolver.VideoInfo(r.Context(), req.URL)
	if err != nil {
		v.logger.Error("could not fetch video info", slog.String("url", req.URL), slog.String("error", err.Error()))
		Failure(w, err)
		return
	}

	JSON(w, http.StatusOK, video)
}
