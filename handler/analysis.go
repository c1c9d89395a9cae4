package handler

import (
	"errors"
	"net/http"

	"ewintr.nl/ytinsight/fetcher"
	"ewintr.nl/ytinsight/model"
	"golang.org/x/exp/slog"
)

type AnalysisAPI struct {
	analyzer fetcher.TranscriptAnalyzer
	logger   *slog.Logger
}

func NewAnalysisAPI(analyzer fetcher.TranscriptAnalyzer, logger *slog.Logger) *AnalysisAPI {
	return &AnalysisAPI{
		analyzer: analyzer,
		logger:   logger,
	}
}

func (a *AnalysisAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sub, _ := ShiftPath(r.URL.Path)

	switch {
	case sub == "analyze" && r.Method == http.MethodPost:
		a.Analyze(w, r)
	case sub == "analyze":
		MethodNotAllowed(w, r, http.MethodPost)
	default:
		NotFound(w, r)
	}
}

func (a *AnalysisAPI) Analyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Transcript []model.Segment `json:"transcript"`
		VideoTitle string          `json:"videoTitle"`
	}
	if err := decodeBody(w, r, &req); err != nil || len(req.Transcript) == 0 {
		Error(w, http.StatusBadRequest, "Valid transcript array is required", errors.New("request body must contain a non-empty transcript array"))
		return
	}

	analysis, err := a.analyzer.Analyze(r.Context(), req.Transcript, req.VideoTitle)
	if err != nil {
		a.logger.Error("could not analyze transcript", slog.Int("segments", len(req.Transcript)), slog.String("error", err.Error()))
		Failure(w, err)
		return
	}

	JSON(w, http.StatusOK, analysis)
}
