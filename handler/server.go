package handler

import (
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"time"

	"ewintr.nl/ytinsight/fetcher"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

const apiPrefix = "api"

type Server struct {
	apis   map[string]http.Handler
	logger *slog.Logger
}

func NewServer(resolver fetcher.VideoInfoFetcher, captions fetcher.CaptionFetcher, audio fetcher.AudioTranscriber, analyzer fetcher.TranscriptAnalyzer, logger *slog.Logger) *Server {
	return &Server{
		apis: map[string]http.Handler{
			"video":      NewVideoAPI(resolver, logger),
			"transcript": NewTranscriptAPI(captions, logger),
			"transcribe": NewTranscribeAPI(audio, logger),
			"analysis":   NewAnalysisAPI(analyzer, logger),
			"health":     NewHealthAPI(time.Now),
		},
		logger: logger,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	originalPath := r.URL.Path
	requestID := uuid.NewString()
	rec := httptest.NewRecorder() // records the response to be able to mix writing headers and content

	rec.Header().Set("Content-Type", "application/json")
	rec.Header().Set("X-Request-Id", requestID)

	// route to api
	head, tail := ShiftPath(r.URL.Path)
	switch {
	case head == "":
		Index(rec)
	case head != apiPrefix:
		NotFound(rec, r)
	default:
		name, rest := ShiftPath(tail)
		api, ok := s.apis[name]
		if !ok {
			NotFound(rec, r)
			break
		}
		r.URL.Path = rest
		api.ServeHTTP(rec, r)
	}

	returnResponse(w, rec)
	s.logger.Info("request served",
		slog.String("request", requestID),
		slog.String("method", r.Method),
		slog.String("path", originalPath),
		slog.Int("status", rec.Code),
	)
}

func returnResponse(w http.ResponseWriter, rec *httptest.ResponseRecorder) {
	for k, v := range rec.Header() {
		w.Header()[k] = v
	}
	w.WriteHeader(rec.Code)
	w.Write(rec.Body.Bytes())
}

// ShiftPath splits off the first component of p, which will be cleaned of
// relative components before processing. head will never contain a slash and
// tail will always be a rooted path without trailing slash.
// See https://blog.merovius.de/posts/2017-06-18-how-not-to-use-an-http-router/
func ShiftPath(p string) (string, string) {
	p = path.Clean("/" + p)

	i := strings.Index(p[1:], "/") + 1
	if i <= 0 {
		return p[1:], "/"
	}
	return p[1:i], p[i:]
}
