package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"ewintr.nl/ytinsight/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscribeAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://www.youtube.com/watch?v=abc123", body["url"])
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"transcript":[{"text":"first","start":0,"duration":2.5},{"text":"second","start":2.5,"duration":1}],"totalSegments":99}`)
	}))
	t.Cleanup(srv.Close)

	tr := NewTranscriber(TranscriberInfo{Endpoint: srv.URL, APIKey: "secret"}, srv.Client(), testLogger())
	got, err := tr.TranscribeAudio(context.Background(), "https://www.youtube.com/watch?v=abc123")
	require.NoError(t, err)
	assert.Equal(t, []model.Segment{
		{Text: "first", Start: 0, Duration: 2.5},
		{Text: "second", Start: 2.5, Duration: 1},
	}, got.Segments)
	assert.Equal(t, 2, got.TotalSegments, "totals are recomputed locally")
	assert.InDelta(t, 3.5, got.TotalDuration, 1e-9)
}

func TestTranscribeAudioFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"backend error payload", http.StatusUnprocessableEntity, `{"error":"bad","message":"could not download audio"}`, http.StatusUnprocessableEntity, "could not download audio"},
		{"plain backend error", http.StatusInternalServerError, `boom`, http.StatusInternalServerError, "backend returned status 500: boom"},
		{"malformed body", http.StatusOK, `not json`, http.StatusBadGateway, ""},
		{"missing transcript", http.StatusOK, `{"text":"whole thing"}`, http.StatusBadGateway, "backend response has no transcript"},
		{"negative timing", http.StatusOK, `{"transcript":[{"text":"x","start":-1,"duration":1}]}`, http.StatusBadGateway, "segment 0 has negative timing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			tr := NewTranscriber(TranscriberInfo{Endpoint: srv.URL}, srv.Client(), testLogger())
			_, err := tr.TranscribeAudio(context.Background(), "https://youtu.be/abc")
			require.Error(t, err)

			var fe *Error
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, KindTranscriptionFailed, fe.Kind)
			assert.Equal(t, tt.wantStatus, fe.Status)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, fe.Message())
			}
			assert.Equal(t, int32(1), calls.Load(), "transcription is never retried")
		})
	}
}

func TestTranscribeAudioNotConfigured(t *testing.T) {
	tr := NewTranscriber(TranscriberInfo{}, http.DefaultClient, testLogger())
	_, err := tr.TranscribeAudio(context.Background(), "https://youtu.be/abc")
	assert.Equal(t, KindTranscriptionFailed, KindOf(err))

	_, err = tr.TranscribeAudio(context.Background(), " ")
	assert.Equal(t, KindInvalidInput, KindOf(err))
}
