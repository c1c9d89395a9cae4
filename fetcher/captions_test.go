package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ewintr.nl/ytinsight/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInnertube struct {
	playability string
	tracks      string
	timedText   string
}

func (f *fakeInnertube) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/player", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			VideoID string `json:"videoId"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "abc123", body.VideoID)

		tracks := f.tracks
		if tracks == "" {
			tracks = fmt.Sprintf(`[{"baseUrl":"http://%s/timedtext?v=abc123&lang=en","languageCode":"en"}]`, r.Host)
		}
		playability := f.playability
		if playability == "" {
			playability = `{"status":"OK"}`
		}
		fmt.Fprintf(w, `{"playabilityStatus":%s,"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":%s}}}`, playability, tracks)
	})
	mux.HandleFunc("/timedtext", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json3", r.URL.Query().Get("fmt"))
		fmt.Fprint(w, f.timedText)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestCaptions(srv *httptest.Server) *Captions {
	return NewCaptions(CaptionsInfo{PlayerEndpoint: srv.URL + "/player", Language: "en", Retry: fastRetry}, srv.Client(), testLogger())
}

func TestExtractCaptions(t *testing.T) {
	fake := &fakeInnertube{
		timedText: `{"events":[
			{"tStartMs":0,"dDurationMs":1500,"segs":[{"utf8":"hello"},{"utf8":" there"}]},
			{"tStartMs":1500,"dDurationMs":2000,"segs":[{"utf8":"\n"}]},
			{"tStartMs":3500,"dDurationMs":2250,"segs":[{"utf8":"general  kenobi"}]},
			{"tStartMs":6000}
		]}`,
	}
	srv := fake.server(t)

	tr, err := newTestCaptions(srv).ExtractCaptions(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, []model.Segment{
		{Text: "hello there", Start: 0, Duration: 1.5},
		{Text: "general kenobi", Start: 3.5, Duration: 2.25},
	}, tr.Segments)
	assert.Equal(t, 2, tr.TotalSegments)
	assert.InDelta(t, 3.75, tr.TotalDuration, 1e-9)
}

func TestExtractCaptionsDisabled(t *testing.T) {
	srv := (&fakeInnertube{tracks: `[]`}).server(t)

	_, err := newTestCaptions(srv).ExtractCaptions(context.Background(), "abc123")
	require.Error(t, err)

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindCaptionsUnavailable, fe.Kind)
	assert.Equal(t, http.StatusNotFound, fe.Status)
	assert.Equal(t, "Transcript not available", fe.Title)
	assert.Equal(t, "This video does not have captions enabled or available.", fe.Message())
	assert.ErrorIs(t, err, errTranscriptDisabled)
}

func TestExtractCaptionsVideoUnavailable(t *testing.T) {
	srv := (&fakeInnertube{playability: `{"status":"ERROR","reason":"This video is private"}`}).server(t)

	_, err := newTestCaptions(srv).ExtractCaptions(context.Background(), "abc123")
	require.Error(t, err)

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindCaptionsUnavailable, fe.Kind)
	assert.Equal(t, "Video not found", fe.Title)
	assert.ErrorIs(t, err, errVideoUnavailable)
}

func TestExtractCaptionsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	_, err := newTestCaptions(srv).ExtractCaptions(context.Background(), "abc123")
	require.Error(t, err)
	assert.Equal(t, KindUpstreamUnavailable, KindOf(err))
}

func TestExtractCaptionsMissingID(t *testing.T) {
	srv := (&fakeInnertube{}).server(t)

	_, err := newTestCaptions(srv).ExtractCaptions(context.Background(), "")
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestPickTrack(t *testing.T) {
	auto := captionTrack{BaseURL: "auto", LanguageCode: "en", Kind: "asr"}
	manualDE := captionTrack{BaseURL: "de", LanguageCode: "de"}
	manualEN := captionTrack{BaseURL: "en", LanguageCode: "en"}
	empty := captionTrack{LanguageCode: "en"}

	tests := []struct {
		name   string
		tracks []captionTrack
		want   string
		wantOK bool
	}{
		{"none", nil, "", false},
		{"only empty urls", []captionTrack{empty}, "", false},
		{"manual preferred language", []captionTrack{auto, manualDE, manualEN}, "en", true},
		{"auto preferred language over other manual", []captionTrack{manualDE, auto}, "auto", true},
		{"manual other language", []captionTrack{{BaseURL: "fr-auto", LanguageCode: "fr", Kind: "asr"}, manualDE}, "de", true},
		{"anything", []captionTrack{{BaseURL: "fr-auto", LanguageCode: "fr", Kind: "asr"}}, "fr-auto", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickTrack(tt.tracks, "en")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got.BaseURL)
		})
	}
}
