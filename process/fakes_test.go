package process

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"ewintr.nl/ytinsight/model"
	"golang.org/x/exp/slog"
)

type fakeResolver struct {
	calls   atomic.Int32
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeResolver) VideoInfo(ctx context.Context, url string) (model.VideoMetadata, error) {
	f.calls.Add(1)
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	if f.err != nil {
		return model.VideoMetadata{}, f.err
	}
	return model.VideoMetadata{ID: "abc123", Title: "Go Talk", Channel: "Gopher TV"}, nil
}

type fakeCaptions struct {
	calls    atomic.Int32
	segments []model.Segment
	err      error
}

func (f *fakeCaptions) ExtractCaptions(ctx context.Context, id model.YoutubeVideoID) (model.Transcript, error) {
	f.calls.Add(1)
	if f.err != nil {
		return model.Transcript{}, f.err
	}
	return model.NewTranscript(f.segments), nil
}

type fakeAudio struct {
	calls    atomic.Int32
	mu       sync.Mutex
	urls     []string
	segments []model.Segment
	err      error
}

func (f *fakeAudio) TranscribeAudio(ctx context.Context, url string) (model.Transcript, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.urls = append(f.urls, url)
	f.mu.Unlock()
	if f.err != nil {
		return model.Transcript{}, f.err
	}
	return model.NewTranscript(f.segments), nil
}

type fakeAnalyzer struct {
	calls atomic.Int32
	title string
	err   error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, segments []model.Segment, title string) (model.Analysis, error) {
	f.calls.Add(1)
	f.title = title
	if f.err != nil {
		return model.Analysis{}, f.err
	}
	words := model.WordCount(model.JoinText(segments))
	return model.Analysis{
		Summary:     "summary",
		Sentiment:   model.SentimentNeutral,
		WordCount:   words,
		ReadingTime: model.ReadingTime(words),
	}, nil
}

type recorder struct {
	mu            sync.Mutex
	phases        []Phase
	notifications []Notification
}

func (r *recorder) hook(s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, s.Phase)
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

func (r *recorder) bySeverity(sev Severity) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Notification
	for _, n := range r.notifications {
		if n.Severity == sev {
			out = append(out, n)
		}
	}
	return out
}

func (r *recorder) seenPhases() []Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Phase(nil), r.phases...)
}

type fixture struct {
	resolver *fakeResolver
	captions *fakeCaptions
	audio    *fakeAudio
	analyzer *fakeAnalyzer
	rec      *recorder
	orch     *Orchestrator
}

func threeSegments() []model.Segment {
	return []model.Segment{
		{Text: "one", Start: 0, Duration: 1},
		{Text: "two", Start: 1, Duration: 1},
		{Text: "three", Start: 2, Duration: 1.5},
	}
}

func newFixture() *fixture {
	f := &fixture{
		resolver: &fakeResolver{},
		captions: &fakeCaptions{segments: threeSegments()},
		audio:    &fakeAudio{segments: []model.Segment{{Text: "from audio", Start: 0, Duration: 2}}},
		analyzer: &fakeAnalyzer{},
		rec:      &recorder{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.orch = NewOrchestrator(
		NewSteps(f.resolver, f.captions, f.audio, f.analyzer),
		logger,
		WithNotifier(f.rec),
		WithPhaseHook(f.rec.hook),
	)
	return f
}
