package process

import (
	"context"
	"fmt"

	"ewintr.nl/ytinsight/fetcher"
	"ewintr.nl/ytinsight/model"
)

// Step runs the work of one phase and reports its outcome as an event.
type Step interface {
	Name() string
	Do(ctx context.Context, s Session) Event
}

type Steps struct {
	steps map[Phase]Step
}

func NewSteps(resolver fetcher.VideoInfoFetcher, captions fetcher.CaptionFetcher, audio fetcher.AudioTranscriber, analyzer fetcher.TranscriptAnalyzer) *Steps {
	return &Steps{
		steps: map[Phase]Step{
			PhaseFetchingInfo:       &infoStep{resolver: resolver},
			PhaseExtractingCaptions: &captionStep{captions: captions},
			PhaseTranscribingAudio:  &audioStep{audio: audio},
			PhaseAnalyzing:          &analyzeStep{analyzer: analyzer},
		},
	}
}

// Next returns the step for the phase the session is in, or nil when there
// is nothing left to do.
func (s *Steps) Next(session Session) Step {
	return s.steps[session.Phase]
}

type infoStep struct {
	resolver fetcher.VideoInfoFetcher
}

func (st *infoStep) Name() string { return "video info" }

func (st *infoStep) Do(ctx context.Context, s Session) Event {
	video, err := st.resolver.VideoInfo(ctx, s.URL)
	if err != nil {
		return Event{Kind: EventStepFailed, Err: err}
	}
	return Event{Kind: EventInfoFetched, Video: video}
}

type captionStep struct {
	captions fetcher.CaptionFetcher
}

func (st *captionStep) Name() string { return "captions" }

// Do never fails the submission: any error here means the audio path is
// tried next.
func (st *captionStep) Do(ctx context.Context, s Session) Event {
	id, ok := fetcher.ExtractVideoID(s.URL)
	if !ok {
		return Event{Kind: EventCaptionsFailed, Err: fmt.Errorf("no video id in %q", s.URL)}
	}
	tr, err := st.captions.ExtractCaptions(ctx, id)
	if err != nil {
		return Event{Kind: EventCaptionsFailed, Err: err}
	}
	return Event{Kind: EventCaptionsExtracted, Transcript: tr}
}

type audioStep struct {
	audio fetcher.AudioTranscriber
}

func (st *audioStep) Name() string { return "audio transcription" }

func (st *audioStep) Do(ctx context.Context, s Session) Event {
	tr, err := st.audio.TranscribeAudio(ctx, s.URL)
	if err != nil {
		return Event{Kind: EventStepFailed, Err: err}
	}
	return Event{Kind: EventAudioTranscribed, Transcript: tr}
}

type analyzeStep struct {
	analyzer fetcher.TranscriptAnalyzer
}

func (st *analyzeStep) Name() string { return "analysis" }

func (st *analyzeStep) Do(ctx context.Context, s Session) Event {
	var segments []model.Segment
	if s.Transcript != nil {
		segments = s.Transcript.Segments
	}
	title := ""
	if s.Video != nil {
		title = s.Video.Title
	}
	analysis, err := st.analyzer.Analyze(ctx, segments, title)
	if err != nil {
		return Event{Kind: EventStepFailed, Err: err}
	}
	return Event{Kind: EventAnalyzed, Analysis: analysis}
}
