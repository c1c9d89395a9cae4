package process

import (
	"errors"
	"fmt"

	"ewintr.nl/ytinsight/model"
)

type Phase int

const (
	PhaseInput Phase = iota
	PhaseFetchingInfo
	PhaseExtractingCaptions
	PhaseTranscribingAudio
	PhaseAnalyzing
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseFetchingInfo:
		return "fetching_info"
	case PhaseExtractingCaptions:
		return "extracting_captions"
	case PhaseTranscribingAudio:
		return "transcribing_audio"
	case PhaseAnalyzing:
		return "analyzing"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Session is everything one submission has collected so far. The zero
// value is the empty session in the input phase.
type Session struct {
	Phase      Phase
	URL        string
	VideoID    model.YoutubeVideoID
	Video      *model.VideoMetadata
	Transcript *model.Transcript
	Source     model.TranscriptSource
	Analysis   *model.Analysis
	Loading    bool
}

type EventKind int

const (
	EventSubmitted EventKind = iota
	EventInfoFetched
	EventCaptionsExtracted
	EventCaptionsFailed
	EventAudioTranscribed
	EventAnalyzed
	EventStepFailed
	EventRecovered
	EventResetRequested
)

func (k EventKind) String() string {
	switch k {
	case EventSubmitted:
		return "submitted"
	case EventInfoFetched:
		return "info_fetched"
	case EventCaptionsExtracted:
		return "captions_extracted"
	case EventCaptionsFailed:
		return "captions_failed"
	case EventAudioTranscribed:
		return "audio_transcribed"
	case EventAnalyzed:
		return "analyzed"
	case EventStepFailed:
		return "step_failed"
	case EventRecovered:
		return "recovered"
	case EventResetRequested:
		return "reset_requested"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is the outcome of a step, or an outside request. Only the fields
// that belong to Kind are set.
type Event struct {
	Kind       EventKind
	URL        string
	VideoID    model.YoutubeVideoID
	Video      model.VideoMetadata
	Transcript model.Transcript
	Analysis   model.Analysis
	Err        error
}

var ErrInvalidTransition = errors.New("invalid transition")

// Next returns the session that results from applying ev to s. It has no
// side effects; s is never modified.
func Next(s Session, ev Event) (Session, error) {
	invalid := func() (Session, error) {
		return s, fmt.Errorf("%w: %s in phase %s", ErrInvalidTransition, ev.Kind, s.Phase)
	}

	switch ev.Kind {
	case EventResetRequested:
		return Session{}, nil

	case EventSubmitted:
		if s.Phase != PhaseInput {
			return invalid()
		}
		return Session{
			Phase:   PhaseFetchingInfo,
			URL:     ev.URL,
			VideoID: ev.VideoID,
			Loading: true,
		}, nil

	case EventInfoFetched:
		if s.Phase != PhaseFetchingInfo {
			return invalid()
		}
		video := ev.Video
		s.Video = &video
		s.Phase = PhaseExtractingCaptions
		return s, nil

	case EventCaptionsExtracted:
		if s.Phase != PhaseExtractingCaptions {
			return invalid()
		}
		tr := ev.Transcript
		s.Transcript = &tr
		s.Source = model.SourceCaptions
		s.Phase = PhaseAnalyzing
		return s, nil

	case EventCaptionsFailed:
		if s.Phase != PhaseExtractingCaptions {
			return invalid()
		}
		s.Phase = PhaseTranscribingAudio
		return s, nil

	case EventAudioTranscribed:
		if s.Phase != PhaseTranscribingAudio {
			return invalid()
		}
		tr := ev.Transcript
		s.Transcript = &tr
		s.Source = model.SourceAudio
		s.Phase = PhaseAnalyzing
		return s, nil

	case EventAnalyzed:
		if s.Phase != PhaseAnalyzing {
			return invalid()
		}
		analysis := ev.Analysis
		s.Analysis = &analysis
		s.Phase = PhaseDone
		s.Loading = false
		return s, nil

	case EventStepFailed:
		switch s.Phase {
		case PhaseFetchingInfo, PhaseTranscribingAudio, PhaseAnalyzing:
		default:
			return invalid()
		}
		s.Phase = PhaseFailed
		s.Loading = false
		return s, nil

	case EventRecovered:
		if s.Phase != PhaseFailed {
			return invalid()
		}
		return Session{}, nil
	}

	return invalid()
}
