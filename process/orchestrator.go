package process

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ewintr.nl/ytinsight/fetcher"
	"ewintr.nl/ytinsight/model"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

var (
	ErrBusy       = errors.New("a video is already being processed")
	ErrNotIdle    = errors.New("a result is still displayed, reset first")
	ErrSuperseded = errors.New("submission was superseded by a reset")
)

type Option func(*Orchestrator)

// WithPhaseHook registers a function that receives every new session after
// a transition. It is called without the lock held.
func WithPhaseHook(hook func(Session)) Option {
	return func(o *Orchestrator) {
		o.hook = hook
	}
}

func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) {
		o.notifier = n
	}
}

// Orchestrator drives a submission from URL to analysis. It owns the
// session; only one submission runs at a time.
type Orchestrator struct {
	steps    *Steps
	notifier Notifier
	hook     func(Session)
	logger   *slog.Logger

	mu      sync.Mutex
	session Session
	token   uint64
}

func NewOrchestrator(steps *Steps, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		steps:    steps,
		notifier: discardNotifier{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Session() Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

// Reset clears the session from any phase. A submission still in flight
// keeps running, but its results are discarded.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.token++
	o.session, _ = Next(o.session, Event{Kind: EventResetRequested})
	s := o.session
	o.mu.Unlock()

	o.logger.Info("session reset")
	o.publish(s)
	o.notifier.Notify(Notification{
		Title:       "Ready for a new video!",
		Description: "Enter another YouTube URL to get started.",
		Severity:    SeverityInfo,
		Duration:    durationShort,
	})
}

// ProcessVideo runs the whole acquisition for url. It returns nil when the
// session reached the done phase, and the fatal error otherwise. After a
// fatal error the session is back in the input phase and empty.
func (o *Orchestrator) ProcessVideo(ctx context.Context, url string) error {
	id, ok := fetcher.ExtractVideoID(url)
	if !ok {
		return fetcher.InvalidInput("Invalid YouTube URL", fmt.Errorf("could not find a video id in %q", url))
	}

	o.mu.Lock()
	switch {
	case o.session.Loading:
		o.mu.Unlock()
		return ErrBusy
	case o.session.Phase != PhaseInput:
		o.mu.Unlock()
		return ErrNotIdle
	}
	o.token++
	token := o.token
	s, err := Next(o.session, Event{Kind: EventSubmitted, URL: url, VideoID: id})
	if err != nil {
		o.mu.Unlock()
		return err
	}
	o.session = s
	o.mu.Unlock()

	logger := o.logger.With(slog.String("submission", uuid.NewString()), slog.String("video", string(id)))
	logger.Info("processing video")
	o.publish(s)
	o.notifier.Notify(Notification{
		Title:       "Processing video...",
		Description: "Fetching video information and transcribing audio.",
		Severity:    SeverityInfo,
		Duration:    durationLong,
	})

	for {
		step := o.steps.Next(s)
		if step == nil {
			return fmt.Errorf("%w: no step for phase %s", ErrInvalidTransition, s.Phase)
		}

		logger.Info("running step", slog.String("step", step.Name()))
		o.announce(s)
		ev := step.Do(ctx, s)

		o.mu.Lock()
		if o.token != token {
			o.mu.Unlock()
			logger.Info("discarding stale result", slog.String("step", step.Name()))
			return ErrSuperseded
		}
		next, err := Next(o.session, ev)
		if err != nil {
			o.mu.Unlock()
			logger.Error("unexpected step outcome", slog.String("error", err.Error()))
			return err
		}
		o.session = next
		o.mu.Unlock()

		s = next
		o.publish(s)
		o.report(logger, ev, s)

		switch s.Phase {
		case PhaseDone:
			logger.Info("video processed", slog.String("source", string(s.Source)))
			return nil
		case PhaseFailed:
			o.recover(token)
			return ev.Err
		}
	}
}

// recover moves a failed session back to input, unless a reset already did.
func (o *Orchestrator) recover(token uint64) {
	o.mu.Lock()
	if o.token != token {
		o.mu.Unlock()
		return
	}
	s, err := Next(o.session, Event{Kind: EventRecovered})
	if err != nil {
		o.mu.Unlock()
		return
	}
	o.session = s
	o.mu.Unlock()
	o.publish(s)
}

func (o *Orchestrator) publish(s Session) {
	if o.hook != nil {
		o.hook(s)
	}
}

// announce tells the user which attempt is starting.
func (o *Orchestrator) announce(s Session) {
	switch s.Phase {
	case PhaseExtractingCaptions:
		o.notifier.Notify(Notification{
			Title:       "Extracting Transcript",
			Description: "Attempting to extract captions from the YouTube video.",
			Severity:    SeverityInfo,
			Duration:    durationLong,
		})
	case PhaseTranscribingAudio:
		o.notifier.Notify(Notification{
			Title:       "Transcribing Audio",
			Description: "Converting video to audio and transcribing it.",
			Severity:    SeverityInfo,
			Duration:    durationLong,
		})
	case PhaseAnalyzing:
		o.notifier.Notify(Notification{
			Title:       "Analyzing Transcript",
			Description: "Our AI is generating insights from the transcript.",
			Severity:    SeverityInfo,
			Duration:    durationLong,
		})
	}
}

// report tells the user how an attempt ended.
func (o *Orchestrator) report(logger *slog.Logger, ev Event, s Session) {
	switch ev.Kind {
	case EventInfoFetched:
		o.notifier.Notify(Notification{
			Title:       "Video Info Fetched",
			Description: fmt.Sprintf("Found video: %q", ev.Video.Title),
			Severity:    SeverityInfo,
			Duration:    durationShort,
		})
	case EventCaptionsExtracted:
		o.notifier.Notify(Notification{
			Title:       "Transcript Extracted",
			Description: fmt.Sprintf("Successfully extracted %d segments from captions.", ev.Transcript.TotalSegments),
			Severity:    SeverityInfo,
			Duration:    durationShort,
		})
	case EventCaptionsFailed:
		logCaptionFailure(logger, ev.Err)
		o.notifier.Notify(Notification{
			Title:       "Captions Not Found",
			Description: "No captions available. Attempting audio transcription.",
			Severity:    SeverityWarning,
			Duration:    durationMedium,
		})
	case EventAudioTranscribed:
		o.notifier.Notify(Notification{
			Title:       "Audio Transcribed",
			Description: fmt.Sprintf("Successfully transcribed %d segments from audio.", ev.Transcript.TotalSegments),
			Severity:    SeverityInfo,
			Duration:    durationShort,
		})
	case EventAnalyzed:
		o.notifier.Notify(Notification{
			Title:       "Analysis Complete!",
			Description: "AI insights are ready.",
			Severity:    SeveritySuccess,
			Duration:    durationMedium,
		})
	case EventStepFailed:
		logger.Error("failed to process video", slog.String("phase", s.Phase.String()), slog.String("error", errString(ev.Err)))
		title, message := Describe(ev.Err)
		o.notifier.Notify(Notification{
			Title:       title,
			Description: message,
			Severity:    SeverityError,
			Duration:    durationMedium,
		})
	}
}

func logCaptionFailure(logger *slog.Logger, err error) {
	logger.Warn("captions unavailable, falling back to audio", slog.String("kind", string(fetcher.KindOf(err))), slog.String("error", errString(err)))
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Result is a snapshot of a finished session.
type Result struct {
	Video      model.VideoMetadata
	Transcript model.Transcript
	Source     model.TranscriptSource
	Analysis   model.Analysis
}

// Result returns the outcome of the last submission, if it completed.
func (o *Orchestrator) Result() (Result, bool) {
	s := o.Session()
	if s.Phase != PhaseDone || s.Video == nil || s.Transcript == nil || s.Analysis == nil {
		return Result{}, false
	}
	return Result{
		Video:      *s.Video,
		Transcript: *s.Transcript,
		Source:     s.Source,
		Analysis:   *s.Analysis,
	}, true
}
