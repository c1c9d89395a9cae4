package fetcher

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindInvalidInput        Kind = "invalid_input"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindCaptionsUnavailable Kind = "captions_unavailable"
	KindTranscriptionFailed Kind = "transcription_failed"
	KindAnalysisFailed      Kind = "analysis_failed"
)

// Error is the failure type of every collaborator. Title is the short,
// user facing description; Err carries the detail.
type Error struct {
	Kind   Kind
	Status int
	Title  string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Title
	}
	return fmt.Sprintf("%s: %v", e.Title, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message is the detail part of the error, without the title.
func (e *Error) Message() string {
	if e.Err == nil {
		return e.Title
	}
	return e.Err.Error()
}

func InvalidInput(title string, err error) *Error {
	return &Error{Kind: KindInvalidInput, Status: http.StatusBadRequest, Title: title, Err: err}
}

func UpstreamUnavailable(status int, title string, err error) *Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return &Error{Kind: KindUpstreamUnavailable, Status: status, Title: title, Err: err}
}

func CaptionsUnavailable(title string, err error) *Error {
	return &Error{Kind: KindCaptionsUnavailable, Status: http.StatusNotFound, Title: title, Err: err}
}

func TranscriptionFailed(status int, err error) *Error {
	if status == 0 {
		status = http.StatusBadGateway
	}
	return &Error{Kind: KindTranscriptionFailed, Status: status, Title: "Failed to transcribe audio", Err: err}
}

func AnalysisFailed(err error) *Error {
	return &Error{Kind: KindAnalysisFailed, Status: http.StatusInternalServerError, Title: "Failed to analyze transcript", Err: err}
}

// KindOf returns the kind of the first *Error in the chain, or "" if there
// is none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
