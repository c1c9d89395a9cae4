package model

import "strings"

type TranscriptSource string

const (
	SourceNone     TranscriptSource = ""
	SourceCaptions TranscriptSource = "captions"
	SourceAudio    TranscriptSource = "audio"
)

// Segment is one timed unit of transcript text. Start and Duration are
// always in seconds.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

type Transcript struct {
	Segments      []Segment `json:"transcript"`
	TotalSegments int       `json:"totalSegments"`
	TotalDuration float64   `json:"totalDuration"`
}

// NewTranscript keeps the segments in playback order and derives the totals.
func NewTranscript(segments []Segment) Transcript {
	if segments == nil {
		segments = []Segment{}
	}
	total := 0.0
	for _, s := range segments {
		total += s.Duration
	}
	return Transcript{
		Segments:      segments,
		TotalSegments: len(segments),
		TotalDuration: total,
	}
}

// Text joins all segment texts with single spaces.
func (t Transcript) Text() string {
	return JoinText(t.Segments)
}

func JoinText(segments []Segment) string {
	texts := make([]string, 0, len(segments))
	for _, s := range segments {
		texts = append(texts, s.Text)
	}
	return strings.Join(texts, " ")
}
