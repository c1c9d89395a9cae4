// Package report renders transcripts and analyses as plain text.
package report

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"strings"

	"ewintr.nl/ytinsight/model"
)

// FormatTimestamp renders an offset in seconds as m:ss. Minutes are not
// wrapped into hours.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// Search returns the segments whose text contains term, ignoring case. An
// empty term matches everything.
func Search(segments []model.Segment, term string) []model.Segment {
	if term == "" {
		return segments
	}
	needle := strings.ToLower(term)
	out := make([]model.Segment, 0, len(segments))
	for _, s := range segments {
		if strings.Contains(strings.ToLower(s.Text), needle) {
			out = append(out, s)
		}
	}
	return out
}

// Highlight wraps every case-insensitive occurrence of term in text with
// mark.
func Highlight(text, term string, mark func(string) string) string {
	if term == "" {
		return text
	}
	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(term))
	return re.ReplaceAllStringFunc(text, mark)
}

// TranscriptText is the export format of a transcript: one "[m:ss] text"
// block per segment, separated by blank lines.
func TranscriptText(segments []model.Segment) string {
	blocks := make([]string, 0, len(segments))
	for _, s := range segments {
		blocks = append(blocks, fmt.Sprintf("[%s] %s", FormatTimestamp(s.Start), s.Text))
	}
	return strings.Join(blocks, "\n\n")
}

func AnalysisText(a model.Analysis) string {
	keyPoints := make([]string, 0, len(a.KeyPoints))
	for _, p := range a.KeyPoints {
		keyPoints = append(keyPoints, "• "+p)
	}
	actionItems := make([]string, 0, len(a.ActionItems))
	for _, it := range a.ActionItems {
		actionItems = append(actionItems, "□ "+it)
	}

	var b strings.Builder
	b.WriteString("AI ANALYSIS REPORT\n\n")
	fmt.Fprintf(&b, "SUMMARY:\n%s\n\n", a.Summary)
	fmt.Fprintf(&b, "KEY POINTS:\n%s\n\n", strings.Join(keyPoints, "\n"))
	fmt.Fprintf(&b, "ACTION ITEMS:\n%s\n\n", strings.Join(actionItems, "\n"))
	fmt.Fprintf(&b, "TOPICS:\n%s\n\n", strings.Join(a.Topics, ", "))
	fmt.Fprintf(&b, "SENTIMENT: %s", strings.ToUpper(string(a.Sentiment)))
	return b.String()
}

type Options struct {
	Search     string
	Timestamps bool
	Analysis   bool
}

// Write prints the result of one processed video.
func Write(w io.Writer, video model.VideoMetadata, tr model.Transcript, source model.TranscriptSource, analysis model.Analysis, opts Options) error {
	mark := func(s string) string { return "[" + s + "]" }

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s · %s · %d views\n", video.Title, video.Channel, video.Duration, video.ViewCount)
	fmt.Fprintf(&b, "%s\n\n", model.WatchURL(video.ID))

	segments := Search(tr.Segments, opts.Search)
	fmt.Fprintf(&b, "TRANSCRIPT (%s, %d of %d segments, %s):\n", source, len(segments), tr.TotalSegments, FormatTimestamp(tr.TotalDuration))
	for _, s := range segments {
		text := Highlight(s.Text, opts.Search, mark)
		if opts.Timestamps {
			fmt.Fprintf(&b, "%6s  %s\n", FormatTimestamp(s.Start), text)
			continue
		}
		fmt.Fprintln(&b, text)
	}

	if opts.Analysis {
		fmt.Fprintf(&b, "\n%s\n", AnalysisText(analysis))
		fmt.Fprintf(&b, "\n%d words, %d min read\n", analysis.WordCount, analysis.ReadingTime)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
