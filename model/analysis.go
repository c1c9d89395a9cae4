package model

import "strings"

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

const (
	MaxKeyPoints   = 5
	MaxActionItems = 4
	MaxTopics      = 6
	WordsPerMinute = 200
)

type Analysis struct {
	Summary     string    `json:"summary"`
	KeyPoints   []string  `json:"keyPoints"`
	ActionItems []string  `json:"actionItems"`
	Topics      []string  `json:"topics"`
	Sentiment   Sentiment `json:"sentiment"`
	ReadingTime int       `json:"readingTime"`
	WordCount   int       `json:"wordCount"`
}

// WordCount splits on any run of whitespace.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ReadingTime is the number of minutes needed at WordsPerMinute, rounded up.
func ReadingTime(words int) int {
	if words <= 0 {
		return 0
	}
	return (words + WordsPerMinute - 1) / WordsPerMinute
}
