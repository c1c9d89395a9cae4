package fetcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ewintr.nl/ytinsight/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeOpenAI(t *testing.T, content string, check func(req map[string]any)) *OpenAI {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if check != nil {
			check(req)
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		}))
	}))
	t.Cleanup(srv.Close)

	return NewOpenAI(OpenAIInfo{APIKey: "test", BaseURL: srv.URL + "/v1"}, testLogger())
}

func wordsSegments(n int) []model.Segment {
	half := n / 2
	return []model.Segment{
		{Text: strings.TrimSpace(strings.Repeat("word ", half)), Start: 0, Duration: 10},
		{Text: strings.TrimSpace(strings.Repeat("word ", n-half)), Start: 10, Duration: 10},
	}
}

func TestAnalyze(t *testing.T) {
	content := `{"summary":"A talk about Go.","keyPoints":["a","b"],"actionItems":["try it"],"topics":["go","concurrency"],"sentiment":"positive"}`
	o := newFakeOpenAI(t, content, func(req map[string]any) {
		assert.Equal(t, "gpt-4o", req["model"])
		format, ok := req["response_format"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "json_schema", format["type"])

		messages := req["messages"].([]any)
		prompt := messages[0].(map[string]any)["content"].(string)
		assert.Contains(t, prompt, `titled "Go Talk"`)
		assert.Contains(t, prompt, "hello world")
	})

	got, err := o.Analyze(context.Background(), []model.Segment{{Text: "hello"}, {Text: "world"}}, "Go Talk")
	require.NoError(t, err)
	assert.Equal(t, model.Analysis{
		Summary:     "A talk about Go.",
		KeyPoints:   []string{"a", "b"},
		ActionItems: []string{"try it"},
		Topics:      []string{"go", "concurrency"},
		Sentiment:   model.SentimentPositive,
		WordCount:   2,
		ReadingTime: 1,
	}, got)
}

func TestAnalyzeReadingTime(t *testing.T) {
	content := `{"summary":"s","keyPoints":[],"actionItems":[],"topics":[],"sentiment":"neutral"}`
	o := newFakeOpenAI(t, content, nil)

	got, err := o.Analyze(context.Background(), wordsSegments(200), "")
	require.NoError(t, err)
	assert.Equal(t, 200, got.WordCount)
	assert.Equal(t, 1, got.ReadingTime)

	got, err = o.Analyze(context.Background(), wordsSegments(201), "")
	require.NoError(t, err)
	assert.Equal(t, 201, got.WordCount)
	assert.Equal(t, 2, got.ReadingTime)
}

func TestAnalyzeMalformedOutput(t *testing.T) {
	for _, content := range []string{
		`I cannot help with that.`,
		`{"summary":"s","keyPoints":[],"actionItems":[],"topics":[],"sentiment":"ecstatic"}`,
		`{"summary":"","sentiment":"neutral"}`,
		`{"summary": "unterminated"`,
	} {
		o := newFakeOpenAI(t, content, nil)
		_, err := o.Analyze(context.Background(), []model.Segment{{Text: "hi"}}, "")
		assert.Equal(t, KindAnalysisFailed, KindOf(err), content)
	}
}

func TestAnalyzeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	t.Cleanup(srv.Close)

	o := NewOpenAI(OpenAIInfo{APIKey: "nope", BaseURL: srv.URL + "/v1"}, testLogger())
	_, err := o.Analyze(context.Background(), []model.Segment{{Text: "hi"}}, "")
	assert.Equal(t, KindAnalysisFailed, KindOf(err))
}

func TestAnalyzeEmptyTranscript(t *testing.T) {
	o := NewOpenAI(OpenAIInfo{APIKey: "unused", BaseURL: "http://127.0.0.1:0"}, testLogger())
	_, err := o.Analyze(context.Background(), nil, "")
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestParseAnalysis(t *testing.T) {
	content := "```json\n" + `{"summary":" s ","keyPoints":["1","2","3","4","5","6","7"],"actionItems":["a","","b","c","d","e"],"topics":["t1","t2","t3","t4","t5","t6","t7"],"sentiment":"Negative"}` + "\n```"
	got, err := parseAnalysis(content)
	require.NoError(t, err)
	assert.Equal(t, "s", got.Summary)
	assert.Len(t, got.KeyPoints, model.MaxKeyPoints)
	assert.Equal(t, []string{"a", "b", "c", "d"}, got.ActionItems)
	assert.Len(t, got.Topics, model.MaxTopics)
	assert.Equal(t, model.SentimentNegative, got.Sentiment)
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"raw", `{"a":1}`, `{"a":1}`, false},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, false},
		{"preface", `sure! {"a":1} thanks`, `{"a":1}`, false},
		{"empty", "   ", "", true},
		{"nojson", "hello", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSONObject(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
