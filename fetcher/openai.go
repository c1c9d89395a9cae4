package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ewintr.nl/ytinsight/model"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"golang.org/x/exp/slog"
)

const analyzePrompt = `Analyze the following YouTube video transcript titled %q.

Transcript:
%s

Based on the transcript, provide:
1. A concise summary.
2. Up to 5 key points.
3. Up to 4 actionable items or takeaways.
4. Up to 6 main topics or themes.
5. The overall sentiment (positive, negative, or neutral).

Ensure the output is a JSON object matching the provided schema.`

var analysisSchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"summary": {
			Type:        jsonschema.String,
			Description: "A concise summary of the video content.",
		},
		"keyPoints": {
			Type:        jsonschema.Array,
			Description: "Up to 5 most important key points from the video.",
			Items:       &jsonschema.Definition{Type: jsonschema.String},
		},
		"actionItems": {
			Type:        jsonschema.Array,
			Description: "Up to 4 actionable items or takeaways for the viewer.",
			Items:       &jsonschema.Definition{Type: jsonschema.String},
		},
		"topics": {
			Type:        jsonschema.Array,
			Description: "Up to 6 main topics or themes discussed in the video.",
			Items:       &jsonschema.Definition{Type: jsonschema.String},
		},
		"sentiment": {
			Type:        jsonschema.String,
			Description: "Overall sentiment of the video content.",
			Enum:        []string{string(model.SentimentPositive), string(model.SentimentNegative), string(model.SentimentNeutral)},
		},
	},
	Required:             []string{"summary", "keyPoints", "actionItems", "topics", "sentiment"},
	AdditionalProperties: false,
}

type OpenAIInfo struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenAI struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

func NewOpenAI(info OpenAIInfo, logger *slog.Logger) *OpenAI {
	config := openai.DefaultConfig(info.APIKey)
	if info.BaseURL != "" {
		config.BaseURL = info.BaseURL
	}
	if info.Model == "" {
		info.Model = openai.GPT4o
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(config),
		model:  info.Model,
		logger: logger,
	}
}

func (o *OpenAI) Analyze(ctx context.Context, segments []model.Segment, videoTitle string) (model.Analysis, error) {
	if len(segments) == 0 {
		return model.Analysis{}, InvalidInput("Valid transcript array is required", errors.New("transcript has no segments"))
	}
	if videoTitle == "" {
		videoTitle = "Video"
	}

	fullText := model.JoinText(segments)
	wordCount := model.WordCount(fullText)

	o.logger.Info("analyzing transcript", slog.Int("segments", len(segments)), slog.Int("words", wordCount))
	resp, err := o.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: o.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: fmt.Sprintf(analyzePrompt, videoTitle, fullText),
				},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
				JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
					Name:   "transcript_analysis",
					Schema: &analysisSchema,
					Strict: true,
				},
			},
		})
	if err != nil {
		return model.Analysis{}, AnalysisFailed(fmt.Errorf("failed to fetch analysis: %w", err))
	}
	if len(resp.Choices) == 0 {
		return model.Analysis{}, AnalysisFailed(errors.New("model returned no choices"))
	}

	analysis, err := parseAnalysis(resp.Choices[len(resp.Choices)-1].Message.Content)
	if err != nil {
		return model.Analysis{}, AnalysisFailed(err)
	}
	analysis.WordCount = wordCount
	analysis.ReadingTime = model.ReadingTime(wordCount)

	o.logger.Info("analyzed transcript", slog.String("sentiment", string(analysis.Sentiment)))
	return analysis, nil
}

func parseAnalysis(content string) (model.Analysis, error) {
	clean, err := extractJSONObject(content)
	if err != nil {
		return model.Analysis{}, err
	}

	var out struct {
		Summary     string   `json:"summary"`
		KeyPoints   []string `json:"keyPoints"`
		ActionItems []string `json:"actionItems"`
		Topics      []string `json:"topics"`
		Sentiment   string   `json:"sentiment"`
	}
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return model.Analysis{}, fmt.Errorf("malformed model output: %w", err)
	}

	summary := strings.TrimSpace(out.Summary)
	if summary == "" {
		return model.Analysis{}, errors.New("malformed model output: empty summary")
	}
	sentiment := model.Sentiment(strings.ToLower(strings.TrimSpace(out.Sentiment)))
	if !sentiment.Valid() {
		return model.Analysis{}, fmt.Errorf("malformed model output: unknown sentiment %q", out.Sentiment)
	}

	return model.Analysis{
		Summary:     summary,
		KeyPoints:   capList(out.KeyPoints, model.MaxKeyPoints),
		ActionItems: capList(out.ActionItems, model.MaxActionItems),
		Topics:      capList(out.Topics, model.MaxTopics),
		Sentiment:   sentiment,
	}, nil
}

func capList(items []string, limit int) []string {
	out := make([]string, 0, min(len(items), limit))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		out = append(out, it)
		if len(out) == limit {
			break
		}
	}
	return out
}

// extractJSONObject tolerates code fences and chatter around the object.
func extractJSONObject(s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", errors.New("empty model output")
	}

	if strings.HasPrefix(t, "```") {
		if i := strings.Index(t, "\n"); i >= 0 {
			t = t[i+1:]
		}
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}

	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		return t[start : end+1], nil
	}

	return "", fmt.Errorf("no JSON object in model output: %q", truncate(t, 200))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
