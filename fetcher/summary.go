package fetcher

import (
	"context"

	"ewintr.nl/ytinsight/model"
)

type TranscriptAnalyzer interface {
	Analyze(ctx context.Context, segments []model.Segment, videoTitle string) (model.Analysis, error)
}
