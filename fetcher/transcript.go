package fetcher

import (
	"context"

	"ewintr.nl/ytinsight/model"
)

type CaptionFetcher interface {
	ExtractCaptions(ctx context.Context, videoID model.YoutubeVideoID) (model.Transcript, error)
}

type AudioTranscriber interface {
	TranscribeAudio(ctx context.Context, videoURL string) (model.Transcript, error)
}
