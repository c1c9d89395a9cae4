package fetcher

import (
	"context"

	"ewintr.nl/ytinsight/model"
)

type VideoInfoFetcher interface {
	VideoInfo(ctx context.Context, url string) (model.VideoMetadata, error)
}
