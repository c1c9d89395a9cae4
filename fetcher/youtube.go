package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"ewintr.nl/ytinsight/model"
	"golang.org/x/exp/slog"
	"google.golang.org/api/youtube/v3"
)

const DefaultOEmbedEndpoint = "https://www.youtube.com/oembed"

type YoutubeInfo struct {
	OEmbedEndpoint string
	Retry          RetryConfig
}

// Youtube resolves video metadata through oEmbed. When a Data API client is
// present, the result is enriched with duration, views and publish date.
type Youtube struct {
	info       YoutubeInfo
	httpClient *http.Client
	dataAPI    *youtube.Service
	logger     *slog.Logger
}

func NewYoutube(info YoutubeInfo, httpClient *http.Client, dataAPI *youtube.Service, logger *slog.Logger) *Youtube {
	if info.OEmbedEndpoint == "" {
		info.OEmbedEndpoint = DefaultOEmbedEndpoint
	}
	if info.Retry.MaxTries == 0 {
		info.Retry = DefaultRetryConfig
	}
	return &Youtube{
		info:       info,
		httpClient: httpClient,
		dataAPI:    dataAPI,
		logger:     logger,
	}
}

func (y *Youtube) VideoInfo(ctx context.Context, videoURL string) (model.VideoMetadata, error) {
	ytID, ok := ExtractVideoID(videoURL)
	if !ok {
		return model.VideoMetadata{}, InvalidInput("Invalid YouTube URL", fmt.Errorf("no video id found in %q", videoURL))
	}

	md, err := y.oembed(ctx, ytID)
	if err != nil {
		return model.VideoMetadata{}, err
	}

	if y.dataAPI != nil {
		if err := y.enrich(ctx, &md); err != nil {
			y.logger.Warn("could not enrich metadata", slog.String("video", string(ytID)), slog.String("error", err.Error()))
		}
	}

	return md, nil
}

func (y *Youtube) oembed(ctx context.Context, ytID model.YoutubeVideoID) (model.VideoMetadata, error) {
	query := url.Values{}
	query.Set("url", model.WatchURL(ytID))
	query.Set("format", "json")
	endpoint := fmt.Sprintf("%s?%s", y.info.OEmbedEndpoint, query.Encode())

	y.logger.Info("fetching oembed", slog.String("video", string(ytID)))
	resp, err := doWithRetry(ctx, y.httpClient, y.info.Retry, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		var sErr *statusError
		if errors.As(err, &sErr) {
			return model.VideoMetadata{}, UpstreamUnavailable(sErr.Code, "Failed to fetch video information from YouTube oEmbed", fmt.Errorf("oEmbed API returned status %d", sErr.Code))
		}
		return model.VideoMetadata{}, UpstreamUnavailable(http.StatusInternalServerError, "Network error fetching video information", err)
	}
	defer resp.Body.Close()

	var data struct {
		Title        string `json:"title"`
		AuthorName   string `json:"author_name"`
		ThumbnailURL string `json:"thumbnail_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return model.VideoMetadata{}, UpstreamUnavailable(http.StatusBadGateway, "Invalid response from YouTube oEmbed", err)
	}

	md := model.VideoMetadata{
		ID:          ytID,
		Title:       data.Title,
		Thumbnail:   data.ThumbnailURL,
		Duration:    model.NoDuration,
		Channel:     data.AuthorName,
		Description: model.NoDescription,
	}
	if md.Title == "" {
		md.Title = model.UnknownTitle
	}
	if md.Thumbnail == "" {
		md.Thumbnail = model.DefaultThumbnail(ytID)
	}
	if md.Channel == "" {
		md.Channel = model.UnknownChannel
	}

	return md, nil
}

func (y *Youtube) enrich(ctx context.Context, md *model.VideoMetadata) error {
	call := y.dataAPI.Videos.
		List([]string{"snippet", "contentDetails", "statistics"}).
		Id(string(md.ID)).
		Context(ctx)

	response, err := call.Do()
	if err != nil {
		return err
	}
	if len(response.Items) == 0 {
		return fmt.Errorf("video %s not found in data api", md.ID)
	}

	item := response.Items[0]
	if item.Snippet != nil {
		if item.Snippet.Description != "" {
			md.Description = item.Snippet.Description
		}
		if item.Snippet.PublishedAt != "" {
			published := item.Snippet.PublishedAt
			md.PublishDate = &published
		}
	}
	if item.ContentDetails != nil {
		if secs, ok := parseISODuration(item.ContentDetails.Duration); ok {
			md.Duration = model.FormatDuration(secs)
		}
	}
	if item.Statistics != nil {
		md.ViewCount = int64(item.Statistics.ViewCount)
	}

	return nil
}

var isoDurationRE = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseISODuration converts the Data API duration format (PT1H2M3S) to seconds.
func parseISODuration(d string) (int, bool) {
	m := isoDurationRE.FindStringSubmatch(d)
	if m == nil || d == "P" || d == "PT" {
		return 0, false
	}
	total := 0
	for i, mult := range []int{86400, 3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, false
		}
		total += n * mult
	}
	return total, true
}
