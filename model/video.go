package model

import "fmt"

type YoutubeVideoID string

const (
	UnknownTitle   = "Unknown Title"
	UnknownChannel = "Unknown Channel"
	NoDuration     = "N/A"
	NoDescription  = "Description not available via oEmbed"
)

type VideoMetadata struct {
	ID          YoutubeVideoID `json:"id"`
	Title       string         `json:"title"`
	Thumbnail   string         `json:"thumbnail"`
	Duration    string         `json:"duration"`
	Channel     string         `json:"channel"`
	Description string         `json:"description"`
	ViewCount   int64          `json:"viewCount"`
	PublishDate *string        `json:"publishDate"`
}

// DefaultThumbnail is used when the metadata provider does not return one.
func DefaultThumbnail(id YoutubeVideoID) string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", id)
}

// WatchURL is the canonical watch page of a video.
func WatchURL(id YoutubeVideoID) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", id)
}

// FormatDuration renders whole seconds as h:mm:ss, or m:ss below an hour.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
