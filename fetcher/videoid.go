package fetcher

import (
	"regexp"

	"ewintr.nl/ytinsight/model"
)

var videoIDRE = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`)

// ExtractVideoID finds the video identifier in the three recognized URL
// shapes: watch?v=, youtu.be/ and embed/.
func ExtractVideoID(url string) (model.YoutubeVideoID, bool) {
	m := videoIDRE.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return model.YoutubeVideoID(m[1]), true
}
