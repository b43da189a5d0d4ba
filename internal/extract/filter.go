package extract

import "strings"

// IsTwitterMedia reports whether the URL points at one of the platform's
// media asset domains.
func IsTwitterMedia(url string) bool {
	return strings.Contains(url, ImageDomain) || strings.Contains(url, VideoDomain)
}

// ShouldInclude decides whether a media URL and its tweet metadata qualify
// under the requested media type constraint. Animated GIFs are served from
// the video domain, so the gif filter checks there.
func ShouldInclude(url string, tweet TweetData, mediaType MediaType) bool {
	switch mediaType {
	case MediaAll:
		return true
	case MediaImage:
		return strings.Contains(url, ImageDomain) && tweet.Type == "photo"
	case MediaVideo:
		return strings.Contains(url, VideoDomain) && tweet.Type == "video"
	case MediaGIF:
		return strings.Contains(url, VideoDomain) && tweet.Type == "animated_gif"
	}
	return false
}
