package media

import "fmt"

// Storage keys are derived deterministically from (tenant, video, stage) so a
// retried pipeline run overwrites instead of duplicating objects.

func MasterKey(appID, videoID string) string {
	return fmt.Sprintf("videos/%s/%s/source.mp4", appID, videoID)
}

func HLSKey(appID, videoID, filename string) string {
	return fmt.Sprintf("videos/%s/%s/hls/%s", appID, videoID, filename)
}

func ThumbnailKey(appID, videoID string, seconds int) string {
	return fmt.Sprintf("thumbnails/%s/%s/%d.png", appID, videoID, seconds)
}

// Owner-initiated replacements get a fresh blob id per upload rather than a
// stage-derived key, so older replacements stay addressable.

func ReplacementVideoKey(appID, blobID string) string {
	return fmt.Sprintf("videos/%s/%s.mp4", appID, blobID)
}

func ReplacementThumbnailKey(appID, blobID string) string {
	return fmt.Sprintf("thumbnails/%s/%s.png", appID, blobID)
}
