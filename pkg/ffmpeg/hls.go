package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// HLSParams configures a single-rendition HLS encode with MPEG-TS segments.
type HLSParams struct {
	Width          int
	Height         int
	SegmentSeconds int
	CRF            int
	Preset         string
	MaxRate        string
	BufSize        string
	AudioBitrate   string
}

// DefaultHLSParams is the portrait short-video target: 1080x1920, 6s
// segments, CRF 23 with a 5 Mbps cap and 128k AAC audio.
func DefaultHLSParams() HLSParams {
	return HLSParams{
		Width:          1080,
		Height:         1920,
		SegmentSeconds: 6,
		CRF:            23,
		Preset:         "fast",
		MaxRate:        "5M",
		BufSize:        "10M",
		AudioBitrate:   "128k",
	}
}

// LetterboxFilter scales into the target box preserving aspect, then pads to
// the exact target with centered bars. Never crops.
func LetterboxFilter(width, height int) string {
	return fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		width, height, width, height,
	)
}

// FitFilter scales into the target box preserving aspect without padding.
func FitFilter(width, height int) string {
	return fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", width, height)
}

// GenerateHLS transcodes input into a VOD HLS rendition in outputDir:
// a master.m3u8 playlist plus numbered segment_%d.ts files.
// Returns the playlist path.
func GenerateHLS(ctx context.Context, input, outputDir string, p HLSParams) (string, error) {
	if p.SegmentSeconds <= 0 {
		p.SegmentSeconds = 6
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("hls: mkdir %s: %w", outputDir, err)
	}

	playlistPath := filepath.Join(outputDir, "master.m3u8")
	segmentPattern := filepath.Join(outputDir, "segment_%d.ts")

	cmd := NewCommand(input, playlistPath,
		Filter(LetterboxFilter(p.Width, p.Height)),
		VideoCodec("libx264"),
		Preset(p.Preset),
		CRF(p.CRF),
		MaxBitrate(p.MaxRate, p.BufSize),
		PixelFormat("yuv420p"),
		AudioCodec("aac"),
		AudioBitrate(p.AudioBitrate),
		ExtraArgs(
			"-hls_time", itoa(p.SegmentSeconds),
			"-hls_playlist_type", "vod",
			"-hls_segment_filename", segmentPattern,
			"-f", "hls",
		),
	)
	if err := cmd.Run(ctx); err != nil {
		return "", err
	}
	return playlistPath, nil
}

// ExtractFrame grabs a single still at the given offset, scaled to fit the
// target box (no padding).
func ExtractFrame(ctx context.Context, input, output string, offset time.Duration, width, height int) error {
	return Run(ctx, input, output,
		Seek(offset),
		Filter(FitFilter(width, height)),
		Frames(1),
	)
}
