package ffmpeg

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		name string
		cmd  *Command
		want []string
	}{
		{
			name: "bare copy",
			cmd:  NewCommand("in.mkv", "out.mkv", CopyAll),
			want: []string{"-hide_banner", "-y", "-i", "in.mkv", "-c", "copy", "out.mkv"},
		},
		{
			name: "mp4 gets faststart",
			cmd:  NewCommand("in.mkv", "out.mp4", CopyAll),
			want: []string{"-hide_banner", "-y", "-i", "in.mkv", "-c", "copy", "-movflags", "+faststart", "out.mp4"},
		},
		{
			name: "seek precedes input",
			cmd:  NewCommand("in.mp4", "frame.png", Seek(5*time.Second), Frames(1)),
			want: []string{"-hide_banner", "-y", "-ss", "5.000", "-i", "in.mp4", "-frames:v", "1", "frame.png"},
		},
		{
			name: "filters are joined",
			cmd:  NewCommand("in.mp4", "out.webm", Filter("scale=640:-2"), Filter("fps=30")),
			want: []string{"-hide_banner", "-y", "-i", "in.mp4", "-vf", "scale=640:-2,fps=30", "out.webm"},
		},
		{
			name: "bitrate cap",
			cmd:  NewCommand("in.mp4", "out.webm", VideoCodec("libx264"), CRF(23), MaxBitrate("5M", "10M")),
			want: []string{"-hide_banner", "-y", "-i", "in.mp4", "-c:v", "libx264", "-crf", "23", "-maxrate", "5M", "-bufsize", "10M", "out.webm"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cmd.Build())
		})
	}
}

func TestLetterboxFilter(t *testing.T) {
	got := LetterboxFilter(1080, 1920)
	assert.Equal(t, "scale=1080:1920:force_original_aspect_ratio=decrease,pad=1080:1920:(ow-iw)/2:(oh-ih)/2", got)
}

func TestFitFilter(t *testing.T) {
	assert.Equal(t, "scale=320:568:force_original_aspect_ratio=decrease", FitFilter(320, 568))
}

func TestGenerateHLSArgs(t *testing.T) {
	dir := t.TempDir()
	p := DefaultHLSParams()

	cmd := NewCommand("in.mp4", filepath.Join(dir, "master.m3u8"),
		Filter(LetterboxFilter(p.Width, p.Height)),
		VideoCodec("libx264"),
		Preset(p.Preset),
		CRF(p.CRF),
		MaxBitrate(p.MaxRate, p.BufSize),
		PixelFormat("yuv420p"),
		AudioCodec("aac"),
		AudioBitrate(p.AudioBitrate),
		ExtraArgs("-hls_time", "6", "-hls_playlist_type", "vod"),
	)

	args := strings.Join(cmd.Build(), " ")
	assert.Contains(t, args, "-c:v libx264")
	assert.Contains(t, args, "-preset fast")
	assert.Contains(t, args, "-crf 23")
	assert.Contains(t, args, "-maxrate 5M -bufsize 10M")
	assert.Contains(t, args, "-pix_fmt yuv420p")
	assert.Contains(t, args, "-c:a aac -b:a 128k")
	assert.Contains(t, args, "-hls_playlist_type vod")
}

func TestErrorMessageKeepsTail(t *testing.T) {
	e := &Error{
		Args:   []string{"-i", "in.mp4"},
		Stderr: "line1\nline2\nline3\nline4\nline5",
		Err:    os.ErrInvalid,
	}
	msg := e.Error()
	assert.Contains(t, msg, "line5")
	assert.NotContains(t, msg, "line1")
	assert.Equal(t, "line1\nline2\nline3\nline4\nline5", e.FullStderr())
}

func requireFFmpeg(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping ffmpeg integration test in short mode")
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
}

// makeTestVideo generates a short synthetic clip with audio.
func makeTestVideo(t *testing.T, dir string, seconds int) string {
	t.Helper()
	out := filepath.Join(dir, "source.mp4")
	args := []string{
		"-hide_banner", "-y",
		"-f", "lavfi", "-i", "testsrc2=size=640x360:rate=30",
		"-f", "lavfi", "-i", "sine=frequency=440",
		"-t", itoa(seconds),
		"-c:v", "libx264", "-preset", "ultrafast",
		"-c:a", "aac",
		out,
	}
	cmd := exec.Command("ffmpeg", args...)
	require.NoError(t, cmd.Run(), "failed to generate test clip")
	return out
}

func TestProbeIntegration(t *testing.T) {
	requireFFmpeg(t)

	dir := t.TempDir()
	src := makeTestVideo(t, dir, 2)

	result, err := Probe(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 640, result.Width)
	assert.Equal(t, 360, result.Height)
	assert.Equal(t, "h264", result.VideoCodec)
	assert.Equal(t, 1, result.VideoStreams)
	assert.Equal(t, 1, result.AudioStreams)
	assert.InDelta(t, 2.0, result.Duration, 0.5)
}

func TestGenerateHLSIntegration(t *testing.T) {
	requireFFmpeg(t)

	dir := t.TempDir()
	src := makeTestVideo(t, dir, 2)

	params := DefaultHLSParams()
	params.Width = 270
	params.Height = 480
	params.SegmentSeconds = 1

	playlist, err := GenerateHLS(context.Background(), src, filepath.Join(dir, "hls"), params)
	require.NoError(t, err)

	data, err := os.ReadFile(playlist)
	require.NoError(t, err)
	assert.Contains(t, string(data), "#EXTM3U")
	assert.Contains(t, string(data), "segment_0.ts")

	segments, err := filepath.Glob(filepath.Join(dir, "hls", "segment_*.ts"))
	require.NoError(t, err)
	assert.NotEmpty(t, segments)
}

func TestExtractFrameIntegration(t *testing.T) {
	requireFFmpeg(t)

	dir := t.TempDir()
	src := makeTestVideo(t, dir, 2)

	out := filepath.Join(dir, "thumb.png")
	err := ExtractFrame(context.Background(), src, out, 1*time.Second, 320, 568)
	require.NoError(t, err)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
