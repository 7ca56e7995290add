package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyFromURL(t *testing.T) {
	s := &S3Store{bucket: "media", publicURL: "https://cdn.example.com"}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare key passes through",
			in:   "videos/app1/vid1/source.mp4",
			want: "videos/app1/vid1/source.mp4",
		},
		{
			name: "public URL",
			in:   "https://cdn.example.com/thumbnails/app1/vid1/5.png",
			want: "thumbnails/app1/vid1/5.png",
		},
		{
			name: "path-style URL strips bucket segment",
			in:   "https://acct.r2.cloudflarestorage.com/media/videos/app1/vid1/hls/master.m3u8",
			want: "videos/app1/vid1/hls/master.m3u8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.keyFromURL(tt.in))
		})
	}
}

func TestPublicURL(t *testing.T) {
	s := &S3Store{bucket: "media", publicURL: "https://cdn.example.com"}
	assert.Equal(t, "https://cdn.example.com/videos/a/b/source.mp4", s.PublicURL("videos/a/b/source.mp4"))
}
