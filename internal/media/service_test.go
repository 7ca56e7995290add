package media

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopreel/loopreel/internal/db"
)

type stubStore struct {
	putErr  error
	deleted []string
}

func (s *stubStore) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	return "https://cdn.test/" + key, nil
}

func (s *stubStore) Delete(ctx context.Context, keyOrURL string) error {
	s.deleted = append(s.deleted, keyOrURL)
	return nil
}

func TestAttachThumbnailUploadFailure(t *testing.T) {
	uploadErr := errors.New("bucket unreachable")
	svc := &Service{store: &stubStore{putErr: uploadErr}}

	video := &db.Video{ID: db.NewUUID(), AppID: db.NewUUID()}
	payload := base64.StdEncoding.EncodeToString([]byte("png bytes"))

	// The upload precedes any asset write, so a storage failure must surface
	// to the caller instead of leaving a video without its requested still.
	err := svc.attachThumbnail(context.Background(), nil, video, payload)
	require.Error(t, err)
	assert.ErrorIs(t, err, uploadErr)
}

func TestAttachThumbnailNoStore(t *testing.T) {
	svc := &Service{}
	video := &db.Video{ID: db.NewUUID(), AppID: db.NewUUID()}

	err := svc.attachThumbnail(context.Background(), nil, video, "aGk=")
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestOrphanedPipelineKeys(t *testing.T) {
	keys := orphanedPipelineKeys("app1", "vid1")

	assert.Contains(t, keys, "videos/app1/vid1/source.mp4")
	assert.Contains(t, keys, "videos/app1/vid1/hls/master.m3u8")
	for _, sec := range thumbnailOffsetsSec {
		assert.Contains(t, keys, ThumbnailKey("app1", "vid1", sec))
	}
	assert.Len(t, keys, 2+len(thumbnailOffsetsSec))
}

func TestCleanupOrphanedBlobs(t *testing.T) {
	store := &stubStore{}
	svc := &Service{store: store}

	svc.cleanupOrphanedBlobs(context.Background(), "app1", "vid1")
	assert.Equal(t, orphanedPipelineKeys("app1", "vid1"), store.deleted)

	t.Run("no store is a no-op", func(t *testing.T) {
		noStore := &Service{}
		noStore.cleanupOrphanedBlobs(context.Background(), "app1", "vid1")
	})
}
