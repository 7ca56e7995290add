package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThumbnailOffsets(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		want     []int
	}{
		{"full length", 45, []int{5, 15, 30}},
		{"exactly 30s skips 30", 30, []int{5, 15}},
		{"ten seconds", 10, []int{5}},
		{"shorter than first offset", 4, nil},
		{"zero duration", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ThumbnailOffsets(tt.duration))
		})
	}
}

func TestStorageKeyLayout(t *testing.T) {
	app := "0b6a0cff-51b6-4b19-a1b2-000000000001"
	vid := "0b6a0cff-51b6-4b19-a1b2-000000000002"

	assert.Equal(t, "videos/"+app+"/"+vid+"/source.mp4", MasterKey(app, vid))
	assert.Equal(t, "videos/"+app+"/"+vid+"/hls/master.m3u8", HLSKey(app, vid, "master.m3u8"))
	assert.Equal(t, "videos/"+app+"/"+vid+"/hls/segment_3.ts", HLSKey(app, vid, "segment_3.ts"))
	assert.Equal(t, "thumbnails/"+app+"/"+vid+"/15.png", ThumbnailKey(app, vid, 15))
	assert.Equal(t, "videos/"+app+"/blob1.mp4", ReplacementVideoKey(app, "blob1"))
	assert.Equal(t, "thumbnails/"+app+"/blob2.png", ReplacementThumbnailKey(app, "blob2"))
}

func TestParseSets(t *testing.T) {
	valid := "11111111-1111-1111-1111-111111111111"

	sets, ve := parseSets(valid, []string{valid}, nil, []string{"bogus"})
	assert.True(t, sets.PrimaryCategoryID.Valid)
	assert.Len(t, sets.CategoryIDs, 1)
	assert.Nil(t, sets.TopicIDs)
	assert.Empty(t, sets.SubjectIDs)
	assert.Equal(t, []string{"bogus"}, ve.InvalidSubjectIDs)
	assert.Empty(t, ve.InvalidCategoryIDs)

	_, ve = parseSets("not-a-uuid", nil, nil, nil)
	assert.Equal(t, []string{"not-a-uuid"}, ve.InvalidCategoryIDs)
}
