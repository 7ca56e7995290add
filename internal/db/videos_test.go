package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// A video classified only through its primary category carries an empty
// category_ids array, so array overlap alone would hide it from a filtered
// feed. The predicate must also match on primary_category_id.
func TestListFeedVideosCategoryPredicate(t *testing.T) {
	assert.Contains(t, listFeedVideos, "category_ids && $2")
	assert.Contains(t, listFeedVideos, "primary_category_id = ANY($2)")
}
