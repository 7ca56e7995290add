package vote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopreel/loopreel/internal/db"
)

func TestWeightFor(t *testing.T) {
	tests := []struct {
		voteType db.VoteType
		want     int32
	}{
		{db.VoteTypeLike, 1},
		{db.VoteTypeUpVote, 3},
		{db.VoteTypeSuperVote, 10},
	}
	for _, tt := range tests {
		t.Run(string(tt.voteType), func(t *testing.T) {
			got, err := WeightFor(tt.voteType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := WeightFor(db.VoteType("mega_vote"))
	assert.ErrorIs(t, err, ErrUnknownVoteType)
}

func TestParseVoteType(t *testing.T) {
	vt, err := ParseVoteType("up_vote")
	require.NoError(t, err)
	assert.Equal(t, db.VoteTypeUpVote, vt)

	_, err = ParseVoteType("")
	assert.ErrorIs(t, err, ErrUnknownVoteType)

	_, err = ParseVoteType("downvote")
	assert.ErrorIs(t, err, ErrUnknownVoteType)
}

func TestDefaultGestureSources(t *testing.T) {
	assert.Equal(t, "double_tap", DefaultGestureSources[db.VoteTypeLike])
	assert.Equal(t, "triple_tap", DefaultGestureSources[db.VoteTypeUpVote])
	assert.Equal(t, "s_gesture", DefaultGestureSources[db.VoteTypeSuperVote])
}
