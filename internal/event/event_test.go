package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGestureActions(t *testing.T) {
	want := map[string]string{
		"up":        "next",
		"down":      "previous",
		"left":      "back",
		"right":     "same_topic",
		"upLeft":    "restart",
		"upRight":   "same_category",
		"downLeft":  "inform",
		"downRight": "same_subject",
	}
	assert.Equal(t, want, GestureActions)
}

func TestActionFor(t *testing.T) {
	action, ok := ActionFor("upRight")
	assert.True(t, ok)
	assert.Equal(t, "same_category", action)

	action, ok = ActionFor("sideways")
	assert.False(t, ok)
	assert.Empty(t, action)
}
