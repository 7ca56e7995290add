package taxonomy

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopreel/loopreel/internal/db"
)

func mustUUID(t *testing.T, s string) pgtype.UUID {
	t.Helper()
	id, err := db.ParseUUID(s)
	require.NoError(t, err)
	return id
}

func TestMissing(t *testing.T) {
	a := "11111111-1111-1111-1111-111111111111"
	b := "22222222-2222-2222-2222-222222222222"
	c := "33333333-3333-3333-3333-333333333333"

	tests := []struct {
		name      string
		requested []string
		found     []string
		want      []string
	}{
		{"all present", []string{a, b}, []string{a, b}, nil},
		{"one missing", []string{a, b}, []string{a}, []string{b}},
		{"all missing", []string{a, b}, nil, []string{a, b}},
		{"duplicates collapse", []string{c, c, a}, []string{a}, []string{c}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requested := make([]pgtype.UUID, len(tt.requested))
			for i, s := range tt.requested {
				requested[i] = mustUUID(t, s)
			}
			found := make([]pgtype.UUID, len(tt.found))
			for i, s := range tt.found {
				found[i] = mustUUID(t, s)
			}
			assert.Equal(t, tt.want, missing(requested, found))
		})
	}
}

func TestValidationError(t *testing.T) {
	ve := &ValidationError{InvalidCategoryIDs: []string{"x"}}
	assert.False(t, ve.Empty())
	assert.Contains(t, ve.Error(), "invalid taxonomy reference")
	assert.Contains(t, ve.Error(), "categories")

	assert.True(t, (&ValidationError{}).Empty())
}

func TestDisplayFor(t *testing.T) {
	a := mustUUID(t, "11111111-1111-1111-1111-111111111111")
	b := mustUUID(t, "22222222-2222-2222-2222-222222222222")

	resolved := map[string]Display{
		"11111111-1111-1111-1111-111111111111": {ID: "11111111-1111-1111-1111-111111111111", Name: "Science", Slug: "science", Kind: db.TaxonomyKindCategory},
	}

	got := DisplayFor(resolved, []pgtype.UUID{a, b})
	require.Len(t, got, 1)
	assert.Equal(t, "Science", got[0].Name)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Science", "science"},
		{"Machine Learning", "machine-learning"},
		{"Café & Crêpes!", "cafe-crepes"},
		{"  spaced  out  ", "spaced-out"},
		{"already-slugged", "already-slugged"},
		{"123 Go", "123-go"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}
