// Package taxonomy validates and resolves tenant-scoped classification nodes.
package taxonomy

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/loopreel/loopreel/internal/db"
)

// ValidationError lists the ids that failed kind- and tenant-scoped checks.
// An id valid for a different kind or a different tenant is still invalid here.
type ValidationError struct {
	InvalidCategoryIDs []string `json:"invalidCategoryIds,omitempty"`
	InvalidTopicIDs    []string `json:"invalidTopicIds,omitempty"`
	InvalidSubjectIDs  []string `json:"invalidSubjectIds,omitempty"`
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.InvalidCategoryIDs) > 0 {
		parts = append(parts, fmt.Sprintf("categories %v", e.InvalidCategoryIDs))
	}
	if len(e.InvalidTopicIDs) > 0 {
		parts = append(parts, fmt.Sprintf("topics %v", e.InvalidTopicIDs))
	}
	if len(e.InvalidSubjectIDs) > 0 {
		parts = append(parts, fmt.Sprintf("subjects %v", e.InvalidSubjectIDs))
	}
	return "invalid taxonomy reference: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Empty() bool {
	return len(e.InvalidCategoryIDs) == 0 && len(e.InvalidTopicIDs) == 0 && len(e.InvalidSubjectIDs) == 0
}

// Sets groups the id sets attached to a video or bulk-tag request.
// A zero PrimaryCategoryID means "not supplied" and is skipped.
type Sets struct {
	PrimaryCategoryID pgtype.UUID
	CategoryIDs       []pgtype.UUID
	TopicIDs          []pgtype.UUID
	SubjectIDs        []pgtype.UUID
}

// Validate checks every supplied id against the tenant's taxonomy of the
// expected kind. Returns a *ValidationError when anything is invalid.
func Validate(ctx context.Context, q *db.Queries, appID pgtype.UUID, sets Sets) error {
	categoryIDs := sets.CategoryIDs
	if sets.PrimaryCategoryID.Valid {
		categoryIDs = append(append([]pgtype.UUID{}, categoryIDs...), sets.PrimaryCategoryID)
	}

	var ve ValidationError
	var err error
	if ve.InvalidCategoryIDs, err = checkKind(ctx, q, appID, db.TaxonomyKindCategory, categoryIDs); err != nil {
		return err
	}
	if ve.InvalidTopicIDs, err = checkKind(ctx, q, appID, db.TaxonomyKindTopic, sets.TopicIDs); err != nil {
		return err
	}
	if ve.InvalidSubjectIDs, err = checkKind(ctx, q, appID, db.TaxonomyKindSubject, sets.SubjectIDs); err != nil {
		return err
	}

	if ve.Empty() {
		return nil
	}
	return &ve
}

func checkKind(ctx context.Context, q *db.Queries, appID pgtype.UUID, kind db.TaxonomyKind, ids []pgtype.UUID) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := q.SelectTaxonomyMembers(ctx, appID, kind, ids)
	if err != nil {
		return nil, fmt.Errorf("select %s members: %w", kind, err)
	}
	return missing(ids, found), nil
}

// missing returns the requested ids absent from found, deduplicated, in
// first-seen order.
func missing(requested, found []pgtype.UUID) []string {
	present := make(map[pgtype.UUID]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}

	seen := make(map[pgtype.UUID]struct{}, len(requested))
	var out []string
	for _, id := range requested {
		if _, ok := present[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, uuidString(id))
	}
	return out
}

func uuidString(id pgtype.UUID) string {
	v, err := id.Value()
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Display is the resolved presentation form of a node.
type Display struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Slug string          `json:"slug"`
	Kind db.TaxonomyKind `json:"kind"`
}

// ResolveAll resolves the union of every taxonomy id referenced across the
// given videos in a single query, keyed by id string.
func ResolveAll(ctx context.Context, q *db.Queries, appID pgtype.UUID, videos []*db.Video) (map[string]Display, error) {
	seen := make(map[pgtype.UUID]struct{})
	var ids []pgtype.UUID
	collect := func(more ...pgtype.UUID) {
		for _, id := range more {
			if !id.Valid {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, v := range videos {
		collect(v.PrimaryCategoryID)
		collect(v.CategoryIDs...)
		collect(v.TopicIDs...)
		collect(v.SubjectIDs...)
	}
	if len(ids) == 0 {
		return map[string]Display{}, nil
	}

	nodes, err := q.GetTaxonomyByIDs(ctx, appID, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve taxonomy: %w", err)
	}

	out := make(map[string]Display, len(nodes))
	for _, n := range nodes {
		out[uuidString(n.ID)] = Display{
			ID:   uuidString(n.ID),
			Name: n.Name,
			Slug: n.Slug,
			Kind: n.Kind,
		}
	}
	return out, nil
}

// DisplayFor maps an id set onto its resolved displays, dropping unresolved
// ids (deleted nodes) instead of erroring.
func DisplayFor(resolved map[string]Display, ids []pgtype.UUID) []Display {
	out := make([]Display, 0, len(ids))
	for _, id := range ids {
		if d, ok := resolved[uuidString(id)]; ok {
			out = append(out, d)
		}
	}
	return out
}
