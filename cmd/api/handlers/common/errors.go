package common

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/loopreel/loopreel/internal/media"
	"github.com/loopreel/loopreel/internal/taxonomy"
	"github.com/loopreel/loopreel/internal/vote"
)

// ErrBadRequest returns a 400 Bad Request error.
func ErrBadRequest(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

// ErrNotFound returns a 404 Not Found error.
func ErrNotFound(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusNotFound, msg)
}

// ErrUnauthorized returns a 401 Unauthorized error.
func ErrUnauthorized() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
}

// ErrServiceUnavailable returns a 503 Service Unavailable error.
func ErrServiceUnavailable(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusServiceUnavailable, msg)
}

// ErrInternal returns a 500 Internal Server Error.
func ErrInternal(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusInternalServerError, msg)
}

// MapServiceError translates service-layer sentinels to HTTP errors.
// Taxonomy validation failures carry the invalid id lists in the body.
func MapServiceError(err error) error {
	var ve *taxonomy.ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"error":              "InvalidTaxonomyReference",
			"invalidCategoryIds": ve.InvalidCategoryIDs,
			"invalidTopicIds":    ve.InvalidTopicIDs,
			"invalidSubjectIds":  ve.InvalidSubjectIDs,
		})
	case errors.Is(err, media.ErrNoSource):
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "NoSourceProvided"})
	case errors.Is(err, media.ErrSourceFetch):
		return ErrBadRequest("SourceFetchFailed")
	case errors.Is(err, media.ErrStorageUnavailable):
		return ErrServiceUnavailable("storage is not configured")
	case errors.Is(err, media.ErrNotFound), errors.Is(err, vote.ErrNotFound):
		return ErrNotFound("not found")
	case errors.Is(err, vote.ErrUnknownVoteType):
		return ErrBadRequest("unknown vote type")
	default:
		return err
	}
}
