package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brightlane/qaharbor/internal/apierr"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// pagedResponse is the offset-pagination envelope shared by every listing
// endpoint.
type pagedResponse[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// paginationParams reads offset/limit query params. A limit of 0 or above
// maxLimit is replaced by defaultLimit, so a client can't force an
// unbounded scan.
func paginationParams(r *http.Request) (offset, limit uint64) {
	offset = parseUintParam(r, "offset", 0)
	limit = parseUintParam(r, "limit", defaultLimit)
	if limit == 0 || limit > maxLimit {
		limit = defaultLimit
	}
	return offset, limit
}

func parseUintParam(r *http.Request, name string, fallback uint64) uint64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

// pathUUID parses a chi URL param as a UUID, surfacing a ValidationError
// on failure.
func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apierr.WrapValidation(err, "invalid "+param)
	}
	return id, nil
}

// parseDateWindow reads the optional startDate/endDate ISO-8601 query
// params into a half-open [start, end) interval.
func parseDateWindow(r *http.Request) (start, end *time.Time, err error) {
	if raw := r.URL.Query().Get("startDate"); raw != "" {
		t, parseErr := time.Parse(time.RFC3339, raw)
		if parseErr != nil {
			return nil, nil, apierr.WrapValidation(parseErr, "invalid startDate")
		}
		start = &t
	}
	if raw := r.URL.Query().Get("endDate"); raw != "" {
		t, parseErr := time.Parse(time.RFC3339, raw)
		if parseErr != nil {
			return nil, nil, apierr.WrapValidation(parseErr, "invalid endDate")
		}
		end = &t
	}
	return start, end, nil
}

func uuidFromString(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

func nowFormatted() string {
	return time.Now().UTC().Format(timeLayout)
}
