package http

import (
	"net/http"
	"strconv"
	"time"

	"plotlease/pkg/config"
	apperrors "plotlease/pkg/errors"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = int64(v)
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ExtractTimeParam parses an optional RFC 3339 query parameter; a missing
// parameter returns nil rather than an error.
func ExtractTimeParam(r *http.Request, name string) (*time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid " + name + " parameter, expected RFC 3339: " + s)
	}
	return &t, nil
}

// ExtractRequiredTimeParam is ExtractTimeParam for parameters that must be
// present.
func ExtractRequiredTimeParam(r *http.Request, name string) (time.Time, error) {
	t, err := ExtractTimeParam(r, name)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Time{}, apperrors.InvalidInput("missing required parameter: " + name)
	}
	return *t, nil
}
