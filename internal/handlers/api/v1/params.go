package v1

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"merithub/internal/models"
	"merithub/internal/services"
)

// parseScopeParams reads the optional journal_id, discipline and country
// query parameters into a scope. Absent parameters leave the dimension
// unfiltered.
func parseScopeParams(r *http.Request) (models.Scope, error) {
	var scope models.Scope

	if raw := r.URL.Query().Get("journal_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return scope, services.NewValidationError(fmt.Sprintf("invalid journal_id %q", raw), err)
		}
		scope.JournalID = &id
	}
	if discipline := r.URL.Query().Get("discipline"); discipline != "" {
		scope.Discipline = &discipline
	}
	if country := r.URL.Query().Get("country"); country != "" {
		scope.Country = &country
	}
	return scope, nil
}

// parseYearParam reads the optional year query parameter; 0 means all
// years.
func parseYearParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 0 {
		return 0, services.NewValidationError(fmt.Sprintf("invalid year %q", raw), err)
	}
	return year, nil
}

// parseLimitParam reads the optional limit query parameter with a
// fallback default.
func parseLimitParam(r *http.Request, fallback int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, services.NewValidationError(fmt.Sprintf("invalid limit %q", raw), err)
	}
	return limit, nil
}

// parsePageParams reads the optional page and page_size query parameters
// for offset pagination.
func parsePageParams(r *http.Request, defaultPageSize int) (page, pageSize int, err error) {
	page, pageSize = 1, defaultPageSize

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, services.NewValidationError(fmt.Sprintf("invalid page %q", raw), err)
		}
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		pageSize, err = strconv.Atoi(raw)
		if err != nil || pageSize < 1 || pageSize > 200 {
			return 0, 0, services.NewValidationError(fmt.Sprintf("invalid page_size %q", raw), err)
		}
	}
	return page, pageSize, nil
}

// parsePeriodEndParam reads the optional period_end date (YYYY-MM-DD).
// Any date inside a period addresses that period's snapshot.
func parsePeriodEndParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("period_end")
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, services.NewValidationError(fmt.Sprintf("invalid period_end %q, expected YYYY-MM-DD", raw), err)
	}
	return t, nil
}

func parseBoolParam(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}
