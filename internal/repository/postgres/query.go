package postgres

import (
	"database/sql"
	"fmt"
	"strings"

	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/types"
	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// whereBuilder accumulates positional conditions for list queries
type whereBuilder struct {
	conditions []string
	args       []interface{}
}

// add appends a condition written with a single ? placeholder per argument
func (w *whereBuilder) add(condition string, args ...interface{}) {
	for _, arg := range args {
		w.args = append(w.args, arg)
		condition = strings.Replace(condition, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.conditions = append(w.conditions, condition)
}

func (w *whereBuilder) sql() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conditions, " AND ")
}

// pageSQL renders ORDER BY / LIMIT / OFFSET, restricting sort to known columns
func pageSQL(f *types.QueryFilter, sortable map[string]bool) string {
	sort := f.GetSort()
	if !sortable[sort] {
		sort = types.FILTER_DEFAULT_SORT
	}
	order := strings.ToUpper(f.GetOrder())
	if order != "ASC" {
		order = "DESC"
	}
	out := fmt.Sprintf(" ORDER BY %s %s, id %s", sort, order, order)
	if !f.IsUnlimited() {
		out += fmt.Sprintf(" LIMIT %d OFFSET %d", f.GetLimit(), f.GetOffset())
	}
	return out
}

// notFoundOr maps sql.ErrNoRows to a NotFound error and everything else to a database error
func notFoundOr(err error, entity string, details map[string]any) error {
	if err == sql.ErrNoRows {
		return ierr.WithError(err).
			WithHintf("%s not found", entity).
			WithReportableDetails(details).
			Mark(ierr.ErrNotFound)
	}
	return ierr.WithError(err).
		WithHintf("Failed to get %s", strings.ToLower(entity)).
		WithReportableDetails(details).
		Mark(ierr.ErrDatabase)
}

// writeErr maps unique violations to AlreadyExists and everything else to a database error
func writeErr(err error, hint string, details map[string]any) error {
	var pqErr *pq.Error
	if ierr.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
		return ierr.WithError(err).
			WithHint(hint + ": already exists").
			WithReportableDetails(details).
			Mark(ierr.ErrAlreadyExists)
	}
	return ierr.WithError(err).
		WithHint(hint).
		WithReportableDetails(details).
		Mark(ierr.ErrDatabase)
}

// versionConflict is returned when a compare-and-swap update matched no row
func versionConflict(entity string, id string, version int) error {
	return ierr.NewErrorf("%s %s was modified concurrently", entity, id).
		WithHintf("%s was modified concurrently, retry the operation", entity).
		WithReportableDetails(map[string]any{
			"id":      id,
			"version": version,
		}).
		Mark(ierr.ErrVersionConflict)
}

func stringsOf[T ~string](values []T) pq.StringArray {
	out := make(pq.StringArray, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}
