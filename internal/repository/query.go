package repository

import (
	"errors"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// where accumulates AND-ed conditions with numbered placeholders.
type where struct {
	clauses []string
	args    []interface{}
}

// arg registers v and returns its placeholder.
func (w *where) arg(v interface{}) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *where) add(clause string) {
	w.clauses = append(w.clauses, clause)
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// page returns LIMIT/OFFSET for a 1-based page.
func (w *where) page(page, limit int) string {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return " LIMIT " + w.arg(limit) + " OFFSET " + w.arg((page-1)*limit)
}

// likePattern escapes s for use in an ILIKE '%s%' match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
