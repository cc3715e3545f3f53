// Package postgres implements the domain repositories on PostgreSQL through pgx.
// Every repository works on a persistence.Querier so it can join a caller's transaction via WithTx.
package postgres

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jar-backoffice/internal/domain/shared"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// whereBuilder accumulates AND-ed conditions with positional arguments.
// Each clause is a format string whose %d verbs receive the next placeholder index.
type whereBuilder struct {
	clauses []string
	args    []interface{}
}

func (w *whereBuilder) add(clause string, arg interface{}) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(clause, len(w.args)))
}

// addRaw appends a clause that takes no argument
func (w *whereBuilder) addRaw(clause string) {
	w.clauses = append(w.clauses, clause)
}

// addDateRange bounds a DATE column by an inclusive business date range
func (w *whereBuilder) addDateRange(column string, r shared.DateRange) {
	w.add(column+" >= $%d", dateOnly(r.From))
	w.add(column+" <= $%d", dateOnly(r.To))
}

func (w *whereBuilder) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.clauses, " AND ")
}

// page appends LIMIT/OFFSET placeholders and returns the suffix and full argument list
func (w *whereBuilder) page(limit, offset int) (string, []interface{}) {
	args := append(append([]interface{}{}, w.args...), limit, offset)
	return fmt.Sprintf("LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

func likePattern(search string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.TrimSpace(search))
	return "%" + escaped + "%"
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
