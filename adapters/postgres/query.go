package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"agrodesk/domain/core"
)

// where accumulates AND-ed conditions with positional arguments. Each
// condition carries one %d verb for its placeholder number.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(cond, len(w.args)))
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// getErr maps sql.ErrNoRows to a not-found error wrapping sentinel
func getErr(err error, sentinel error, id any, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", sentinel, id)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// affected turns a zero-row update or delete into a not-found error
func affected(result sql.Result, sentinel error, id any) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %v", sentinel, id)
	}
	return nil
}

// isUniqueViolation reports a Postgres unique_violation
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func uniqueErr(err error, field string) error {
	if isUniqueViolation(err) {
		return core.NewValidationError(field, "already exists")
	}
	return err
}
