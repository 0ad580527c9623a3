package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/canteiro/internal/db"
)

const timeLayout = time.RFC3339

// NewSQLiteRepos builds the full repository set over conn, which may be the
// pool or a transaction.
func NewSQLiteRepos(conn db.DBTX) Repos {
	return Repos{
		Projects:   NewSQLiteProjectRepo(conn),
		Stages:     NewSQLiteStageRepo(conn),
		Units:      NewSQLiteUnitRepo(conn),
		UnitStages: NewSQLiteUnitStageRepo(conn),
		Photos:     NewSQLitePhotoRepo(conn),
		Logs:       NewSQLiteStageLogRepo(conn),
		Users:      NewSQLiteUserRepo(conn),
	}
}

// parseNullableTime parses a sql.NullString into a *time.Time.
// Returns nil if the value is NULL, empty, or fails to parse.
func parseNullableTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// nullableTimeToString returns nil (SQL NULL) for a nil pointer.
func nullableTimeToString(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTimes(created, updated string) (time.Time, time.Time, error) {
	c, err := time.Parse(timeLayout, created)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if updated == "" {
		return c, c, nil
	}
	u, err := time.Parse(timeLayout, updated)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return c, u, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intToBool(i int) bool {
	return i != 0
}

// inClause returns "?, ?, ?" for n values and the matching args.
func inClause(values []string) (string, []any) {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", "), args
}

// notFound translates sql.ErrNoRows into a wrapped ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("scanning %s: %w", what, err)
}

func rowsAffected(res sql.Result) int {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return int(n)
}

func execDelete(ctx context.Context, conn db.DBTX, what, query string, args ...any) (int, error) {
	res, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting %s: %w", what, err)
	}
	return rowsAffected(res), nil
}
