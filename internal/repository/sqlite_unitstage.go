package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/canteiro/internal/db"
	"github.com/alexanderramin/canteiro/internal/domain"
)

// maxInArgs bounds the number of bound parameters per IN list.
const maxInArgs = 500

// SQLiteUnitStageRepo implements UnitStageRepo using a SQLite database.
type SQLiteUnitStageRepo struct {
	conn db.DBTX
}

// NewSQLiteUnitStageRepo creates a new SQLiteUnitStageRepo.
func NewSQLiteUnitStageRepo(conn db.DBTX) *SQLiteUnitStageRepo {
	return &SQLiteUnitStageRepo{conn: conn}
}

const unitStageColumns = `id, unit_id, stage_id, status, custom_name, order_index, started_at, finished_at, notes, created_at, updated_at`

func (r *SQLiteUnitStageRepo) Create(ctx context.Context, us *domain.UnitStage) error {
	query := `INSERT INTO unit_stages (` + unitStageColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.conn.ExecContext(ctx, query,
		us.ID, us.UnitID, us.StageID, string(domain.NormalizeStatus(string(us.Status))),
		nullableString(us.CustomName), us.OrderIndex,
		nullableTimeToString(us.StartedAt), nullableTimeToString(us.FinishedAt),
		us.Notes, formatTime(us.CreatedAt), formatTime(us.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting unit stage: %w", err)
	}
	return nil
}

func (r *SQLiteUnitStageRepo) GetByID(ctx context.Context, id string) (*domain.UnitStage, error) {
	query := `SELECT ` + unitStageColumns + ` FROM unit_stages WHERE id = ?`
	us, err := scanUnitStage(r.conn.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "unit stage")
	}
	return us, nil
}

func (r *SQLiteUnitStageRepo) ListByUnit(ctx context.Context, unitID string) ([]*domain.UnitStage, error) {
	query := `SELECT ` + unitStageColumns + ` FROM unit_stages WHERE unit_id = ? ORDER BY order_index, created_at`
	return r.query(ctx, query, unitID)
}

// ListByUnits eager-loads instances for many units, chunking the IN list.
func (r *SQLiteUnitStageRepo) ListByUnits(ctx context.Context, unitIDs []string) ([]*domain.UnitStage, error) {
	var all []*domain.UnitStage
	for start := 0; start < len(unitIDs); start += maxInArgs {
		end := min(start+maxInArgs, len(unitIDs))
		in, args := inClause(unitIDs[start:end])
		query := `SELECT ` + unitStageColumns + ` FROM unit_stages WHERE unit_id IN (` + in + `)
			ORDER BY unit_id, order_index, created_at`
		chunk, err := r.query(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		all = append(all, chunk...)
	}
	return all, nil
}

func (r *SQLiteUnitStageRepo) UnitsWithAnyStage(ctx context.Context, unitIDs, stageIDs []string) (map[string]bool, error) {
	found := make(map[string]bool)
	if len(unitIDs) == 0 || len(stageIDs) == 0 {
		return found, nil
	}
	stageIn, stageArgs := inClause(stageIDs)
	for start := 0; start < len(unitIDs); start += maxInArgs {
		end := min(start+maxInArgs, len(unitIDs))
		unitIn, unitArgs := inClause(unitIDs[start:end])
		query := `SELECT DISTINCT unit_id FROM unit_stages
			WHERE unit_id IN (` + unitIn + `) AND stage_id IN (` + stageIn + `)`
		args := append(unitArgs, stageArgs...)
		if err := r.collectIDs(ctx, query, args, found); err != nil {
			return nil, err
		}
	}
	return found, nil
}

func (r *SQLiteUnitStageRepo) collectIDs(ctx context.Context, query string, args []any, into map[string]bool) error {
	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("checking existing unit stages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scanning unit id: %w", err)
		}
		into[id] = true
	}
	return rows.Err()
}

func (r *SQLiteUnitStageRepo) ExistsPair(ctx context.Context, unitID, stageID string) (bool, error) {
	var n int
	err := r.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM unit_stages WHERE unit_id = ? AND stage_id = ?`, unitID, stageID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking unit stage pair: %w", err)
	}
	return n > 0, nil
}

// MaxOrderIndex returns the highest order_index among the unit's instances,
// or 0 when it has none.
func (r *SQLiteUnitStageRepo) MaxOrderIndex(ctx context.Context, unitID string) (int, error) {
	var max sql.NullInt64
	err := r.conn.QueryRowContext(ctx,
		`SELECT MAX(order_index) FROM unit_stages WHERE unit_id = ?`, unitID,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("reading max unit stage order: %w", err)
	}
	return int(max.Int64), nil
}

func (r *SQLiteUnitStageRepo) Update(ctx context.Context, us *domain.UnitStage) error {
	query := `UPDATE unit_stages SET status = ?, custom_name = ?, order_index = ?, started_at = ?, finished_at = ?,
		notes = ?, updated_at = ? WHERE id = ?`
	res, err := r.conn.ExecContext(ctx, query,
		string(domain.NormalizeStatus(string(us.Status))), nullableString(us.CustomName), us.OrderIndex,
		nullableTimeToString(us.StartedAt), nullableTimeToString(us.FinishedAt),
		us.Notes, formatTime(us.UpdatedAt), us.ID,
	)
	if err != nil {
		return fmt.Errorf("updating unit stage: %w", err)
	}
	if rowsAffected(res) == 0 {
		return fmt.Errorf("unit stage: %w", ErrNotFound)
	}
	return nil
}

func (r *SQLiteUnitStageRepo) Delete(ctx context.Context, id string) error {
	n, err := execDelete(ctx, r.conn, "unit stage", `DELETE FROM unit_stages WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("unit stage: %w", ErrNotFound)
	}
	return nil
}

func (r *SQLiteUnitStageRepo) query(ctx context.Context, query string, args ...any) ([]*domain.UnitStage, error) {
	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing unit stages: %w", err)
	}
	defer rows.Close()

	var out []*domain.UnitStage
	for rows.Next() {
		us, err := scanUnitStage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning unit stage row: %w", err)
		}
		out = append(out, us)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating unit stages: %w", err)
	}
	return out, nil
}

func scanUnitStage(s scanner) (*domain.UnitStage, error) {
	var us domain.UnitStage
	var status, createdAt, updatedAt string
	var customName, startedAt, finishedAt sql.NullString
	err := s.Scan(
		&us.ID, &us.UnitID, &us.StageID, &status, &customName, &us.OrderIndex,
		&startedAt, &finishedAt, &us.Notes, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	us.Status = domain.NormalizeStatus(status)
	if customName.Valid {
		name := customName.String
		us.CustomName = &name
	}
	us.StartedAt = parseNullableTime(startedAt)
	us.FinishedAt = parseNullableTime(finishedAt)
	us.CreatedAt, us.UpdatedAt, err = parseTimes(createdAt, updatedAt)
	if err != nil {
		return nil, err
	}
	return &us, nil
}
