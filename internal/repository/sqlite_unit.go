package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/canteiro/internal/db"
	"github.com/alexanderramin/canteiro/internal/domain"
)

// SQLiteUnitRepo implements UnitRepo using a SQLite database.
type SQLiteUnitRepo struct {
	conn db.DBTX
}

// NewSQLiteUnitRepo creates a new SQLiteUnitRepo.
func NewSQLiteUnitRepo(conn db.DBTX) *SQLiteUnitRepo {
	return &SQLiteUnitRepo{conn: conn}
}

const unitColumns = `id, project_id, identifier, status, progress, created_at, updated_at`

func (r *SQLiteUnitRepo) Create(ctx context.Context, u *domain.Unit) error {
	query := `INSERT INTO units (` + unitColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.conn.ExecContext(ctx, query,
		u.ID, u.ProjectID, u.Identifier, string(u.EffectiveStatus()), domain.ClampProgress(float64(u.Progress)),
		formatTime(u.CreatedAt), formatTime(u.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting unit: %w", err)
	}
	return nil
}

func (r *SQLiteUnitRepo) GetByID(ctx context.Context, id string) (*domain.Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM units WHERE id = ?`
	u, err := scanUnit(r.conn.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "unit")
	}
	return u, nil
}

func (r *SQLiteUnitRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM units WHERE project_id = ? ORDER BY created_at, identifier`
	return r.query(ctx, query, projectID)
}

func (r *SQLiteUnitRepo) ListByProjects(ctx context.Context, projectIDs []string) ([]*domain.Unit, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	in, args := inClause(projectIDs)
	query := `SELECT ` + unitColumns + ` FROM units WHERE project_id IN (` + in + `) ORDER BY created_at, identifier`
	return r.query(ctx, query, args...)
}

func (r *SQLiteUnitRepo) Update(ctx context.Context, u *domain.Unit) error {
	query := `UPDATE units SET identifier = ?, status = ?, progress = ?, updated_at = ? WHERE id = ?`
	res, err := r.conn.ExecContext(ctx, query,
		u.Identifier, string(u.EffectiveStatus()), domain.ClampProgress(float64(u.Progress)),
		formatTime(u.UpdatedAt), u.ID,
	)
	if err != nil {
		return fmt.Errorf("updating unit: %w", err)
	}
	if rowsAffected(res) == 0 {
		return fmt.Errorf("unit: %w", ErrNotFound)
	}
	return nil
}

func (r *SQLiteUnitRepo) Delete(ctx context.Context, id string) error {
	n, err := execDelete(ctx, r.conn, "unit", `DELETE FROM units WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("unit: %w", ErrNotFound)
	}
	return nil
}

func (r *SQLiteUnitRepo) query(ctx context.Context, query string, args ...any) ([]*domain.Unit, error) {
	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing units: %w", err)
	}
	defer rows.Close()

	var units []*domain.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning unit row: %w", err)
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating units: %w", err)
	}
	return units, nil
}

func scanUnit(s scanner) (*domain.Unit, error) {
	var u domain.Unit
	var status, createdAt, updatedAt string
	if err := s.Scan(&u.ID, &u.ProjectID, &u.Identifier, &status, &u.Progress, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	u.Status = domain.NormalizeStatus(status)
	var err error
	u.CreatedAt, u.UpdatedAt, err = parseTimes(createdAt, updatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
