package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/canteiro/internal/db"
	"github.com/alexanderramin/canteiro/internal/domain"
)

// SQLiteStageRepo implements StageRepo using a SQLite database.
type SQLiteStageRepo struct {
	conn db.DBTX
}

// NewSQLiteStageRepo creates a new SQLiteStageRepo.
func NewSQLiteStageRepo(conn db.DBTX) *SQLiteStageRepo {
	return &SQLiteStageRepo{conn: conn}
}

const stageColumns = `id, project_id, name, order_index, is_active, created_at, updated_at`

func (r *SQLiteStageRepo) Create(ctx context.Context, s *domain.Stage) error {
	query := `INSERT INTO stages (` + stageColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.conn.ExecContext(ctx, query,
		s.ID, s.ProjectID, s.Name, s.OrderIndex, boolToInt(s.IsActive),
		formatTime(s.CreatedAt), formatTime(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting stage: %w", err)
	}
	return nil
}

func (r *SQLiteStageRepo) GetByID(ctx context.Context, id string) (*domain.Stage, error) {
	query := `SELECT ` + stageColumns + ` FROM stages WHERE id = ?`
	s, err := scanStage(r.conn.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "stage")
	}
	return s, nil
}

// ListByProject returns stages in canonical order (order_index, then name).
func (r *SQLiteStageRepo) ListByProject(ctx context.Context, projectID string, includeArchived bool) ([]*domain.Stage, error) {
	query := `SELECT ` + stageColumns + ` FROM stages WHERE project_id = ?`
	if !includeArchived {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY order_index, name`
	return r.query(ctx, query, projectID)
}

func (r *SQLiteStageRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.Stage, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	in, args := inClause(ids)
	query := `SELECT ` + stageColumns + ` FROM stages WHERE id IN (` + in + `) ORDER BY order_index, name`
	return r.query(ctx, query, args...)
}

// MaxOrderIndex returns the highest order_index across all of the project's
// stages, archived included, or 0 when there are none.
func (r *SQLiteStageRepo) MaxOrderIndex(ctx context.Context, projectID string) (int, error) {
	var max sql.NullInt64
	err := r.conn.QueryRowContext(ctx,
		`SELECT MAX(order_index) FROM stages WHERE project_id = ?`, projectID,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("reading max stage order: %w", err)
	}
	return int(max.Int64), nil
}

func (r *SQLiteStageRepo) Update(ctx context.Context, s *domain.Stage) error {
	query := `UPDATE stages SET name = ?, order_index = ?, is_active = ?, updated_at = ? WHERE id = ?`
	res, err := r.conn.ExecContext(ctx, query,
		s.Name, s.OrderIndex, boolToInt(s.IsActive), formatTime(s.UpdatedAt), s.ID,
	)
	if err != nil {
		return fmt.Errorf("updating stage: %w", err)
	}
	if rowsAffected(res) == 0 {
		return fmt.Errorf("stage: %w", ErrNotFound)
	}
	return nil
}

func (r *SQLiteStageRepo) query(ctx context.Context, query string, args ...any) ([]*domain.Stage, error) {
	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing stages: %w", err)
	}
	defer rows.Close()

	var stages []*domain.Stage
	for rows.Next() {
		s, err := scanStage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning stage row: %w", err)
		}
		stages = append(stages, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stages: %w", err)
	}
	return stages, nil
}

func scanStage(s scanner) (*domain.Stage, error) {
	var st domain.Stage
	var active int
	var createdAt, updatedAt string
	if err := s.Scan(&st.ID, &st.ProjectID, &st.Name, &st.OrderIndex, &active, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	st.IsActive = intToBool(active)
	var err error
	st.CreatedAt, st.UpdatedAt, err = parseTimes(createdAt, updatedAt)
	if err != nil {
		return nil, err
	}
	return &st, nil
}
