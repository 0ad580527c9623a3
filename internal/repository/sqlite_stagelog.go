package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/canteiro/internal/db"
	"github.com/alexanderramin/canteiro/internal/domain"
)

// SQLiteStageLogRepo implements StageLogRepo using a SQLite database.
type SQLiteStageLogRepo struct {
	conn db.DBTX
}

// NewSQLiteStageLogRepo creates a new SQLiteStageLogRepo.
func NewSQLiteStageLogRepo(conn db.DBTX) *SQLiteStageLogRepo {
	return &SQLiteStageLogRepo{conn: conn}
}

const stageLogColumns = `id, unit_stage_id, user_id, action, old_value, new_value, created_at`

func (r *SQLiteStageLogRepo) Create(ctx context.Context, l *domain.StageLog) error {
	query := `INSERT INTO unit_stage_logs (` + stageLogColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.conn.ExecContext(ctx, query,
		l.ID, l.UnitStageID, l.UserID, string(l.Action), l.OldValue, l.NewValue, formatTime(l.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting stage log: %w", err)
	}
	return nil
}

// ListByUnitStage returns entries newest first.
func (r *SQLiteStageLogRepo) ListByUnitStage(ctx context.Context, unitStageID string) ([]*domain.StageLog, error) {
	query := `SELECT ` + stageLogColumns + ` FROM unit_stage_logs WHERE unit_stage_id = ?
		ORDER BY created_at DESC, rowid DESC`
	rows, err := r.conn.QueryContext(ctx, query, unitStageID)
	if err != nil {
		return nil, fmt.Errorf("listing stage logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.StageLog
	for rows.Next() {
		var l domain.StageLog
		var action, createdAt string
		var oldValue, newValue sql.NullString
		if err := rows.Scan(&l.ID, &l.UnitStageID, &l.UserID, &action, &oldValue, &newValue, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning stage log row: %w", err)
		}
		l.Action = domain.LogAction(action)
		l.OldValue = oldValue.String
		l.NewValue = newValue.String
		l.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		logs = append(logs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stage logs: %w", err)
	}
	return logs, nil
}

func (r *SQLiteStageLogRepo) DeleteByUnitStage(ctx context.Context, unitStageID string) (int, error) {
	return execDelete(ctx, r.conn, "stage logs", `DELETE FROM unit_stage_logs WHERE unit_stage_id = ?`, unitStageID)
}
