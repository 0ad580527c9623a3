package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/canteiro/internal/db"
	"github.com/alexanderramin/canteiro/internal/domain"
)

// SQLitePhotoRepo implements PhotoRepo using a SQLite database.
type SQLitePhotoRepo struct {
	conn db.DBTX
}

// NewSQLitePhotoRepo creates a new SQLitePhotoRepo.
func NewSQLitePhotoRepo(conn db.DBTX) *SQLitePhotoRepo {
	return &SQLitePhotoRepo{conn: conn}
}

const photoColumns = `id, unit_stage_id, path, caption, kind, content_type, size, uploaded_by, created_at`

func (r *SQLitePhotoRepo) Create(ctx context.Context, p *domain.Photo) error {
	kind := domain.CoalesceStr(p.Kind, domain.PhotoKindGeneral)
	query := `INSERT INTO unit_stage_photos (` + photoColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.conn.ExecContext(ctx, query,
		p.ID, p.UnitStageID, p.Path, p.Caption, kind, p.ContentType, p.Size, p.UploadedBy,
		formatTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting photo: %w", err)
	}
	return nil
}

func (r *SQLitePhotoRepo) GetByID(ctx context.Context, id string) (*domain.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM unit_stage_photos WHERE id = ?`
	p, err := scanPhoto(r.conn.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "photo")
	}
	return p, nil
}

func (r *SQLitePhotoRepo) ListByUnitStage(ctx context.Context, unitStageID string) ([]*domain.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM unit_stage_photos WHERE unit_stage_id = ? ORDER BY created_at, id`
	rows, err := r.conn.QueryContext(ctx, query, unitStageID)
	if err != nil {
		return nil, fmt.Errorf("listing photos: %w", err)
	}
	defer rows.Close()

	var photos []*domain.Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning photo row: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating photos: %w", err)
	}
	return photos, nil
}

func (r *SQLitePhotoRepo) Delete(ctx context.Context, id string) error {
	n, err := execDelete(ctx, r.conn, "photo", `DELETE FROM unit_stage_photos WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("photo: %w", ErrNotFound)
	}
	return nil
}

func (r *SQLitePhotoRepo) DeleteByUnitStage(ctx context.Context, unitStageID string) (int, error) {
	return execDelete(ctx, r.conn, "photos", `DELETE FROM unit_stage_photos WHERE unit_stage_id = ?`, unitStageID)
}

func scanPhoto(s scanner) (*domain.Photo, error) {
	var p domain.Photo
	var createdAt string
	err := s.Scan(&p.ID, &p.UnitStageID, &p.Path, &p.Caption, &p.Kind, &p.ContentType, &p.Size, &p.UploadedBy, &createdAt)
	if err != nil {
		return nil, err
	}
	p.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &p, nil
}
