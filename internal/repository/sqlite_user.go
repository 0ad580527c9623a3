package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/canteiro/internal/db"
	"github.com/alexanderramin/canteiro/internal/domain"
)

// SQLiteUserRepo implements UserRepo using a SQLite database.
type SQLiteUserRepo struct {
	conn db.DBTX
}

// NewSQLiteUserRepo creates a new SQLiteUserRepo.
func NewSQLiteUserRepo(conn db.DBTX) *SQLiteUserRepo {
	return &SQLiteUserRepo{conn: conn}
}

func (r *SQLiteUserRepo) Create(ctx context.Context, u *domain.User) error {
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, created_at) VALUES (?, ?, ?)`,
		u.ID, strings.ToLower(strings.TrimSpace(u.Email)), formatTime(u.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *SQLiteUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.get(ctx, `SELECT id, email, created_at FROM users WHERE id = ?`, id)
}

func (r *SQLiteUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.get(ctx, `SELECT id, email, created_at FROM users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *SQLiteUserRepo) get(ctx context.Context, query string, arg string) (*domain.User, error) {
	var u domain.User
	var createdAt string
	if err := r.conn.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &createdAt); err != nil {
		return nil, notFound(err, "user")
	}
	var err error
	u.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &u, nil
}
