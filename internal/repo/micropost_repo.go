package repo

import (
	"context"

	dom "microblog/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MicropostRepo provides micropost persistence.
type MicropostRepo interface {
	Create(ctx context.Context, m dom.Micropost) (dom.Micropost, error)
	GetByID(ctx context.Context, id int64) (dom.Micropost, error)
	// ListByUser returns posts strictly newest first.
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]dom.Micropost, error)
	Delete(ctx context.Context, id int64) error
}

// PGMicropostRepo implements MicropostRepo with Postgres.
type PGMicropostRepo struct {
	db *pgxpool.Pool
}

// NewPGMicropostRepo returns a new PGMicropostRepo.
func NewPGMicropostRepo(db *pgxpool.Pool) *PGMicropostRepo {
	return &PGMicropostRepo{db: db}
}

func (r *PGMicropostRepo) Create(ctx context.Context, m dom.Micropost) (dom.Micropost, error) {
	query := `
		INSERT INTO microposts (content, user_id)
		VALUES ($1, $2)
		RETURNING id, content, user_id, created_at`
	var out dom.Micropost
	err := r.db.QueryRow(ctx, query, m.Content, m.UserID).Scan(
		&out.ID, &out.Content, &out.UserID, &out.CreatedAt,
	)
	return out, err
}

func (r *PGMicropostRepo) GetByID(ctx context.Context, id int64) (dom.Micropost, error) {
	var m dom.Micropost
	err := r.db.QueryRow(ctx,
		`SELECT id, content, user_id, created_at FROM microposts WHERE id = $1`,
		id,
	).Scan(&m.ID, &m.Content, &m.UserID, &m.CreatedAt)
	return m, err
}

func (r *PGMicropostRepo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]dom.Micropost, error) {
	query := `
		SELECT id, content, user_id, created_at
		FROM microposts WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Micropost
	for rows.Next() {
		var m dom.Micropost
		if err := rows.Scan(&m.ID, &m.Content, &m.UserID, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (r *PGMicropostRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM microposts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
