package repo

import (
	"context"

	dom "microblog/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepo provides user persistence.
type UserRepo interface {
	GetByID(ctx context.Context, id int64) (dom.User, error)
	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (dom.User, error)
	List(ctx context.Context, limit, offset int) ([]dom.User, error)
	Create(ctx context.Context, u dom.User) (dom.User, error)
	Update(ctx context.Context, u dom.User) (dom.User, error)
	// Delete removes the user; microposts go with it via the FK cascade.
	Delete(ctx context.Context, id int64) error
}

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db *pgxpool.Pool
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db *pgxpool.Pool) *PGUserRepo {
	return &PGUserRepo{db: db}
}

const userCols = `id, name, email, salt, encrypted_password, admin, created_at`

// GetByID returns the user by id.
func (r *PGUserRepo) GetByID(ctx context.Context, id int64) (dom.User, error) {
	var u dom.User
	err := r.db.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Salt, &u.EncryptedPassword, &u.Admin, &u.CreatedAt)
	return u, err
}

// GetByEmail returns the user whose email matches ignoring case.
func (r *PGUserRepo) GetByEmail(ctx context.Context, email string) (dom.User, error) {
	var u dom.User
	err := r.db.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE lower(email) = lower($1)`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Salt, &u.EncryptedPassword, &u.Admin, &u.CreatedAt)
	return u, err
}

// List returns one page of users, oldest first.
func (r *PGUserRepo) List(ctx context.Context, limit, offset int) ([]dom.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userCols+` FROM users ORDER BY id ASC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.User
	for rows.Next() {
		var u dom.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Salt, &u.EncryptedPassword, &u.Admin, &u.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// Create inserts a new user and returns it. The unique index on
// lower(email) is the authority on duplicates.
func (r *PGUserRepo) Create(ctx context.Context, u dom.User) (dom.User, error) {
	query := `
		INSERT INTO users (name, email, salt, encrypted_password)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userCols
	var out dom.User
	err := r.db.QueryRow(ctx, query, u.Name, u.Email, u.Salt, u.EncryptedPassword).Scan(
		&out.ID, &out.Name, &out.Email, &out.Salt, &out.EncryptedPassword, &out.Admin, &out.CreatedAt,
	)
	return out, err
}

// Update rewrites the profile columns. Salt and admin are deliberately not
// in the SET list: the salt never changes and admin is not settable here.
func (r *PGUserRepo) Update(ctx context.Context, u dom.User) (dom.User, error) {
	query := `
		UPDATE users SET name = $2, email = $3, encrypted_password = $4
		WHERE id = $1
		RETURNING ` + userCols
	var out dom.User
	err := r.db.QueryRow(ctx, query, u.ID, u.Name, u.Email, u.EncryptedPassword).Scan(
		&out.ID, &out.Name, &out.Email, &out.Salt, &out.EncryptedPassword, &out.Admin, &out.CreatedAt,
	)
	return out, err
}

// Delete removes the user row. ON DELETE CASCADE takes the microposts in
// the same transaction, so no orphan is ever readable.
func (r *PGUserRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
