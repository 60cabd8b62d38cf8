package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/task-manager-api/internal/model"
)

const userColumns = `id, name, email, hashed_password, created_at, updated_at`

// UserRepo implements UserRepository with Postgres.
type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Create inserts a new user. A duplicate email yields ErrorConflict.
func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, hashed_password)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns,
		u.Name, u.Email, u.HashedPassword,
	)
	created, err := scanUser(row)
	return created, mapError(err)
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	return u, mapError(err)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	return u, mapError(err)
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.HashedPassword, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
