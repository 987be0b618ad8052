// Package users implements admin-side account management.
package users

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nordvare/nordvare/internal/auth"
	"github.com/nordvare/nordvare/internal/shared"
)

// ListFilters narrows the account listing.
type ListFilters struct {
	Role    *auth.Role
	Search  string
	Page    int
	PerPage int
}

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]auth.User, int, error)
	Get(ctx context.Context, id int64) (auth.User, error)
	UpdateRole(ctx context.Context, id int64, role auth.Role) error
	SetActive(ctx context.Context, id int64, active bool) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const userColumns = `id, email, password_hash, role, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]auth.User, int, error) {
	where := ` FROM users WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Role != nil {
		argCount++
		where += ` AND role = $` + strconv.Itoa(argCount)
		args = append(args, *filters.Role)
	}
	if filters.Search != "" {
		argCount++
		where += ` AND email ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + userColumns + where + ` ORDER BY created_at DESC, id DESC`
	if filters.PerPage > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.PerPage)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.PerPage
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []auth.User
	for rows.Next() {
		var u auth.User
		err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (auth.User, error) {
	var u auth.User
	err := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.User{}, shared.ErrNotFound
	}
	return u, err
}

func (r *repository) UpdateRole(ctx context.Context, id int64, role auth.Role) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET role = $1, updated_at = $2 WHERE id = $3`, role, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3`, active, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
