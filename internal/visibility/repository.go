package visibility

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nordvare/nordvare/internal/platform/db"
)

// Repository provides access to product assignment edges.
type Repository interface {
	// RestrictedProductIDs returns the ids of all products carrying at least
	// one edge. Row-level rules prevent a non-admin from discovering edges on
	// products they cannot see, so this aggregate runs with the service's
	// own privileges.
	RestrictedProductIDs(ctx context.Context) (map[int64]struct{}, error)
	// AssignedProductIDs returns the product ids assigned to one user. A
	// user may always read their own edges.
	AssignedProductIDs(ctx context.Context, userID int64) (map[int64]struct{}, error)
	// ListAssignees returns the current edge set for the admin editor.
	ListAssignees(ctx context.Context, productID int64) ([]Assignee, error)
	// Replace swaps the full edge set of a product in one transaction.
	Replace(ctx context.Context, productID int64, userIDs []int64) error
	// NonAdminUserIDs filters the given ids down to non-admin accounts.
	NonAdminUserIDs(ctx context.Context, userIDs []int64) ([]int64, error)
	// HasAssignments reports whether a product carries any edge at all.
	HasAssignments(ctx context.Context, productID int64) (bool, error)
	// IsAssigned reports whether an edge exists for one user and product.
	IsAssigned(ctx context.Context, productID, userID int64) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository backed by the provided pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) RestrictedProductIDs(ctx context.Context) (map[int64]struct{}, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT product_id FROM product_assignments`)
	if err != nil {
		return nil, fmt.Errorf("visibility: restricted product ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

func (r *repository) AssignedProductIDs(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	rows, err := r.pool.Query(ctx, `SELECT product_id FROM product_assignments WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("visibility: assigned product ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

func (r *repository) ListAssignees(ctx context.Context, productID int64) ([]Assignee, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT pa.user_id, u.email
		FROM product_assignments pa
		JOIN users u ON u.id = pa.user_id
		WHERE pa.product_id = $1
		ORDER BY u.email`, productID)
	if err != nil {
		return nil, fmt.Errorf("visibility: list assignees: %w", err)
	}
	defer rows.Close()

	var assignees []Assignee
	for rows.Next() {
		var a Assignee
		if err := rows.Scan(&a.UserID, &a.Email); err != nil {
			return nil, err
		}
		assignees = append(assignees, a)
	}
	return assignees, rows.Err()
}

func (r *repository) Replace(ctx context.Context, productID int64, userIDs []int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM product_assignments WHERE product_id = $1`, productID); err != nil {
			return fmt.Errorf("visibility: clear edges: %w", err)
		}
		for _, userID := range userIDs {
			if _, err := tx.Exec(ctx, `INSERT INTO product_assignments (product_id, user_id) VALUES ($1, $2)`, productID, userID); err != nil {
				return fmt.Errorf("visibility: insert edge: %w", err)
			}
		}
		return nil
	})
}

func (r *repository) HasAssignments(ctx context.Context, productID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM product_assignments WHERE product_id = $1)`, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("visibility: has assignments: %w", err)
	}
	return exists, nil
}

func (r *repository) IsAssigned(ctx context.Context, productID, userID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM product_assignments WHERE product_id = $1 AND user_id = $2)`,
		productID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("visibility: is assigned: %w", err)
	}
	return exists, nil
}

func (r *repository) NonAdminUserIDs(ctx context.Context, userIDs []int64) ([]int64, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id FROM users WHERE id = ANY($1) AND role <> 'admin'`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("visibility: filter admins: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
