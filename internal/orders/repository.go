package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nordvare/nordvare/internal/platform/db"
	"github.com/nordvare/nordvare/internal/shared"
)

// ListFilters narrows the admin order listing.
type ListFilters struct {
	Status  *Status
	Page    int
	PerPage int
}

type Repository interface {
	// CreateWithItems inserts the order and all its lines in one
	// transaction. A failed line insert rolls back the order row.
	CreateWithItems(ctx context.Context, o Order) (Order, error)
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	List(ctx context.Context, filters ListFilters) ([]Order, int, error)
	Get(ctx context.Context, id int64) (Order, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const orderColumns = `id, user_id, status, subtotal, total, name, email, phone, address, postal_code, city, created_at, updated_at`

func (r *repository) CreateWithItems(ctx context.Context, o Order) (Order, error) {
	now := time.Now()
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO orders (user_id, status, subtotal, total, name, email, phone, address, postal_code, city, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11) RETURNING id`,
			o.UserID, o.Status, o.Subtotal, o.Total,
			o.Name, o.Email, o.Phone, o.Address, o.PostalCode, o.City, now,
		).Scan(&o.ID)
		if err != nil {
			return fmt.Errorf("orders: insert order: %w", err)
		}
		for i := range o.Items {
			o.Items[i].OrderID = o.ID
			err := tx.QueryRow(ctx, `
				INSERT INTO order_items (order_id, product_id, name, price, stock, quantity)
				VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
				o.ID, o.Items[i].ProductID, o.Items[i].Name, o.Items[i].Price, o.Items[i].Stock, o.Items[i].Quantity,
			).Scan(&o.Items[i].ID)
			if err != nil {
				return fmt.Errorf("orders: insert item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	o.CreatedAt = now
	o.UpdatedAt = now
	return o, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	return r.attachItems(ctx, orders)
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Order, int, error) {
	where := ` FROM orders WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Status != nil {
		argCount++
		where += ` AND status = $` + strconv.Itoa(argCount)
		args = append(args, *filters.Status)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + orderColumns + where + ` ORDER BY created_at DESC, id DESC`
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
	orders, err := scanOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	orders, err = r.attachItems(ctx, orders)
	return orders, total, err
}

func (r *repository) Get(ctx context.Context, id int64) (Order, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, shared.ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	orders, err := r.attachItems(ctx, []Order{o})
	if err != nil {
		return Order{}, err
	}
	return orders[0], nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// attachItems loads the lines of the given orders in one query, joined
// against products for the live name and price.
func (r *repository) attachItems(ctx context.Context, orders []Order) ([]Order, error) {
	if len(orders) == 0 {
		return orders, nil
	}
	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
	}

	rows, err := r.db.Query(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.name, oi.price, oi.stock, oi.quantity,
			COALESCE(p.name_i18n->>'en', p.name, ''), p.price
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.id`, ids)
	if err != nil {
		return nil, fmt.Errorf("orders: load items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item Item
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.Price,
			&item.Stock, &item.Quantity, &item.CurrentName, &item.CurrentPrice)
		if err != nil {
			return nil, err
		}
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	return orders, rows.Err()
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.Subtotal, &o.Total,
		&o.Name, &o.Email, &o.Phone, &o.Address, &o.PostalCode, &o.City,
		&o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func scanOrders(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
