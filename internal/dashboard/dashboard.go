// Package dashboard aggregates back-office statistics.
package dashboard

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/nordvare/nordvare/internal/i18n"
	"github.com/nordvare/nordvare/internal/orders"
)

// lowStockThreshold marks products the back-office should reorder.
const lowStockThreshold = 5

// Stats is the dashboard payload.
type Stats struct {
	ProductCount   int            `json:"product_count"`
	UserCount      int            `json:"user_count"`
	OrdersByStatus map[string]int `json:"orders_by_status"`
	Revenue        float64        `json:"revenue"`
	LowStock       []LowStockItem `json:"low_stock"`
}

// LowStockItem is a product at or below the reorder threshold.
type LowStockItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
}

type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// Collect runs the dashboard queries in parallel; the first failure
// cancels the rest.
func (s *Service) Collect(ctx context.Context) (Stats, error) {
	stats := Stats{OrdersByStatus: make(map[string]int)}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&stats.ProductCount)
		if err != nil {
			return fmt.Errorf("dashboard: product count: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&stats.UserCount)
		if err != nil {
			return fmt.Errorf("dashboard: user count: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		rows, err := s.db.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
		if err != nil {
			return fmt.Errorf("dashboard: orders by status: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var status string
			var count int
			if err := rows.Scan(&status, &count); err != nil {
				return err
			}
			stats.OrdersByStatus[status] = count
		}
		return rows.Err()
	})

	g.Go(func() error {
		err := s.db.QueryRow(ctx,
			`SELECT COALESCE(SUM(total), 0) FROM orders WHERE status = $1`,
			orders.StatusDelivered).Scan(&stats.Revenue)
		if err != nil {
			return fmt.Errorf("dashboard: revenue: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		rows, err := s.db.Query(ctx, `
			SELECT id, COALESCE(name_i18n->>$1, name, ''), stock
			FROM products WHERE stock <= $2
			ORDER BY stock, id`, i18n.LangEnglish, lowStockThreshold)
		if err != nil {
			return fmt.Errorf("dashboard: low stock: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var item LowStockItem
			if err := rows.Scan(&item.ProductID, &item.Name, &item.Stock); err != nil {
				return err
			}
			stats.LowStock = append(stats.LowStock, item)
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return stats, nil
}
