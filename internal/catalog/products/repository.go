package products

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nordvare/nordvare/internal/i18n"
	"github.com/nordvare/nordvare/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, id int64, p Product) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const productColumns = `p.id, p.name_i18n, COALESCE(p.name, ''), p.description_i18n, COALESCE(p.description, ''),
	p.price, p.stock, p.category_id, COALESCE(p.image_url, ''), COALESCE(p.tech_doc_url, ''), p.created_at, p.updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	where := ` FROM products p`
	args := []interface{}{}
	argCount := 0

	if filters.ActiveCategoriesOnly {
		where += ` LEFT JOIN categories c ON c.id = p.category_id`
	}
	where += ` WHERE 1=1`
	if filters.ActiveCategoriesOnly {
		where += ` AND (p.category_id IS NULL OR c.is_active)`
	}

	if filters.CategoryID != nil {
		argCount++
		where += ` AND p.category_id = $` + strconv.Itoa(argCount)
		args = append(args, *filters.CategoryID)
	}

	if filters.Search != "" {
		argCount++
		n := strconv.Itoa(argCount)
		where += ` AND (p.name ILIKE $` + n + ` OR p.name_i18n::text ILIKE $` + n +
			` OR p.description ILIKE $` + n + ` OR p.description_i18n::text ILIKE $` + n + `)`
		args = append(args, "%"+filters.Search+"%")
	}

	if len(filters.ExcludeIDs) > 0 {
		argCount++
		where += ` AND NOT (p.id = ANY($` + strconv.Itoa(argCount) + `))`
		args = append(args, filters.ExcludeIDs)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + where + ` ORDER BY p.created_at DESC, p.id DESC`
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

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, p Product) (Product, error) {
	nameJSON, descJSON, err := encodeFields(p)
	if err != nil {
		return Product{}, err
	}
	now := time.Now()
	query := `INSERT INTO products (name_i18n, name, description_i18n, description, price, stock, category_id, image_url, tech_doc_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10) RETURNING id`
	err = r.db.QueryRow(ctx, query,
		nameJSON, p.Name.Legacy, descJSON, p.Description.Legacy,
		p.Price, p.Stock, p.CategoryID, p.ImageURL, p.TechDocURL, now,
	).Scan(&p.ID)
	if err != nil {
		return Product{}, err
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

func (r *repository) Update(ctx context.Context, id int64, p Product) error {
	nameJSON, descJSON, err := encodeFields(p)
	if err != nil {
		return err
	}
	query := `UPDATE products SET name_i18n = $1, name = $2, description_i18n = $3, description = $4,
		price = $5, stock = $6, category_id = $7, image_url = $8, tech_doc_url = $9, updated_at = $10 WHERE id = $11`
	tag, err := r.db.Exec(ctx, query,
		nameJSON, p.Name.Legacy, descJSON, p.Description.Legacy,
		p.Price, p.Stock, p.CategoryID, p.ImageURL, p.TechDocURL, time.Now(), id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func encodeFields(p Product) (name, desc []byte, err error) {
	name, err = i18n.EncodeTranslations(p.Name.Translations)
	if err != nil {
		return nil, nil, fmt.Errorf("encode name: %w", err)
	}
	desc, err = i18n.EncodeTranslations(p.Description.Translations)
	if err != nil {
		return nil, nil, fmt.Errorf("encode description: %w", err)
	}
	return name, desc, nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p          Product
		nameJSON   []byte
		descJSON   []byte
		legacyName string
		legacyDesc string
	)
	err := row.Scan(&p.ID, &nameJSON, &legacyName, &descJSON, &legacyDesc,
		&p.Price, &p.Stock, &p.CategoryID, &p.ImageURL, &p.TechDocURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	if p.Name, err = i18n.ParseField(nameJSON, legacyName); err != nil {
		return Product{}, fmt.Errorf("product %d name: %w", p.ID, err)
	}
	if p.Description, err = i18n.ParseField(descJSON, legacyDesc); err != nil {
		return Product{}, fmt.Errorf("product %d description: %w", p.ID, err)
	}
	return p, nil
}
