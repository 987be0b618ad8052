package categories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nordvare/nordvare/internal/i18n"
	"github.com/nordvare/nordvare/internal/shared"
)

type Repository interface {
	List(ctx context.Context, activeOnly bool) ([]Category, error)
	Get(ctx context.Context, id int64) (Category, error)
	Create(ctx context.Context, c Category) (Category, error)
	Update(ctx context.Context, id int64, c Category) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const categoryColumns = `id, name_i18n, COALESCE(name, ''), description_i18n, COALESCE(description, ''), icon, is_active, sort_order, created_at, updated_at`

func (r *repository) List(ctx context.Context, activeOnly bool) ([]Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY sort_order, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Category, error) {
	row := r.db.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, shared.ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, c Category) (Category, error) {
	nameJSON, descJSON, err := encodeFields(c)
	if err != nil {
		return Category{}, err
	}
	now := time.Now()
	query := `INSERT INTO categories (name_i18n, name, description_i18n, description, icon, is_active, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8) RETURNING id`
	err = r.db.QueryRow(ctx, query,
		nameJSON, c.Name.Legacy, descJSON, c.Description.Legacy,
		c.Icon, c.IsActive, c.SortOrder, now,
	).Scan(&c.ID)
	if err != nil {
		return Category{}, err
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	return c, nil
}

func (r *repository) Update(ctx context.Context, id int64, c Category) error {
	nameJSON, descJSON, err := encodeFields(c)
	if err != nil {
		return err
	}
	query := `UPDATE categories SET name_i18n = $1, name = $2, description_i18n = $3, description = $4,
		icon = $5, is_active = $6, sort_order = $7, updated_at = $8 WHERE id = $9`
	tag, err := r.db.Exec(ctx, query,
		nameJSON, c.Name.Legacy, descJSON, c.Description.Legacy,
		c.Icon, c.IsActive, c.SortOrder, time.Now(), id,
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
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func encodeFields(c Category) (name, desc []byte, err error) {
	name, err = i18n.EncodeTranslations(c.Name.Translations)
	if err != nil {
		return nil, nil, fmt.Errorf("encode name: %w", err)
	}
	desc, err = i18n.EncodeTranslations(c.Description.Translations)
	if err != nil {
		return nil, nil, fmt.Errorf("encode description: %w", err)
	}
	return name, desc, nil
}

func scanCategory(row pgx.Row) (Category, error) {
	var (
		c          Category
		nameJSON   []byte
		descJSON   []byte
		legacyName string
		legacyDesc string
	)
	err := row.Scan(&c.ID, &nameJSON, &legacyName, &descJSON, &legacyDesc,
		&c.Icon, &c.IsActive, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Category{}, err
	}
	if c.Name, err = i18n.ParseField(nameJSON, legacyName); err != nil {
		return Category{}, fmt.Errorf("category %d name: %w", c.ID, err)
	}
	if c.Description, err = i18n.ParseField(descJSON, legacyDesc); err != nil {
		return Category{}, fmt.Errorf("category %d description: %w", c.ID, err)
	}
	return c, nil
}
