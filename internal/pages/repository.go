package pages

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nordvare/nordvare/internal/i18n"
	"github.com/nordvare/nordvare/internal/shared"
)

type Repository interface {
	List(ctx context.Context) ([]Page, error)
	Get(ctx context.Context, id int64) (Page, error)
	GetBySlug(ctx context.Context, slug string) (Page, error)
	Create(ctx context.Context, p Page) (Page, error)
	Update(ctx context.Context, id int64, p Page) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const pageColumns = `id, slug, title_i18n, COALESCE(title, ''), body_i18n, COALESCE(body, ''), published, created_at, updated_at`

func (r *repository) List(ctx context.Context) ([]Page, error) {
	rows, err := r.db.Query(ctx, `SELECT `+pageColumns+` FROM pages ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Page, error) {
	row := r.db.QueryRow(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = $1`, id)
	p, err := scanPage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Page{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (Page, error) {
	row := r.db.QueryRow(ctx, `SELECT `+pageColumns+` FROM pages WHERE slug = $1`, slug)
	p, err := scanPage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Page{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, p Page) (Page, error) {
	titleJSON, bodyJSON, err := encodeFields(p)
	if err != nil {
		return Page{}, err
	}
	now := time.Now()
	err = r.db.QueryRow(ctx, `
		INSERT INTO pages (slug, title_i18n, title, body_i18n, body, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING id`,
		p.Slug, titleJSON, p.Title.Legacy, bodyJSON, p.Body.Legacy, p.Published, now,
	).Scan(&p.ID)
	if err != nil {
		return Page{}, translateUnique(err)
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

func (r *repository) Update(ctx context.Context, id int64, p Page) error {
	titleJSON, bodyJSON, err := encodeFields(p)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE pages SET slug = $1, title_i18n = $2, title = $3, body_i18n = $4, body = $5, published = $6, updated_at = $7
		WHERE id = $8`,
		p.Slug, titleJSON, p.Title.Legacy, bodyJSON, p.Body.Legacy, p.Published, time.Now(), id)
	if err != nil {
		return translateUnique(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM pages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrSlugTaken
	}
	return err
}

func encodeFields(p Page) (title, body []byte, err error) {
	title, err = i18n.EncodeTranslations(p.Title.Translations)
	if err != nil {
		return nil, nil, fmt.Errorf("encode title: %w", err)
	}
	body, err = i18n.EncodeTranslations(p.Body.Translations)
	if err != nil {
		return nil, nil, fmt.Errorf("encode body: %w", err)
	}
	return title, body, nil
}

func scanPage(row pgx.Row) (Page, error) {
	var (
		p           Page
		titleJSON   []byte
		bodyJSON    []byte
		legacyTitle string
		legacyBody  string
	)
	err := row.Scan(&p.ID, &p.Slug, &titleJSON, &legacyTitle, &bodyJSON, &legacyBody,
		&p.Published, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Page{}, err
	}
	if p.Title, err = i18n.ParseField(titleJSON, legacyTitle); err != nil {
		return Page{}, fmt.Errorf("page %d title: %w", p.ID, err)
	}
	if p.Body, err = i18n.ParseField(bodyJSON, legacyBody); err != nil {
		return Page{}, fmt.Errorf("page %d body: %w", p.ID, err)
	}
	return p, nil
}
