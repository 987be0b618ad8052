package categories

import (
	"context"
	"fmt"

	"github.com/nordvare/nordvare/internal/i18n"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListActive returns the storefront filter list: active categories ordered
// by sort_order, names resolved to the requested language.
func (s *Service) ListActive(ctx context.Context, lang i18n.Lang) ([]View, error) {
	cats, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	views := make([]View, 0, len(cats))
	for _, c := range cats {
		views = append(views, c.Resolve(lang))
	}
	return views, nil
}

func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx, false)
}

func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form CategoryForm) (Category, error) {
	return s.repo.Create(ctx, fromForm(form))
}

func (s *Service) Update(ctx context.Context, id int64, form CategoryForm) error {
	return s.repo.Update(ctx, id, fromForm(form))
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func fromForm(form CategoryForm) Category {
	return Category{
		Name:        i18n.Field{Translations: i18n.NewTranslations(form.Name, form.NameNo)},
		Description: i18n.Field{Translations: i18n.NewTranslations(form.Description, form.DescriptionNo)},
		Icon:        form.Icon,
		IsActive:    form.IsActive,
		SortOrder:   form.SortOrder,
	}
}
