package products

import (
	"context"
	"fmt"

	"github.com/nordvare/nordvare/internal/i18n"
	"github.com/nordvare/nordvare/internal/shared"
	"github.com/nordvare/nordvare/internal/visibility"
)

// VisibilityResolver is the slice of the visibility service the catalog
// needs. Satisfied by *visibility.Service.
type VisibilityResolver interface {
	ScopeFor(ctx context.Context, viewer visibility.Viewer) visibility.Scope
	CanView(ctx context.Context, viewer visibility.Viewer, productID int64) bool
}

type Service struct {
	repo Repository
	vis  VisibilityResolver
}

func NewService(repo Repository, vis VisibilityResolver) *Service {
	return &Service{repo: repo, vis: vis}
}

// ListStorefront returns the catalog page a viewer is allowed to see: the
// visibility scope subtracts restricted products, inactive categories drop
// their products, and text is resolved to the requested language.
func (s *Service) ListStorefront(ctx context.Context, viewer visibility.Viewer, lang i18n.Lang, filters ListFilters) ([]View, shared.Pagination, error) {
	filters.ActiveCategoriesOnly = true

	scope := s.vis.ScopeFor(ctx, viewer)
	if scope.None {
		return []View{}, shared.NewPagination(filters.Page, filters.PerPage, 0), nil
	}
	if !scope.All {
		filters.ExcludeIDs = hiddenIDs(scope)
	}

	items, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("list products: %w", err)
	}

	views := make([]View, 0, len(items))
	for _, p := range items {
		views = append(views, p.Resolve(lang))
	}
	return views, shared.NewPagination(filters.Page, filters.PerPage, total), nil
}

// GetStorefront returns one product for the storefront. A restricted product
// the viewer is not assigned to is reported as not found rather than
// forbidden, so its existence leaks nothing.
func (s *Service) GetStorefront(ctx context.Context, viewer visibility.Viewer, lang i18n.Lang, id int64) (View, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	if !s.vis.CanView(ctx, viewer, id) {
		return View{}, shared.ErrNotFound
	}
	return p.Resolve(lang), nil
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Product, shared.Pagination, error) {
	items, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("list products: %w", err)
	}
	return items, shared.NewPagination(filters.Page, filters.PerPage, total), nil
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form ProductForm) (Product, error) {
	return s.repo.Create(ctx, fromForm(form))
}

func (s *Service) Update(ctx context.Context, id int64, form ProductForm) error {
	return s.repo.Update(ctx, id, fromForm(form))
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func fromForm(form ProductForm) Product {
	return Product{
		Name:        i18n.Field{Translations: i18n.NewTranslations(form.Name, form.NameNo)},
		Description: i18n.Field{Translations: i18n.NewTranslations(form.Description, form.DescriptionNo)},
		Price:       form.Price,
		Stock:       form.Stock,
		CategoryID:  form.CategoryID,
		ImageURL:    form.ImageURL,
		TechDocURL:  form.TechDocURL,
	}
}

// hiddenIDs computes the products a non-admin viewer must not see: the
// restricted set minus their own assignments.
func hiddenIDs(scope visibility.Scope) []int64 {
	var ids []int64
	for id := range scope.Restricted {
		if _, ok := scope.Allowed[id]; !ok {
			ids = append(ids, id)
		}
	}
	return ids
}
