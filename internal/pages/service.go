package pages

import (
	"context"

	"github.com/nordvare/nordvare/internal/i18n"
	"github.com/nordvare/nordvare/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetPublished returns one published page resolved to the requested
// language. An unpublished page reads as absent.
func (s *Service) GetPublished(ctx context.Context, slug string, lang i18n.Lang) (View, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return View{}, err
	}
	if !p.Published {
		return View{}, shared.ErrNotFound
	}
	return p.Resolve(lang), nil
}

func (s *Service) List(ctx context.Context) ([]Page, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Page, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form PageForm) (Page, error) {
	return s.repo.Create(ctx, fromForm(form))
}

func (s *Service) Update(ctx context.Context, id int64, form PageForm) error {
	return s.repo.Update(ctx, id, fromForm(form))
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func fromForm(form PageForm) Page {
	return Page{
		Slug:      form.Slug,
		Title:     i18n.Field{Translations: i18n.NewTranslations(form.Title, form.TitleNo)},
		Body:      i18n.Field{Translations: i18n.NewTranslations(form.Body, form.BodyNo)},
		Published: form.Published,
	}
}
