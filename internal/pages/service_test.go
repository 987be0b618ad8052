package pages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordvare/nordvare/internal/i18n"
	"github.com/nordvare/nordvare/internal/shared"
)

type mockRepository struct {
	pages  map[int64]Page
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{pages: make(map[int64]Page), nextID: 1}
}

func (m *mockRepository) List(ctx context.Context) ([]Page, error) {
	var out []Page
	for _, p := range m.pages {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Page, error) {
	p, ok := m.pages[id]
	if !ok {
		return Page{}, shared.ErrNotFound
	}
	return p, nil
}

func (m *mockRepository) GetBySlug(ctx context.Context, slug string) (Page, error) {
	for _, p := range m.pages {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Page{}, shared.ErrNotFound
}

func (m *mockRepository) Create(ctx context.Context, p Page) (Page, error) {
	if _, err := m.GetBySlug(ctx, p.Slug); err == nil {
		return Page{}, ErrSlugTaken
	}
	p.ID = m.nextID
	m.nextID++
	m.pages[p.ID] = p
	return p, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, p Page) error {
	if _, ok := m.pages[id]; !ok {
		return shared.ErrNotFound
	}
	p.ID = id
	m.pages[id] = p
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.pages[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.pages, id)
	return nil
}

func TestGetPublishedResolvesLanguage(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, PageForm{
		Slug: "about", Title: "About us", TitleNo: "Om oss",
		Body: "Our story.", BodyNo: "Vår historie.", Published: true,
	})
	require.NoError(t, err)

	view, err := svc.GetPublished(ctx, "about", i18n.LangNorwegian)
	require.NoError(t, err)
	assert.Equal(t, "Om oss", view.Title)
	assert.Equal(t, "Vår historie.", view.Body)
}

func TestGetPublishedHidesUnpublished(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, PageForm{Slug: "draft", Title: "Draft"})
	require.NoError(t, err)

	_, err = svc.GetPublished(ctx, "draft", i18n.LangEnglish)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateDuplicateSlug(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, PageForm{Slug: "about", Title: "About"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, PageForm{Slug: "about", Title: "About again"})
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestCreateAutoFillsSecondaryLanguage(t *testing.T) {
	svc := NewService(newMockRepository())

	p, err := svc.Create(context.Background(), PageForm{Slug: "terms", Title: "Terms", Published: true})
	require.NoError(t, err)
	assert.Equal(t, "Terms", i18n.Resolve(p.Title, i18n.LangNorwegian))
}
