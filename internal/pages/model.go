// Package pages implements bilingual CMS pages addressed by slug.
package pages

import (
	"errors"
	"time"

	"github.com/nordvare/nordvare/internal/i18n"
)

// ErrSlugTaken guards the unique slug constraint.
var ErrSlugTaken = errors.New("pages: slug already in use")

// Page is an editable content page.
type Page struct {
	ID        int64      `json:"id"`
	Slug      string     `json:"slug"`
	Title     i18n.Field `json:"title"`
	Body      i18n.Field `json:"body"`
	Published bool       `json:"published"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// View is the public projection with text resolved to one language.
type View struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Resolve projects the page for the given language.
func (p Page) Resolve(lang i18n.Lang) View {
	return View{
		Slug:  p.Slug,
		Title: i18n.Resolve(p.Title, lang),
		Body:  i18n.Resolve(p.Body, lang),
	}
}

// PageForm carries admin create/update input.
type PageForm struct {
	Slug      string `json:"slug" validate:"required,max=120"`
	Title     string `json:"title" validate:"required,max=300"`
	TitleNo   string `json:"title_no" validate:"max=300"`
	Body      string `json:"body"`
	BodyNo    string `json:"body_no"`
	Published bool   `json:"published"`
}
