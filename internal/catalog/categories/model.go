package categories

import (
	"time"

	"github.com/nordvare/nordvare/internal/i18n"
)

// Category groups products for storefront filtering.
type Category struct {
	ID          int64      `json:"id"`
	Name        i18n.Field `json:"name"`
	Description i18n.Field `json:"description"`
	Icon        string     `json:"icon"`
	IsActive    bool       `json:"is_active"`
	SortOrder   int        `json:"sort_order"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// View is a storefront projection with the name resolved to one language.
type View struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Resolve projects the category for the given language.
func (c Category) Resolve(lang i18n.Lang) View {
	return View{
		ID:   c.ID,
		Name: i18n.Resolve(c.Name, lang),
		Icon: c.Icon,
	}
}
