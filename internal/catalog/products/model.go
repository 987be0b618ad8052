package products

import (
	"time"

	"github.com/nordvare/nordvare/internal/i18n"
)

// Product is a catalog item. Name and description are bilingual fields;
// rows predating the translation scheme carry plain-text legacy columns
// that feed the fields' last fallback tier.
type Product struct {
	ID          int64      `json:"id"`
	Name        i18n.Field `json:"name"`
	Description i18n.Field `json:"description"`
	Price       float64    `json:"price"`
	Stock       int        `json:"stock"`
	CategoryID  *int64     `json:"category_id"`
	ImageURL    string     `json:"image_url"`
	TechDocURL  string     `json:"tech_doc_url"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// View is the storefront projection with text resolved to one language.
type View struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	CategoryID  *int64  `json:"category_id"`
	ImageURL    string  `json:"image_url"`
	TechDocURL  string  `json:"tech_doc_url"`
}

// Resolve projects the product for the given language.
func (p Product) Resolve(lang i18n.Lang) View {
	return View{
		ID:          p.ID,
		Name:        i18n.Resolve(p.Name, lang),
		Description: i18n.Resolve(p.Description, lang),
		Price:       p.Price,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
		ImageURL:    p.ImageURL,
		TechDocURL:  p.TechDocURL,
	}
}
