package products

// ProductForm carries admin create/update input. Blank Norwegian fields are
// filled from the English value at save time.
type ProductForm struct {
	Name          string  `json:"name" validate:"required,max=300"`
	NameNo        string  `json:"name_no" validate:"max=300"`
	Description   string  `json:"description" validate:"max=10000"`
	DescriptionNo string  `json:"description_no" validate:"max=10000"`
	Price         float64 `json:"price" validate:"min=0"`
	Stock         int     `json:"stock" validate:"min=0"`
	CategoryID    *int64  `json:"category_id"`
	ImageURL      string  `json:"image_url" validate:"omitempty,url"`
	TechDocURL    string  `json:"tech_doc_url" validate:"omitempty,url"`
}

// ListFilters narrows the storefront and admin listings.
type ListFilters struct {
	CategoryID *int64
	Search     string
	Page       int
	PerPage    int

	// ExcludeIDs removes restricted products the viewer may not see; the
	// listing query subtracts them so pagination counts stay correct.
	ExcludeIDs []int64
	// ActiveCategoriesOnly drops products whose category is inactive.
	// Products without a category are always kept.
	ActiveCategoriesOnly bool
}
