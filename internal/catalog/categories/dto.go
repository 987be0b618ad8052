package categories

// CategoryForm carries admin create/update input. The Norwegian fields are
// optional; empty ones are filled from the English value so both languages
// always resolve.
type CategoryForm struct {
	Name          string `json:"name" validate:"required,max=200"`
	NameNo        string `json:"name_no" validate:"max=200"`
	Description   string `json:"description" validate:"max=2000"`
	DescriptionNo string `json:"description_no" validate:"max=2000"`
	Icon          string `json:"icon" validate:"max=16"`
	IsActive      bool   `json:"is_active"`
	SortOrder     int    `json:"sort_order" validate:"min=0"`
}
