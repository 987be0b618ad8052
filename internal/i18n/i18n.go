// Package i18n implements bilingual content fields and their resolution rules.
//
// Catalog and CMS records store user-facing text as a {lang: text} map with a
// deterministic fallback chain. Records created before the translation scheme
// existed carry a plain string instead; the resolver treats that legacy value
// as the last fallback tier.
package i18n

import (
	"encoding/json"
	"fmt"
)

// Lang is a two-letter content language code.
type Lang string

const (
	// LangEnglish is the primary content language.
	LangEnglish Lang = "en"
	// LangNorwegian is the secondary content language.
	LangNorwegian Lang = "no"
)

// Valid reports whether the language is one the catalog stores.
func (l Lang) Valid() bool {
	return l == LangEnglish || l == LangNorwegian
}

// Translations maps a language code to text.
type Translations map[Lang]string

// NewTranslations builds the stored map for a bilingual admin form submission.
// A blank secondary text is filled with the primary text at save time, so a
// record written through this path never has a missing Norwegian entry.
func NewTranslations(primary, secondary string) Translations {
	if secondary == "" {
		secondary = primary
	}
	return Translations{
		LangEnglish:   primary,
		LangNorwegian: secondary,
	}
}

// Field is a translatable record field: either a Translations map, a legacy
// plain string from before the translation scheme, or both when a migrated
// row kept its old column.
type Field struct {
	Translations Translations
	Legacy       string
}

// Resolve returns the best available text for the requested language.
// Resolution order: requested language, English, legacy string, empty.
// It never fails; absent content resolves to the empty string.
func Resolve(f Field, lang Lang) string {
	if text := f.Translations[lang]; text != "" {
		return text
	}
	if text := f.Translations[LangEnglish]; text != "" {
		return text
	}
	return f.Legacy
}

// IsZero reports whether the field carries no text in any tier.
func (f Field) IsZero() bool {
	for _, text := range f.Translations {
		if text != "" {
			return false
		}
	}
	return f.Legacy == ""
}

// MarshalJSON renders the translations map, falling back to the legacy string
// for rows that were never migrated.
func (f Field) MarshalJSON() ([]byte, error) {
	if len(f.Translations) > 0 {
		return json.Marshal(f.Translations)
	}
	return json.Marshal(f.Legacy)
}

// UnmarshalJSON accepts either a {lang: text} object or a legacy plain string.
func (f *Field) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &f.Legacy)
	}
	var translations Translations
	if err := json.Unmarshal(data, &translations); err != nil {
		return fmt.Errorf("i18n: decode field: %w", err)
	}
	f.Translations = translations
	return nil
}

// ParseField assembles a Field from the jsonb translations column and the
// legacy text column of a row. A NULL translations column yields a pure
// legacy field.
func ParseField(translationsJSON []byte, legacy string) (Field, error) {
	f := Field{Legacy: legacy}
	if len(translationsJSON) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(translationsJSON, &f.Translations); err != nil {
		return Field{}, fmt.Errorf("i18n: parse translations: %w", err)
	}
	return f, nil
}

// EncodeTranslations renders the map for a jsonb column, nil when empty.
func EncodeTranslations(t Translations) ([]byte, error) {
	if len(t) == 0 {
		return nil, nil
	}
	return json.Marshal(t)
}
