package i18n

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		lang  Lang
		want  string
	}{
		{
			name:  "requested language present",
			field: Field{Translations: Translations{LangEnglish: "A", LangNorwegian: "B"}},
			lang:  LangNorwegian,
			want:  "B",
		},
		{
			name:  "requested language empty falls back to english",
			field: Field{Translations: Translations{LangEnglish: "A", LangNorwegian: ""}},
			lang:  LangNorwegian,
			want:  "A",
		},
		{
			name:  "both empty resolves to empty string",
			field: Field{Translations: Translations{LangEnglish: "", LangNorwegian: ""}},
			lang:  LangNorwegian,
			want:  "",
		},
		{
			name:  "legacy plain string returned unchanged",
			field: Field{Legacy: "legacy"},
			lang:  LangNorwegian,
			want:  "legacy",
		},
		{
			name:  "zero field resolves to empty string",
			field: Field{},
			lang:  LangEnglish,
			want:  "",
		},
		{
			name:  "legacy is the last fallback tier for migrated rows",
			field: Field{Translations: Translations{LangEnglish: "", LangNorwegian: ""}, Legacy: "old name"},
			lang:  LangNorwegian,
			want:  "old name",
		},
		{
			name:  "translations win over legacy when present",
			field: Field{Translations: Translations{LangEnglish: "new"}, Legacy: "old"},
			lang:  LangEnglish,
			want:  "new",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.field, tt.lang))
		})
	}
}

func TestResolveNonEmptyWheneverAnyTierSet(t *testing.T) {
	fields := []Field{
		{Translations: Translations{LangEnglish: "Widget"}},
		{Translations: Translations{LangNorwegian: "Dings"}},
		{Translations: Translations{LangEnglish: "Widget", LangNorwegian: "Dings"}},
	}
	for _, f := range fields {
		for _, lang := range []Lang{LangEnglish, LangNorwegian} {
			assert.NotEmpty(t, Resolve(f, lang), "field %v lang %s", f, lang)
		}
	}
}

func TestNewTranslations(t *testing.T) {
	t.Run("blank secondary filled from primary", func(t *testing.T) {
		got := NewTranslations("Widget", "")
		assert.Equal(t, Translations{LangEnglish: "Widget", LangNorwegian: "Widget"}, got)
	})

	t.Run("both languages kept when provided", func(t *testing.T) {
		got := NewTranslations("Widget", "Dings")
		assert.Equal(t, Translations{LangEnglish: "Widget", LangNorwegian: "Dings"}, got)
	})
}

func TestFieldJSON(t *testing.T) {
	t.Run("object decodes into translations", func(t *testing.T) {
		var f Field
		require.NoError(t, json.Unmarshal([]byte(`{"en":"Cleaner","no":"Rens"}`), &f))
		assert.Equal(t, "Rens", Resolve(f, LangNorwegian))
	})

	t.Run("plain string decodes into legacy tier", func(t *testing.T) {
		var f Field
		require.NoError(t, json.Unmarshal([]byte(`"Cleaner"`), &f))
		assert.Equal(t, "Cleaner", f.Legacy)
		assert.Equal(t, "Cleaner", Resolve(f, LangNorwegian))
	})

	t.Run("marshal round trip keeps translations", func(t *testing.T) {
		data, err := json.Marshal(Field{Translations: NewTranslations("Cleaner", "")})
		require.NoError(t, err)
		var f Field
		require.NoError(t, json.Unmarshal(data, &f))
		assert.Equal(t, "Cleaner", Resolve(f, LangNorwegian))
	})
}

func TestParseField(t *testing.T) {
	t.Run("null column yields legacy field", func(t *testing.T) {
		f, err := ParseField(nil, "old")
		require.NoError(t, err)
		assert.Equal(t, "old", Resolve(f, LangEnglish))
	})

	t.Run("jsonb column parsed", func(t *testing.T) {
		f, err := ParseField([]byte(`{"en":"Soap","no":"Såpe"}`), "")
		require.NoError(t, err)
		assert.Equal(t, "Såpe", Resolve(f, LangNorwegian))
	})

	t.Run("garbage column errors", func(t *testing.T) {
		_, err := ParseField([]byte(`{`), "")
		assert.Error(t, err)
	})
}

func TestNegotiate(t *testing.T) {
	t.Run("query parameter wins", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/products?lang=no", nil)
		r.Header.Set("Accept-Language", "en-US")
		assert.Equal(t, LangNorwegian, Negotiate(r))
	})

	t.Run("accept language header matched", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/products", nil)
		r.Header.Set("Accept-Language", "nb-NO, no;q=0.9, en;q=0.5")
		assert.Equal(t, LangNorwegian, Negotiate(r))
	})

	t.Run("unknown defaults to english", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/products?lang=sv", nil)
		assert.Equal(t, LangEnglish, Negotiate(r))
	})

	t.Run("missing header defaults to english", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/products", nil)
		assert.Equal(t, LangEnglish, Negotiate(r))
	})
}
