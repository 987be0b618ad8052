package i18n

import (
	"net/http"

	"golang.org/x/text/language"
)

var matcher = language.NewMatcher([]language.Tag{
	language.English, // first tag is the fallback
	language.Norwegian,
})

// Negotiate picks the content language for a request. An explicit ?lang=
// parameter wins; otherwise the Accept-Language header is matched against
// the supported set. Unknown values fall back to English.
func Negotiate(r *http.Request) Lang {
	if lang := Lang(r.URL.Query().Get("lang")); lang.Valid() {
		return lang
	}
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return LangEnglish
	}
	_, index, _ := matcher.Match(tags...)
	if index == 1 {
		return LangNorwegian
	}
	return LangEnglish
}
