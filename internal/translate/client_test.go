package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordvare/nordvare/internal/i18n"
)

func TestTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/translate", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Cleaner", req["text"])
		assert.Equal(t, "en", req["from"])
		assert.Equal(t, "no", req["to"])
		_ = json.NewEncoder(w).Encode(map[string]string{"translated": "Rens"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	got, err := client.Translate(context.Background(), "Cleaner", i18n.LangEnglish, i18n.LangNorwegian)
	require.NoError(t, err)
	assert.Equal(t, "Rens", got)
}

func TestTranslateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Translate(context.Background(), "Cleaner", i18n.LangEnglish, i18n.LangNorwegian)
	assert.Error(t, err)
}
