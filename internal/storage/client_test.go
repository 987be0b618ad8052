package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUploadServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://cdn.example/" + header.Filename})
	}))
}

func TestUploadImage(t *testing.T) {
	srv := newUploadServer(t)
	defer srv.Close()
	client := NewClient(srv.URL)

	url, err := client.UploadImage(context.Background(), "soap.png", "image/png", 1024, strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/soap.png", url)
}

func TestUploadImageRejectsNonImage(t *testing.T) {
	client := NewClient("http://127.0.0.1:0")
	_, err := client.UploadImage(context.Background(), "soap.exe", "application/octet-stream", 1024, strings.NewReader("x"))
	var unsupported ErrUnsupportedType
	assert.ErrorAs(t, err, &unsupported)
}

func TestUploadImageRejectsOversized(t *testing.T) {
	client := NewClient("http://127.0.0.1:0")
	_, err := client.UploadImage(context.Background(), "soap.png", "image/png", MaxImageSize+1, strings.NewReader("x"))
	var tooLarge ErrFileTooLarge
	assert.ErrorAs(t, err, &tooLarge)
}

func TestUploadDocument(t *testing.T) {
	srv := newUploadServer(t)
	defer srv.Close()
	client := NewClient(srv.URL)

	url, err := client.UploadDocument(context.Background(), "datasheet.pdf", "application/pdf", 2048, strings.NewReader("pdf-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/datasheet.pdf", url)
}

func TestUploadDocumentRejectsExtension(t *testing.T) {
	client := NewClient("http://127.0.0.1:0")
	_, err := client.UploadDocument(context.Background(), "virus.exe", "application/pdf", 2048, strings.NewReader("x"))
	var unsupported ErrUnsupportedType
	assert.ErrorAs(t, err, &unsupported)
}
