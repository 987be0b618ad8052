// Package storage wraps the object storage service for product images and
// technical documents. File contents never land on local disk; uploads are
// streamed through to the storage API which returns a public URL.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

const (
	// MaxImageSize caps product image uploads.
	MaxImageSize = 5 << 20
	// MaxDocumentSize caps technical document uploads.
	MaxDocumentSize = 10 << 20
)

var documentExtensions = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
	".txt":  {},
}

// ErrFileTooLarge indicates the upload exceeds the configured limit.
type ErrFileTooLarge struct {
	Limit int64
}

func (e ErrFileTooLarge) Error() string {
	return fmt.Sprintf("storage: file exceeds %d byte limit", e.Limit)
}

// ErrUnsupportedType indicates a disallowed content type or extension.
type ErrUnsupportedType struct {
	Got string
}

func (e ErrUnsupportedType) Error() string {
	return fmt.Sprintf("storage: unsupported file type %q", e.Got)
}

// Client wraps interactions with the object storage API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// UploadImage validates and stores a product image, returning its public URL.
// Only image MIME types up to MaxImageSize are accepted.
func (c *Client) UploadImage(ctx context.Context, filename, contentType string, size int64, body io.Reader) (string, error) {
	if size > MaxImageSize {
		return "", ErrFileTooLarge{Limit: MaxImageSize}
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrUnsupportedType{Got: contentType}
	}
	return c.upload(ctx, "images", filename, contentType, body)
}

// UploadDocument validates and stores a technical document, returning its
// public URL. Accepted extensions: .pdf, .doc, .docx, .txt up to
// MaxDocumentSize.
func (c *Client) UploadDocument(ctx context.Context, filename, contentType string, size int64, body io.Reader) (string, error) {
	if size > MaxDocumentSize {
		return "", ErrFileTooLarge{Limit: MaxDocumentSize}
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := documentExtensions[ext]; !ok {
		return "", ErrUnsupportedType{Got: ext}
	}
	return c.upload(ctx, "documents", filename, contentType, body)
}

func (c *Client) upload(ctx context.Context, bucket, filename, contentType string, body io.Reader) (string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, body); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/upload/%s", c.baseURL, bucket), buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("storage: upload failed with status %d", resp.StatusCode)
	}

	var result uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("storage: decode response: %w", err)
	}
	return result.URL, nil
}
