package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nordvare/nordvare/internal/platform/httpx"
)

// Handler proxies admin file uploads to the object storage collaborator.
type Handler struct {
	logger *slog.Logger
	client *Client
}

func NewHandler(logger *slog.Logger, client *Client) *Handler {
	return &Handler{logger: logger, client: client}
}

// MountRoutes registers the upload endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/uploads/image", h.handleImage)
	r.Post("/uploads/document", h.handleDocument)
}

func (h *Handler) handleImage(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, MaxImageSize, h.client.UploadImage)
}

func (h *Handler) handleDocument(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, MaxDocumentSize, h.client.UploadDocument)
}

type uploadFunc func(ctx context.Context, filename, contentType string, size int64, body io.Reader) (string, error)

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request, limit int64, upload uploadFunc) {
	if err := r.ParseMultipartForm(limit); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "missing file field")
		return
	}
	defer file.Close()

	url, err := upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		var tooLarge ErrFileTooLarge
		var badType ErrUnsupportedType
		switch {
		case errors.As(err, &tooLarge), errors.As(err, &badType):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		default:
			h.logger.Error("upload", slog.String("filename", header.Filename), slog.Any("error", err))
			httpx.Problem(w, http.StatusBadGateway, "Upstream Failure", "storage service unavailable")
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"url": url})
}
