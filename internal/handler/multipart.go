package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"blenderforge/internal/domain"
	"blenderforge/internal/domain/services"
)

// Request body caps for the composer save endpoints. Article saves carry at
// most a thumbnail; product saves can carry the downloadable file plus a
// gallery, so they get a wider cap. Individual file limits are enforced by
// the storage validator.
const (
	maxArticleFormBytes = 16 << 20
	maxProductFormBytes = 128 << 20

	// Spill threshold for multipart parsing; larger parts go to temp files.
	multipartMemory = 8 << 20
)

// isMultipart reports whether the request is a multipart form. The composer
// endpoints accept both: multipart when new files ride along, plain JSON
// when only metadata changed.
func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/")
}

// parseMultipart caps the body, parses the form, and decodes the "metadata"
// field into dest.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return fmt.Errorf("%w: invalid multipart form", domain.ErrValidation)
	}

	raw := r.FormValue("metadata")
	if raw == "" {
		return fmt.Errorf("%w: missing metadata field", domain.ErrValidation)
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("%w: invalid metadata JSON", domain.ErrValidation)
	}
	return nil
}

// formUpload reads a single optional file part into a pending upload.
// Returns nil when the part is absent.
func formUpload(r *http.Request, field string) (*services.PendingUpload, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, nil
	}
	return readPart(r.MultipartForm.File[field][0])
}

// formUploads reads every file part under the given field name.
func formUploads(r *http.Request, field string) ([]services.PendingUpload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	uploads := make([]services.PendingUpload, 0, len(headers))
	for _, h := range headers {
		u, err := readPart(h)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, *u)
	}
	return uploads, nil
}

func readPart(h *multipart.FileHeader) (*services.PendingUpload, error) {
	f, err := h.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable file part %q", domain.ErrValidation, h.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read file part %q: %w", h.Filename, err)
	}

	return &services.PendingUpload{
		Filename:    h.Filename,
		ContentType: h.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
