package handler

import (
	"log/slog"
	"net/http"

	"blenderforge/internal/httputil"
	"blenderforge/internal/storage"
)

// UploadHandler serves the editor's inline image uploads. Only the public
// image buckets are reachable here; the product file bucket is written
// exclusively through the product save path.
type UploadHandler struct {
	uploader storage.Uploader
	logger   *slog.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploader storage.Uploader, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		uploader: uploader,
		logger:   logger,
	}
}

var uploadBuckets = map[string]storage.Bucket{
	string(storage.BucketArticleImages):  storage.BucketArticleImages,
	string(storage.BucketProductGallery): storage.BucketProductGallery,
}

// Upload stores one image and returns its public URL
// POST /api/uploads/{bucket}
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	bucket, ok := uploadBuckets[r.PathValue("bucket")]
	if !ok {
		httputil.RespondError(w, http.StatusNotFound, "unknown upload bucket")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxArticleFormBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	upload, err := formUpload(r, "file")
	if err != nil {
		handleError(w, err)
		return
	}
	if upload == nil {
		httputil.RespondError(w, http.StatusBadRequest, "missing file part")
		return
	}

	url, err := h.uploader.Upload(r.Context(), storage.UploadInput{
		Bucket:      bucket,
		OwnerID:     userID,
		Filename:    upload.Filename,
		ContentType: upload.ContentType,
		Data:        upload.Data,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("inline upload stored", "bucket", bucket, "user_id", userID)
	httputil.RespondJSON(w, http.StatusCreated, map[string]string{"url": url})
}
