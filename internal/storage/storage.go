// Package storage uploads user media to object storage. All validation runs
// locally before any network call, so an oversized or mistyped file is
// rejected without touching the backend.
package storage

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"blenderforge/internal/config"
	"blenderforge/internal/domain"
)

// Bucket names one object-storage bucket. Buckets are public-read except
// ProductFiles, which is served through signed download URLs after a
// verified purchase.
type Bucket string

const (
	BucketThumbnails        Bucket = "thumbnails"
	BucketArticleImages     Bucket = "article-images"
	BucketProductThumbnails Bucket = "product-thumbnails"
	BucketProductGallery    Bucket = "product-gallery-images"
	BucketProductFiles      Bucket = "product-files"
	BucketAvatars           Bucket = "avatars"
)

// Uploader stores media objects and returns their public URL.
type Uploader interface {
	// Upload validates and stores the file, returning the stored object's
	// public URL. Validation failures surface as *domain.UploadError before
	// any network traffic.
	Upload(ctx context.Context, in UploadInput) (string, error)
	// Delete removes a stored object. Missing objects are not an error.
	Delete(ctx context.Context, bucket Bucket, key string) error
	// PresignDownload returns a short-lived download URL for a private
	// object (product files).
	PresignDownload(ctx context.Context, bucket Bucket, key string) (string, error)
}

// UploadInput is one file to store. OwnerID prefixes the object key so a
// user's uploads are grouped and ownership is visible from the key alone.
// Key pins the object key; when empty one is generated.
type UploadInput struct {
	Bucket      Bucket
	OwnerID     string
	Key         string
	Filename    string
	ContentType string
	Data        []byte
}

// imageContentTypes are the raster formats accepted for uploaded images.
var imageContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// svgBuckets are the buckets that additionally accept SVG: images embedded
// inside rendered documents, where they are served behind an <img> tag and
// scripts never run. Thumbnails and avatars are rendered in more contexts
// and stay raster-only.
var svgBuckets = map[Bucket]bool{
	BucketArticleImages:  true,
	BucketProductGallery: true,
}

// ValidateUpload applies the size and type rules for the target bucket.
// Image buckets accept jpeg/png/webp/gif up to the image cap; the product
// file bucket accepts any type up to the larger file cap.
func ValidateUpload(in UploadInput) error {
	if len(in.Data) == 0 {
		return &domain.UploadError{Message: "file is empty"}
	}

	if in.Bucket == BucketProductFiles {
		if len(in.Data) > config.MaxProductFileBytes {
			return &domain.UploadError{Message: fmt.Sprintf(
				"file exceeds the %dMB limit", config.MaxProductFileBytes/(1<<20))}
		}
		return nil
	}

	if len(in.Data) > config.MaxImageUploadBytes {
		return &domain.UploadError{Message: fmt.Sprintf(
			"image exceeds the %dMB limit", config.MaxImageUploadBytes/(1<<20))}
	}
	ct := detectContentType(in.Filename, in.Data, in.ContentType)
	normalized := normalizeContentType(ct)
	if normalized == "image/svg+xml" && svgBuckets[in.Bucket] {
		return nil
	}
	if _, ok := imageContentTypes[normalized]; !ok {
		return &domain.UploadError{Message: fmt.Sprintf(
			"unsupported image type %q: use JPEG, PNG, WebP or GIF", ct)}
	}
	return nil
}

// ObjectKey builds a collision-resistant object key under the owner's
// prefix, preserving a sane extension.
func ObjectKey(ownerID, filename string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if ext == "" || len(ext) > 10 {
		ext = ".dat"
	}
	name := strings.ReplaceAll(uuid.NewString(), "-", "")[:18] + ext
	owner := strings.TrimSpace(ownerID)
	if owner == "" {
		return name
	}
	return owner + "/" + name
}

// detectContentType resolves the MIME type from the declared header, the
// extension, or the payload bytes, in that order.
func detectContentType(filename string, payload []byte, declared string) string {
	if ct := strings.TrimSpace(declared); ct != "" {
		return ct
	}
	if ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename))); ext != "" {
		if guessed := mime.TypeByExtension(ext); guessed != "" {
			return guessed
		}
	}
	if len(payload) > 0 {
		return http.DetectContentType(payload)
	}
	return "application/octet-stream"
}

func normalizeContentType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
