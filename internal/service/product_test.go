package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"blenderforge/internal/content"
	"blenderforge/internal/domain"
	"blenderforge/internal/domain/models"
	"blenderforge/internal/domain/services"
)

func validProductRequest() *services.SaveProductRequest {
	return &services.SaveProductRequest{
		Title:       "Procedural Rock Pack",
		Description: "Twelve scan-based rock assets with LODs",
		Content:     `[{"id":"block_1","type":"text","content":"<p>asset details</p>"}]`,
		Category:    "models",
		Price:       12.5,
		Published:   true,
		Thumbnail: &services.PendingUpload{
			Filename:    "cover.png",
			ContentType: "image/png",
			Data:        []byte("\x89PNG\r\n\x1a\nfake"),
		},
		ProductFile: &services.PendingUpload{
			Filename:    "rocks.zip",
			ContentType: "application/zip",
			Data:        []byte("PK\x03\x04fake-archive"),
		},
	}
}

func newProductService(repo *mockProductRepo, purchases *mockPurchaseRepo, up *mockUploader) services.ProductService {
	return NewProductService(repo, purchases, up, content.NewRenderer(), testLogger())
}

func TestCreateProduct(t *testing.T) {
	repo := newMockProductRepo()
	up := &mockUploader{}
	svc := newProductService(repo, newMockPurchaseRepo(), up)

	product, err := svc.CreateProduct(context.Background(), "seller-1", validProductRequest())
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if product.Slug != "procedural-rock-pack" {
		t.Errorf("slug = %q", product.Slug)
	}
	if product.FileKey == "" || product.FileName != "rocks.zip" {
		t.Errorf("file not recorded: key=%q name=%q", product.FileKey, product.FileName)
	}
	if !strings.HasPrefix(product.FileKey, "seller-1/") {
		t.Errorf("file key %q not under the seller prefix", product.FileKey)
	}
	if product.ThumbnailURL == "" {
		t.Error("thumbnail URL not stored")
	}
}

func TestCreateProductValidationFailureTouchesNothing(t *testing.T) {
	repo := newMockProductRepo()
	up := &mockUploader{}
	svc := newProductService(repo, newMockPurchaseRepo(), up)

	req := validProductRequest()
	req.Title = ""
	req.Price = -5

	_, err := svc.CreateProduct(context.Background(), "seller-1", req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var fields domain.FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("error type = %T, want domain.FieldErrors", err)
	}
	if _, ok := fields["price"]; !ok {
		t.Errorf("price violation not reported: %v", fields)
	}
	if networkCalls(up, nil) != 0 {
		t.Errorf("uploader called on validation failure: %v", up.calls)
	}
}

func TestCreateProductGalleryAppendsToExistingURLs(t *testing.T) {
	repo := newMockProductRepo()
	up := &mockUploader{}
	svc := newProductService(repo, newMockPurchaseRepo(), up)

	req := validProductRequest()
	req.GalleryURLs = []string{"https://cdn.test/kept.png"}
	req.Gallery = []services.PendingUpload{
		{Filename: "shot1.png", ContentType: "image/png", Data: []byte("\x89PNGa")},
		{Filename: "shot2.png", ContentType: "image/png", Data: []byte("\x89PNGb")},
	}

	product, err := svc.CreateProduct(context.Background(), "seller-1", req)
	if err != nil {
		t.Fatal(err)
	}
	if len(product.GalleryURLs) != 3 {
		t.Fatalf("gallery = %v, want kept URL plus two uploads", product.GalleryURLs)
	}
	if product.GalleryURLs[0] != "https://cdn.test/kept.png" {
		t.Errorf("kept URL not first: %v", product.GalleryURLs)
	}
}

func TestUpdateProductEnforcesOwnership(t *testing.T) {
	repo := newMockProductRepo()
	up := &mockUploader{}
	svc := newProductService(repo, newMockPurchaseRepo(), up)

	created, err := svc.CreateProduct(context.Background(), "seller-1", validProductRequest())
	if err != nil {
		t.Fatal(err)
	}

	req := validProductRequest()
	req.Thumbnail = nil
	req.ProductFile = nil
	req.ThumbnailURL = created.ThumbnailURL

	if _, err := svc.UpdateProduct(context.Background(), created.Slug, "seller-2", req); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("error = %v, want forbidden", err)
	}
	if _, err := svc.UpdateProduct(context.Background(), created.Slug, "seller-1", req); err != nil {
		t.Errorf("owner denied update: %v", err)
	}
}

func TestUpdateProductReplacesFile(t *testing.T) {
	repo := newMockProductRepo()
	up := &mockUploader{}
	svc := newProductService(repo, newMockPurchaseRepo(), up)

	created, err := svc.CreateProduct(context.Background(), "seller-1", validProductRequest())
	if err != nil {
		t.Fatal(err)
	}
	oldKey := created.FileKey

	req := validProductRequest()
	req.Thumbnail = nil
	req.ThumbnailURL = created.ThumbnailURL
	req.ProductFile = &services.PendingUpload{
		Filename:    "rocks-v2.zip",
		ContentType: "application/zip",
		Data:        []byte("PK\x03\x04new-archive!"),
	}

	updated, err := svc.UpdateProduct(context.Background(), created.Slug, "seller-1", req)
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if updated.FileKey == oldKey || updated.FileKey == "" {
		t.Errorf("file key = %q, want a new key (old %q)", updated.FileKey, oldKey)
	}
	if updated.FileName != "rocks-v2.zip" {
		t.Errorf("file name = %q", updated.FileName)
	}
	if updated.FileSize != int64(len(req.ProductFile.Data)) {
		t.Errorf("file size = %d, want %d", updated.FileSize, len(req.ProductFile.Data))
	}
}

func TestUpdateProductWithoutFileKeepsStoredFile(t *testing.T) {
	repo := newMockProductRepo()
	up := &mockUploader{}
	svc := newProductService(repo, newMockPurchaseRepo(), up)

	created, err := svc.CreateProduct(context.Background(), "seller-1", validProductRequest())
	if err != nil {
		t.Fatal(err)
	}
	oldKey, oldName := created.FileKey, created.FileName

	req := validProductRequest()
	req.Thumbnail = nil
	req.ThumbnailURL = created.ThumbnailURL
	req.ProductFile = nil

	updated, err := svc.UpdateProduct(context.Background(), created.Slug, "seller-1", req)
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if updated.FileKey != oldKey || updated.FileName != oldName {
		t.Errorf("stored file changed without a new upload: %q/%q", updated.FileKey, updated.FileName)
	}
}

func TestUpdateProductOwnershipCheckedBeforeUploads(t *testing.T) {
	repo := newMockProductRepo()
	up := &mockUploader{}
	svc := newProductService(repo, newMockPurchaseRepo(), up)

	created, err := svc.CreateProduct(context.Background(), "seller-1", validProductRequest())
	if err != nil {
		t.Fatal(err)
	}
	uploadsBefore := len(up.calls)

	_, err = svc.UpdateProduct(context.Background(), created.Slug, "seller-2", validProductRequest())
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("error = %v, want forbidden", err)
	}
	if len(up.calls) != uploadsBefore {
		t.Errorf("uploads ran for a non-owner: %v", up.calls[uploadsBefore:])
	}
}

func TestDeleteProductEnforcesOwnership(t *testing.T) {
	repo := newMockProductRepo()
	svc := newProductService(repo, newMockPurchaseRepo(), &mockUploader{})

	created, err := svc.CreateProduct(context.Background(), "seller-1", validProductRequest())
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteProduct(context.Background(), created.Slug, "seller-2"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("error = %v, want forbidden", err)
	}
	if err := svc.DeleteProduct(context.Background(), created.Slug, "seller-1"); err != nil {
		t.Errorf("owner denied delete: %v", err)
	}
}

func TestDownloadURL(t *testing.T) {
	repo := newMockProductRepo()
	purchases := newMockPurchaseRepo()
	up := &mockUploader{}
	svc := newProductService(repo, purchases, up)

	created, err := svc.CreateProduct(context.Background(), "seller-1", validProductRequest())
	if err != nil {
		t.Fatal(err)
	}

	t.Run("paid product requires purchase", func(t *testing.T) {
		if _, err := svc.DownloadURL(context.Background(), created.Slug, "buyer-1"); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("error = %v, want forbidden", err)
		}
	})

	t.Run("buyer gets a signed URL", func(t *testing.T) {
		purchases.Create(context.Background(), &models.Purchase{
			UserID: "buyer-1", ProductID: created.ID, SessionID: "cs_test_1",
		})
		url, err := svc.DownloadURL(context.Background(), created.Slug, "buyer-1")
		if err != nil {
			t.Fatalf("DownloadURL: %v", err)
		}
		if !strings.HasPrefix(url, "https://signed.test/") {
			t.Errorf("url = %q, want a presigned link", url)
		}
	})

	t.Run("seller downloads own product", func(t *testing.T) {
		if _, err := svc.DownloadURL(context.Background(), created.Slug, "seller-1"); err != nil {
			t.Errorf("seller denied download: %v", err)
		}
	})
}

func TestDownloadURLFreeProduct(t *testing.T) {
	repo := newMockProductRepo()
	svc := newProductService(repo, newMockPurchaseRepo(), &mockUploader{})

	req := validProductRequest()
	req.Price = 0
	created, err := svc.CreateProduct(context.Background(), "seller-1", req)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.DownloadURL(context.Background(), created.Slug, "anyone"); err != nil {
		t.Errorf("free product download denied: %v", err)
	}
}

func TestDownloadURLNoFile(t *testing.T) {
	repo := newMockProductRepo()
	svc := newProductService(repo, newMockPurchaseRepo(), &mockUploader{})

	req := validProductRequest()
	req.ProductFile = nil
	created, err := svc.CreateProduct(context.Background(), "seller-1", req)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.DownloadURL(context.Background(), created.Slug, "seller-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestRenderProductSanitizes(t *testing.T) {
	repo := newMockProductRepo()
	svc := newProductService(repo, newMockPurchaseRepo(), &mockUploader{})

	req := validProductRequest()
	req.Content = `[{"id":"b1","type":"text","content":"<p>specs</p><img src=x onerror=alert(1)>"}]`
	created, err := svc.CreateProduct(context.Background(), "seller-1", req)
	if err != nil {
		t.Fatal(err)
	}

	_, html, err := svc.RenderProduct(context.Background(), created.Slug)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, "<p>specs</p>") {
		t.Errorf("rendered html missing body: %s", html)
	}
	if strings.Contains(html, "onerror") {
		t.Errorf("event handler survived sanitization: %s", html)
	}
}
