package service

import (
	"context"
	"fmt"
	"log/slog"

	"blenderforge/internal/composer"
	"blenderforge/internal/content"
	"blenderforge/internal/domain"
	"blenderforge/internal/domain/models"
	"blenderforge/internal/domain/repositories"
	"blenderforge/internal/domain/services"
	"blenderforge/internal/storage"
)

// productService implements the ProductService interface
type productService struct {
	productRepo  repositories.ProductRepository
	purchaseRepo repositories.PurchaseRepository
	uploader     storage.Uploader
	renderer     *content.Renderer
	logger       *slog.Logger
}

// NewProductService creates a new product service
func NewProductService(
	productRepo repositories.ProductRepository,
	purchaseRepo repositories.PurchaseRepository,
	uploader storage.Uploader,
	renderer *content.Renderer,
	logger *slog.Logger,
) services.ProductService {
	return &productService{
		productRepo:  productRepo,
		purchaseRepo: purchaseRepo,
		uploader:     uploader,
		renderer:     renderer,
		logger:       logger,
	}
}

// CreateProduct validates, uploads media, and creates the product. All
// uploads are validated locally before the first network call, and all
// storage writes happen before the row insert.
func (s *productService) CreateProduct(ctx context.Context, sellerID string, req *services.SaveProductRequest) (*models.Product, error) {
	session, meta := productSession(req)
	if err := session.Validate(meta); err != nil {
		return nil, err
	}
	if err := validateProductUploads(sellerID, req); err != nil {
		return nil, err
	}

	slug, err := uniqueSlug(ctx, meta.Title, s.productRepo.SlugExists)
	if err != nil {
		return nil, err
	}

	media, err := s.uploadProductMedia(ctx, sellerID, req)
	if err != nil {
		return nil, err
	}

	serialized, err := session.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize content: %w", err)
	}

	product := &models.Product{
		SellerID:     sellerID,
		Title:        meta.Title,
		Slug:         slug,
		Description:  meta.Description,
		Content:      serialized,
		Category:     meta.Category,
		Price:        req.Price,
		ThumbnailURL: media.thumbnailURL,
		GalleryURLs:  media.galleryURLs,
		FileKey:      media.fileKey,
		FileName:     media.fileName,
		FileSize:     media.fileSize,
		Published:    req.Published,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		session.Fail(err)
		return nil, err
	}
	session.Complete()

	s.logger.Info("product created",
		"id", product.ID,
		"slug", product.Slug,
		"seller_id", sellerID,
		"price", product.Price,
	)

	return product, nil
}

// UpdateProduct validates and updates an existing product, looked up by
// slug. Ownership is checked before any media is uploaded.
func (s *productService) UpdateProduct(ctx context.Context, slug, sellerID string, req *services.SaveProductRequest) (*models.Product, error) {
	session, meta := productSession(req)
	if err := session.Validate(meta); err != nil {
		return nil, err
	}
	if err := validateProductUploads(sellerID, req); err != nil {
		return nil, err
	}

	existing, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing.SellerID != sellerID {
		return nil, &domain.ForbiddenError{Message: "you do not own this product"}
	}

	media, err := s.uploadProductMedia(ctx, sellerID, req)
	if err != nil {
		return nil, err
	}

	serialized, err := session.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize content: %w", err)
	}

	update := &models.UpdateProductRequest{
		Title:        &meta.Title,
		Description:  &meta.Description,
		Content:      &serialized,
		Category:     &meta.Category,
		Price:        &req.Price,
		ThumbnailURL: &media.thumbnailURL,
		GalleryURLs:  &media.galleryURLs,
		Published:    &req.Published,
	}
	if media.fileKey != "" {
		update.FileKey = &media.fileKey
		update.FileName = &media.fileName
		update.FileSize = &media.fileSize
	}
	product, err := s.productRepo.Update(ctx, existing.ID, sellerID, update)
	if err != nil {
		session.Fail(err)
		return nil, err
	}
	session.Complete()

	s.logger.Info("product updated", "id", product.ID, "seller_id", sellerID)
	return product, nil
}

// GetProduct retrieves a product by slug
func (s *productService) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	return s.productRepo.GetBySlug(ctx, slug)
}

// ListProducts lists published products matching the filter
func (s *productService) ListProducts(ctx context.Context, filter models.ProductFilter) (*services.ProductList, error) {
	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &services.ProductList{Products: products, Total: total}, nil
}

// DeleteProduct deletes a product looked up by slug
func (s *productService) DeleteProduct(ctx context.Context, slug, sellerID string) error {
	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if product.SellerID != sellerID {
		return &domain.ForbiddenError{Message: "you do not own this product"}
	}
	if err := s.productRepo.Delete(ctx, product.ID, sellerID); err != nil {
		return err
	}
	s.logger.Info("product deleted", "id", product.ID, "seller_id", sellerID)
	return nil
}

// DownloadURL returns a short-lived download link
func (s *productService) DownloadURL(ctx context.Context, slug, userID string) (string, error) {
	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return "", err
	}
	if product.FileKey == "" {
		return "", fmt.Errorf("product %s has no file: %w", slug, domain.ErrNotFound)
	}

	if product.Price > 0 && product.SellerID != userID {
		owns, err := s.purchaseRepo.HasPurchased(ctx, userID, product.ID)
		if err != nil {
			return "", err
		}
		if !owns {
			return "", &domain.ForbiddenError{Message: "purchase this product to download it"}
		}
	}

	return s.uploader.PresignDownload(ctx, storage.BucketProductFiles, product.FileKey)
}

// RenderProduct returns the product with its content rendered to sanitized HTML
func (s *productService) RenderProduct(ctx context.Context, slug string) (*models.Product, string, error) {
	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, "", err
	}
	doc := content.ParseDocument(product.Content)
	return product, s.renderer.RenderHTML(doc), nil
}

type productMedia struct {
	thumbnailURL string
	galleryURLs  []string
	fileKey      string
	fileName     string
	fileSize     int64
}

// validateProductUploads checks every pending upload before any network
// call so one bad file rejects the whole request up front.
func validateProductUploads(sellerID string, req *services.SaveProductRequest) error {
	if req.Thumbnail != nil {
		if err := storage.ValidateUpload(productUploadInput(storage.BucketProductThumbnails, sellerID, req.Thumbnail)); err != nil {
			return err
		}
	}
	for i := range req.Gallery {
		if err := storage.ValidateUpload(productUploadInput(storage.BucketProductGallery, sellerID, &req.Gallery[i])); err != nil {
			return err
		}
	}
	if req.ProductFile != nil {
		if err := storage.ValidateUpload(productUploadInput(storage.BucketProductFiles, sellerID, req.ProductFile)); err != nil {
			return err
		}
	}
	return nil
}

func (s *productService) uploadProductMedia(ctx context.Context, sellerID string, req *services.SaveProductRequest) (*productMedia, error) {
	media := &productMedia{
		thumbnailURL: req.ThumbnailURL,
		galleryURLs:  append([]string{}, req.GalleryURLs...),
	}

	if req.Thumbnail != nil {
		url, err := s.uploader.Upload(ctx, productUploadInput(storage.BucketProductThumbnails, sellerID, req.Thumbnail))
		if err != nil {
			return nil, err
		}
		media.thumbnailURL = url
	}
	for i := range req.Gallery {
		url, err := s.uploader.Upload(ctx, productUploadInput(storage.BucketProductGallery, sellerID, &req.Gallery[i]))
		if err != nil {
			return nil, err
		}
		media.galleryURLs = append(media.galleryURLs, url)
	}
	if req.ProductFile != nil {
		// Product files are private; stored under a pinned key so the
		// row can reference it, never a public URL.
		key := storage.ObjectKey(sellerID, req.ProductFile.Filename)
		_, err := s.uploader.Upload(ctx, storage.UploadInput{
			Bucket:      storage.BucketProductFiles,
			OwnerID:     sellerID,
			Key:         key,
			Filename:    req.ProductFile.Filename,
			ContentType: req.ProductFile.ContentType,
			Data:        req.ProductFile.Data,
		})
		if err != nil {
			return nil, err
		}
		media.fileKey = key
		media.fileName = req.ProductFile.Filename
		media.fileSize = int64(len(req.ProductFile.Data))
	}

	return media, nil
}

func productUploadInput(bucket storage.Bucket, ownerID string, u *services.PendingUpload) storage.UploadInput {
	return storage.UploadInput{
		Bucket:      bucket,
		OwnerID:     ownerID,
		Filename:    u.Filename,
		ContentType: u.ContentType,
		Data:        u.Data,
	}
}

func productSession(req *services.SaveProductRequest) (*composer.Session, *composer.Metadata) {
	session := composer.LoadSession(req.Content)
	meta := &composer.Metadata{
		Kind:            composer.KindProduct,
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		Price:           req.Price,
		ThumbnailURL:    req.ThumbnailURL,
		HasNewThumbnail: req.Thumbnail != nil,
	}
	meta.Normalize()
	return session, meta
}
