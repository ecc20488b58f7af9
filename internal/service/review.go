package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"blenderforge/internal/config"
	"blenderforge/internal/domain"
	"blenderforge/internal/domain/models"
	"blenderforge/internal/domain/repositories"
	"blenderforge/internal/domain/services"
)

// reviewService implements the ReviewService interface
type reviewService struct {
	reviewRepo   repositories.ReviewRepository
	productRepo  repositories.ProductRepository
	purchaseRepo repositories.PurchaseRepository
	txManager    repositories.TransactionManager
	logger       *slog.Logger
}

// NewReviewService creates a new review service
func NewReviewService(
	reviewRepo repositories.ReviewRepository,
	productRepo repositories.ProductRepository,
	purchaseRepo repositories.PurchaseRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.ReviewService {
	return &reviewService{
		reviewRepo:   reviewRepo,
		productRepo:  productRepo,
		purchaseRepo: purchaseRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// CreateReview creates a review and refreshes the product's rating aggregate
// in the same transaction, so the denormalized columns never drift from the
// review rows.
func (s *reviewService) CreateReview(ctx context.Context, productID, userID string, req *models.CreateReviewRequest) (*models.Review, error) {
	if err := validateRating(req.Rating, req.Comment); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.SellerID == userID {
		return nil, &domain.ForbiddenError{Message: "you cannot review your own product"}
	}
	if product.Price > 0 {
		owns, err := s.purchaseRepo.HasPurchased(ctx, userID, productID)
		if err != nil {
			return nil, err
		}
		if !owns {
			return nil, &domain.ForbiddenError{Message: "purchase this product before reviewing it"}
		}
	}

	review := &models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.reviewRepo.Create(txCtx, review); err != nil {
			return err
		}
		return s.refreshAggregate(txCtx, productID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("review created",
		"id", review.ID,
		"product_id", productID,
		"user_id", userID,
		"rating", review.Rating,
	)

	return review, nil
}

// GetOwnReview retrieves the caller's review of a product
func (s *reviewService) GetOwnReview(ctx context.Context, productID, userID string) (*models.Review, error) {
	return s.reviewRepo.GetByProductAndUser(ctx, productID, userID)
}

// UpdateReview updates a review and refreshes the aggregate
func (s *reviewService) UpdateReview(ctx context.Context, id, userID string, req *models.UpdateReviewRequest) (*models.Review, error) {
	rating := 5
	if req.Rating != nil {
		rating = *req.Rating
	}
	comment := ""
	if req.Comment != nil {
		comment = *req.Comment
		trimmed := strings.TrimSpace(comment)
		req.Comment = &trimmed
	}
	if err := validateRating(rating, comment); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var review *models.Review
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		review, err = s.reviewRepo.Update(txCtx, id, userID, req)
		if err != nil {
			return err
		}
		return s.refreshAggregate(txCtx, review.ProductID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("review updated", "id", id, "user_id", userID)
	return review, nil
}

// DeleteReview deletes a review and refreshes the aggregate
func (s *reviewService) DeleteReview(ctx context.Context, id, userID string) error {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.reviewRepo.Delete(txCtx, id, userID); err != nil {
			return err
		}
		return s.refreshAggregate(txCtx, review.ProductID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("review deleted", "id", id, "user_id", userID)
	return nil
}

// ListReviews lists a product's reviews, newest first
func (s *reviewService) ListReviews(ctx context.Context, productID string, limit, offset int) ([]models.Review, error) {
	return s.reviewRepo.ListByProduct(ctx, productID, limit, offset)
}

// refreshAggregate recomputes and stores the product's rating columns.
// Must run inside the caller's transaction.
func (s *reviewService) refreshAggregate(ctx context.Context, productID string) error {
	avg, count, err := s.reviewRepo.Aggregate(ctx, productID)
	if err != nil {
		return err
	}
	return s.productRepo.ApplyReviewAggregate(ctx, productID, avg, count)
}

func validateRating(rating int, comment string) error {
	if err := validation.Validate(rating, validation.Min(1), validation.Max(5)); err != nil {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	return validation.Validate(comment,
		validation.Length(0, config.MaxReviewCommentLength))
}
