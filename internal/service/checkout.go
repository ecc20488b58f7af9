package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"blenderforge/internal/domain"
	"blenderforge/internal/domain/models"
	"blenderforge/internal/domain/repositories"
	"blenderforge/internal/domain/services"
	"blenderforge/internal/payment"
	"blenderforge/internal/platforms"
)

// minDonationCents keeps card-fee-losing micro donations out.
const minDonationCents = 100

// platformFeePercent is the marketplace cut on paid product sales.
const platformFeePercent = 10

// checkoutService implements the CheckoutService interface
type checkoutService struct {
	provider      payment.Provider
	supporterRepo repositories.SupporterRepository
	purchaseRepo  repositories.PurchaseRepository
	productRepo   repositories.ProductRepository
	profileRepo   repositories.ProfileRepository
	registry      *platforms.Registry
	txManager     repositories.TransactionManager
	siteURL       string
	logger        *slog.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	provider payment.Provider,
	supporterRepo repositories.SupporterRepository,
	purchaseRepo repositories.PurchaseRepository,
	productRepo repositories.ProductRepository,
	profileRepo repositories.ProfileRepository,
	registry *platforms.Registry,
	txManager repositories.TransactionManager,
	siteURL string,
	logger *slog.Logger,
) services.CheckoutService {
	return &checkoutService{
		provider:      provider,
		supporterRepo: supporterRepo,
		purchaseRepo:  purchaseRepo,
		productRepo:   productRepo,
		profileRepo:   profileRepo,
		registry:      registry,
		txManager:     txManager,
		siteURL:       strings.TrimSuffix(siteURL, "/"),
		logger:        logger,
	}
}

// StartDonation creates a donation checkout session
func (s *checkoutService) StartDonation(ctx context.Context, userID, email string, req *services.StartDonationRequest) (*services.CheckoutRedirect, error) {
	if req.AmountCents < minDonationCents {
		return nil, fmt.Errorf("%w: minimum donation is %d cents", domain.ErrValidation, minDonationCents)
	}

	sess, err := s.provider.CreateDonationSession(ctx, payment.DonationParams{
		UserID:      userID,
		Email:       email,
		AmountCents: req.AmountCents,
		Message:     strings.TrimSpace(req.Message),
		SuccessURL:  s.siteURL + "/support/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   s.siteURL + "/support",
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("donation checkout started",
		"session_id", sess.ID,
		"user_id", userID,
		"amount_cents", req.AmountCents,
	)

	return &services.CheckoutRedirect{SessionID: sess.ID, URL: sess.URL}, nil
}

// StartPurchase creates a product checkout session
func (s *checkoutService) StartPurchase(ctx context.Context, userID, email, productID string) (*services.CheckoutRedirect, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Price <= 0 {
		return nil, fmt.Errorf("%w: product is free, no checkout needed", domain.ErrValidation)
	}
	if product.SellerID == userID {
		return nil, &domain.ForbiddenError{Message: "you cannot buy your own product"}
	}
	owns, err := s.purchaseRepo.HasPurchased(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if owns {
		return nil, &domain.ConflictError{
			Message:      "you already own this product",
			ResourceType: "purchase",
		}
	}

	// Route funds to the seller's connected account when payout onboarding
	// has happened; otherwise the platform account collects and settles out
	// of band.
	sellerAccount := ""
	seller, err := s.profileRepo.GetByID(ctx, product.SellerID)
	if err == nil {
		sellerAccount = seller.PaymentAccountID
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	priceCents := int64(product.Price * 100)
	sess, err := s.provider.CreateProductSession(ctx, payment.ProductParams{
		BuyerID:          userID,
		Email:            email,
		ProductID:        productID,
		ProductTitle:     product.Title,
		PriceCents:       priceCents,
		SellerAccountID:  sellerAccount,
		PlatformFeeCents: priceCents * platformFeePercent / 100,
		SuccessURL:       s.siteURL + "/marketplace/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:        s.siteURL + "/marketplace/" + product.Slug,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase checkout started",
		"session_id", sess.ID,
		"user_id", userID,
		"product_id", productID,
	)

	return &services.CheckoutRedirect{SessionID: sess.ID, URL: sess.URL}, nil
}

// VerifyDonation confirms a paid session and records the donation.
// Idempotent: the session row is looked up first, and a concurrent insert
// losing the unique-constraint race also resolves to the existing row.
func (s *checkoutService) VerifyDonation(ctx context.Context, sessionID string) (*models.Supporter, error) {
	if existing, err := s.supporterRepo.GetBySessionID(ctx, sessionID); err == nil {
		return existing, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	result, err := s.provider.VerifySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !result.Paid {
		return nil, fmt.Errorf("%w: session %s is not paid", domain.ErrValidation, sessionID)
	}

	tier := s.registry.TierFor(payment.DonationAmountFromCents(result.AmountCents))
	supporter := &models.Supporter{
		UserID:      result.UserID,
		SessionID:   sessionID,
		AmountCents: result.AmountCents,
		Tier:        tier.ID,
		Message:     result.Message,
		Public:      true,
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.supporterRepo.Create(txCtx, supporter); err != nil {
			return err
		}
		return s.profileRepo.SetSupporter(txCtx, result.UserID, true)
	})
	if err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			return s.supporterRepo.GetBySessionID(ctx, sessionID)
		}
		return nil, err
	}

	s.logger.Info("donation recorded",
		"session_id", sessionID,
		"user_id", result.UserID,
		"tier", tier.ID,
	)

	return supporter, nil
}

// VerifyPurchase confirms a paid session and records the purchase
func (s *checkoutService) VerifyPurchase(ctx context.Context, sessionID string) (*models.Purchase, error) {
	if existing, err := s.purchaseRepo.GetBySessionID(ctx, sessionID); err == nil {
		return existing, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	result, err := s.provider.VerifySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !result.Paid {
		return nil, fmt.Errorf("%w: session %s is not paid", domain.ErrValidation, sessionID)
	}

	purchase := &models.Purchase{
		UserID:      result.UserID,
		ProductID:   result.ProductID,
		SessionID:   sessionID,
		AmountCents: result.AmountCents,
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.purchaseRepo.Create(txCtx, purchase); err != nil {
			return err
		}
		return s.productRepo.IncrementSales(txCtx, result.ProductID)
	})
	if err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			return s.purchaseRepo.GetBySessionID(ctx, sessionID)
		}
		return nil, err
	}

	s.logger.Info("purchase recorded",
		"session_id", sessionID,
		"user_id", result.UserID,
		"product_id", result.ProductID,
	)

	return purchase, nil
}

// supporterService implements the SupporterService interface
type supporterService struct {
	supporterRepo repositories.SupporterRepository
	purchaseRepo  repositories.PurchaseRepository
}

// NewSupporterService creates a new supporter read service
func NewSupporterService(
	supporterRepo repositories.SupporterRepository,
	purchaseRepo repositories.PurchaseRepository,
) services.SupporterService {
	return &supporterService{
		supporterRepo: supporterRepo,
		purchaseRepo:  purchaseRepo,
	}
}

func (s *supporterService) ListSupporters(ctx context.Context, limit, offset int) ([]models.Supporter, error) {
	return s.supporterRepo.ListPublic(ctx, limit, offset)
}

func (s *supporterService) ListUserDonations(ctx context.Context, userID string) ([]models.Supporter, error) {
	return s.supporterRepo.ListByUser(ctx, userID)
}

func (s *supporterService) ListUserPurchases(ctx context.Context, userID string) ([]models.Purchase, error) {
	return s.purchaseRepo.ListByUser(ctx, userID)
}

// GetPurchase retrieves the caller's purchase by checkout session ID.
// Another user's session reads as not found rather than forbidden so the
// session ID itself leaks nothing.
func (s *supporterService) GetPurchase(ctx context.Context, sessionID, userID string) (*models.Purchase, error) {
	purchase, err := s.purchaseRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if purchase.UserID != userID {
		return nil, fmt.Errorf("purchase %s: %w", sessionID, domain.ErrNotFound)
	}
	return purchase, nil
}
