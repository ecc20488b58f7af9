// Package payment wraps Stripe Checkout for donations and marketplace
// purchases. The server never touches card data; it creates hosted checkout
// sessions and later verifies them by ID.
package payment

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"blenderforge/internal/domain"
)

// Provider creates and verifies checkout sessions.
type Provider interface {
	CreateDonationSession(ctx context.Context, p DonationParams) (*CheckoutSession, error)
	CreateProductSession(ctx context.Context, p ProductParams) (*CheckoutSession, error)
	VerifySession(ctx context.Context, sessionID string) (*SessionResult, error)
}

// DonationParams describes a one-time supporter donation.
type DonationParams struct {
	UserID      string
	Email       string
	AmountCents int64
	Message     string
	SuccessURL  string
	CancelURL   string
}

// ProductParams describes a marketplace purchase. Funds route to the
// seller's connected account minus the platform fee.
type ProductParams struct {
	BuyerID          string
	Email            string
	ProductID        string
	ProductTitle     string
	PriceCents       int64
	SellerAccountID  string
	PlatformFeeCents int64
	SuccessURL       string
	CancelURL        string
}

// CheckoutSession is the hosted-checkout handoff returned to the client.
type CheckoutSession struct {
	ID  string
	URL string
}

// SessionResult is the verified state of a completed (or abandoned) session.
type SessionResult struct {
	ID          string
	Paid        bool
	AmountCents int64
	UserID      string
	ProductID   string
	Message     string
}

// StripeProvider implements Provider against the Stripe API.
type StripeProvider struct {
	sc       *client.API
	currency string
}

// NewStripeProvider builds a provider with the given secret key. Currency
// defaults to EUR, the platform's display currency.
func NewStripeProvider(secretKey, currency string) (*StripeProvider, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}
	if currency == "" {
		currency = "eur"
	}
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeProvider{sc: sc, currency: currency}, nil
}

func (p *StripeProvider) CreateDonationSession(ctx context.Context, d DonationParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params:     stripe.Params{Context: ctx},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(d.SuccessURL),
		CancelURL:  stripe.String(d.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(p.currency),
				UnitAmount: stripe.Int64(d.AmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String("BlenderForge Supporter"),
					Description: stripe.String("One-time donation"),
				},
			},
			Quantity: stripe.Int64(1),
		}},
	}
	if d.Email != "" {
		params.CustomerEmail = stripe.String(d.Email)
	}
	params.AddMetadata("kind", "donation")
	params.AddMetadata("user_id", d.UserID)
	if d.Message != "" {
		params.AddMetadata("message", d.Message)
	}

	sess, err := p.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create donation session: %w", err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (p *StripeProvider) CreateProductSession(ctx context.Context, pr ProductParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params:     stripe.Params{Context: ctx},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(pr.SuccessURL),
		CancelURL:  stripe.String(pr.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(p.currency),
				UnitAmount: stripe.Int64(pr.PriceCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(pr.ProductTitle),
				},
			},
			Quantity: stripe.Int64(1),
		}},
	}
	if pr.Email != "" {
		params.CustomerEmail = stripe.String(pr.Email)
	}
	if pr.SellerAccountID != "" {
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(pr.PlatformFeeCents),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(pr.SellerAccountID),
			},
		}
	}
	params.AddMetadata("kind", "purchase")
	params.AddMetadata("user_id", pr.BuyerID)
	params.AddMetadata("product_id", pr.ProductID)

	sess, err := p.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create product session: %w", err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// VerifySession retrieves a session and reports whether it was paid. Unknown
// session IDs surface as domain.ErrNotFound so handlers return 404 rather
// than leaking Stripe errors.
func (p *StripeProvider) VerifySession(ctx context.Context, sessionID string) (*SessionResult, error) {
	sess, err := p.sc.CheckoutSessions.Get(sessionID, &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok && stripeErr.HTTPStatusCode == 404 {
			return nil, fmt.Errorf("checkout session %s: %w", sessionID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve session %s: %w", sessionID, err)
	}

	return &SessionResult{
		ID:          sess.ID,
		Paid:        sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		AmountCents: sess.AmountTotal,
		UserID:      sess.Metadata["user_id"],
		ProductID:   sess.Metadata["product_id"],
		Message:     sess.Metadata["message"],
	}, nil
}

// DonationAmountFromCents converts a session amount to whole currency units
// for tier resolution.
func DonationAmountFromCents(cents int64) int {
	return int(cents / 100)
}
