package handler

import (
	"log/slog"
	"net/http"

	"blenderforge/internal/domain/services"
	"blenderforge/internal/httputil"
)

// CheckoutHandler handles donation and purchase checkout flows plus the
// supporter/purchase read endpoints.
type CheckoutHandler struct {
	checkoutService  services.CheckoutService
	supporterService services.SupporterService
	logger           *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(
	checkoutService services.CheckoutService,
	supporterService services.SupporterService,
	logger *slog.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService:  checkoutService,
		supporterService: supporterService,
		logger:           logger,
	}
}

// StartDonation creates a donation checkout session
// POST /api/checkout/donation
func (h *CheckoutHandler) StartDonation(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req services.StartDonationRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	redirect, err := h.checkoutService.StartDonation(r.Context(), userID, httputil.GetUserEmail(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, redirect)
}

// StartPurchase creates a product checkout session
// POST /api/checkout/product
func (h *CheckoutHandler) StartPurchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		ProductID string `json:"product_id"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	redirect, err := h.checkoutService.StartPurchase(r.Context(), userID, httputil.GetUserEmail(r), req.ProductID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, redirect)
}

// Verify confirms a completed checkout session and records its outcome.
// Safe to call repeatedly; a recorded session returns the existing row.
// POST /api/checkout/verify
func (h *CheckoutHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
		Kind      string `json:"kind"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	switch req.Kind {
	case "donation":
		supporter, err := h.checkoutService.VerifyDonation(r.Context(), req.SessionID)
		if err != nil {
			handleError(w, err)
			return
		}
		httputil.RespondJSON(w, http.StatusOK, supporter)
	case "purchase":
		purchase, err := h.checkoutService.VerifyPurchase(r.Context(), req.SessionID)
		if err != nil {
			handleError(w, err)
			return
		}
		httputil.RespondJSON(w, http.StatusOK, purchase)
	default:
		httputil.RespondError(w, http.StatusBadRequest, `kind must be "donation" or "purchase"`)
	}
}

// GetPurchase retrieves the caller's purchase for the success page
// GET /api/purchases/{sessionID}
func (h *CheckoutHandler) GetPurchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	purchase, err := h.supporterService.GetPurchase(r.Context(), r.PathValue("sessionID"), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, purchase)
}

// ListPurchases lists the caller's purchases
// GET /api/purchases
func (h *CheckoutHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	purchases, err := h.supporterService.ListUserPurchases(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, purchases)
}

// ListSupporters lists public donations, newest first
// GET /api/supporters
func (h *CheckoutHandler) ListSupporters(w http.ResponseWriter, r *http.Request) {
	supporters, err := h.supporterService.ListSupporters(r.Context(),
		httputil.QueryInt(r, "limit", 50), httputil.QueryInt(r, "offset", 0))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, supporters)
}

// ListOwnDonations lists the caller's donations
// GET /api/supporters/me
func (h *CheckoutHandler) ListOwnDonations(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	donations, err := h.supporterService.ListUserDonations(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, donations)
}
