package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/printloom/printloom-backend/internal/logging"
	"github.com/printloom/printloom-backend/internal/payments"
)

type checkoutClient interface {
	Create(ctx context.Context, req payments.CheckoutRequest) (string, error)
}

type CheckoutHandler struct {
	checkout checkoutClient
}

func NewCheckoutHandler(checkout checkoutClient) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

type checkoutRequest struct {
	ProductID     string `json:"productId"`
	ImageURL      string `json:"imageUrl"`
	CustomerEmail string `json:"customerEmail"`
}

func (r checkoutRequest) validate() []FieldError {
	var errs []FieldError

	if r.ProductID == "" {
		errs = append(errs, FieldError{Field: "productId", Message: "required"})
	}
	if r.ImageURL == "" {
		errs = append(errs, FieldError{Field: "imageUrl", Message: "required"})
	} else if !strings.HasPrefix(r.ImageURL, "http://") && !strings.HasPrefix(r.ImageURL, "https://") {
		errs = append(errs, FieldError{Field: "imageUrl", Message: "must be an absolute URL"})
	}
	if r.CustomerEmail == "" {
		errs = append(errs, FieldError{Field: "customerEmail", Message: "required"})
	} else if !strings.Contains(r.CustomerEmail, "@") {
		errs = append(errs, FieldError{Field: "customerEmail", Message: "must be a valid email"})
	}

	return errs
}

// CreateSession starts a hosted checkout for one custom product. The
// metadata attached here is what the webhook pipeline consumes after payment.
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	url, err := h.checkout.Create(r.Context(), payments.CheckoutRequest{
		ProductID:     req.ProductID,
		ImageURL:      req.ImageURL,
		CustomerEmail: req.CustomerEmail,
	})
	if err != nil {
		log.Error("checkout session creation failed", "product_id", req.ProductID, "error", err)
		RespondAppError(w, ErrCheckoutFailed, nil)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]string{"url": url})
}
