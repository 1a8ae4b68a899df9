package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/printloom/printloom-backend/internal/domain"
	"github.com/printloom/printloom-backend/internal/logging"
	"github.com/printloom/printloom-backend/internal/pipeline"
)

type webhookOrchestrator interface {
	HandleDelivery(ctx context.Context, payload []byte, signatureHeader string) (pipeline.Disposition, error)
}

type WebhookHandler struct {
	orchestrator webhookOrchestrator
}

func NewWebhookHandler(orchestrator webhookOrchestrator) *WebhookHandler {
	return &WebhookHandler{orchestrator: orchestrator}
}

// ReceivePaymentWebhook is the processor-facing ack surface. 400 means the
// delivery itself was bad (signature or structure) and redelivery is wanted;
// 500 means the admission store was unreachable and redelivery is safe; any
// disposition is a 200, fulfillment problems included, because those are
// absorbed downstream.
func (h *WebhookHandler) ReceivePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		log.Error("failed to read webhook body", "error", err)
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	disposition, err := h.orchestrator.HandleDelivery(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		switch {
		case isSignatureError(err):
			log.Warn("webhook signature verification failed", "error", err)
			RespondAppError(w, ErrInvalidSignature, nil)
		case errors.Is(err, domain.ErrMalformedMetadata):
			log.Error("webhook event malformed", "error", err)
			RespondAppError(w, ErrMalformedEvent, nil)
		default:
			log.Error("webhook processing failed", "error", err)
			RespondAppError(w, ErrInternalError, nil)
		}
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]string{"status": string(disposition)})
}

func isSignatureError(err error) bool {
	return errors.Is(err, domain.ErrSignatureMissing) ||
		errors.Is(err, domain.ErrSignatureMalformed) ||
		errors.Is(err, domain.ErrSignatureMismatch) ||
		errors.Is(err, domain.ErrSignatureExpired)
}
