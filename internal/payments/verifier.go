package payments

import (
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/printloom/printloom-backend/internal/domain"
)

// Verifier gates every inbound webhook delivery. Nothing downstream may run
// on a payload that did not pass Verify.
type Verifier struct {
	secret    string
	tolerance time.Duration
}

func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	return &Verifier{secret: secret, tolerance: tolerance}
}

// Verify checks the Stripe-Signature header against the raw payload and
// returns the decoded event envelope. The stripe library does the
// constant-time digest comparison and timestamp bounding; its sentinel
// errors are mapped onto the domain taxonomy so callers never branch on
// library internals.
func (v *Verifier) Verify(payload []byte, signatureHeader string) (stripe.Event, error) {
	if signatureHeader == "" {
		return stripe.Event{}, domain.ErrSignatureMissing
	}

	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, v.secret,
		webhook.ConstructEventOptions{
			Tolerance:                v.tolerance,
			IgnoreAPIVersionMismatch: true,
		})
	if err != nil {
		switch {
		case errors.Is(err, webhook.ErrNotSigned):
			return stripe.Event{}, domain.ErrSignatureMissing
		case errors.Is(err, webhook.ErrInvalidHeader):
			return stripe.Event{}, domain.ErrSignatureMalformed
		case errors.Is(err, webhook.ErrTooOld):
			return stripe.Event{}, domain.ErrSignatureExpired
		case errors.Is(err, webhook.ErrNoValidSignature):
			return stripe.Event{}, domain.ErrSignatureMismatch
		default:
			return stripe.Event{}, fmt.Errorf("Verify: %w", err)
		}
	}

	return event, nil
}
