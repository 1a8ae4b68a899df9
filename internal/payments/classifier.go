package payments

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v82"

	"github.com/printloom/printloom-backend/internal/domain"
)

const eventCheckoutCompleted = "checkout.session.completed"

// checkoutSession is the slice of Stripe's checkout session object this
// pipeline consumes. Metadata carries what checkout-session creation
// attached; shipping details come from Stripe's address collection.
type checkoutSession struct {
	CustomerEmail   string `json:"customer_email"`
	CustomerDetails struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"customer_details"`
	Metadata        map[string]string `json:"metadata"`
	ShippingDetails struct {
		Name    string         `json:"name"`
		Address sessionAddress `json:"address"`
	} `json:"shipping_details"`
}

type sessionAddress struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	State      string `json:"state"`
	Country    string `json:"country"`
}

// Classify turns a verified event envelope into a domain PaymentEvent. Event
// types this system does not act on come back as EventOther so the caller
// can acknowledge them without side effects. A completion event missing the
// metadata fulfillment needs fails with ErrMalformedMetadata: that is a
// contract break with the checkout step and must be surfaced, not dropped.
func Classify(event stripe.Event) (domain.PaymentEvent, error) {
	if event.Type != eventCheckoutCompleted {
		return domain.PaymentEvent{
			EventID: event.ID,
			Type:    domain.EventOther,
		}, nil
	}

	var session checkoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return domain.PaymentEvent{}, fmt.Errorf("Classify: decode session: %w", domain.ErrMalformedMetadata)
	}

	email := session.CustomerEmail
	if email == "" {
		email = session.CustomerDetails.Email
	}

	ev := domain.PaymentEvent{
		EventID:       event.ID,
		Type:          domain.EventPaymentCompleted,
		RawPayload:    event.Data.Raw,
		ProductID:     session.Metadata["productId"],
		ImageURL:      session.Metadata["imageUrl"],
		CustomerEmail: email,
		Recipient: domain.Recipient{
			Name:  session.ShippingDetails.Name,
			Email: email,
			Address: domain.Address{
				Line1:      session.ShippingDetails.Address.Line1,
				Line2:      session.ShippingDetails.Address.Line2,
				City:       session.ShippingDetails.Address.City,
				PostalCode: session.ShippingDetails.Address.PostalCode,
				State:      session.ShippingDetails.Address.State,
				Country:    session.ShippingDetails.Address.Country,
			},
		},
	}

	if ev.ProductID == "" || ev.ImageURL == "" || !ev.Recipient.Address.Deliverable() {
		return domain.PaymentEvent{}, fmt.Errorf("Classify: event %s: %w", event.ID, domain.ErrMalformedMetadata)
	}

	return ev, nil
}
