package payments

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"

	"github.com/printloom/printloom-backend/internal/logging"
)

type CheckoutRequest struct {
	ProductID     string
	ImageURL      string
	CustomerEmail string
}

// CheckoutClient creates hosted payment sessions. The product ID and image
// URL ride along as session metadata; that is how they reach the webhook
// pipeline once the payment completes.
type CheckoutClient struct {
	sessions   *session.Client
	successURL string
	cancelURL  string
	unitAmount int64
}

func NewCheckoutClient(apiKey, successURL, cancelURL string, unitAmount int64) *CheckoutClient {
	stripe.Key = apiKey
	return &CheckoutClient{
		sessions:   &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: apiKey},
		successURL: successURL,
		cancelURL:  cancelURL,
		unitAmount: unitAmount,
	}
}

// Create returns the hosted payment page URL for one custom-print purchase.
func (c *CheckoutClient) Create(ctx context.Context, req CheckoutRequest) (string, error) {
	log := logging.FromContext(ctx)

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		CustomerEmail:      stripe.String(req.CustomerEmail),
		SuccessURL:         stripe.String(c.successURL),
		CancelURL:          stripe.String(c.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(c.unitAmount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:   stripe.String(fmt.Sprintf("Custom Product (%s)", req.ProductID)),
						Images: stripe.StringSlice([]string{req.ImageURL}),
					},
				},
			},
		},
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice([]string{"US", "CA", "GB", "DE", "FR"}),
		},
	}
	params.Context = ctx
	params.AddMetadata("productId", req.ProductID)
	params.AddMetadata("imageUrl", req.ImageURL)

	s, err := c.sessions.New(params)
	if err != nil {
		return "", fmt.Errorf("Create: %w", err)
	}

	log.Info("checkout session created", "session_id", s.ID, "product_id", req.ProductID)
	return s.URL, nil
}
