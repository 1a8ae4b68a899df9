package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/printloom/printloom-backend/internal/domain"
	"github.com/printloom/printloom-backend/internal/logging"
)

// RejectedError is a provider-side rejection (bad SKU, undeliverable
// address). Retrying the identical request is futile, so callers must treat
// it as terminal.
type RejectedError struct {
	Status int
	Body   string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("fulfillment rejected: status %d: %s", e.Status, e.Body)
}

// UnavailableError is a transport failure or provider 5xx. These may be
// transient and are eligible for bounded retry.
type UnavailableError struct {
	Status int
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fulfillment unavailable: %v", e.Err)
	}
	return fmt.Sprintf("fulfillment unavailable: status %d", e.Status)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type orderPayload struct {
	ShippingMethod string         `json:"shippingMethod"`
	Recipient      orderRecipient `json:"recipient"`
	Items          []orderItem    `json:"items"`
}

type orderRecipient struct {
	Name    string       `json:"name"`
	Email   string       `json:"email"`
	Address orderAddress `json:"address"`
}

type orderAddress struct {
	Line1           string `json:"line1"`
	Line2           string `json:"line2,omitempty"`
	City            string `json:"city"`
	PostalOrZipCode string `json:"postalOrZipCode"`
	StateOrCounty   string `json:"stateOrCounty"`
	CountryCode     string `json:"countryCode"`
}

type orderItem struct {
	SKU    string       `json:"sku"`
	Copies int          `json:"copies"`
	Assets []orderAsset `json:"assets"`
}

type orderAsset struct {
	PrintArea string `json:"printArea"`
	URL       string `json:"url"`
}

type orderResponse struct {
	ID    string `json:"id"`
	Order struct {
		ID string `json:"id"`
	} `json:"order"`
}

// PlaceOrder submits the order to the print provider and returns its
// assigned order ID. Non-2xx responses split into RejectedError (4xx) and
// UnavailableError (everything else), which is what drives the caller's
// retry policy.
func (c *Client) PlaceOrder(ctx context.Context, order domain.FulfillmentOrder) (string, error) {
	log := logging.FromContext(ctx)

	payload := orderPayload{
		ShippingMethod: order.ShippingMethod,
		Recipient: orderRecipient{
			Name:  order.Recipient.Name,
			Email: order.Recipient.Email,
			Address: orderAddress{
				Line1:           order.Recipient.Address.Line1,
				Line2:           order.Recipient.Address.Line2,
				City:            order.Recipient.Address.City,
				PostalOrZipCode: order.Recipient.Address.PostalCode,
				StateOrCounty:   order.Recipient.Address.State,
				CountryCode:     order.Recipient.Address.Country,
			},
		},
		Items: []orderItem{
			{
				SKU:    order.SKU,
				Copies: order.Copies,
				Assets: toAssets(order.Assets),
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("PlaceOrder: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("PlaceOrder: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &UnavailableError{Err: err}
	}
	defer resp.Body.Close()

	log.Info("fulfillment response received",
		"status", resp.StatusCode,
		"source_event_id", order.SourceEventID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode >= 500 {
		return "", &UnavailableError{Status: resp.StatusCode}
	}
	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &RejectedError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var parsed orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("PlaceOrder: decode response: %w", err)
	}

	orderID := parsed.Order.ID
	if orderID == "" {
		orderID = parsed.ID
	}
	if orderID == "" {
		return "", fmt.Errorf("PlaceOrder: provider response missing order id")
	}
	return orderID, nil
}

// ListProducts relays the provider's product catalog as raw JSON.
func (c *Client) ListProducts(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products", nil)
	if err != nil {
		return nil, fmt.Errorf("ListProducts: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UnavailableError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ListProducts: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	products, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("ListProducts: read response: %w", err)
	}
	return products, nil
}

func toAssets(assets []domain.PrintAsset) []orderAsset {
	out := make([]orderAsset, 0, len(assets))
	for _, a := range assets {
		out = append(out, orderAsset{PrintArea: a.PrintArea, URL: a.URL})
	}
	return out
}
