package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/printloom/printloom-backend/internal/logging"
)

var (
	// ErrRejected means the mail provider refused the request outright.
	ErrRejected = errors.New("notification rejected")
	// ErrUnavailable means the provider could not be reached or errored.
	ErrUnavailable = errors.New("notification provider unavailable")
)

type Client struct {
	baseURL     string
	apiKey      string
	fromAddress string
	fromName    string
	httpClient  *http.Client
}

func NewClient(baseURL, apiKey, fromAddress, fromName string, timeout time.Duration) *Client {
	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		fromAddress: fromAddress,
		fromName:    fromName,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type mailPayload struct {
	Personalizations []personalization `json:"personalizations"`
	From             mailAddress       `json:"from"`
	Content          []mailContent     `json:"content"`
}

type personalization struct {
	To      []mailAddress `json:"to"`
	Subject string        `json:"subject"`
}

type mailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// SendConfirmation emails the customer their order reference. Callers treat
// any failure here as non-fatal: the order is already placed.
func (c *Client) SendConfirmation(ctx context.Context, customerEmail, externalOrderID string) error {
	log := logging.FromContext(ctx)

	payload := mailPayload{
		Personalizations: []personalization{
			{
				To:      []mailAddress{{Email: customerEmail}},
				Subject: "Your Order Confirmation",
			},
		},
		From: mailAddress{Email: c.fromAddress, Name: c.fromName},
		Content: []mailContent{
			{
				Type:  "text/plain",
				Value: fmt.Sprintf("Thank you for your order! Your order ID is %s. We will notify you once it ships.", externalOrderID),
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("SendConfirmation: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/mail/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("SendConfirmation: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("SendConfirmation: %w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		log.Info("confirmation email accepted", "order_id", externalOrderID, "status", resp.StatusCode)
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if resp.StatusCode >= 500 {
		return fmt.Errorf("SendConfirmation: %w: status %d: %s", ErrUnavailable, resp.StatusCode, string(respBody))
	}
	return fmt.Errorf("SendConfirmation: %w: status %d: %s", ErrRejected, resp.StatusCode, string(respBody))
}
