package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printloom/printloom-backend/internal/payments"
)

type stubCheckout struct {
	url string
	err error
	got payments.CheckoutRequest
}

func (s *stubCheckout) Create(_ context.Context, req payments.CheckoutRequest) (string, error) {
	s.got = req
	return s.url, s.err
}

func postCheckout(t *testing.T, h *CheckoutHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreateSession(rec, req)
	return rec
}

func TestCreateSession_Success(t *testing.T) {
	stub := &stubCheckout{url: "https://checkout.stripe.com/c/pay/cs_test_1"}
	h := NewCheckoutHandler(stub)

	rec := postCheckout(t, h, `{"productId":"P1","imageUrl":"https://x/img.png","customerEmail":"a@b.com"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, map[string]any{"url": stub.url}, resp.Data)

	assert.Equal(t, "P1", stub.got.ProductID)
	assert.Equal(t, "https://x/img.png", stub.got.ImageURL)
	assert.Equal(t, "a@b.com", stub.got.CustomerEmail)
}

func TestCreateSession_InvalidBody(t *testing.T) {
	h := NewCheckoutHandler(&stubCheckout{})

	rec := postCheckout(t, h, `not-json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_REQUEST", resp.Error.Code)
}

func TestCreateSession_Validation(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{
			name:      "missing product id",
			body:      `{"imageUrl":"https://x/img.png","customerEmail":"a@b.com"}`,
			wantField: "productId",
		},
		{
			name:      "missing image url",
			body:      `{"productId":"P1","customerEmail":"a@b.com"}`,
			wantField: "imageUrl",
		},
		{
			name:      "relative image url",
			body:      `{"productId":"P1","imageUrl":"/img.png","customerEmail":"a@b.com"}`,
			wantField: "imageUrl",
		},
		{
			name:      "missing email",
			body:      `{"productId":"P1","imageUrl":"https://x/img.png"}`,
			wantField: "customerEmail",
		},
		{
			name:      "invalid email",
			body:      `{"productId":"P1","imageUrl":"https://x/img.png","customerEmail":"nope"}`,
			wantField: "customerEmail",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewCheckoutHandler(&stubCheckout{})

			rec := postCheckout(t, h, tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeResponse(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)

			details, ok := resp.Error.Details.([]any)
			require.True(t, ok)
			require.NotEmpty(t, details)
			field, ok := details[0].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tc.wantField, field["field"])
		})
	}
}

func TestCreateSession_ProviderFailure(t *testing.T) {
	h := NewCheckoutHandler(&stubCheckout{err: errors.New("stripe unavailable")})

	rec := postCheckout(t, h, `{"productId":"P1","imageUrl":"https://x/img.png","customerEmail":"a@b.com"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CHECKOUT_FAILED", resp.Error.Code)
}
