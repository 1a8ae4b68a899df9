package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printloom/printloom-backend/internal/domain"
)

const testWebhookSecret = "whsec_test_secret"

// signHeader builds a Stripe-Signature header over payload using the
// processor's t=<unix>,v1=<hmac(t.payload)> scheme.
func signHeader(payload string, ts time.Time, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func validEventBody() string {
	return `{"id":"evt_1","type":"checkout.session.completed","data":{"object":{}}}`
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		header  func(body string) string
		wantErr error
	}{
		{
			name:   "valid signature",
			body:   validEventBody(),
			header: func(body string) string { return signHeader(body, time.Now(), testWebhookSecret) },
		},
		{
			name:    "missing header",
			body:    validEventBody(),
			header:  func(string) string { return "" },
			wantErr: domain.ErrSignatureMissing,
		},
		{
			name:    "malformed header",
			body:    validEventBody(),
			header:  func(string) string { return "not-a-signature" },
			wantErr: domain.ErrSignatureMalformed,
		},
		{
			name: "tampered body",
			body: `{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"amount":1}}}`,
			header: func(string) string {
				return signHeader(validEventBody(), time.Now(), testWebhookSecret)
			},
			wantErr: domain.ErrSignatureMismatch,
		},
		{
			name:    "wrong secret",
			body:    validEventBody(),
			header:  func(body string) string { return signHeader(body, time.Now(), "whsec_other") },
			wantErr: domain.ErrSignatureMismatch,
		},
		{
			name: "expired timestamp",
			body: validEventBody(),
			header: func(body string) string {
				return signHeader(body, time.Now().Add(-10*time.Minute), testWebhookSecret)
			},
			wantErr: domain.ErrSignatureExpired,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := NewVerifier(testWebhookSecret, 5*time.Minute)

			event, err := v.Verify([]byte(tc.body), tc.header(tc.body))

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "evt_1", event.ID)
			assert.Equal(t, "checkout.session.completed", string(event.Type))
		})
	}
}

func TestVerify_ToleranceBoundary(t *testing.T) {
	v := NewVerifier(testWebhookSecret, 15*time.Minute)
	body := validEventBody()

	// Same stale timestamp passes under a wider tolerance window.
	header := signHeader(body, time.Now().Add(-10*time.Minute), testWebhookSecret)
	_, err := v.Verify([]byte(body), header)
	require.NoError(t, err)
}
