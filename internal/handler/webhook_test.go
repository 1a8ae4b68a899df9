package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printloom/printloom-backend/internal/domain"
	"github.com/printloom/printloom-backend/internal/pipeline"
)

type stubOrchestrator struct {
	disposition pipeline.Disposition
	err         error
	gotPayload  []byte
	gotHeader   string
}

func (s *stubOrchestrator) HandleDelivery(_ context.Context, payload []byte, signatureHeader string) (pipeline.Disposition, error) {
	s.gotPayload = payload
	s.gotHeader = signatureHeader
	return s.disposition, s.err
}

func postWebhook(t *testing.T, h *WebhookHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(body))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	rec := httptest.NewRecorder()
	h.ReceivePaymentWebhook(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestReceivePaymentWebhook_Handled(t *testing.T) {
	orch := &stubOrchestrator{disposition: pipeline.DispositionHandled}
	rec := postWebhook(t, NewWebhookHandler(orch), `{"id":"evt_1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, map[string]any{"status": "handled"}, resp.Data)

	assert.Equal(t, `{"id":"evt_1"}`, string(orch.gotPayload))
	assert.Equal(t, "t=1,v1=abc", orch.gotHeader)
}

func TestReceivePaymentWebhook_SkippedStillAcks(t *testing.T) {
	orch := &stubOrchestrator{disposition: pipeline.DispositionSkipped}
	rec := postWebhook(t, NewWebhookHandler(orch), `{"id":"evt_1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, map[string]any{"status": "skipped"}, resp.Data)
}

func TestReceivePaymentWebhook_SignatureErrors(t *testing.T) {
	for _, sigErr := range []error{
		domain.ErrSignatureMissing,
		domain.ErrSignatureMalformed,
		domain.ErrSignatureMismatch,
		domain.ErrSignatureExpired,
	} {
		t.Run(sigErr.Error(), func(t *testing.T) {
			orch := &stubOrchestrator{err: sigErr}
			rec := postWebhook(t, NewWebhookHandler(orch), `{}`)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "INVALID_SIGNATURE", resp.Error.Code)
		})
	}
}

func TestReceivePaymentWebhook_MalformedEvent(t *testing.T) {
	orch := &stubOrchestrator{err: domain.ErrMalformedMetadata}
	rec := postWebhook(t, NewWebhookHandler(orch), `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "MALFORMED_EVENT", resp.Error.Code)
}

func TestReceivePaymentWebhook_AdmissionStoreError(t *testing.T) {
	orch := &stubOrchestrator{err: errors.New("db unreachable")}
	rec := postWebhook(t, NewWebhookHandler(orch), `{}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
}
