package xendit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flexprice/recurring/internal/config"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/httpclient"
	"github.com/flexprice/recurring/internal/integration/base"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.XenditConfig{
		SecretKey:     "xnd_development_key",
		CallbackToken: "cb_token",
		BaseURL:       srv.URL + "/",
		SuccessURL:    "https://app.example.com/billing/success",
	}
	return NewClient(cfg, httpclient.NewDefaultClient(httpclient.ClientConfig{Timeout: time.Second}, nil), logger.NewNoopLogger())
}

func TestClient_CreateCharge(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/invoices", r.URL.Path)
		user, _, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "xnd_development_key", user)

		raw, _ := io.ReadAll(r.Body)
		var body CreateInvoiceRequest
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "pay_1", body.ExternalID)
		assert.Equal(t, "IDR", body.Currency)
		assert.True(t, decimal.NewFromInt(300000).Equal(body.Amount))
		assert.Equal(t, "https://app.example.com/billing/success", body.SuccessRedirectURL)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"inv_123","external_id":"pay_1","status":"PENDING","amount":300000,"currency":"IDR","invoice_url":"https://checkout.xendit.co/web/inv_123"}`))
	})

	result, err := client.CreateCharge(context.Background(), &base.ChargeRequest{
		PaymentID:     "pay_1",
		InvoiceNumber: "INV-ABC",
		Amount:        decimal.NewFromInt(300000),
		Currency:      "idr",
	})
	require.NoError(t, err)
	assert.Equal(t, "inv_123", result.ExternalID)
	assert.Equal(t, "https://checkout.xendit.co/web/inv_123", result.CheckoutURL)
	assert.Empty(t, result.AgreementID)
}

func TestClient_CreateRecurringAgreementYearly(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recurring_payments", r.URL.Path)
		var body CreateRecurringRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "MONTH", body.Interval)
		assert.Equal(t, 12, body.IntervalCount)
		_, _ = w.Write([]byte(`{"id":"rp_1","external_id":"pay_2","status":"ACTIVE","last_created_invoice_url":"https://checkout.xendit.co/web/inv_9"}`))
	})

	result, err := client.CreateRecurringAgreement(context.Background(), &base.AgreementRequest{
		PaymentID: "pay_2",
		Amount:    decimal.NewFromInt(1500000),
		Currency:  "IDR",
		Period:    types.BillingPeriodYearly,
	})
	require.NoError(t, err)
	assert.Equal(t, "rp_1", result.ExternalID)
	assert.Equal(t, "rp_1", result.AgreementID)
	assert.Equal(t, "https://checkout.xendit.co/web/inv_9", result.CheckoutURL)
}

func TestClient_CancelRecurring(t *testing.T) {
	var path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"id":"rp_1","status":"STOPPED"}`))
	})

	require.NoError(t, client.CancelRecurring(context.Background(), "rp_1"))
	assert.Equal(t, "/recurring_payments/rp_1/stop!", path)
}

func TestClient_ProviderFailureIsProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_code":"API_VALIDATION_ERROR"}`))
	})

	_, err := client.CreateCharge(context.Background(), &base.ChargeRequest{
		PaymentID: "pay_1",
		Amount:    decimal.NewFromInt(1),
		Currency:  "IDR",
	})
	require.Error(t, err)
	assert.True(t, ierr.IsProvider(err))
}

func TestClient_NotConfigured(t *testing.T) {
	client := NewClient(config.XenditConfig{}, httpclient.NewDefaultClient(httpclient.ClientConfig{}, nil), logger.NewNoopLogger())
	assert.False(t, client.IsConfigured())

	_, err := client.CreateCharge(context.Background(), &base.ChargeRequest{PaymentID: "pay_1"})
	assert.True(t, ierr.IsConfiguration(err))

	_, err = client.CreateRecurringAgreement(context.Background(), &base.AgreementRequest{PaymentID: "pay_1"})
	assert.True(t, ierr.IsConfiguration(err))

	assert.True(t, ierr.IsConfiguration(client.CancelRecurring(context.Background(), "rp_1")))

	_, err = client.NormalizeWebhook(context.Background(), http.Header{}, []byte(`{}`))
	assert.True(t, ierr.IsConfiguration(err))
}
