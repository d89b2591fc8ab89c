package xendit

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/flexprice/recurring/internal/config"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/httpclient"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func webhookClient() *Client {
	return NewClient(config.XenditConfig{SecretKey: "key", CallbackToken: "cb_token"},
		httpclient.NewDefaultClient(httpclient.ClientConfig{}, nil), logger.NewNoopLogger())
}

func callbackHeaders(token string) http.Header {
	h := http.Header{}
	h.Set(CallbackTokenHeader, token)
	h.Set(WebhookIDHeader, "wh_1")
	return h
}

func TestNormalizeWebhook_StatusMapping(t *testing.T) {
	tests := []struct {
		name        string
		payload     string
		want        types.ProviderEventType
		agreementID string
	}{
		{
			name:    "invoice paid",
			payload: `{"id":"inv_1","external_id":"pay_1","status":"PAID","amount":100000,"paid_amount":100000,"currency":"IDR","paid_at":"2024-06-01T10:00:00Z"}`,
			want:    types.EventChargePaid,
		},
		{
			name:    "invoice settled",
			payload: `{"id":"inv_1","status":"SETTLED","amount":100000,"currency":"IDR"}`,
			want:    types.EventChargePaid,
		},
		{
			name:    "invoice expired",
			payload: `{"id":"inv_1","status":"EXPIRED","amount":100000,"currency":"IDR"}`,
			want:    types.EventChargeExpired,
		},
		{
			name:    "invoice failed",
			payload: `{"id":"inv_1","status":"FAILED","amount":100000,"currency":"IDR"}`,
			want:    types.EventChargeFailed,
		},
		{
			name:        "recurring cycle paid",
			payload:     `{"id":"inv_2","status":"PAID","amount":100000,"currency":"IDR","recurring_payment_id":"rp_1"}`,
			want:        types.EventRecurringCycleSucceeded,
			agreementID: "rp_1",
		},
		{
			name:        "recurring cycle expired",
			payload:     `{"id":"inv_3","status":"EXPIRED","amount":100000,"currency":"IDR","recurring_payment_id":"rp_1"}`,
			want:        types.EventRecurringCycleFailed,
			agreementID: "rp_1",
		},
		{
			name:        "agreement stopped",
			payload:     `{"id":"rp_1","status":"STOPPED","interval":"MONTH","amount":100000,"currency":"IDR"}`,
			want:        types.EventRecurringDeactivated,
			agreementID: "rp_1",
		},
		{
			name:        "agreement active is acknowledged only",
			payload:     `{"id":"rp_1","status":"ACTIVE","interval":"MONTH","amount":100000,"currency":"IDR"}`,
			want:        types.EventUnknown,
			agreementID: "rp_1",
		},
		{
			name:    "unknown invoice status",
			payload: `{"id":"inv_1","status":"VOIDED","currency":"IDR"}`,
			want:    types.EventUnknown,
		},
	}

	client := webhookClient()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := client.NormalizeWebhook(context.Background(), callbackHeaders("cb_token"), []byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, event.Type)
			assert.Equal(t, types.PaymentProviderXendit, event.Provider)
			assert.Equal(t, tt.agreementID, event.AgreementID)
			assert.Equal(t, "wh_1", event.EventID)
			assert.Equal(t, "IDR", event.Currency)
			assert.NotEmpty(t, event.Raw)
		})
	}
}

func TestNormalizeWebhook_PaidFields(t *testing.T) {
	payload := `{"id":"inv_1","status":"PAID","amount":100000,"paid_amount":99000,"currency":"idr","paid_at":"2024-06-01T10:00:00Z"}`
	event, err := webhookClient().NormalizeWebhook(context.Background(), callbackHeaders("cb_token"), []byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "inv_1", event.ExternalID)
	assert.True(t, decimal.NewFromInt(99000).Equal(event.Amount))
	assert.Equal(t, time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC), event.OccurredAt)
	assert.Empty(t, event.FailureReason)
}

func TestNormalizeWebhook_FailureReason(t *testing.T) {
	payload := `{"id":"inv_1","status":"FAILED","currency":"IDR","failure_code":"INSUFFICIENT_BALANCE"}`
	event, err := webhookClient().NormalizeWebhook(context.Background(), callbackHeaders("cb_token"), []byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "INSUFFICIENT_BALANCE", event.FailureReason)
}

func TestNormalizeWebhook_RejectsBadToken(t *testing.T) {
	_, err := webhookClient().NormalizeWebhook(context.Background(), callbackHeaders("wrong"), []byte(`{"id":"inv_1","status":"PAID"}`))
	require.Error(t, err)
	assert.True(t, ierr.IsPermissionDenied(err))
}

func TestNormalizeWebhook_RejectsUnparseablePayload(t *testing.T) {
	_, err := webhookClient().NormalizeWebhook(context.Background(), callbackHeaders("cb_token"), []byte(`not json`))
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))

	_, err = webhookClient().NormalizeWebhook(context.Background(), callbackHeaders("cb_token"), []byte(`{"external_id":"pay_1"}`))
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}
