package stripe

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/flexprice/recurring/internal/config"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/integration/base"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
)

const testWebhookSecret = "whsec_test_123"

func webhookClient() *Client {
	return NewClient(config.StripeConfig{WebhookSecret: testWebhookSecret}, logger.NewNoopLogger())
}

func eventJSON(eventType string, object string) []byte {
	return []byte(fmt.Sprintf(`{"id":"evt_1","object":"event","type":%q,"created":1717236000,"data":{"object":%s}}`, eventType, object))
}

func signedHeaders(t *testing.T, payload []byte) http.Header {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})
	h := http.Header{}
	h.Set(SignatureHeader, signed.Header)
	return h
}

func normalize(t *testing.T, eventType, object string) *base.NormalizedEvent {
	t.Helper()
	payload := eventJSON(eventType, object)
	event, err := webhookClient().NormalizeWebhook(context.Background(), signedHeaders(t, payload), payload)
	require.NoError(t, err)
	return event
}

func TestNormalizeWebhook_CheckoutPaymentCompleted(t *testing.T) {
	event := normalize(t, EventCheckoutSessionCompleted,
		`{"id":"cs_1","object":"checkout.session","mode":"payment","payment_status":"paid","amount_total":1500,"currency":"usd"}`)

	assert.Equal(t, types.EventChargePaid, event.Type)
	assert.Equal(t, types.PaymentProviderStripe, event.Provider)
	assert.Equal(t, "evt_1", event.EventID)
	assert.Equal(t, "cs_1", event.ExternalID)
	assert.Equal(t, "USD", event.Currency)
	assert.True(t, decimal.NewFromInt(15).Equal(event.Amount))
	assert.Equal(t, time.Unix(1717236000, 0).UTC(), event.OccurredAt)
}

func TestNormalizeWebhook_CheckoutPaymentUnpaidIsUnknown(t *testing.T) {
	event := normalize(t, EventCheckoutSessionCompleted,
		`{"id":"cs_1","object":"checkout.session","mode":"payment","payment_status":"unpaid","amount_total":1500,"currency":"usd"}`)
	assert.Equal(t, types.EventUnknown, event.Type)
}

func TestNormalizeWebhook_CheckoutSubscriptionCompleted(t *testing.T) {
	event := normalize(t, EventCheckoutSessionCompleted,
		`{"id":"cs_2","object":"checkout.session","mode":"subscription","payment_status":"paid","amount_total":1500,"currency":"usd","subscription":"sub_1"}`)

	assert.Equal(t, types.EventRecurringActivated, event.Type)
	assert.Equal(t, "cs_2", event.ExternalID)
	assert.Equal(t, "sub_1", event.AgreementID)
}

func TestNormalizeWebhook_CheckoutFailures(t *testing.T) {
	event := normalize(t, EventCheckoutSessionAsyncFailed,
		`{"id":"cs_1","object":"checkout.session","mode":"payment","currency":"usd"}`)
	assert.Equal(t, types.EventChargeFailed, event.Type)
	assert.NotEmpty(t, event.FailureReason)

	event = normalize(t, EventCheckoutSessionExpired,
		`{"id":"cs_1","object":"checkout.session","mode":"payment","currency":"usd"}`)
	assert.Equal(t, types.EventChargeExpired, event.Type)
}

func TestNormalizeWebhook_InvoiceCycle(t *testing.T) {
	event := normalize(t, EventInvoicePaid,
		`{"id":"in_1","object":"invoice","billing_reason":"subscription_cycle","amount_paid":1500,"currency":"usd","subscription":"sub_1"}`)
	assert.Equal(t, types.EventRecurringCycleSucceeded, event.Type)
	assert.Equal(t, "in_1", event.ExternalID)
	assert.Equal(t, "sub_1", event.AgreementID)
	assert.True(t, decimal.NewFromInt(15).Equal(event.Amount))

	// newer API versions nest the subscription under parent
	event = normalize(t, EventInvoicePaymentFailed,
		`{"id":"in_2","object":"invoice","billing_reason":"subscription_cycle","amount_due":1500,"currency":"usd","parent":{"subscription_details":{"subscription":"sub_1"}}}`)
	assert.Equal(t, types.EventRecurringCycleFailed, event.Type)
	assert.Equal(t, "sub_1", event.AgreementID)
	assert.NotEmpty(t, event.FailureReason)
}

func TestNormalizeWebhook_FirstInvoiceIsUnknown(t *testing.T) {
	event := normalize(t, EventInvoicePaid,
		`{"id":"in_0","object":"invoice","billing_reason":"subscription_create","amount_paid":1500,"currency":"usd","subscription":"sub_1"}`)
	assert.Equal(t, types.EventUnknown, event.Type)
}

func TestNormalizeWebhook_SubscriptionDeleted(t *testing.T) {
	event := normalize(t, EventCustomerSubscriptionDeleted,
		`{"id":"sub_1","object":"subscription","status":"canceled","currency":"usd"}`)
	assert.Equal(t, types.EventRecurringDeactivated, event.Type)
	assert.Equal(t, "sub_1", event.AgreementID)
}

func TestNormalizeWebhook_UnhandledTypeIsAcknowledged(t *testing.T) {
	event := normalize(t, "customer.created", `{"id":"cus_1","object":"customer"}`)
	assert.Equal(t, types.EventUnknown, event.Type)
	assert.Equal(t, "customer.created", event.NativeType)
}

func TestNormalizeWebhook_RejectsBadSignature(t *testing.T) {
	payload := eventJSON(EventInvoicePaid, `{"id":"in_1","object":"invoice"}`)
	headers := http.Header{}
	headers.Set(SignatureHeader, "t=1,v1=deadbeef")

	_, err := webhookClient().NormalizeWebhook(context.Background(), headers, payload)
	require.Error(t, err)
	assert.True(t, ierr.IsPermissionDenied(err))
}

func TestNormalizeWebhook_RejectsInvalidJSON(t *testing.T) {
	_, err := webhookClient().NormalizeWebhook(context.Background(), http.Header{}, []byte(`{not json`))
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}

func TestClient_NotConfigured(t *testing.T) {
	client := NewClient(config.StripeConfig{}, logger.NewNoopLogger())
	assert.False(t, client.IsConfigured())

	_, err := client.CreateCharge(context.Background(), &base.ChargeRequest{PaymentID: "pay_1"})
	assert.True(t, ierr.IsConfiguration(err))

	_, err = client.CreateRecurringAgreement(context.Background(), &base.AgreementRequest{PaymentID: "pay_1"})
	assert.True(t, ierr.IsConfiguration(err))

	assert.True(t, ierr.IsConfiguration(client.CancelRecurring(context.Background(), "sub_1")))

	_, err = client.NormalizeWebhook(context.Background(), http.Header{}, []byte(`{}`))
	assert.True(t, ierr.IsConfiguration(err))
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1999), toMinorUnits(decimal.RequireFromString("19.99"), "USD"))
	assert.Equal(t, int64(150000), toMinorUnits(decimal.NewFromInt(150000), "IDR"))
	assert.True(t, decimal.RequireFromString("19.99").Equal(fromMinorUnits(1999, "usd")))
	assert.True(t, decimal.NewFromInt(150000).Equal(fromMinorUnits(150000, "IDR")))
}
