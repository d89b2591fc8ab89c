package payment

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataValidate(t *testing.T) {
	tests := []struct {
		name    string
		meta    Metadata
		wantErr bool
	}{
		{
			name: "simple",
			meta: NewSimpleMetadata(SimpleDetails{CheckoutMode: types.CheckoutModeOneTime}),
		},
		{
			name: "cycle",
			meta: NewCycleMetadata(CycleDetails{AgreementID: "rp_1", EventType: types.EventRecurringCycleSucceeded}),
		},
		{
			name: "org invoice",
			meta: NewOrgInvoiceMetadata(OrgInvoiceDetails{LabelID: "lbl_1", UserIDs: []string{"a", "b"}}),
		},
		{
			name:    "cycle without agreement",
			meta:    NewCycleMetadata(CycleDetails{}),
			wantErr: true,
		},
		{
			name:    "org invoice without seats",
			meta:    NewOrgInvoiceMetadata(OrgInvoiceDetails{LabelID: "lbl_1"}),
			wantErr: true,
		},
		{
			name:    "duplicate seats",
			meta:    NewOrgInvoiceMetadata(OrgInvoiceDetails{LabelID: "lbl_1", UserIDs: []string{"a", "a"}}),
			wantErr: true,
		},
		{
			name: "mode does not match block",
			meta: Metadata{
				Mode:  types.PaymentModeSimple,
				Cycle: &CycleDetails{AgreementID: "rp_1"},
			},
			wantErr: true,
		},
		{
			name:    "unknown mode",
			meta:    Metadata{Mode: "BARTER"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meta.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, ierr.IsValidation(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAppendProviderPayloadKeepsLatest(t *testing.T) {
	var m Metadata
	m.AppendProviderPayload(json.RawMessage(`not json`))
	m.AppendProviderPayload(nil)
	assert.Empty(t, m.ProviderPayloads)

	for i := 0; i < maxProviderPayloads+3; i++ {
		m.AppendProviderPayload(json.RawMessage(fmt.Sprintf(`{"n":%d}`, i)))
	}
	require.Len(t, m.ProviderPayloads, maxProviderPayloads)
	assert.JSONEq(t, `{"n":3}`, string(m.ProviderPayloads[0]))
	assert.JSONEq(t, fmt.Sprintf(`{"n":%d}`, maxProviderPayloads+2), string(m.ProviderPayloads[maxProviderPayloads-1]))
}

func TestMetadataScan(t *testing.T) {
	var m Metadata
	require.NoError(t, m.Scan([]byte(`{"mode":"CYCLE","cycle":{"agreement_id":"rp_9","event_type":"recurring.cycle.failed"}}`)))
	assert.Equal(t, types.PaymentModeCycle, m.Mode)
	require.NotNil(t, m.Cycle)
	assert.Equal(t, "rp_9", m.Cycle.AgreementID)

	require.NoError(t, m.Scan(nil))
	assert.Equal(t, Metadata{}, m)

	assert.Error(t, m.Scan(42))
}

func TestEffectiveStatus(t *testing.T) {
	p := &Payment{
		Status:   types.PaymentStatusPending,
		Metadata: NewOrgInvoiceMetadata(OrgInvoiceDetails{LabelID: "lbl_1", UserIDs: []string{"a"}, AwaitingApproval: true}),
	}
	assert.Equal(t, types.PaymentStatusAwaitingApproval, p.EffectiveStatus())
	assert.True(t, p.IsOrgInvoice())

	p.MarkPaid(time.Now())
	assert.Equal(t, types.PaymentStatusPaid, p.EffectiveStatus())
	assert.NotNil(t, p.PaidAt)
}

func TestMarkFailed(t *testing.T) {
	now := time.Now()
	p := &Payment{Status: types.PaymentStatusPending}

	p.MarkFailed(now, "card declined")
	assert.Equal(t, types.PaymentStatusFailed, p.Status)
	assert.Equal(t, now, *p.FailedAt)
	assert.Equal(t, "card declined", *p.FailureReason)
	assert.True(t, p.IsTerminal())
}
