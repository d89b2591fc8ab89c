package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/flexprice/recurring/internal/integration/base"
	"github.com/flexprice/recurring/internal/types"
)

var _ base.Provider = (*FixtureProvider)(nil)

// FixtureProvider is a scripted base.Provider. Charges return ExternalID "<name>_<payment id>"
// unless a result is queued. Webhook payloads are NormalizedEvent JSON.
type FixtureProvider struct {
	mu         sync.Mutex
	name       types.PaymentProvider
	configured bool

	// failures are consumed one per create call before succeeding
	failures    []error
	agreementID string
	webhookErr  error
	cancelErr   error
	Charges     []*base.ChargeRequest
	Agreements  []*base.AgreementRequest
	Cancelled   []string
	createCalls int
}

func NewFixtureProvider(name types.PaymentProvider) *FixtureProvider {
	return &FixtureProvider{name: name, configured: true}
}

// Unconfigured makes every call fail with a configuration error
func (p *FixtureProvider) Unconfigured() *FixtureProvider {
	p.configured = false
	return p
}

// FailNext queues errors returned by the next create calls
func (p *FixtureProvider) FailNext(errs ...error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = append(p.failures, errs...)
}

// WithAgreementID makes CreateRecurringAgreement return agreementID right away
func (p *FixtureProvider) WithAgreementID(agreementID string) *FixtureProvider {
	p.agreementID = agreementID
	return p
}

func (p *FixtureProvider) FailWebhooks(err error) {
	p.webhookErr = err
}

func (p *FixtureProvider) FailCancel(err error) {
	p.cancelErr = err
}

// CreateCalls counts create attempts, failed ones included
func (p *FixtureProvider) CreateCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.createCalls
}

func (p *FixtureProvider) Name() types.PaymentProvider {
	return p.name
}

func (p *FixtureProvider) IsConfigured() bool {
	return p.configured
}

func (p *FixtureProvider) nextFailure() error {
	p.createCalls++
	if len(p.failures) == 0 {
		return nil
	}
	err := p.failures[0]
	p.failures = p.failures[1:]
	return err
}

func (p *FixtureProvider) CreateCharge(ctx context.Context, req *base.ChargeRequest) (*base.ChargeResult, error) {
	if !p.configured {
		return nil, base.NotConfigured(p.name)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.nextFailure(); err != nil {
		return nil, err
	}
	p.Charges = append(p.Charges, req)
	return &base.ChargeResult{
		ExternalID:  fmt.Sprintf("%s_%s", p.name, req.PaymentID),
		CheckoutURL: fmt.Sprintf("https://pay.example.com/%s/%s", p.name, req.PaymentID),
	}, nil
}

func (p *FixtureProvider) CreateRecurringAgreement(ctx context.Context, req *base.AgreementRequest) (*base.ChargeResult, error) {
	if !p.configured {
		return nil, base.NotConfigured(p.name)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.nextFailure(); err != nil {
		return nil, err
	}
	p.Agreements = append(p.Agreements, req)
	return &base.ChargeResult{
		ExternalID:  fmt.Sprintf("%s_%s", p.name, req.PaymentID),
		AgreementID: p.agreementID,
		CheckoutURL: fmt.Sprintf("https://pay.example.com/%s/%s", p.name, req.PaymentID),
	}, nil
}

func (p *FixtureProvider) CancelRecurring(ctx context.Context, agreementID string) error {
	if !p.configured {
		return base.NotConfigured(p.name)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancelErr != nil {
		return p.cancelErr
	}
	p.Cancelled = append(p.Cancelled, agreementID)
	return nil
}

func (p *FixtureProvider) NormalizeWebhook(ctx context.Context, headers http.Header, payload []byte) (*base.NormalizedEvent, error) {
	if p.webhookErr != nil {
		return nil, p.webhookErr
	}
	var event base.NormalizedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, base.InvalidPayload(err, p.name)
	}
	event.Provider = p.name
	event.Raw = payload
	return &event, nil
}

// WebhookPayload encodes event the way FixtureProvider.NormalizeWebhook reads it
func WebhookPayload(event *base.NormalizedEvent) []byte {
	b, _ := json.Marshal(event)
	return b
}
