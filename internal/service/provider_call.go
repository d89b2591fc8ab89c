package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/flexprice/recurring/internal/domain/payment"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/idempotency"
	"github.com/flexprice/recurring/internal/integration/base"
	"github.com/flexprice/recurring/internal/types"
	"github.com/samber/lo"
)

// SelectProvider picks the adapter for a charge. An explicit preference wins; USD goes to
// the recurring billing-agreement provider and every other currency to the invoice provider.
func SelectProvider(preference types.PaymentProvider, currency string) types.PaymentProvider {
	if preference != "" {
		return preference
	}
	if types.NormalizeCurrency(currency) == "USD" {
		return types.PaymentProviderStripe
	}
	return types.PaymentProviderXendit
}

// configuredProvider returns the adapter or a configuration error when it has no credentials
func (p ServiceParams) configuredProvider(name types.PaymentProvider) (base.Provider, error) {
	provider, err := p.Providers.GetProvider(name)
	if err != nil {
		return nil, err
	}
	if !provider.IsConfigured() {
		return nil, base.NotConfigured(name)
	}
	return provider, nil
}

// chargeRequest describes the provider object to create for a pending payment
type chargeRequest struct {
	payment     *payment.Payment
	recurring   bool
	period      types.BillingPeriod
	description string
	metadata    map[string]string
}

// createAtProvider calls the adapter with a per-attempt timeout, retrying provider errors
// with exponential backoff. Every attempt carries the same idempotency key so retries
// collapse into one provider object.
func (p ServiceParams) createAtProvider(ctx context.Context, provider base.Provider, req chargeRequest) (*base.ChargeResult, error) {
	key := idempotency.NewGenerator().GenerateKey(idempotency.ScopeCheckout, map[string]interface{}{
		"payment_id": req.payment.ID,
	})

	attempt := func() (*base.ChargeResult, error) {
		callCtx, cancel := context.WithTimeout(ctx, p.Config.Providers.Timeout)
		defer cancel()

		var (
			result *base.ChargeResult
			err    error
		)
		if req.recurring {
			result, err = provider.CreateRecurringAgreement(callCtx, &base.AgreementRequest{
				PaymentID:      req.payment.ID,
				AccountID:      req.payment.AccountID,
				InvoiceNumber:  req.payment.InvoiceNumber,
				Amount:         req.payment.Amount,
				Currency:       req.payment.Currency,
				Period:         req.period,
				Description:    req.description,
				Metadata:       req.metadata,
				IdempotencyKey: key,
			})
		} else {
			result, err = provider.CreateCharge(callCtx, &base.ChargeRequest{
				PaymentID:      req.payment.ID,
				AccountID:      req.payment.AccountID,
				InvoiceNumber:  req.payment.InvoiceNumber,
				Amount:         req.payment.Amount,
				Currency:       req.payment.Currency,
				Description:    req.description,
				Metadata:       req.metadata,
				IdempotencyKey: key,
			})
		}
		if err != nil {
			if ierr.IsRetryable(err) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return result, nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = lo.Ternary(p.Config.Providers.RetryInitialInterval > 0, p.Config.Providers.RetryInitialInterval, 500*time.Millisecond)
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(max(p.Config.Providers.MaxRetries, 0))), ctx)

	return backoff.RetryNotifyWithData(attempt, policy, func(err error, wait time.Duration) {
		p.Metrics.ProviderRetriesTotal.WithLabelValues(string(provider.Name())).Inc()
		p.Logger.Warnw("provider call failed, retrying",
			"error", err,
			"provider", provider.Name(),
			"payment_id", req.payment.ID,
			"wait", wait.String())
	})
}

// recordProviderResult stores the provider references on the pending payment. It runs in
// the caller's transaction.
func (p ServiceParams) recordProviderResult(ctx context.Context, paymentID string, result *base.ChargeResult) (*payment.Payment, error) {
	pay, err := p.PaymentRepo.GetForUpdate(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if result.ExternalID != "" {
		pay.ExternalID = lo.ToPtr(result.ExternalID)
	}
	if result.CheckoutURL != "" {
		pay.CheckoutURL = lo.ToPtr(result.CheckoutURL)
	}
	if result.AgreementID != "" && pay.Metadata.Simple != nil {
		pay.Metadata.Simple.AgreementID = result.AgreementID
	}
	pay.Touch(ctx, p.now())
	if err := p.PaymentRepo.Update(ctx, pay); err != nil {
		return nil, err
	}
	return pay, nil
}
