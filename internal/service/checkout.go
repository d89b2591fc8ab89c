package service

import (
	"context"
	"fmt"

	"github.com/flexprice/recurring/internal/api/dto"
	"github.com/flexprice/recurring/internal/domain/payment"
	"github.com/flexprice/recurring/internal/domain/subscription"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/metrics"
	"github.com/flexprice/recurring/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// CheckoutService routes a purchase to a provider and records the pending payment
type CheckoutService interface {
	Checkout(ctx context.Context, req dto.CheckoutRequest) (*dto.CheckoutResponse, error)
}

type checkoutService struct {
	ServiceParams
	catalog BillingPlanService
}

func NewCheckoutService(params ServiceParams, catalog BillingPlanService) CheckoutService {
	return &checkoutService{
		ServiceParams: params,
		catalog:       catalog,
	}
}

// Checkout creates the PENDING payment (and a TRIAL subscription when the account has none)
// before calling the provider, so a crash or timeout after the call still leaves a row to
// reconcile. A failed provider call leaves the payment PENDING.
func (s *checkoutService) Checkout(ctx context.Context, req dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	currency := req.GetCurrency(s.Config.Billing.DefaultCurrency)
	providerName := SelectProvider(req.Provider, currency)
	if providerName == types.PaymentProviderManual {
		return nil, ierr.NewError("manual provider is not available for checkout").
			WithHint("Manual payments are only available for organization invoices").
			Mark(ierr.ErrValidation)
	}
	provider, err := s.configuredProvider(providerName)
	if err != nil {
		return nil, err
	}

	period, err := checkoutPeriod(req)
	if err != nil {
		return nil, err
	}
	amount, err := s.checkoutAmount(ctx, req, providerName, period, currency)
	if err != nil {
		return nil, err
	}

	var (
		pay *payment.Payment
		sub *subscription.Subscription
	)
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if req.Plan != "" {
			sub, err = s.ensureSubscription(ctx, req.AccountID)
			if err != nil {
				return err
			}
		}

		pay = &payment.Payment{
			ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
			AccountID:     req.AccountID,
			Amount:        amount,
			Currency:      currency,
			Provider:      providerName,
			Status:        types.PaymentStatusPending,
			InvoiceNumber: types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_INVOICE),
			Metadata: payment.NewSimpleMetadata(payment.SimpleDetails{
				CheckoutMode: req.Mode,
				Plan:         req.Plan,
				Period:       period,
			}),
			Version:   1,
			BaseModel: types.GetDefaultBaseModel(ctx),
		}
		if sub != nil {
			pay.SubscriptionID = lo.ToPtr(sub.ID)
		}
		return s.PaymentRepo.Create(ctx, pay)
	})
	if err != nil {
		return nil, err
	}

	result, err := s.createAtProvider(ctx, provider, chargeRequest{
		payment:     pay,
		recurring:   req.Mode == types.CheckoutModeSubscription,
		period:      period,
		description: checkoutDescription(req, period),
		metadata: map[string]string{
			"mode": string(req.Mode),
			"plan": string(req.Plan),
		},
	})
	if err != nil {
		s.Metrics.CheckoutsTotal.WithLabelValues(string(providerName), string(req.Mode), metrics.OutcomeFailed).Inc()
		s.Logger.Errorw("provider checkout failed, payment left pending",
			"error", err,
			"payment_id", pay.ID,
			"account_id", req.AccountID,
			"provider", providerName)
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		pay, err = s.recordProviderResult(ctx, pay.ID, result)
		if err != nil {
			return err
		}
		if sub == nil || result.AgreementID == "" {
			return nil
		}

		current, err := s.SubRepo.GetForUpdate(ctx, sub.ID)
		if err != nil {
			return err
		}
		// an active agreement keeps funding the subscription until the new one activates
		if current.ExternalAgreementID != nil && current.IsActive() {
			return nil
		}
		current.ExternalAgreementID = lo.ToPtr(result.AgreementID)
		current.Provider = lo.ToPtr(providerName)
		current.Touch(ctx, s.now())
		return s.SubRepo.Update(ctx, current)
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.CheckoutsTotal.WithLabelValues(string(providerName), string(req.Mode), metrics.OutcomeSuccess).Inc()
	s.Logger.Infow("checkout created",
		"payment_id", pay.ID,
		"account_id", req.AccountID,
		"provider", providerName,
		"mode", req.Mode,
		"plan", req.Plan,
		"amount", amount.String(),
		"currency", currency)

	resp := &dto.CheckoutResponse{
		PaymentID:     pay.ID,
		Provider:      providerName,
		InvoiceNumber: pay.InvoiceNumber,
		Amount:        pay.Amount,
		Currency:      pay.Currency,
		RedirectURL:   lo.FromPtr(pay.CheckoutURL),
		ExpiresAt:     result.ExpiresAt,
	}
	if sub != nil {
		resp.SubscriptionID = sub.ID
	}
	return resp, nil
}

// ensureSubscription returns the account's subscription, creating a TRIAL placeholder when
// there is none. It runs in the caller's transaction.
func (s *checkoutService) ensureSubscription(ctx context.Context, accountID string) (*subscription.Subscription, error) {
	sub, err := s.SubRepo.GetByAccountIDForUpdate(ctx, accountID)
	if err == nil {
		return sub, nil
	}
	if !ierr.IsNotFound(err) {
		return nil, err
	}

	sub, err = subscription.NewTrial(ctx, accountID, s.now(), s.Config.Billing.TrialDays)
	if err != nil {
		return nil, err
	}
	sub.Version = 1
	if err := s.SubRepo.Create(ctx, sub); err != nil {
		return nil, err
	}
	if err := s.SubRepo.CreateHistory(ctx, subscription.NewHistory(ctx, sub,
		types.SubscriptionActionTrialStarted, "", "created at checkout", nil)); err != nil {
		return nil, err
	}
	return sub, nil
}

func checkoutPeriod(req dto.CheckoutRequest) (types.BillingPeriod, error) {
	switch req.Plan {
	case types.SubscriptionPlanRecurringMonthly, types.SubscriptionPlanRecurringYearly:
		implied := req.Plan.DefaultPeriod()
		if req.Period != "" && req.Period != implied {
			return "", ierr.NewError("period does not match plan").
				WithHintf("Plan %s is billed %s", req.Plan, implied).
				WithReportableDetails(map[string]any{
					"plan":   req.Plan,
					"period": req.Period,
				}).
				Mark(ierr.ErrValidation)
		}
		return implied, nil
	default:
		return lo.CoalesceOrEmpty(req.Period, types.BillingPeriodMonthly), nil
	}
}

// checkoutAmount uses the explicit price for custom and plan-less charges and the
// catalog for everything else
func (s *checkoutService) checkoutAmount(ctx context.Context, req dto.CheckoutRequest, provider types.PaymentProvider, period types.BillingPeriod, currency string) (decimal.Decimal, error) {
	if req.Plan == "" || req.Plan == types.SubscriptionPlanEnterpriseCustom {
		return *req.Price, nil
	}
	bp, err := s.catalog.Resolve(ctx, provider, req.Plan, period, currency)
	if err != nil {
		return decimal.Zero, err
	}
	return bp.Price, nil
}

func checkoutDescription(req dto.CheckoutRequest, period types.BillingPeriod) string {
	if req.Description != "" {
		return req.Description
	}
	if req.Plan == "" {
		return "One-time charge"
	}
	return fmt.Sprintf("%s (%s)", req.Plan, period)
}
