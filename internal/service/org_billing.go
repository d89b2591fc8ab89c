package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/flexprice/recurring/internal/api/dto"
	"github.com/flexprice/recurring/internal/domain/label"
	"github.com/flexprice/recurring/internal/domain/payment"
	"github.com/flexprice/recurring/internal/domain/subscription"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/metrics"
	"github.com/flexprice/recurring/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
)

// OrgBillingService bills the seats of an enterprise label with one invoice
type OrgBillingService interface {
	CreateOrgInvoice(ctx context.Context, req dto.CreateOrgInvoiceRequest) (*dto.OrgInvoiceResponse, error)
	// RenewOrgInvoice bills the next period for the seats of a paid org invoice
	RenewOrgInvoice(ctx context.Context, req dto.RenewOrgInvoiceRequest) (*dto.OrgInvoiceResponse, error)
	// ActivateBulk upserts an ENTERPRISE_CUSTOM subscription for every seat. Each seat is
	// written in its own transaction, a failing seat never rolls back the others.
	ActivateBulk(ctx context.Context, req dto.ActivateBulkRequest) (*dto.BulkActivationResult, error)
}

type orgBillingService struct {
	ServiceParams
}

func NewOrgBillingService(params ServiceParams) OrgBillingService {
	return &orgBillingService{ServiceParams: params}
}

// orgInvoice is everything needed to issue one org invoice
type orgInvoice struct {
	label        *label.EnterpriseLabel
	userIDs      []string
	total        decimal.Decimal
	pricePerUser decimal.Decimal
	currency     string
	period       types.BillingPeriod
	provider     types.PaymentProvider
	manual       *payment.ManualPaymentFields
	renewedFrom  string
	description  string
}

func (s *orgBillingService) CreateOrgInvoice(ctx context.Context, req dto.CreateOrgInvoiceRequest) (*dto.OrgInvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	l, err := s.LabelRepo.Get(ctx, req.LabelID)
	if err != nil {
		return nil, err
	}

	currency := types.NormalizeCurrency(lo.CoalesceOrEmpty(req.Currency, s.Config.Billing.DefaultCurrency))
	total, perUser := req.Amounts()
	return s.issue(ctx, orgInvoice{
		label:        l,
		userIDs:      req.UserIDs,
		total:        total,
		pricePerUser: perUser,
		currency:     currency,
		period:       lo.CoalesceOrEmpty(req.Period, types.BillingPeriodMonthly),
		provider:     orgProvider(req.Provider, req.Manual, currency),
		manual:       req.Manual,
		description:  req.Description,
	})
}

func (s *orgBillingService) RenewOrgInvoice(ctx context.Context, req dto.RenewOrgInvoiceRequest) (*dto.OrgInvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	prior, err := s.PaymentRepo.Get(ctx, req.PriorPaymentID)
	if err != nil {
		return nil, err
	}
	if !prior.IsOrgInvoice() || prior.Status != types.PaymentStatusPaid {
		return nil, ierr.NewError("only paid org invoices can be renewed").
			WithHintf("Payment is %s and cannot be renewed", prior.EffectiveStatus()).
			WithReportableDetails(map[string]any{
				"payment_id": prior.ID,
				"status":     prior.EffectiveStatus(),
				"mode":       prior.Metadata.Mode,
			}).
			Mark(ierr.ErrReconcile)
	}
	details := prior.Metadata.OrgInvoice

	l, err := s.LabelRepo.Get(ctx, details.LabelID)
	if err != nil {
		return nil, err
	}

	userIDs := details.UserIDs
	if req.SyncMembers {
		members, err := s.LabelRepo.ListMembers(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		userIDs = lo.Map(members, func(m *label.Member, _ int) string { return m.AccountID })
		if len(userIDs) == 0 {
			return nil, ierr.NewError("label has no members").
				WithHint("The label has no members to bill").
				WithReportableDetails(map[string]any{"label_id": l.ID}).
				Mark(ierr.ErrValidation)
		}
	}

	perUser := lo.FromPtr(details.PricePerUser)
	if details.PricePerUser == nil {
		perUser = prior.Amount.Div(decimal.NewFromInt(int64(len(details.UserIDs))))
	}

	provider := prior.Provider
	if req.Provider != "" || req.Manual != nil {
		provider = orgProvider(req.Provider, req.Manual, prior.Currency)
	}
	manual := req.Manual
	if manual == nil && provider == types.PaymentProviderManual {
		manual = &payment.ManualPaymentFields{}
	}

	return s.issue(ctx, orgInvoice{
		label:        l,
		userIDs:      userIDs,
		total:        perUser.Mul(decimal.NewFromInt(int64(len(userIDs)))),
		pricePerUser: perUser,
		currency:     prior.Currency,
		period:       details.Period,
		provider:     provider,
		manual:       manual,
		renewedFrom:  prior.ID,
	})
}

// orgProvider sends manual invoices to the offline provider and everything else through
// the regular provider selection
func orgProvider(preference types.PaymentProvider, manual *payment.ManualPaymentFields, currency string) types.PaymentProvider {
	if manual != nil && preference == "" {
		return types.PaymentProviderManual
	}
	return SelectProvider(preference, currency)
}

// issue records the PENDING org invoice and, unless it is manual, creates the charge at
// the provider. Manual invoices wait for an operator instead.
func (s *orgBillingService) issue(ctx context.Context, inv orgInvoice) (*dto.OrgInvoiceResponse, error) {
	isManual := inv.provider == types.PaymentProviderManual

	provider, err := s.configuredProvider(inv.provider)
	if err != nil {
		return nil, err
	}

	pay := &payment.Payment{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		AccountID:     types.GetActor(ctx),
		LabelID:       lo.ToPtr(inv.label.ID),
		Amount:        inv.total,
		Currency:      inv.currency,
		Provider:      inv.provider,
		Status:        types.PaymentStatusPending,
		InvoiceNumber: types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_INVOICE),
		Metadata: payment.NewOrgInvoiceMetadata(payment.OrgInvoiceDetails{
			LabelID:          inv.label.ID,
			UserIDs:          inv.userIDs,
			PricePerUser:     lo.ToPtr(inv.pricePerUser),
			Period:           inv.period,
			AwaitingApproval: isManual,
			Manual:           inv.manual,
			RenewedFrom:      inv.renewedFrom,
		}),
		Version:   1,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.LabelRepo.AddMembers(ctx, inv.label.ID, inv.userIDs); err != nil {
			return err
		}
		return s.PaymentRepo.Create(ctx, pay)
	})
	if err != nil {
		return nil, err
	}

	if isManual {
		s.Logger.Infow("created manual org invoice awaiting approval",
			"payment_id", pay.ID,
			"label_id", inv.label.ID,
			"seats", len(inv.userIDs),
			"amount", pay.Amount.String(),
			"currency", pay.Currency,
			"renewed_from", inv.renewedFrom)
		return &dto.OrgInvoiceResponse{Payment: dto.NewPaymentResponse(pay)}, nil
	}

	result, err := s.createAtProvider(ctx, provider, chargeRequest{
		payment:     pay,
		period:      inv.period,
		description: lo.CoalesceOrEmpty(inv.description, fmt.Sprintf("%s: %d seats (%s)", inv.label.Name, len(inv.userIDs), inv.period)),
		metadata: map[string]string{
			"mode":     string(types.PaymentModeOrgInvoice),
			"label_id": inv.label.ID,
		},
	})
	if err != nil {
		s.Metrics.CheckoutsTotal.WithLabelValues(string(inv.provider), string(types.PaymentModeOrgInvoice), metrics.OutcomeFailed).Inc()
		s.Logger.Errorw("provider org invoice failed, payment left pending",
			"error", err,
			"payment_id", pay.ID,
			"label_id", inv.label.ID,
			"provider", inv.provider)
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		pay, err = s.recordProviderResult(ctx, pay.ID, result)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.CheckoutsTotal.WithLabelValues(string(inv.provider), string(types.PaymentModeOrgInvoice), metrics.OutcomeSuccess).Inc()
	s.Logger.Infow("created org invoice",
		"payment_id", pay.ID,
		"label_id", inv.label.ID,
		"seats", len(inv.userIDs),
		"provider", inv.provider,
		"amount", pay.Amount.String(),
		"currency", pay.Currency,
		"renewed_from", inv.renewedFrom)

	return &dto.OrgInvoiceResponse{
		Payment:     dto.NewPaymentResponse(pay),
		RedirectURL: lo.FromPtr(pay.CheckoutURL),
	}, nil
}

func (s *orgBillingService) ActivateBulk(ctx context.Context, req dto.ActivateBulkRequest) (*dto.BulkActivationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.LabelRepo.Get(ctx, req.LabelID); err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		result = &dto.BulkActivationResult{Failures: []dto.SeatFailure{}}
	)
	p := pool.New().WithMaxGoroutines(max(s.Config.Billing.BulkActivationWorkers, 1))
	for _, accountID := range req.UserIDs {
		p.Go(func() {
			var (
				pc  panics.Catcher
				err error
			)
			pc.Try(func() { err = s.activateSeat(ctx, accountID, req) })
			if r := pc.Recovered(); r != nil {
				err = r.AsError()
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.Metrics.SeatActivationsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
				s.Logger.Errorw("failed to activate seat",
					"error", err,
					"account_id", accountID,
					"label_id", req.LabelID,
					"payment_id", req.PaymentID)
				result.Failures = append(result.Failures, dto.SeatFailure{AccountID: accountID, Error: err.Error()})
				return
			}
			s.Metrics.SeatActivationsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
			result.Count++
		})
	}
	p.Wait()

	s.Logger.Infow("activated label seats",
		"label_id", req.LabelID,
		"payment_id", req.PaymentID,
		"activated", result.Count,
		"failed", len(result.Failures))
	return result, nil
}

// activateSeat creates or extends one account's ENTERPRISE_CUSTOM subscription
func (s *orgBillingService) activateSeat(ctx context.Context, accountID string, req dto.ActivateBulkRequest) error {
	var pending notices
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		now := s.now()
		sub, err := s.SubRepo.GetByAccountIDForUpdate(ctx, accountID)
		created := ierr.IsNotFound(err)
		if err != nil && !created {
			return err
		}

		var oldStatus types.SubscriptionStatus
		if created {
			sub = &subscription.Subscription{
				ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
				AccountID:     accountID,
				Plan:          types.SubscriptionPlanEnterpriseCustom,
				BillingPeriod: req.Period,
				StartedAt:     now,
				Version:       1,
				BaseModel:     types.GetDefaultBaseModel(ctx),
			}
		} else {
			oldStatus = sub.Status
		}

		if err := sub.Renew(types.SubscriptionPlanEnterpriseCustom, req.Period, now, s.Config.Billing.TrialDays); err != nil {
			return err
		}
		sub.CustomPrice = decimal.NewNullDecimal(req.PricePerUser)
		sub.CustomCurrency = lo.ToPtr(types.NormalizeCurrency(req.Currency))
		sub.LabelID = lo.ToPtr(req.LabelID)
		sub.Touch(ctx, now)

		if created {
			err = s.SubRepo.Create(ctx, sub)
		} else {
			err = s.SubRepo.Update(ctx, sub)
		}
		if err != nil {
			return err
		}

		if err := s.SubRepo.CreateHistory(ctx, subscription.NewHistory(ctx, sub, types.SubscriptionActionBulkActivate, oldStatus,
			"activated through enterprise label", types.Metadata{
				"label_id":   req.LabelID,
				"payment_id": req.PaymentID,
			})); err != nil {
			return err
		}

		pending.add(accountID, types.NotificationSubscriptionActive, map[string]any{
			"subscription_id":    sub.ID,
			"plan":               sub.Plan,
			"current_period_end": sub.CurrentPeriodEnd,
			"payment_id":         req.PaymentID,
		})
		return nil
	})
	if err != nil {
		return err
	}
	s.dispatch(ctx, pending)
	return nil
}
