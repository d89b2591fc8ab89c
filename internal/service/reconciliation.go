package service

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/flexprice/recurring/internal/api/dto"
	"github.com/flexprice/recurring/internal/domain/payment"
	"github.com/flexprice/recurring/internal/domain/subscription"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/idempotency"
	"github.com/flexprice/recurring/internal/integration/base"
	"github.com/flexprice/recurring/internal/metrics"
	"github.com/flexprice/recurring/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// ReconciliationService applies provider events and operator resolutions to the ledger
type ReconciliationService interface {
	// HandleWebhook verifies, deduplicates and reconciles one provider delivery. Only
	// malformed payloads and bad signatures come back as errors; every other failure is
	// logged and acknowledged so the provider does not retry forever.
	HandleWebhook(ctx context.Context, provider types.PaymentProvider, headers http.Header, payload []byte) (*dto.WebhookResult, error)

	// Reconcile applies a normalized event and returns its outcome
	Reconcile(ctx context.Context, event *base.NormalizedEvent) (string, error)

	// ApproveManual marks an org invoice awaiting approval as paid and activates its seats
	ApproveManual(ctx context.Context, req dto.ApproveManualPaymentRequest) (*dto.PaymentResponse, error)

	// FailManual marks a pending manual payment as failed
	FailManual(ctx context.Context, req dto.FailManualPaymentRequest) (*dto.PaymentResponse, error)
}

type reconciliationService struct {
	ServiceParams
	orgBilling OrgBillingService
}

func NewReconciliationService(params ServiceParams, orgBilling OrgBillingService) ReconciliationService {
	return &reconciliationService{
		ServiceParams: params,
		orgBilling:    orgBilling,
	}
}

// reconcileResult collects what a reconciliation transaction decided. Notices, the seat
// fan-out and agreement cancellations run only after the transaction commits.
type reconcileResult struct {
	outcome    string
	notices    notices
	fanOut     string
	superseded []agreementRef
}

// agreementRef names a provider billing agreement
type agreementRef struct {
	provider    types.PaymentProvider
	agreementID string
}

func (s *reconciliationService) HandleWebhook(ctx context.Context, providerName types.PaymentProvider, headers http.Header, payload []byte) (*dto.WebhookResult, error) {
	start := time.Now()

	provider, err := s.Providers.GetProvider(providerName)
	if err != nil {
		return nil, err
	}

	event, err := provider.NormalizeWebhook(ctx, headers, payload)
	if err != nil {
		if ierr.IsValidation(err) || ierr.IsPermissionDenied(err) {
			s.Metrics.WebhooksTotal.WithLabelValues(string(providerName), "", metrics.OutcomeRejected).Inc()
			s.Logger.Warnw("rejected webhook",
				"error", err,
				"provider", providerName)
			return nil, err
		}
		s.Metrics.WebhooksTotal.WithLabelValues(string(providerName), "", metrics.OutcomeFailed).Inc()
		s.Logger.Errorw("failed to normalize webhook",
			"error", err,
			"provider", providerName,
			"payload", string(payload))
		s.Sentry.CaptureWebhookFailure(ctx, string(providerName), "", "", err)
		return &dto.WebhookResult{Provider: providerName, Outcome: metrics.OutcomeFailed}, nil
	}

	result := &dto.WebhookResult{
		Provider:  providerName,
		EventType: event.Type,
	}
	record := func(outcome string) (*dto.WebhookResult, error) {
		result.Outcome = outcome
		s.Metrics.WebhooksTotal.WithLabelValues(string(providerName), string(event.Type), outcome).Inc()
		s.Metrics.ReconcileDuration.WithLabelValues(string(providerName)).Observe(time.Since(start).Seconds())
		return result, nil
	}

	if !event.Type.IsKnown() {
		s.Logger.Debugw("ignoring unmapped provider event",
			"provider", providerName,
			"native_type", event.NativeType,
			"external_id", event.ExternalID)
		return record(metrics.OutcomeIgnored)
	}

	key := idempotency.NewGenerator().GenerateKey(idempotency.ScopeWebhookEvent, map[string]interface{}{
		"event": event.IdempotencyKey(),
	})
	claimed, err := s.ReplayGuard.Claim(ctx, key)
	if err != nil {
		// terminal payments still make the redelivery a no-op
		s.Logger.Warnw("replay guard unavailable, reconciling without it",
			"error", err,
			"provider", providerName,
			"external_id", event.ExternalID)
		claimed = true
	}
	if !claimed {
		s.Logger.Infow("skipping replayed webhook",
			"provider", providerName,
			"event_type", event.Type,
			"external_id", event.ExternalID)
		return record(metrics.OutcomeReplayed)
	}

	occurredAt := lo.Ternary(event.OccurredAt.IsZero(), start, event.OccurredAt)
	span, spanCtx := s.Sentry.MonitorWebhookProcessing(ctx, string(event.Type), occurredAt, map[string]interface{}{
		"provider":     string(providerName),
		"external_id":  event.ExternalID,
		"agreement_id": event.AgreementID,
	})
	outcome, err := s.Reconcile(spanCtx, event)
	if span != nil {
		span.SetData("outcome", lo.Ternary(err != nil, metrics.OutcomeFailed, outcome))
		span.Finish()
	}
	if err != nil {
		if releaseErr := s.ReplayGuard.Release(ctx, key); releaseErr != nil {
			s.Logger.Warnw("failed to release webhook claim", "error", releaseErr, "key", key)
		}
		s.Logger.Errorw("failed to reconcile webhook",
			"error", err,
			"provider", providerName,
			"event_type", event.Type,
			"external_id", event.ExternalID,
			"agreement_id", event.AgreementID,
			"payload", string(event.Raw))
		s.Sentry.CaptureWebhookFailure(ctx, string(providerName), string(event.Type), event.ExternalID, err)
		return record(metrics.OutcomeFailed)
	}
	return record(outcome)
}

func (s *reconciliationService) Reconcile(ctx context.Context, event *base.NormalizedEvent) (string, error) {
	if event == nil || !event.Type.IsKnown() {
		return metrics.OutcomeIgnored, nil
	}

	res := &reconcileResult{outcome: metrics.OutcomeApplied}
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		switch {
		case event.Type.Canonical() == types.EventRecurringDeactivated:
			return s.deactivate(ctx, event, res)
		case event.Type.IsCycle():
			return s.applyCycle(ctx, event, res)
		default:
			return s.applyCharge(ctx, event, res)
		}
	})
	if err != nil {
		return "", err
	}

	s.Logger.Infow("reconciled provider event",
		"provider", event.Provider,
		"event_type", event.Type,
		"external_id", event.ExternalID,
		"agreement_id", event.AgreementID,
		"outcome", res.outcome)

	s.dispatch(ctx, res.notices)
	if res.fanOut != "" {
		if _, err := s.activateSeats(ctx, res.fanOut); err != nil {
			s.Logger.Errorw("failed to activate org invoice seats",
				"error", err,
				"payment_id", res.fanOut)
			s.Sentry.CaptureException(err)
		}
	}
	for _, ref := range lo.Uniq(res.superseded) {
		s.cancelSuperseded(ctx, ref)
	}
	return res.outcome, nil
}

// cancelSuperseded stops an agreement the subscription no longer bills through. A failure
// is reported and left to the operator, the ledger already points at the new agreement.
func (s *reconciliationService) cancelSuperseded(ctx context.Context, ref agreementRef) {
	provider, err := s.Providers.GetProvider(ref.provider)
	if err == nil {
		err = provider.CancelRecurring(ctx, ref.agreementID)
	}
	if err != nil {
		s.Logger.Errorw("failed to cancel superseded agreement",
			"error", err,
			"provider", ref.provider,
			"agreement_id", ref.agreementID)
		s.Sentry.CaptureException(err)
		return
	}
	s.Logger.Infow("cancelled superseded agreement",
		"provider", ref.provider,
		"agreement_id", ref.agreementID)
}

// applyCharge settles the payment the event references. Lock order is payment, then
// subscription.
func (s *reconciliationService) applyCharge(ctx context.Context, event *base.NormalizedEvent, res *reconcileResult) error {
	pay, err := s.PaymentRepo.GetByExternalIDForUpdate(ctx, event.Provider, event.ExternalID)
	if err != nil {
		return err
	}
	if pay.IsTerminal() {
		res.outcome = metrics.OutcomeNoop
		return nil
	}
	return s.settle(ctx, pay, event, event.AgreementID, res)
}

// settle moves a pending payment to the event's terminal status and applies the
// consequences to its subscription. Runs in the caller's transaction.
func (s *reconciliationService) settle(ctx context.Context, pay *payment.Payment, event *base.NormalizedEvent, agreementID string, res *reconcileResult) error {
	now := s.now()
	pay.Metadata.AppendProviderPayload(event.Raw)

	switch {
	case event.Type.IsSuccess():
		pay.MarkPaid(now)
	case event.Type.IsExpiry():
		pay.MarkFailed(now, types.FailureReasonExpired)
	default:
		pay.MarkFailed(now, lo.CoalesceOrEmpty(event.FailureReason, event.NativeType, string(event.Type)))
	}
	if simple := pay.Metadata.Simple; simple != nil && simple.CheckoutMode == types.CheckoutModeSubscription && agreementID != "" {
		simple.AgreementID = agreementID
	}
	pay.Touch(ctx, now)
	if err := s.PaymentRepo.Update(ctx, pay); err != nil {
		return err
	}

	if pay.IsOrgInvoice() {
		if event.Type.IsSuccess() {
			res.fanOut = pay.ID
		} else {
			res.notices.add(pay.AccountID, types.NotificationPaymentFailed, paymentPayload(pay))
		}
		return nil
	}

	// an abandoned checkout leaves the subscription as it was
	if event.Type.IsExpiry() {
		return nil
	}
	if event.Type.IsFailure() {
		res.notices.add(pay.AccountID, types.NotificationPaymentFailed, paymentPayload(pay))
	}
	if pay.SubscriptionID == nil {
		return nil
	}

	sub, err := s.SubRepo.GetForUpdate(ctx, *pay.SubscriptionID)
	if err != nil {
		return err
	}
	if event.Type.IsFailure() {
		return s.applyFailure(ctx, sub, pay, res)
	}

	details := lo.FromPtr(pay.Metadata.Simple)
	return s.activate(ctx, sub, pay, activation{
		plan:        details.Plan,
		period:      details.Period,
		recurring:   details.CheckoutMode == types.CheckoutModeSubscription,
		agreementID: lo.CoalesceOrEmpty(agreementID, details.AgreementID),
		eventType:   event.Type,
	}, res)
}

type activation struct {
	plan        types.SubscriptionPlan
	period      types.BillingPeriod
	recurring   bool
	agreementID string
	eventType   types.ProviderEventType
}

// activate extends the subscription by one period for a paid payment
func (s *reconciliationService) activate(ctx context.Context, sub *subscription.Subscription, pay *payment.Payment, a activation, res *reconcileResult) error {
	now := s.now()
	oldStatus := sub.Status

	if err := sub.Renew(a.plan, a.period, now, s.Config.Billing.TrialDays); err != nil {
		return err
	}
	if sub.Plan == types.SubscriptionPlanEnterpriseCustom && a.plan == types.SubscriptionPlanEnterpriseCustom {
		sub.CustomPrice = decimal.NewNullDecimal(pay.Amount)
		sub.CustomCurrency = lo.ToPtr(pay.Currency)
	}
	if a.recurring {
		sub.AutoRenew = true
		if a.agreementID != "" {
			if sub.ExternalAgreementID != nil && sub.Provider != nil && *sub.ExternalAgreementID != a.agreementID {
				res.superseded = append(res.superseded, agreementRef{
					provider:    *sub.Provider,
					agreementID: *sub.ExternalAgreementID,
				})
			}
			sub.ExternalAgreementID = lo.ToPtr(a.agreementID)
			sub.Provider = lo.ToPtr(pay.Provider)
		}
	}
	sub.Touch(ctx, now)
	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return err
	}

	action := types.SubscriptionActionRenewed
	if oldStatus != types.SubscriptionStatusActive {
		action = types.SubscriptionActionActivated
	}
	if err := s.SubRepo.CreateHistory(ctx, subscription.NewHistory(ctx, sub, action, oldStatus,
		"payment "+pay.InvoiceNumber+" paid", types.Metadata{
			"payment_id": pay.ID,
			"event_type": string(a.eventType),
		})); err != nil {
		return err
	}

	res.notices.add(sub.AccountID, types.NotificationSubscriptionActive, map[string]any{
		"subscription_id":    sub.ID,
		"plan":               sub.Plan,
		"current_period_end": sub.CurrentPeriodEnd,
		"payment_id":         pay.ID,
	})
	return nil
}

// applyFailure expires the subscription once enough payments failed inside the rolling
// window. Trials and closed subscriptions are left alone.
func (s *reconciliationService) applyFailure(ctx context.Context, sub *subscription.Subscription, pay *payment.Payment, res *reconcileResult) error {
	if sub.IsTrial() || sub.IsClosed() {
		return nil
	}

	now := s.now()
	failed, err := s.PaymentRepo.CountFailedSince(ctx, sub.ID, now.Add(-s.Config.Billing.SuspensionWindow))
	if err != nil {
		return err
	}
	if failed < s.Config.Billing.SuspensionThreshold {
		return nil
	}

	oldStatus := sub.Status
	sub.Expire(now)
	sub.Touch(ctx, now)
	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return err
	}
	if err := s.SubRepo.CreateHistory(ctx, subscription.NewHistory(ctx, sub, types.SubscriptionActionSuspended, oldStatus,
		"repeated payment failures", types.Metadata{
			"payment_id":   pay.ID,
			"failed_count": strconv.Itoa(failed),
		})); err != nil {
		return err
	}

	s.Metrics.SubscriptionsExpired.WithLabelValues("suspended").Inc()
	s.Logger.Warnw("suspended subscription after repeated payment failures",
		"subscription_id", sub.ID,
		"account_id", sub.AccountID,
		"failed_count", failed)
	res.notices.add(sub.AccountID, types.NotificationSubscriptionSuspend, map[string]any{
		"subscription_id": sub.ID,
		"failed_count":    failed,
	})
	return nil
}

// applyCycle records one billing cycle of a recurring agreement. The first cycle settles
// the checkout payment that created the agreement; later cycles get their own payment.
func (s *reconciliationService) applyCycle(ctx context.Context, event *base.NormalizedEvent, res *reconcileResult) error {
	existing, err := s.PaymentRepo.GetByExternalIDForUpdate(ctx, event.Provider, event.ExternalID)
	if err == nil {
		if existing.IsTerminal() {
			res.outcome = metrics.OutcomeNoop
			return nil
		}
		return s.settle(ctx, existing, event, event.AgreementID, res)
	}
	if !ierr.IsNotFound(err) {
		return err
	}

	if event.AgreementID == "" {
		return ierr.NewError("cycle event without agreement id").
			WithHint("Recurring cycle event does not reference an agreement").
			WithReportableDetails(map[string]any{
				"provider":    event.Provider,
				"external_id": event.ExternalID,
			}).
			Mark(ierr.ErrValidation)
	}

	anchor, err := s.findAnchor(ctx, event.Provider, event.AgreementID)
	if err != nil {
		return err
	}
	if anchor != nil && anchor.Metadata.Simple != nil {
		if anchor.Metadata.Simple.FirstCycleID == event.ExternalID {
			res.outcome = metrics.OutcomeNoop
			return nil
		}
		if !anchor.IsTerminal() {
			anchor.Metadata.Simple.FirstCycleID = event.ExternalID
			return s.settle(ctx, anchor, event, event.AgreementID, res)
		}
	}

	sub, err := s.subscriptionForAgreement(ctx, event.Provider, event.AgreementID, anchor)
	if err != nil {
		return err
	}
	replaced := sub.ExternalAgreementID != nil && *sub.ExternalAgreementID != event.AgreementID

	now := s.now()
	cycle := &payment.Payment{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		AccountID:      sub.AccountID,
		SubscriptionID: lo.ToPtr(sub.ID),
		LabelID:        sub.LabelID,
		Amount:         cycleAmount(event, anchor),
		Currency:       cycleCurrency(event, anchor, sub),
		Provider:       event.Provider,
		Status:         types.PaymentStatusPending,
		ExternalID:     lo.ToPtr(event.ExternalID),
		InvoiceNumber:  types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_INVOICE),
		Metadata: payment.NewCycleMetadata(payment.CycleDetails{
			AgreementID: event.AgreementID,
			EventType:   event.Type,
		}),
		Version:   1,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	if anchor != nil {
		cycle.Metadata.Cycle.AnchorPaymentID = anchor.ID
	}
	// a replaced agreement's cycle is kept for audit but neither funds the subscription
	// nor counts toward its failures
	if replaced {
		cycle.SubscriptionID = nil
	}
	cycle.Metadata.AppendProviderPayload(event.Raw)
	if event.Type.IsSuccess() {
		cycle.MarkPaid(now)
	} else {
		cycle.MarkFailed(now, lo.CoalesceOrEmpty(event.FailureReason, event.NativeType, string(event.Type)))
	}
	if err := s.PaymentRepo.Create(ctx, cycle); err != nil {
		return err
	}

	if replaced {
		s.Logger.Warnw("cycle on a replaced agreement, cancelling it",
			"subscription_id", sub.ID,
			"agreement_id", event.AgreementID,
			"current_agreement_id", lo.FromPtr(sub.ExternalAgreementID),
			"payment_id", cycle.ID)
		res.outcome = metrics.OutcomeNoop
		res.superseded = append(res.superseded, agreementRef{provider: event.Provider, agreementID: event.AgreementID})
		return nil
	}

	if event.Type.IsFailure() {
		res.notices.add(sub.AccountID, types.NotificationPaymentFailed, paymentPayload(cycle))
		return s.applyFailure(ctx, sub, cycle, res)
	}

	plan, period := sub.Plan, sub.BillingPeriod
	if anchor != nil && anchor.Metadata.Simple != nil {
		plan = lo.CoalesceOrEmpty(anchor.Metadata.Simple.Plan, plan)
		period = lo.CoalesceOrEmpty(anchor.Metadata.Simple.Period, period)
	}
	return s.activate(ctx, sub, cycle, activation{
		plan:        plan,
		period:      period,
		recurring:   true,
		agreementID: event.AgreementID,
		eventType:   event.Type,
	}, res)
}

// findAnchor returns the checkout payment that created the agreement, or nil. Providers
// that reference the checkout by the agreement id are matched directly, the others through
// the agreement recorded on the checkout payment. The lookup does not go through the
// subscription, which may since have moved to another agreement.
func (s *reconciliationService) findAnchor(ctx context.Context, provider types.PaymentProvider, agreementID string) (*payment.Payment, error) {
	anchor, err := s.PaymentRepo.GetByExternalIDForUpdate(ctx, provider, agreementID)
	if err == nil || !ierr.IsNotFound(err) {
		return anchor, err
	}

	filter := types.NewPaymentFilter()
	filter.QueryFilter = types.NewNoLimitQueryFilter()
	filter.Provider = provider
	filter.AgreementID = agreementID
	payments, err := s.PaymentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, nil
	}
	return s.PaymentRepo.GetForUpdate(ctx, payments[0].ID)
}

// subscriptionForAgreement locks the subscription funded by agreementID, falling back to
// the anchor payment's subscription
func (s *reconciliationService) subscriptionForAgreement(ctx context.Context, provider types.PaymentProvider, agreementID string, anchor *payment.Payment) (*subscription.Subscription, error) {
	sub, err := s.SubRepo.GetByExternalAgreementID(ctx, agreementID)
	if err == nil {
		return s.SubRepo.GetForUpdate(ctx, sub.ID)
	}
	if !ierr.IsNotFound(err) {
		return nil, err
	}
	if anchor != nil && anchor.SubscriptionID != nil {
		return s.SubRepo.GetForUpdate(ctx, *anchor.SubscriptionID)
	}
	return nil, ierr.NewError("no subscription for agreement").
		WithHint("Recurring agreement is not linked to any subscription").
		WithReportableDetails(map[string]any{
			"provider":     provider,
			"agreement_id": agreementID,
		}).
		Mark(ierr.ErrNotFound)
}

// deactivate expires the subscription whose agreement the provider stopped
func (s *reconciliationService) deactivate(ctx context.Context, event *base.NormalizedEvent, res *reconcileResult) error {
	agreementID := lo.CoalesceOrEmpty(event.AgreementID, event.ExternalID)

	anchor, err := s.findAnchor(ctx, event.Provider, agreementID)
	if err != nil {
		return err
	}
	sub, err := s.subscriptionForAgreement(ctx, event.Provider, agreementID, anchor)
	if err != nil {
		return err
	}

	// the subscription has since moved to another agreement
	if sub.ExternalAgreementID != nil && *sub.ExternalAgreementID != agreementID {
		res.outcome = metrics.OutcomeNoop
		return nil
	}
	if sub.IsClosed() {
		res.outcome = metrics.OutcomeNoop
		return nil
	}

	now := s.now()
	oldStatus := sub.Status
	sub.Expire(now)
	sub.Touch(ctx, now)
	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return err
	}
	if err := s.SubRepo.CreateHistory(ctx, subscription.NewHistory(ctx, sub, types.SubscriptionActionDeactivated, oldStatus,
		"provider stopped the recurring agreement", types.Metadata{
			"agreement_id": agreementID,
			"native_type":  event.NativeType,
		})); err != nil {
		return err
	}

	s.Metrics.SubscriptionsExpired.WithLabelValues("deactivated").Inc()
	res.notices.add(sub.AccountID, types.NotificationSubscriptionExpired, map[string]any{
		"subscription_id": sub.ID,
		"reason":          "agreement stopped",
	})
	return nil
}

func (s *reconciliationService) ApproveManual(ctx context.Context, req dto.ApproveManualPaymentRequest) (*dto.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		pay, err := s.PaymentRepo.GetForUpdate(ctx, req.PaymentID)
		if err != nil {
			return err
		}
		if pay.EffectiveStatus() != types.PaymentStatusAwaitingApproval {
			return ierr.NewError("payment is not awaiting approval").
				WithHintf("Payment is %s and cannot be approved", pay.EffectiveStatus()).
				WithReportableDetails(map[string]any{
					"payment_id": pay.ID,
					"status":     pay.EffectiveStatus(),
				}).
				Mark(ierr.ErrReconcile)
		}

		now := s.now()
		details := pay.Metadata.OrgInvoice
		pay.MarkPaid(now)
		details.AwaitingApproval = false
		details.ApprovedBy = types.GetActor(ctx)
		details.ApprovedAt = &now
		details.Manual = mergeManualFields(details.Manual, req.ManualFields())
		pay.Touch(ctx, now)
		return s.PaymentRepo.Update(ctx, pay)
	})
	if err != nil {
		s.Metrics.ManualResolutions.WithLabelValues("approve", metrics.OutcomeRejected).Inc()
		return nil, err
	}
	s.Metrics.ManualResolutions.WithLabelValues("approve", metrics.OutcomeSuccess).Inc()

	s.Logger.Infow("approved manual payment",
		"payment_id", req.PaymentID,
		"approved_by", types.GetActor(ctx))

	if _, err := s.activateSeats(ctx, req.PaymentID); err != nil {
		s.Logger.Errorw("failed to activate org invoice seats",
			"error", err,
			"payment_id", req.PaymentID)
		s.Sentry.CaptureException(err)
	}

	pay, err := s.PaymentRepo.Get(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}
	return dto.NewPaymentResponse(pay), nil
}

func (s *reconciliationService) FailManual(ctx context.Context, req dto.FailManualPaymentRequest) (*dto.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		pay     *payment.Payment
		pending notices
	)
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		pay, err = s.PaymentRepo.GetForUpdate(ctx, req.PaymentID)
		if err != nil {
			return err
		}
		if pay.Provider != types.PaymentProviderManual || pay.IsTerminal() {
			return ierr.NewError("payment cannot be failed manually").
				WithHintf("Only pending manual payments can be failed, payment is %s via %s", pay.EffectiveStatus(), pay.Provider).
				WithReportableDetails(map[string]any{
					"payment_id": pay.ID,
					"status":     pay.EffectiveStatus(),
					"provider":   pay.Provider,
				}).
				Mark(ierr.ErrReconcile)
		}

		now := s.now()
		pay.MarkFailed(now, req.Reason)
		if pay.Metadata.OrgInvoice != nil {
			pay.Metadata.OrgInvoice.AwaitingApproval = false
		}
		pay.Touch(ctx, now)
		if err := s.PaymentRepo.Update(ctx, pay); err != nil {
			return err
		}
		pending.add(pay.AccountID, types.NotificationPaymentFailed, paymentPayload(pay))

		if !req.ExpireSubscriptions {
			return nil
		}
		for _, accountID := range affectedAccounts(pay) {
			sub, err := s.SubRepo.GetByAccountIDForUpdate(ctx, accountID)
			if ierr.IsNotFound(err) {
				continue
			}
			if err != nil {
				return err
			}
			if sub.IsClosed() {
				continue
			}

			oldStatus := sub.Status
			sub.Expire(now)
			sub.Touch(ctx, now)
			if err := s.SubRepo.Update(ctx, sub); err != nil {
				return err
			}
			if err := s.SubRepo.CreateHistory(ctx, subscription.NewHistory(ctx, sub, types.SubscriptionActionExpired, oldStatus,
				"manual payment failed: "+req.Reason, types.Metadata{"payment_id": pay.ID})); err != nil {
				return err
			}
			s.Metrics.SubscriptionsExpired.WithLabelValues("manual_failure").Inc()
			pending.add(sub.AccountID, types.NotificationSubscriptionExpired, map[string]any{
				"subscription_id": sub.ID,
				"reason":          "manual payment failed",
			})
		}
		return nil
	})
	if err != nil {
		s.Metrics.ManualResolutions.WithLabelValues("fail", metrics.OutcomeRejected).Inc()
		return nil, err
	}
	s.Metrics.ManualResolutions.WithLabelValues("fail", metrics.OutcomeSuccess).Inc()

	s.Logger.Infow("failed manual payment",
		"payment_id", pay.ID,
		"reason", req.Reason,
		"expire_subscriptions", req.ExpireSubscriptions,
		"actor", types.GetActor(ctx))
	s.dispatch(ctx, pending)
	return dto.NewPaymentResponse(pay), nil
}

// activateSeats fans a paid org invoice out to its seats and records the outcome on the
// payment
func (s *reconciliationService) activateSeats(ctx context.Context, paymentID string) (*dto.BulkActivationResult, error) {
	pay, err := s.PaymentRepo.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	details := pay.Metadata.OrgInvoice
	if details == nil || pay.Status != types.PaymentStatusPaid {
		return nil, ierr.NewError("payment is not a paid org invoice").
			WithHint("Only paid organization invoices activate seats").
			WithReportableDetails(map[string]any{"payment_id": paymentID}).
			Mark(ierr.ErrReconcile)
	}

	pricePerUser := lo.FromPtr(details.PricePerUser)
	if details.PricePerUser == nil {
		pricePerUser = pay.Amount.Div(decimal.NewFromInt(int64(len(details.UserIDs))))
	}

	result, err := s.orgBilling.ActivateBulk(ctx, dto.ActivateBulkRequest{
		LabelID:      details.LabelID,
		UserIDs:      details.UserIDs,
		PricePerUser: pricePerUser,
		Currency:     pay.Currency,
		Period:       details.Period,
		PaymentID:    pay.ID,
	})
	if err != nil {
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.PaymentRepo.GetForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		current.Metadata.OrgInvoice.ActivatedCount = result.Count
		current.Metadata.OrgInvoice.FailedUserIDs = result.FailedAccountIDs()
		current.Touch(ctx, s.now())
		return s.PaymentRepo.Update(ctx, current)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// mergeManualFields overlays the non-empty fields entered at approval on the ones entered
// when the invoice was created
func mergeManualFields(current, update *payment.ManualPaymentFields) *payment.ManualPaymentFields {
	if update == nil {
		return current
	}
	if current == nil {
		return update
	}
	return &payment.ManualPaymentFields{
		Reference: lo.CoalesceOrEmpty(update.Reference, current.Reference),
		PayerName: lo.CoalesceOrEmpty(update.PayerName, current.PayerName),
		Notes:     lo.CoalesceOrEmpty(update.Notes, current.Notes),
		PaidOn:    lo.Ternary(update.PaidOn != nil, update.PaidOn, current.PaidOn),
	}
}

// affectedAccounts lists the accounts whose subscriptions a payment funds
func affectedAccounts(pay *payment.Payment) []string {
	if pay.Metadata.OrgInvoice != nil {
		return pay.Metadata.OrgInvoice.UserIDs
	}
	return []string{pay.AccountID}
}

func paymentPayload(pay *payment.Payment) map[string]any {
	return map[string]any{
		"payment_id":     pay.ID,
		"invoice_number": pay.InvoiceNumber,
		"amount":         pay.Amount.String(),
		"currency":       pay.Currency,
		"symbol":         types.GetCurrencySymbol(pay.Currency),
		"status":         pay.Status,
		"failure_reason": lo.FromPtr(pay.FailureReason),
	}
}

func cycleAmount(event *base.NormalizedEvent, anchor *payment.Payment) decimal.Decimal {
	if !event.Amount.IsZero() || anchor == nil {
		return event.Amount
	}
	return anchor.Amount
}

func cycleCurrency(event *base.NormalizedEvent, anchor *payment.Payment, sub *subscription.Subscription) string {
	if event.Currency != "" {
		return types.NormalizeCurrency(event.Currency)
	}
	if anchor != nil {
		return anchor.Currency
	}
	return lo.FromPtr(sub.CustomCurrency)
}
