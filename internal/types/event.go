package types

// ProviderEventType is the closed set of normalized provider events
type ProviderEventType string

const (
	EventChargePaid              ProviderEventType = "charge.paid"
	EventChargeFailed            ProviderEventType = "charge.failed"
	EventChargeExpired           ProviderEventType = "charge.expired"
	EventRecurringActivated      ProviderEventType = "recurring.activated"
	EventRecurringCycleSucceeded ProviderEventType = "recurring.cycle.succeeded"
	EventRecurringCycleFailed    ProviderEventType = "recurring.cycle.failed"
	EventRecurringDeactivated    ProviderEventType = "recurring.deactivated"

	// EventRecurringPlanStopped is a provider-native alias of EventRecurringDeactivated
	EventRecurringPlanStopped ProviderEventType = "recurring.plan.stopped"

	// EventUnknown marks a webhook the adapter could parse but not map. It is acknowledged without mutation.
	EventUnknown ProviderEventType = "unknown"
)

func (t ProviderEventType) String() string {
	return string(t)
}

// Canonical folds aliases into their canonical event type
func (t ProviderEventType) Canonical() ProviderEventType {
	if t == EventRecurringPlanStopped {
		return EventRecurringDeactivated
	}
	return t
}

// IsCycle reports whether the event belongs to a new billing cycle
func (t ProviderEventType) IsCycle() bool {
	return t == EventRecurringCycleSucceeded || t == EventRecurringCycleFailed
}

func (t ProviderEventType) IsSuccess() bool {
	switch t.Canonical() {
	case EventChargePaid, EventRecurringActivated, EventRecurringCycleSucceeded:
		return true
	}
	return false
}

func (t ProviderEventType) IsFailure() bool {
	switch t.Canonical() {
	case EventChargeFailed, EventChargeExpired, EventRecurringCycleFailed:
		return true
	}
	return false
}

// IsExpiry reports whether the customer abandoned the charge before paying
func (t ProviderEventType) IsExpiry() bool {
	return t.Canonical() == EventChargeExpired
}

func (t ProviderEventType) IsKnown() bool {
	return t.IsSuccess() || t.IsFailure() || t.Canonical() == EventRecurringDeactivated
}

// NotificationKind is the kind passed to the notification collaborator
type NotificationKind string

const (
	NotificationTrialExpiring       NotificationKind = "trial.expiring"
	NotificationEnterpriseExpiring  NotificationKind = "enterprise.expiring"
	NotificationSubscriptionActive  NotificationKind = "subscription.activated"
	NotificationSubscriptionSuspend NotificationKind = "subscription.suspended"
	NotificationSubscriptionExpired NotificationKind = "subscription.expired"
	NotificationPaymentFailed       NotificationKind = "payment.failed"
)
