package base

import (
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/types"
)

// NotConfigured is returned by every call on an adapter registered without credentials
func NotConfigured(provider types.PaymentProvider) error {
	return ierr.NewErrorf("%s provider is not configured", provider).
		WithHintf("Payment provider %s is not configured, contact an operator", provider).
		WithReportableDetails(map[string]any{
			"provider": provider,
		}).
		Mark(ierr.ErrConfiguration)
}

// ProviderCallFailed wraps a failed outbound provider call
func ProviderCallFailed(err error, provider types.PaymentProvider, operation string) error {
	return ierr.WithError(err).
		WithHintf("Payment provider %s could not complete %s", provider, operation).
		WithReportableDetails(map[string]any{
			"provider":  provider,
			"operation": operation,
		}).
		Mark(ierr.ErrProvider)
}

// InvalidPayload is returned when a webhook body cannot be parsed at all
func InvalidPayload(err error, provider types.PaymentProvider) error {
	return ierr.WithError(err).
		WithHintf("Invalid %s webhook payload", provider).
		WithReportableDetails(map[string]any{
			"provider": provider,
		}).
		Mark(ierr.ErrValidation)
}

// InvalidSignature is returned when a webhook fails authentication
func InvalidSignature(err error, provider types.PaymentProvider) error {
	b := ierr.NewErrorf("invalid %s webhook signature", provider)
	if err != nil {
		b = ierr.WithError(err)
	}
	return b.
		WithHintf("Webhook signature verification failed for %s", provider).
		WithReportableDetails(map[string]any{
			"provider": provider,
		}).
		Mark(ierr.ErrPermissionDenied)
}
