package service

import (
	"context"

	"github.com/flexprice/recurring/internal/types"
)

// notice is a notification held back until the ledger mutation that caused it commits
type notice struct {
	accountID string
	kind      types.NotificationKind
	payload   map[string]any
}

type notices []notice

func (n *notices) add(accountID string, kind types.NotificationKind, payload map[string]any) {
	*n = append(*n, notice{accountID: accountID, kind: kind, payload: payload})
}

// dispatch sends every notice. Delivery failures are counted and logged, never returned.
func (p ServiceParams) dispatch(ctx context.Context, pending notices) {
	for _, n := range pending {
		if err := p.Notifier.Notify(ctx, n.accountID, n.kind, n.payload); err != nil {
			p.Metrics.NotificationsDropped.WithLabelValues(string(n.kind)).Inc()
			p.Logger.Errorw("failed to send notification",
				"error", err,
				"account_id", n.accountID,
				"kind", n.kind)
		}
	}
}
