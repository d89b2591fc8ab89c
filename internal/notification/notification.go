package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/recurring/internal/config"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/pubsub"
	"github.com/flexprice/recurring/internal/types"
)

// Notification is the message handed to the delivery collaborator
type Notification struct {
	ID        string                 `json:"id"`
	AccountID string                 `json:"account_id"`
	Kind      types.NotificationKind `json:"kind"`
	Payload   map[string]any         `json:"payload,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Notifier dispatches notifications without waiting for delivery. Callers treat a
// returned error as informational, it never undoes a ledger change.
type Notifier interface {
	Notify(ctx context.Context, accountID string, kind types.NotificationKind, payload map[string]any) error
}

type publisher struct {
	pubSub pubsub.Publisher
	config *config.NotificationConfig
	logger *logger.Logger
}

// NewNotifier returns a notifier publishing to the configured topic, or one that only
// logs when notifications are disabled
func NewNotifier(pubSub pubsub.PubSub, cfg *config.Configuration, logger *logger.Logger) Notifier {
	if !cfg.Notification.Enabled {
		return NewNoopNotifier(logger)
	}
	return &publisher{
		pubSub: pubSub,
		config: &cfg.Notification,
		logger: logger,
	}
}

func (p *publisher) Notify(ctx context.Context, accountID string, kind types.NotificationKind, payload map[string]any) error {
	n := &Notification{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_NOTIFICATION),
		AccountID: accountID,
		Kind:      kind,
		Payload:   payload,
		RequestID: types.GetRequestID(ctx),
		CreatedAt: time.Now().UTC(),
	}

	body, err := json.Marshal(n)
	if err != nil {
		p.logger.Errorw("failed to marshal notification",
			"error", err,
			"account_id", accountID,
			"kind", kind,
		)
		return err
	}

	msg := message.NewMessage(n.ID, body)
	msg.Metadata.Set("account_id", accountID)
	msg.Metadata.Set("kind", string(kind))

	if err := p.pubSub.Publish(ctx, p.config.Topic, msg); err != nil {
		p.logger.Errorw("failed to publish notification",
			"error", err,
			"notification_id", n.ID,
			"account_id", accountID,
			"kind", kind,
		)
		return err
	}

	p.logger.Debugw("published notification",
		"notification_id", n.ID,
		"account_id", accountID,
		"kind", kind,
		"topic", p.config.Topic,
	)
	return nil
}

type noopNotifier struct {
	logger *logger.Logger
}

func NewNoopNotifier(logger *logger.Logger) Notifier {
	return &noopNotifier{logger: logger}
}

func (n *noopNotifier) Notify(ctx context.Context, accountID string, kind types.NotificationKind, payload map[string]any) error {
	n.logger.Debugw("notifications disabled, dropping", "account_id", accountID, "kind", kind)
	return nil
}
