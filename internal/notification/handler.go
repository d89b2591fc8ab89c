package notification

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/recurring/internal/config"
	"github.com/flexprice/recurring/internal/httpclient"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/pubsub"
	pubsubRouter "github.com/flexprice/recurring/internal/pubsub/router"
	"github.com/flexprice/recurring/internal/svix"
	"github.com/flexprice/recurring/internal/types"
)

// Handler consumes published notifications and hands them to Svix or the delivery endpoint
type Handler interface {
	RegisterHandler(router *pubsubRouter.Router)
}

type handler struct {
	pubSub pubsub.PubSub
	config *config.NotificationConfig
	client httpclient.Client
	svix   *svix.Client
	logger *logger.Logger
}

func NewHandler(
	pubSub pubsub.PubSub,
	cfg *config.Configuration,
	client httpclient.Client,
	svixClient *svix.Client,
	logger *logger.Logger,
) Handler {
	return &handler{
		pubSub: pubSub,
		config: &cfg.Notification,
		client: client,
		svix:   svixClient,
		logger: logger,
	}
}

func (h *handler) RegisterHandler(router *pubsubRouter.Router) {
	router.AddNoPublishHandler(
		"notification_handler",
		h.config.Topic,
		h.pubSub,
		h.processMessage,
	)
}

func (h *handler) processMessage(msg *message.Message) error {
	var n Notification
	if err := json.Unmarshal(msg.Payload, &n); err != nil {
		h.logger.Errorw("failed to unmarshal notification",
			"error", err,
			"message_uuid", msg.UUID,
		)
		return nil // Don't retry on unmarshal errors
	}

	ctx := msg.Context()
	if n.RequestID != "" {
		ctx = types.SetRequestID(ctx, n.RequestID)
	}

	if h.svix.Enabled() {
		return h.sendToSvix(ctx, msg.Payload, &n)
	}

	if h.config.Endpoint == "" {
		h.logger.Infow("notification",
			"notification_id", n.ID,
			"account_id", n.AccountID,
			"kind", n.Kind,
			"payload", n.Payload,
		)
		return nil
	}

	return h.deliver(ctx, msg.Payload, &n)
}

func (h *handler) deliver(ctx context.Context, body []byte, n *Notification) error {
	headers := map[string]string{
		"Content-Type":      "application/json",
		"X-Notification-ID": n.ID,
	}
	for k, v := range h.config.Headers {
		headers[k] = v
	}

	resp, err := h.client.Send(ctx, &httpclient.Request{
		Method:  http.MethodPost,
		URL:     h.config.Endpoint,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		h.logger.Errorw("failed to deliver notification",
			"error", err,
			"notification_id", n.ID,
			"account_id", n.AccountID,
			"kind", n.Kind,
		)
		return err
	}

	h.logger.Infow("notification delivered",
		"notification_id", n.ID,
		"account_id", n.AccountID,
		"kind", n.Kind,
		"status_code", resp.StatusCode,
	)
	return nil
}

func (h *handler) sendToSvix(ctx context.Context, body []byte, n *Notification) error {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return err
	}

	if err := h.svix.SendMessage(ctx, string(n.Kind), payload); err != nil {
		h.logger.Errorw("failed to send notification to svix",
			"error", err,
			"notification_id", n.ID,
			"account_id", n.AccountID,
			"kind", n.Kind,
		)
		return err
	}

	h.logger.Infow("notification sent to svix",
		"notification_id", n.ID,
		"account_id", n.AccountID,
		"kind", n.Kind,
	)
	return nil
}
