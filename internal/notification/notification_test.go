package notification

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flexprice/recurring/internal/config"
	"github.com/flexprice/recurring/internal/httpclient"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/pubsub/memory"
	pubsubRouter "github.com/flexprice/recurring/internal/pubsub/router"
	"github.com/flexprice/recurring/internal/sentry"
	"github.com/flexprice/recurring/internal/svix"
	"github.com/flexprice/recurring/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_PublishesToTopic(t *testing.T) {
	cfg := config.GetDefaultConfig()
	log := logger.NewNoopLogger()
	ps := memory.NewPubSub(log)
	defer ps.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	messages, err := ps.Subscribe(ctx, cfg.Notification.Topic)
	require.NoError(t, err)

	notifier := NewNotifier(ps, cfg, log)
	err = notifier.Notify(types.SetRequestID(ctx, "req_1"), "acc_1", types.NotificationTrialExpiring, map[string]any{"days_left": 1})
	require.NoError(t, err)

	select {
	case msg := <-messages:
		msg.Ack()
		var n Notification
		require.NoError(t, json.Unmarshal(msg.Payload, &n))
		assert.Equal(t, "acc_1", n.AccountID)
		assert.Equal(t, types.NotificationTrialExpiring, n.Kind)
		assert.Equal(t, "req_1", n.RequestID)
		assert.Equal(t, float64(1), n.Payload["days_left"])
		assert.Equal(t, "acc_1", msg.Metadata.Get("account_id"))
		assert.Equal(t, n.ID, msg.UUID)
	case <-ctx.Done():
		t.Fatal("notification was not published")
	}
}

func TestNotifier_Disabled(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Notification.Enabled = false
	notifier := NewNotifier(nil, cfg, logger.NewNoopLogger())
	assert.IsType(t, &noopNotifier{}, notifier)
	assert.NoError(t, notifier.Notify(context.Background(), "acc_1", types.NotificationPaymentFailed, nil))
}

func TestHandler_DeliversToEndpoint(t *testing.T) {
	received := make(chan Notification, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var n Notification
		if err := json.Unmarshal(body, &n); err == nil && r.Header.Get("X-Api-Key") == "secret" {
			received <- n
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	cfg := config.GetDefaultConfig()
	cfg.Notification.Endpoint = srv.URL
	cfg.Notification.Headers = map[string]string{"X-Api-Key": "secret"}
	log := logger.NewNoopLogger()
	ps := memory.NewPubSub(log)

	router, err := pubsubRouter.NewRouter(cfg, log, sentry.NewSentryService(cfg, log))
	require.NoError(t, err)
	client := httpclient.NewDefaultClient(httpclient.ClientConfig{Timeout: 2 * time.Second}, log)
	svixClient, err := svix.NewClient(cfg)
	require.NoError(t, err)
	NewHandler(ps, cfg, client, svixClient, log).RegisterHandler(router)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() { _ = router.Run(ctx) }()
	defer router.Close()
	<-router.Running()

	require.NoError(t, NewNotifier(ps, cfg, log).Notify(ctx, "acc_9", types.NotificationSubscriptionActive, map[string]any{"plan": "RECURRING_MONTHLY"}))

	select {
	case n := <-received:
		assert.Equal(t, "acc_9", n.AccountID)
		assert.Equal(t, types.NotificationSubscriptionActive, n.Kind)
		assert.Equal(t, "RECURRING_MONTHLY", n.Payload["plan"])
	case <-ctx.Done():
		t.Fatal("notification was not delivered")
	}
}
