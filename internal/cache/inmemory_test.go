package cache

import (
	"context"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCache_AddIsExclusive(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(nil)

	key := GenerateKey(PrefixWebhookEvent, "stripe", "evt_1")
	assert.Equal(t, "webhook_event:v1::stripe:evt_1", key)

	assert.True(t, c.Add(ctx, key, true, time.Minute))
	assert.False(t, c.Add(ctx, key, true, time.Minute))

	c.Delete(ctx, key)
	assert.True(t, c.Add(ctx, key, true, time.Minute))
}

func TestInMemoryCache_DeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(nil)

	c.Set(ctx, GenerateKey(PrefixBillingPlan, "stripe", "USD"), 1, 0)
	c.Set(ctx, GenerateKey(PrefixBillingPlan, "xendit", "IDR"), 2, 0)
	c.Set(ctx, GenerateKey(PrefixWebhookEvent, "x"), 3, 0)

	c.DeleteByPrefix(ctx, PrefixBillingPlan)

	_, ok := c.Get(ctx, GenerateKey(PrefixBillingPlan, "stripe", "USD"))
	assert.False(t, ok)
	v, ok := c.Get(ctx, GenerateKey(PrefixWebhookEvent, "x"))
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestInMemoryCache_RecordsSpans(t *testing.T) {
	var sent *sentry.Event
	client, err := sentry.NewClient(sentry.ClientOptions{
		EnableTracing:    true,
		TracesSampleRate: 1.0,
		BeforeSendTransaction: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			sent = event
			return event
		},
	})
	require.NoError(t, err)

	ctx := sentry.SetHubOnContext(context.Background(), sentry.NewHub(client, sentry.NewScope()))
	tx := sentry.StartTransaction(ctx, "replay guard")
	ctx = tx.Context()

	c := NewInMemoryCache(nil)
	key := GenerateKey(PrefixWebhookEvent, "xendit", "evt_9")
	assert.True(t, c.Add(ctx, key, true, time.Minute))
	assert.False(t, c.Add(ctx, key, true, time.Minute))
	_, ok := c.Get(ctx, key)
	assert.True(t, ok)
	tx.Finish()

	require.NotNil(t, sent)
	spans := lo.Filter(sent.Spans, func(s *sentry.Span, _ int) bool { return s.Op == "db.cache" })
	require.Len(t, spans, 3)
	for _, span := range spans {
		assert.Equal(t, sentry.SpanStatusOK, span.Status)
	}
	assert.Equal(t, true, spans[0].Data["added"])
	assert.Equal(t, false, spans[1].Data["added"])
	assert.Equal(t, true, spans[2].Data["hit"])
}
