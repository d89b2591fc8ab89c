package svix

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/flexprice/recurring/internal/config"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_DisabledSendsNothing(t *testing.T) {
	c, err := NewClient(config.GetDefaultConfig())
	require.NoError(t, err)
	assert.False(t, c.Enabled())
	assert.NoError(t, c.SendMessage(context.Background(), "trial.expiring", map[string]interface{}{"account_id": "acc_1"}))
}

func TestClient_InvalidBaseURL(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Notification.Svix = config.SvixConfig{
		Enabled:   true,
		AuthToken: "testsk_token",
		BaseURL:   "://bad",
		AppID:     "app_recurring",
	}

	_, err := NewClient(cfg)
	require.Error(t, err)
	assert.True(t, ierr.IsConfiguration(err))
}

func TestClient_SendMessage(t *testing.T) {
	var gotPath, gotEventType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotEventType, _ = body["eventType"].(string)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"id":"msg_1","eventType":"trial.expiring","payload":{},"timestamp":"2026-03-10T10:00:00Z"}`))
	}))
	defer srv.Close()

	cfg := config.GetDefaultConfig()
	cfg.Notification.Svix = config.SvixConfig{
		Enabled:   true,
		AuthToken: "testsk_token",
		BaseURL:   srv.URL,
		AppID:     "app_recurring",
	}
	c, err := NewClient(cfg)
	require.NoError(t, err)
	require.True(t, c.Enabled())

	err = c.SendMessage(context.Background(), "trial.expiring", map[string]interface{}{"account_id": "acc_1"})
	require.NoError(t, err)
	assert.True(t, strings.Contains(gotPath, "/app/app_recurring/msg"), gotPath)
	assert.Equal(t, "trial.expiring", gotEventType)
}
