package svix

import (
	"context"
	"net/url"

	"github.com/flexprice/recurring/internal/config"
	ierr "github.com/flexprice/recurring/internal/errors"
	svix "github.com/svix/svix-webhooks/go"
	"github.com/svix/svix-webhooks/go/models"
)

// Client wraps the Svix SDK client used to fan notifications out as webhooks
type Client struct {
	client  *svix.Svix
	appID   string
	enabled bool
}

// NewClient creates a new Svix client. A disabled client sends nothing.
func NewClient(cfg *config.Configuration) (*Client, error) {
	svixCfg := cfg.Notification.Svix
	if !svixCfg.Enabled {
		return &Client{enabled: false}, nil
	}

	opts := &svix.SvixOptions{}
	if svixCfg.BaseURL != "" {
		serverURL, err := url.Parse(svixCfg.BaseURL)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Invalid Svix base URL").
				Mark(ierr.ErrConfiguration)
		}
		opts.ServerUrl = serverURL
	}

	svixClient, err := svix.New(svixCfg.AuthToken, opts)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create Svix client").
			Mark(ierr.ErrConfiguration)
	}

	return &Client{
		client:  svixClient,
		appID:   svixCfg.AppID,
		enabled: true,
	}, nil
}

func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// SendMessage sends one notification to the configured application
func (c *Client) SendMessage(ctx context.Context, eventType string, payload map[string]interface{}) error {
	if !c.Enabled() {
		return nil
	}

	_, err := c.client.Message.Create(ctx, c.appID, models.MessageIn{
		EventType: eventType,
		Payload:   payload,
	}, &svix.MessageCreateOptions{})
	if err != nil {
		return ierr.WithError(err).
			WithHintf("Failed to send %s to Svix", eventType).
			Mark(ierr.ErrHTTPClient)
	}
	return nil
}
