package v1

import (
	"io"
	"net/http"

	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/service"
	"github.com/flexprice/recurring/internal/types"
	"github.com/gin-gonic/gin"
)

// WebhookHandler receives provider notifications
type WebhookHandler struct {
	service service.ReconciliationService
	logger  *logger.Logger
}

func NewWebhookHandler(service service.ReconciliationService, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{service: service, logger: logger}
}

// @Summary Handle a provider webhook
// @Description Reconcile a payment provider notification. Deliveries are acknowledged with 200 even when
// @Description reconciliation fails so providers do not retry endlessly; failures are logged for replay.
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param provider path string true "Payment provider" Enums(xendit, stripe)
// @Success 200 {object} dto.WebhookResult
// @Failure 400 {object} ierr.ErrorResponse "Unparseable payload"
// @Failure 401 {object} map[string]interface{} "Invalid signature"
// @Router /webhooks/{provider} [post]
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	provider, err := types.ParsePaymentProvider(c.Param("provider"))
	if err != nil || provider == types.PaymentProviderManual {
		c.Error(ierr.NewErrorf("unknown webhook provider %q", c.Param("provider")).
			WithHint("Unknown webhook provider").
			Mark(ierr.ErrNotFound))
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Errorw("failed to read webhook body", "error", err, "provider", provider)
		c.Error(ierr.WithError(err).
			WithHint("Failed to read request body").
			Mark(ierr.ErrValidation))
		return
	}

	result, err := h.service.HandleWebhook(c.Request.Context(), provider, c.Request.Header, body)
	if err != nil {
		if ierr.IsPermissionDenied(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook signature"})
			return
		}
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}
