package v1

import (
	"net/http"

	"github.com/flexprice/recurring/internal/api/dto"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/service"
	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	service service.SubscriptionService
	log     *logger.Logger
}

func NewSubscriptionHandler(service service.SubscriptionService, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{service: service, log: log}
}

// @Summary Get an account's subscription
// @Tags Subscriptions
// @Produce json
// @Security AccountAuth
// @Param account_id path string true "Account ID"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /subscriptions/{account_id} [get]
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	resp, err := h.service.GetSubscription(c.Request.Context(), c.Param("account_id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Start a trial
// @Description Grants a trial to an eligible account on first login. An existing subscription is returned as is.
// @Tags Subscriptions
// @Produce json
// @Security AccountAuth
// @Param account_id path string true "Account ID"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Router /subscriptions/{account_id}/trial [post]
func (h *SubscriptionHandler) EnsureTrial(c *gin.Context) {
	resp, err := h.service.EnsureTrial(c.Request.Context(), c.Param("account_id"))
	if err != nil {
		h.log.Errorw("failed to ensure trial", "error", err, "account_id", c.Param("account_id"))
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Cancel a subscription
// @Description Stops the provider agreement and cancels renewals. Access continues until the paid period ends.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Security AccountAuth
// @Param account_id path string true "Account ID"
// @Param request body dto.CancelSubscriptionRequest false "Cancellation reason"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 502 {object} ierr.ErrorResponse
// @Router /subscriptions/{account_id}/cancel [post]
func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	var req dto.CancelSubscriptionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(ierr.WithError(err).
				WithHint("Invalid request format").
				Mark(ierr.ErrValidation))
			return
		}
	}

	resp, err := h.service.CancelSubscription(c.Request.Context(), c.Param("account_id"), req)
	if err != nil {
		h.log.Errorw("failed to cancel subscription", "error", err, "account_id", c.Param("account_id"))
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary List subscription history
// @Tags Subscriptions
// @Produce json
// @Security AccountAuth
// @Param account_id path string true "Account ID"
// @Success 200 {object} dto.ListSubscriptionHistoryResponse
// @Router /subscriptions/{account_id}/history [get]
func (h *SubscriptionHandler) ListHistory(c *gin.Context) {
	resp, err := h.service.ListHistory(c.Request.Context(), c.Param("account_id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
