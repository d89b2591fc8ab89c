package cron

import (
	"net/http"

	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/service"
	"github.com/gin-gonic/gin"
)

// SubscriptionHandler exposes the lifecycle jobs for external schedulers
type SubscriptionHandler struct {
	lifecycleService service.LifecycleService
	logger           *logger.Logger
}

func NewSubscriptionHandler(lifecycleService service.LifecycleService, logger *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		lifecycleService: lifecycleService,
		logger:           logger,
	}
}

// @Summary Notify expiring trials
// @Description Notifies accounts whose trial ends tomorrow in the billing timezone
// @Tags Cron
// @Produce json
// @Security AccountAuth
// @Success 200 {object} dto.SweepReport
// @Router /cron/subscriptions/trial-expiry [post]
func (h *SubscriptionHandler) NotifyExpiringTrials(c *gin.Context) {
	h.logger.Infow("starting trial expiry notification cron job")

	report, err := h.lifecycleService.NotifyExpiringTrials(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to notify expiring trials",
			"error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("completed trial expiry notification cron job",
		"scanned", report.Scanned,
		"failed", report.Failed)
	c.JSON(http.StatusOK, report)
}

// @Summary Notify expiring enterprise subscriptions
// @Description Notifies enterprise accounts and operators about periods ending within two days
// @Tags Cron
// @Produce json
// @Security AccountAuth
// @Success 200 {object} dto.SweepReport
// @Router /cron/subscriptions/enterprise-expiry [post]
func (h *SubscriptionHandler) NotifyExpiringEnterprise(c *gin.Context) {
	h.logger.Infow("starting enterprise expiry notification cron job")

	report, err := h.lifecycleService.NotifyExpiringEnterprise(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to notify expiring enterprise subscriptions",
			"error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("completed enterprise expiry notification cron job",
		"scanned", report.Scanned,
		"failed", report.Failed)
	c.JSON(http.StatusOK, report)
}

// @Summary Expire lapsed subscriptions
// @Tags Cron
// @Produce json
// @Security AccountAuth
// @Success 200 {object} dto.SweepReport
// @Router /cron/subscriptions/auto-expire [post]
func (h *SubscriptionHandler) SweepExpired(c *gin.Context) {
	h.logger.Infow("starting auto-expire cron job")

	report, err := h.lifecycleService.SweepExpired(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to expire lapsed subscriptions",
			"error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("completed auto-expire cron job",
		"scanned", report.Scanned,
		"failed", report.Failed)
	c.JSON(http.StatusOK, report)
}
