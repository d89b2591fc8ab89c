package v1

import (
	"net/http"

	"github.com/flexprice/recurring/internal/api/dto"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/service"
	"github.com/flexprice/recurring/internal/types"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	service        service.PaymentService
	reconciliation service.ReconciliationService
	log            *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, reconciliation service.ReconciliationService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, reconciliation: reconciliation, log: log}
}

// @Summary Get a payment by ID
// @Tags Payments
// @Produce json
// @Security AccountAuth
// @Param id path string true "Payment ID"
// @Success 200 {object} dto.PaymentResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /payments/{id} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	resp, err := h.service.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	ctx := c.Request.Context()
	if types.GetRole(ctx) != types.RoleOperator && resp.AccountID != types.GetAccountID(ctx) {
		c.Error(ierr.NewError("payment not found").
			WithHint("Payment not found").
			Mark(ierr.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary List payments
// @Tags Payments
// @Produce json
// @Security AccountAuth
// @Param filter query types.PaymentFilter false "Filter"
// @Success 200 {object} dto.ListPaymentsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	filter := types.NewPaymentFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListPayments(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Approve a manual payment
// @Description Marks an org invoice awaiting approval as paid and activates its seats
// @Tags Payments
// @Accept json
// @Produce json
// @Security AccountAuth
// @Param request body dto.ApproveManualPaymentRequest true "Approval"
// @Success 200 {object} dto.PaymentResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Router /manual/approve [post]
func (h *PaymentHandler) ApproveManual(c *gin.Context) {
	var req dto.ApproveManualPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.reconciliation.ApproveManual(c.Request.Context(), req)
	if err != nil {
		h.log.Errorw("failed to approve manual payment", "error", err, "payment_id", req.PaymentID)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Fail a manual payment
// @Description Marks a manual payment failed and optionally expires the subscriptions it funds
// @Tags Payments
// @Accept json
// @Produce json
// @Security AccountAuth
// @Param request body dto.FailManualPaymentRequest true "Failure"
// @Success 200 {object} dto.PaymentResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Router /manual/fail [post]
func (h *PaymentHandler) FailManual(c *gin.Context) {
	var req dto.FailManualPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.reconciliation.FailManual(c.Request.Context(), req)
	if err != nil {
		h.log.Errorw("failed to fail manual payment", "error", err, "payment_id", req.PaymentID)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
