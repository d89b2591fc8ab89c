package v1

import (
	"net/http"

	"github.com/flexprice/recurring/internal/api/dto"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/service"
	"github.com/gin-gonic/gin"
)

type OrgBillingHandler struct {
	service service.OrgBillingService
	log     *logger.Logger
}

func NewOrgBillingHandler(service service.OrgBillingService, log *logger.Logger) *OrgBillingHandler {
	return &OrgBillingHandler{service: service, log: log}
}

// @Summary Create an org invoice
// @Description Creates a single payment covering every seat of a label. Manual invoices wait for operator approval.
// @Tags Org Billing
// @Accept json
// @Produce json
// @Security AccountAuth
// @Param request body dto.CreateOrgInvoiceRequest true "Org invoice"
// @Success 201 {object} dto.OrgInvoiceResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Failure 502 {object} ierr.ErrorResponse
// @Router /org-invoices [post]
func (h *OrgBillingHandler) CreateOrgInvoice(c *gin.Context) {
	var req dto.CreateOrgInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateOrgInvoice(c.Request.Context(), req)
	if err != nil {
		h.log.Errorw("failed to create org invoice", "error", err, "label_id", req.LabelID)
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// @Summary Renew an org invoice
// @Description Issues the next period's invoice for a label from a paid prior invoice
// @Tags Org Billing
// @Accept json
// @Produce json
// @Security AccountAuth
// @Param request body dto.RenewOrgInvoiceRequest true "Renewal"
// @Success 201 {object} dto.OrgInvoiceResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /org-invoices/renew [post]
func (h *OrgBillingHandler) RenewOrgInvoice(c *gin.Context) {
	var req dto.RenewOrgInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.RenewOrgInvoice(c.Request.Context(), req)
	if err != nil {
		h.log.Errorw("failed to renew org invoice", "error", err, "prior_payment_id", req.PriorPaymentID)
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// @Summary Activate seats in bulk
// @Description Activates ENTERPRISE_CUSTOM subscriptions for a list of accounts. Seats that fail are reported without undoing the rest.
// @Tags Org Billing
// @Accept json
// @Produce json
// @Security AccountAuth
// @Param request body dto.ActivateBulkRequest true "Seats"
// @Success 200 {object} dto.BulkActivationResult
// @Failure 400 {object} ierr.ErrorResponse
// @Router /org-invoices/activate [post]
func (h *OrgBillingHandler) ActivateBulk(c *gin.Context) {
	var req dto.ActivateBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ActivateBulk(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
