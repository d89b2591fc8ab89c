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

type BillingPlanHandler struct {
	service service.BillingPlanService
	log     *logger.Logger
}

func NewBillingPlanHandler(service service.BillingPlanService, log *logger.Logger) *BillingPlanHandler {
	return &BillingPlanHandler{service: service, log: log}
}

// @Summary Create a billing plan
// @Description Adds a catalog entry in CREATED status. It is not used at checkout until activated.
// @Tags Billing Plans
// @Accept json
// @Produce json
// @Security AccountAuth
// @Param request body dto.CreateBillingPlanRequest true "Billing plan"
// @Success 201 {object} dto.BillingPlanResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Router /billing-plans [post]
func (h *BillingPlanHandler) CreateBillingPlan(c *gin.Context) {
	var req dto.CreateBillingPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateBillingPlan(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a billing plan
// @Tags Billing Plans
// @Produce json
// @Security AccountAuth
// @Param id path string true "Billing plan ID"
// @Success 200 {object} dto.BillingPlanResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /billing-plans/{id} [get]
func (h *BillingPlanHandler) GetBillingPlan(c *gin.Context) {
	resp, err := h.service.GetBillingPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary List billing plans
// @Tags Billing Plans
// @Produce json
// @Security AccountAuth
// @Param filter query types.BillingPlanFilter false "Filter"
// @Success 200 {object} dto.ListBillingPlansResponse
// @Router /billing-plans [get]
func (h *BillingPlanHandler) ListBillingPlans(c *gin.Context) {
	filter := types.NewBillingPlanFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListBillingPlans(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Activate a billing plan
// @Tags Billing Plans
// @Produce json
// @Security AccountAuth
// @Param id path string true "Billing plan ID"
// @Success 200 {object} dto.BillingPlanResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Router /billing-plans/{id}/activate [post]
func (h *BillingPlanHandler) ActivateBillingPlan(c *gin.Context) {
	resp, err := h.service.ActivateBillingPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Errorw("failed to activate billing plan", "error", err, "billing_plan_id", c.Param("id"))
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Deactivate a billing plan
// @Tags Billing Plans
// @Produce json
// @Security AccountAuth
// @Param id path string true "Billing plan ID"
// @Success 200 {object} dto.BillingPlanResponse
// @Router /billing-plans/{id}/deactivate [post]
func (h *BillingPlanHandler) DeactivateBillingPlan(c *gin.Context) {
	resp, err := h.service.DeactivateBillingPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Errorw("failed to deactivate billing plan", "error", err, "billing_plan_id", c.Param("id"))
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
