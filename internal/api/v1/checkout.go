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

type CheckoutHandler struct {
	service service.CheckoutService
	log     *logger.Logger
}

func NewCheckoutHandler(service service.CheckoutService, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{service: service, log: log}
}

// @Summary Start a checkout
// @Description Create a pending payment and a provider checkout for a subscription or one-time purchase
// @Tags Checkout
// @Accept json
// @Produce json
// @Security AccountAuth
// @Param checkout body dto.CheckoutRequest true "Checkout request"
// @Success 201 {object} dto.CheckoutResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Failure 502 {object} ierr.ErrorResponse
// @Failure 503 {object} ierr.ErrorResponse
// @Router /checkout [post]
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	ctx := c.Request.Context()
	caller := types.GetAccountID(ctx)
	if req.AccountID == "" {
		req.AccountID = caller
	}
	if req.AccountID != caller && types.GetRole(ctx) != types.RoleOperator {
		c.Error(ierr.NewError("checkout for another account").
			WithHint("You can only check out for your own account").
			Mark(ierr.ErrPermissionDenied))
		return
	}

	resp, err := h.service.Checkout(ctx, req)
	if err != nil {
		h.log.Errorw("checkout failed", "error", err, "account_id", req.AccountID)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}
