package v1

import (
	"net/http"

	"github.com/flexprice/recurring/internal/api/dto"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/service"
	"github.com/gin-gonic/gin"
)

type LabelHandler struct {
	service service.LabelService
	log     *logger.Logger
}

func NewLabelHandler(service service.LabelService, log *logger.Logger) *LabelHandler {
	return &LabelHandler{service: service, log: log}
}

// @Summary Create an enterprise label
// @Tags Labels
// @Accept json
// @Produce json
// @Security AccountAuth
// @Param request body dto.CreateLabelRequest true "Label"
// @Success 201 {object} dto.LabelResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Router /labels [post]
func (h *LabelHandler) CreateLabel(c *gin.Context) {
	var req dto.CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateLabel(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// @Summary Get an enterprise label
// @Tags Labels
// @Produce json
// @Security AccountAuth
// @Param id path string true "Label ID"
// @Success 200 {object} dto.LabelResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /labels/{id} [get]
func (h *LabelHandler) GetLabel(c *gin.Context) {
	resp, err := h.service.GetLabel(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary List enterprise labels
// @Tags Labels
// @Produce json
// @Security AccountAuth
// @Success 200 {object} dto.ListLabelsResponse
// @Router /labels [get]
func (h *LabelHandler) ListLabels(c *gin.Context) {
	resp, err := h.service.ListLabels(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Add label members
// @Description Adds accounts to a label. Accounts already present are left as is.
// @Tags Labels
// @Accept json
// @Produce json
// @Security AccountAuth
// @Param id path string true "Label ID"
// @Param request body dto.AddLabelMembersRequest true "Members"
// @Success 200 {object} dto.ListLabelMembersResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /labels/{id}/members [post]
func (h *LabelHandler) AddMembers(c *gin.Context) {
	var req dto.AddLabelMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.AddMembers(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary List label members
// @Tags Labels
// @Produce json
// @Security AccountAuth
// @Param id path string true "Label ID"
// @Success 200 {object} dto.ListLabelMembersResponse
// @Router /labels/{id}/members [get]
func (h *LabelHandler) ListMembers(c *gin.Context) {
	resp, err := h.service.ListMembers(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Remove a label member
// @Tags Labels
// @Produce json
// @Security AccountAuth
// @Param id path string true "Label ID"
// @Param account_id path string true "Account ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /labels/{id}/members/{account_id} [delete]
func (h *LabelHandler) RemoveMember(c *gin.Context) {
	if err := h.service.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("account_id")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "member removed"})
}
