package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeshwanthrajr/dataviz-api/internal/service"
	appErrors "github.com/yeshwanthrajr/dataviz-api/pkg/errors"
	"github.com/yeshwanthrajr/dataviz-api/pkg/response"
)

// AdminRequestHandler wires HTTP endpoints to the promotion workflow.
type AdminRequestHandler struct {
	service *service.AdminRequestService
}

// NewAdminRequestHandler creates a new handler.
func NewAdminRequestHandler(svc *service.AdminRequestService) *AdminRequestHandler {
	return &AdminRequestHandler{service: svc}
}

// Create godoc
// @Summary Request promotion
// @Description Ask a superadmin for the admin role
// @Tags AdminRequests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateAdminRequestPayload true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin-requests [post]
func (h *AdminRequestHandler) Create(c *gin.Context) {
	var payload service.CreateAdminRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid admin request payload"))
		return
	}

	req, err := h.service.Request(c.Request.Context(), userFromContext(c), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, req)
}

// ListPending godoc
// @Summary Pending promotion requests
// @Tags AdminRequests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin-requests/pending [get]
func (h *AdminRequestHandler) ListPending(c *gin.Context) {
	requests, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests)
}

// Approve godoc
// @Summary Approve promotion request
// @Description Approves the request and promotes the requester to admin
// @Tags AdminRequests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin-requests/{id}/approve [patch]
func (h *AdminRequestHandler) Approve(c *gin.Context) {
	req, err := h.service.Approve(c.Request.Context(), userFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req)
}

// Deny godoc
// @Summary Deny promotion request
// @Tags AdminRequests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin-requests/{id}/deny [patch]
func (h *AdminRequestHandler) Deny(c *gin.Context) {
	req, err := h.service.Deny(c.Request.Context(), userFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req)
}
