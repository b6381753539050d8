package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeshwanthrajr/dataviz-api/internal/service"
	appErrors "github.com/yeshwanthrajr/dataviz-api/pkg/errors"
	"github.com/yeshwanthrajr/dataviz-api/pkg/response"
)

// ChartHandler wires HTTP endpoints to the chart service.
type ChartHandler struct {
	service *service.ChartService
}

// NewChartHandler creates a new handler.
func NewChartHandler(svc *service.ChartService) *ChartHandler {
	return &ChartHandler{service: svc}
}

// Create godoc
// @Summary Create chart
// @Description Derive a chart definition from an approved file
// @Tags Charts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateChartRequest true "Chart payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /charts [post]
func (h *ChartHandler) Create(c *gin.Context) {
	var req service.CreateChartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid chart payload"))
		return
	}

	chart, err := h.service.Create(c.Request.Context(), userFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, chart)
}

// List godoc
// @Summary List charts
// @Description Caller's charts
// @Tags Charts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /charts [get]
func (h *ChartHandler) List(c *gin.Context) {
	charts, err := h.service.ListForUser(c.Request.Context(), userFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, charts)
}

// ListForFile godoc
// @Summary Charts of a file
// @Description A file's charts, owner or admin only
// @Tags Charts
// @Produce json
// @Security BearerAuth
// @Param fileId path string true "File ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /charts/file/{fileId} [get]
func (h *ChartHandler) ListForFile(c *gin.Context) {
	charts, err := h.service.ListForFile(c.Request.Context(), userFromContext(c), c.Param("fileId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, charts)
}
