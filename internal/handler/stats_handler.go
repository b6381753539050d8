package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeshwanthrajr/dataviz-api/internal/service"
	"github.com/yeshwanthrajr/dataviz-api/pkg/response"
)

// StatsHandler wires HTTP endpoints to the stats service.
type StatsHandler struct {
	service *service.StatsService
}

// NewStatsHandler creates a new handler.
func NewStatsHandler(svc *service.StatsService) *StatsHandler {
	return &StatsHandler{service: svc}
}

// Dashboard godoc
// @Summary Personal dashboard counters
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /stats/dashboard [get]
func (h *StatsHandler) Dashboard(c *gin.Context) {
	stats, err := h.service.Dashboard(c.Request.Context(), userFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}

// Admin godoc
// @Summary Platform counters for reviewers
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /stats/admin [get]
func (h *StatsHandler) Admin(c *gin.Context) {
	stats, err := h.service.Admin(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}

// Superadmin godoc
// @Summary Platform-wide counters
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /stats/superadmin [get]
func (h *StatsHandler) Superadmin(c *gin.Context) {
	stats, err := h.service.Superadmin(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}
