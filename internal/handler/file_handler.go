package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeshwanthrajr/dataviz-api/internal/service"
	appErrors "github.com/yeshwanthrajr/dataviz-api/pkg/errors"
	"github.com/yeshwanthrajr/dataviz-api/pkg/response"
)

// FileHandler wires HTTP endpoints to the file service.
type FileHandler struct {
	service *service.FileService
}

// NewFileHandler creates a new handler.
func NewFileHandler(svc *service.FileService) *FileHandler {
	return &FileHandler{service: svc}
}

// Upload godoc
// @Summary Upload data file
// @Description Upload a spreadsheet (.csv, .xls, .xlsx) for review
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Spreadsheet file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /files/upload [post]
func (h *FileHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "missing file field"))
		return
	}

	src, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable upload"))
		return
	}
	defer src.Close()

	file, err := h.service.Upload(c.Request.Context(), userFromContext(c), header.Filename, src)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, file)
}

// List godoc
// @Summary List files
// @Description Caller's files; every file for admin roles
// @Tags Files
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /files [get]
func (h *FileHandler) List(c *gin.Context) {
	files, err := h.service.List(c.Request.Context(), userFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, files)
}

// ListPending godoc
// @Summary Approval queue
// @Description Files awaiting review
// @Tags Files
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /files/pending [get]
func (h *FileHandler) ListPending(c *gin.Context) {
	files, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, files)
}

// Get godoc
// @Summary Get file
// @Description File details including parsed rows
// @Tags Files
// @Produce json
// @Security BearerAuth
// @Param id path string true "File ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /files/{id} [get]
func (h *FileHandler) Get(c *gin.Context) {
	file, err := h.service.Get(c.Request.Context(), userFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, file)
}

// Approve godoc
// @Summary Approve file
// @Description Transition a pending file to approved
// @Tags Files
// @Produce json
// @Security BearerAuth
// @Param id path string true "File ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /files/{id}/approve [patch]
func (h *FileHandler) Approve(c *gin.Context) {
	file, err := h.service.Approve(c.Request.Context(), userFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, file)
}

// Reject godoc
// @Summary Reject file
// @Description Transition a pending file to rejected
// @Tags Files
// @Produce json
// @Security BearerAuth
// @Param id path string true "File ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /files/{id}/reject [patch]
func (h *FileHandler) Reject(c *gin.Context) {
	file, err := h.service.Reject(c.Request.Context(), userFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, file)
}

// Export godoc
// @Summary Export file rows
// @Description Download the parsed rows as CSV
// @Tags Files
// @Produce text/csv
// @Security BearerAuth
// @Param id path string true "File ID"
// @Success 200 {string} string "CSV payload"
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /files/{id}/export [get]
func (h *FileHandler) Export(c *gin.Context) {
	payload, name, err := h.service.ExportCSV(c.Request.Context(), userFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	base := strings.TrimSuffix(name, filepath.Ext(name))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", base+".csv"))
	c.Data(http.StatusOK, "text/csv", payload)
}
