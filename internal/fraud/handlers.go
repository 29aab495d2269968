package fraud

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mbd888/fraudlens/internal/validation"
)

// Handler provides HTTP endpoints for the fraud module.
type Handler struct {
	service *Service
}

// NewHandler creates a new fraud handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes sets up the fraud routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/fraud/upload", h.Upload)
	r.GET("/fraud/insights", h.Insights)
	r.GET("/fraud/status", h.Status)
	r.GET("/fraud/chart", h.Chart)
	r.GET("/fraud/explain/:id", h.Explain)
	r.DELETE("/fraud/records", h.Clear)
}

// Upload handles POST /v1/fraud/upload
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Multipart field 'file' is required",
		})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Failed to open uploaded file",
		})
		return
	}
	defer func() { _ = f.Close() }()

	snap, err := h.service.Ingest(c.Request.Context(), fileHeader.Filename, f)
	if err != nil {
		status := http.StatusInternalServerError
		code := "ingest_failed"
		switch {
		case errors.Is(err, ErrNotCSV):
			status = http.StatusBadRequest
			code = "not_csv"
		case errors.Is(err, ErrEmptyFile):
			status = http.StatusBadRequest
			code = "empty_file"
		case errors.Is(err, ErrMalformedCSV):
			status = http.StatusBadRequest
			code = "malformed_csv"
		case errors.Is(err, ErrMissingAmountColumn):
			status = http.StatusBadRequest
			code = "missing_amount_column"
		}
		c.JSON(status, gin.H{"error": code, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snap)
}

// Insights handles GET /v1/fraud/insights
func (h *Handler) Insights(c *gin.Context) {
	insights, err := h.service.Insights(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, insights)
}

// Status handles GET /v1/fraud/status
func (h *Handler) Status(c *gin.Context) {
	hasData, rowCount, err := h.service.Status(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"has_data": hasData, "row_count": rowCount})
}

// Chart handles GET /v1/fraud/chart
func (h *Handler) Chart(c *gin.Context) {
	chart, err := h.service.Chart(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, chart)
}

// Explain handles GET /v1/fraud/explain/:id
func (h *Handler) Explain(c *gin.Context) {
	id := validation.SanitizeID(c.Param("id"))

	explanation, err := h.service.Explain(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": err.Error()})
		return
	}
	if !explanation.Found {
		c.JSON(http.StatusNotFound, explanation)
		return
	}
	c.JSON(http.StatusOK, explanation)
}

// Clear handles DELETE /v1/fraud/records
func (h *Handler) Clear(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Data cleared successfully"})
}
