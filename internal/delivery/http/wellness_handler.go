package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/servconnect/mlservices/internal/domain"
	"github.com/servconnect/mlservices/internal/usecase"
)

// WellnessHandler serves the elder wellness endpoints
type WellnessHandler struct {
	service *usecase.WellnessService
}

// NewWellnessHandler creates a wellness handler
func NewWellnessHandler(service *usecase.WellnessService) *WellnessHandler {
	return &WellnessHandler{service: service}
}

// RegisterRoutes mounts the wellness endpoints
func (h *WellnessHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.HealthCheck)
	r.POST("/predict", h.Predict)
}

// HealthCheck reports whether the forests are loaded
func (h *WellnessHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"models_loaded": h.service.Ready(),
	})
}

// Predict returns diet and heart-risk recommendations for one elder
func (h *WellnessHandler) Predict(c *gin.Context) {
	failed := gin.H{"success": false}

	raw, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = errBodyTooLarge
		}
		respondError(c, err, failed)
		return
	}

	var fields map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &fields) != nil || len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data provided", "success": false})
		return
	}

	var in domain.WellnessInput
	if err := json.Unmarshal(raw, &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid field type: " + err.Error(), "success": false})
		return
	}

	result, err := h.service.Predict(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, failed)
		return
	}
	c.JSON(http.StatusOK, result)
}
