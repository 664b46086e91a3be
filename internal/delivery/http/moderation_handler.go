package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/servconnect/mlservices/internal/domain"
	"github.com/servconnect/mlservices/internal/usecase"
)

// ModerationHandler serves the content moderation endpoints
type ModerationHandler struct {
	service *usecase.ModerationService
}

// NewModerationHandler creates a moderation handler
func NewModerationHandler(service *usecase.ModerationService) *ModerationHandler {
	return &ModerationHandler{service: service}
}

// RegisterRoutes mounts the moderation endpoints
func (h *ModerationHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.HealthCheck)
	r.POST("/predict", h.Predict)
	r.POST("/predict/batch", h.PredictBatch)
}

// HealthCheck reports whether the classifier is loaded
func (h *ModerationHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"model_loaded": h.service.Ready(),
	})
}

// Predict classifies a single text
func (h *ModerationHandler) Predict(c *gin.Context) {
	if !h.service.Ready() {
		respondError(c, domain.ErrModelNotLoaded, nil)
		return
	}
	var req domain.ModerationRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err, nil)
		return
	}

	result, err := h.service.Predict(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, result)
}

// PredictBatch classifies several texts in one call
func (h *ModerationHandler) PredictBatch(c *gin.Context) {
	if !h.service.Ready() {
		respondError(c, domain.ErrModelNotLoaded, nil)
		return
	}
	var req domain.BatchModerationRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err, nil)
		return
	}

	result, err := h.service.PredictBatch(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, result)
}
