package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/servconnect/mlservices/internal/domain"
	"github.com/servconnect/mlservices/internal/usecase"
)

// ItemMatchHandler serves the lost and found matching endpoints
type ItemMatchHandler struct {
	service *usecase.ItemMatchingService
}

// NewItemMatchHandler creates an item matching handler
func NewItemMatchHandler(service *usecase.ItemMatchingService) *ItemMatchHandler {
	return &ItemMatchHandler{service: service}
}

// RegisterRoutes mounts the item matching endpoints
func (h *ItemMatchHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.HealthCheck)
	r.POST("/match", h.Match)
	r.POST("/similarity", h.Similarity)
	r.POST("/embed", h.Embed)
}

// HealthCheck reports the encoder state
func (h *ItemMatchHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"model_loaded": h.service.Ready(),
		"model_name":   h.service.ModelName(),
	})
}

// Match ranks candidate items against a query item
func (h *ItemMatchHandler) Match(c *gin.Context) {
	var req domain.MatchRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.service.Match(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Similarity scores two items against each other
func (h *ItemMatchHandler) Similarity(c *gin.Context) {
	var req domain.SimilarityRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.service.Similarity(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Embed returns the embedding vector of one item
func (h *ItemMatchHandler) Embed(c *gin.Context) {
	var req domain.EmbedRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.service.Embed(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, result)
}

// bind checks the encoder and decodes the body, answering the request on failure.
func (h *ItemMatchHandler) bind(c *gin.Context, dst any) bool {
	if !h.service.Ready() {
		respondError(c, domain.ErrModelNotLoaded, gin.H{"success": false})
		return false
	}
	if err := bindJSON(c, dst); err != nil {
		respondError(c, err, gin.H{"success": false})
		return false
	}
	return true
}
