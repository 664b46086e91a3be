package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/servconnect/mlservices/internal/domain"
	"github.com/servconnect/mlservices/internal/usecase"
)

// VerificationHandler serves the ID card verification endpoints
type VerificationHandler struct {
	service *usecase.VerificationService
}

// NewVerificationHandler creates a verification handler
func NewVerificationHandler(service *usecase.VerificationService) *VerificationHandler {
	return &VerificationHandler{service: service}
}

// RegisterRoutes mounts the verification endpoints
func (h *VerificationHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.HealthCheck)
	r.POST("/verify", h.Verify)
	r.POST("/extract-text", h.ExtractText)
}

// HealthCheck reports whether the OCR engine is available
func (h *VerificationHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"ocr_loaded": h.service.Ready(),
		"service":    "id-verification",
	})
}

// Verify compares the name on an uploaded ID card with the user's name.
// Processing failures still answer with a manual-approval verdict.
func (h *VerificationHandler) Verify(c *gin.Context) {
	if !h.service.Ready() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "OCR model not loaded"})
		return
	}
	var req domain.VerifyRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err, nil)
		return
	}

	result, err := h.service.Verify(c.Request.Context(), req)
	if err != nil {
		if isRequestError(err) {
			respondError(c, err, nil)
			return
		}
		respondError(c, err, gin.H{
			"verified":      false,
			"auto_approved": false,
			"message":       "Error processing ID card. Requires admin approval.",
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExtractText returns every line of text found on the image
func (h *VerificationHandler) ExtractText(c *gin.Context) {
	if !h.service.Ready() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "OCR model not loaded"})
		return
	}
	var req domain.ExtractTextRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err, nil)
		return
	}

	fragments, err := h.service.ExtractText(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"text_count":     len(fragments),
		"extracted_text": fragments,
	})
}

func isRequestError(err error) bool {
	return errors.Is(err, errBodyTooLarge) ||
		errors.Is(err, domain.ErrInvalidRequest) ||
		errors.Is(err, domain.ErrImageNotFound) ||
		errors.Is(err, domain.ErrImagePathDisabled)
}
