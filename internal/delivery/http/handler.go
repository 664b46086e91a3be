package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/servconnect/mlservices/internal/domain"
	"github.com/servconnect/mlservices/internal/logger"
)

var errBodyTooLarge = errors.New("request body too large")

// bindJSON decodes the request body into dst. An empty body leaves dst untouched
// so the service can report which field is missing.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errBodyTooLarge
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidRequest, err.Error())
}

// errorStatus maps an error to its HTTP status and the message shown to the caller.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge, "Request body too large"
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, trimSentinel(err, domain.ErrInvalidRequest)
	case errors.Is(err, domain.ErrImageNotFound):
		return http.StatusBadRequest, "Image file not found" + strings.TrimPrefix(err.Error(), domain.ErrImageNotFound.Error())
	case errors.Is(err, domain.ErrImagePathDisabled):
		return http.StatusBadRequest, "image_path is disabled, send image_base64 instead"
	case errors.Is(err, domain.ErrModelNotLoaded):
		return http.StatusInternalServerError, "Model not loaded"
	case errors.Is(err, domain.ErrEncoderFailure):
		return http.StatusBadGateway, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Request timed out"
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// trimSentinel drops the "sentinel: " prefix so only the detail is returned.
func trimSentinel(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == sentinel.Error() {
		return "Invalid request"
	}
	return msg
}

// respondError writes {"error": ...} merged with extra and logs server-side failures.
func respondError(c *gin.Context, err error, extra gin.H) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c).Error("request failed", zap.Error(err), zap.Int("status", status))
	}
	body := gin.H{"error": msg}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}
