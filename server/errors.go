package server

import (
	"errors"
	"net/http"

	"github.com/Desarso/fitcoach/gateway"
	"github.com/Desarso/fitcoach/sessions"
	"github.com/Desarso/fitcoach/stores"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps a domain error to its HTTP status.
func statusFor(err error) int {
	var genErr *gateway.GenerationError
	switch {
	case errors.Is(err, stores.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, gateway.ErrInvalidInput), errors.Is(err, sessions.ErrBlank):
		return http.StatusBadRequest
	case errors.Is(err, sessions.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, sessions.ErrClosed):
		return http.StatusGone
	case errors.As(err, &genErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Warn("Request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
