package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/octostats/octostats/internal/github"
	"github.com/octostats/octostats/internal/services"
	"github.com/octostats/octostats/pkg/logger"
)

func isValidationError(err error) bool {
	var validationErr *services.ValidationError
	return errors.As(err, &validationErr)
}

// respondError maps service errors onto HTTP statuses. Validation failures
// are the caller's fault, exhausted rate limit budgets mean the upstream is
// temporarily unavailable, and unexpected upstream statuses surface as bad
// gateway unless they carry an auth or not-found status worth passing
// through.
func respondError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var statusErr *github.StatusError

	switch {
	case errors.Is(err, github.ErrRateLimitExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "GitHub rate limit exceeded, try again later"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &statusErr):
		switch statusErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			c.JSON(statusErr.Status, gin.H{"error": statusErr.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": statusErr.Error()})
		}
	default:
		logger.WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
