package handlers

import (
	"errors"
	"net/http"

	"sensor-anomaly-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func statusFor(err error) int {
	switch {
	// Bad input
	case errors.Is(err, domain.ErrMissingFile),
		errors.Is(err, domain.ErrEmptyDataset),
		errors.Is(err, domain.ErrMissingColumn),
		errors.Is(err, domain.ErrInvalidNumber),
		errors.Is(err, domain.ErrMalformedCSV),
		errors.Is(err, domain.ErrInvalidArtifactName),
		errors.Is(err, domain.ErrInvalidLimit):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrUploadTooBig):
		return http.StatusRequestEntityTooLarge

	// Not found
	case errors.Is(err, domain.ErrArtifactNotFound):
		return http.StatusNotFound

	// Service unavailable
	case errors.Is(err, domain.ErrRunJournalDisabled):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// errorMessage hides internal failures from clients.
func errorMessage(status int, err error) string {
	if status == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}

func mapDomainError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
	}
	c.JSON(status, gin.H{"error": errorMessage(status, err)})
}
