package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Download serves the annotated CSV of the latest run as an attachment.
func (h *Handler) Download(c *gin.Context) {
	h.serveArtifact(c, h.analysisSvc.AnnotatedCSVName(), true)
}

func (h *Handler) GetArtifact(c *gin.Context) {
	h.serveArtifact(c, c.Param("name"), c.Query("download") == "1")
}

func (h *Handler) serveArtifact(c *gin.Context, name string, attachment bool) {
	rc, art, err := h.analysisSvc.Artifact(c.Request.Context(), name)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	defer func() {
		if err := rc.Close(); err != nil {
			log.WithError(err).WithField("artifact", name).Warn("close artifact")
		}
	}()

	headers := map[string]string{"Cache-Control": "no-store"}
	if attachment {
		headers["Content-Disposition"] = fmt.Sprintf("attachment; filename=%q", art.Name)
	}
	c.DataFromReader(http.StatusOK, art.Size, art.ContentType, rc, headers)
}
