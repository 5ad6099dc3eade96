package handlers

import (
	"embed"
	"html/template"
	"net/url"

	"sensor-anomaly-service/internal/core/services"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Handler struct {
	analysisSvc *services.AnalysisService
}

func New(analysisSvc *services.AnalysisService) *Handler {
	return &Handler{analysisSvc: analysisSvc}
}

// Templates parses the embedded page templates for gin's HTML renderer.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templatesFS, "templates/*.html"))
}

// RegisterPages wires the browser-facing routes on the root router.
func (h *Handler) RegisterPages(r gin.IRoutes) {
	r.GET("/", h.Index)
	r.POST("/", h.Upload)
	r.GET("/download", h.Download)
	r.GET("/artifacts/:name", h.GetArtifact)
}

// RegisterRoutes wires the JSON API.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/analyses", h.CreateAnalysis)
	r.GET("/runs", h.ListRuns)
}

func artifactURL(name string) string {
	return "/artifacts/" + url.PathEscape(name)
}
