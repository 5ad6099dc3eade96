package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"sensor-anomaly-service/internal/adapters/primary/http/dto"
	"sensor-anomaly-service/internal/core/domain"
	"sensor-anomaly-service/internal/core/services"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const indexTemplate = "index.html"

type pageData struct {
	Result      *services.AnalysisResult
	Error       string
	PlotURL     string
	DownloadURL string
}

func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, indexTemplate, pageData{})
}

// Upload runs the analysis for a form post and renders the result page.
func (h *Handler) Upload(c *gin.Context) {
	res, err := h.analyzeUpload(c)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			log.WithError(err).Error("analysis failed")
		}
		c.HTML(status, indexTemplate, pageData{Error: errorMessage(status, err)})
		return
	}

	c.HTML(http.StatusOK, indexTemplate, pageData{
		Result: res,
		// The plot name never changes, so the run id keeps browsers from
		// showing a cached image.
		PlotURL:     artifactURL(res.Plot) + "?run=" + res.Run.ID.String(),
		DownloadURL: "/download",
	})
}

func (h *Handler) CreateAnalysis(c *gin.Context) {
	res, err := h.analyzeUpload(c)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAnalysisResponse(res, artifactURL))
}

func (h *Handler) ListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		mapDomainError(c, domain.ErrInvalidLimit)
		return
	}

	runs, err := h.analysisSvc.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListRunsResponse(runs))
}

func (h *Handler) analyzeUpload(c *gin.Context) (*services.AnalysisResult, error) {
	file, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, domain.ErrUploadTooBig
		}
		return nil, domain.ErrMissingFile
	}
	if file.Filename == "" {
		return nil, domain.ErrMissingFile
	}

	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer func(f multipart.File) {
		if err := f.Close(); err != nil {
			log.WithError(err).Warn("close upload")
		}
	}(f)

	return h.analysisSvc.Analyze(c.Request.Context(), file.Filename, io.Reader(f))
}
