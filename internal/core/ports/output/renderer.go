package ports

import (
	"io"

	"sensor-anomaly-service/internal/core/domain"
)

// ChartRenderer draws an annotated dataset as an image.
type ChartRenderer interface {
	Render(w io.Writer, a *domain.AnnotatedDataset) error
}

// AnalysisRecorder receives per-run observations for monitoring.
type AnalysisRecorder interface {
	ObserveAnalysis(run *domain.AnalysisRun)
	ObserveFailure(stage string)
}
