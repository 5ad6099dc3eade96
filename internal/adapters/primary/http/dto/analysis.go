package dto

import (
	"time"

	"github.com/google/uuid"

	"sensor-anomaly-service/internal/core/domain"
	"sensor-anomaly-service/internal/core/services"
)

type RunResponse struct {
	ID            uuid.UUID `json:"id"`
	CreatedAt     string    `json:"created_at"`
	FileName      string    `json:"file_name"`
	RowCount      int       `json:"row_count"`
	AnomalyCount  int       `json:"anomaly_count"`
	Verdict       string    `json:"verdict"`
	ModelBypassed bool      `json:"model_bypassed"`
	DurationMS    int64     `json:"duration_ms"`
}

type AnalysisResponse struct {
	Run             RunResponse `json:"run"`
	Summary         string      `json:"summary"`
	Faulty          bool        `json:"faulty"`
	AnnotatedCSVURL string      `json:"annotated_csv_url"`
	PlotURL         string      `json:"plot_url"`
	PreviewHeader   []string    `json:"preview_header"`
	PreviewRows     [][]string  `json:"preview_rows"`
}

type ListRunsResponse struct {
	Items []RunResponse `json:"items"`
	Total int           `json:"total"`
}

func ToRunResponse(r *domain.AnalysisRun) RunResponse {
	return RunResponse{
		ID:            r.ID,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
		FileName:      r.FileName,
		RowCount:      r.RowCount,
		AnomalyCount:  r.AnomalyCount,
		Verdict:       string(r.Verdict),
		ModelBypassed: r.ModelBypassed,
		DurationMS:    r.DurationMS,
	}
}

// ToAnalysisResponse maps a result; artifactURL builds the link for a stored
// artifact name.
func ToAnalysisResponse(res *services.AnalysisResult, artifactURL func(name string) string) AnalysisResponse {
	return AnalysisResponse{
		Run:             ToRunResponse(res.Run),
		Summary:         res.Summary,
		Faulty:          res.Faulty,
		AnnotatedCSVURL: artifactURL(res.AnnotatedCSV),
		PlotURL:         artifactURL(res.Plot),
		PreviewHeader:   res.PreviewHeader,
		PreviewRows:     res.PreviewRows,
	}
}

func ToListRunsResponse(runs []*domain.AnalysisRun) ListRunsResponse {
	items := make([]RunResponse, 0, len(runs))
	for _, r := range runs {
		items = append(items, ToRunResponse(r))
	}
	return ListRunsResponse{Items: items, Total: len(items)}
}
