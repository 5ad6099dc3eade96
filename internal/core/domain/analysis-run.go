package domain

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisRun summarises one completed analysis. It never carries the dataset.
type AnalysisRun struct {
	ID            uuid.UUID      `json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	FileName      string         `json:"file_name"`
	RowCount      int            `json:"row_count"`
	AnomalyCount  int            `json:"anomaly_count"`
	Verdict       DatasetVerdict `json:"verdict"`
	ModelBypassed bool           `json:"model_bypassed"`
	DurationMS    int64          `json:"duration_ms"`
}

const (
	SummaryFaulty = "⚠️ Machine may be faulty!"
	SummaryNormal = "✅ Machine is working normally."
)

// Summary is the display text for a dataset verdict.
func Summary(v DatasetVerdict) string {
	if v == DatasetFaulty {
		return SummaryFaulty
	}
	return SummaryNormal
}
