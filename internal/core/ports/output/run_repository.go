package ports

import (
	"context"

	"sensor-anomaly-service/internal/core/domain"
)

// RunRepository journals completed analyses. Only summaries are stored.
type RunRepository interface {
	Create(ctx context.Context, run *domain.AnalysisRun) error
	ListRecent(ctx context.Context, limit int) ([]*domain.AnalysisRun, error)
}
