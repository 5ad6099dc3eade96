package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"sensor-anomaly-service/internal/core/domain"
	ports "sensor-anomaly-service/internal/core/ports/output"
)

// Schema creates the run journal table.
const Schema = `
	CREATE TABLE IF NOT EXISTS analysis_run (
		id             UUID PRIMARY KEY,
		created_at     TIMESTAMPTZ NOT NULL,
		file_name      TEXT NOT NULL,
		row_count      INTEGER NOT NULL,
		anomaly_count  INTEGER NOT NULL,
		verdict        TEXT NOT NULL,
		model_bypassed BOOLEAN NOT NULL,
		duration_ms    BIGINT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS analysis_run_created_at_idx ON analysis_run (created_at DESC);
`

const maxListLimit = 500

// Querier is the subset of *pgxpool.Pool the repository needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type analysisRunRepo struct {
	db Querier
}

func NewAnalysisRunRepository(db Querier) ports.RunRepository {
	return &analysisRunRepo{db: db}
}

// EnsureSchema applies Schema. It is safe to run on every start.
func EnsureSchema(ctx context.Context, db Querier) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply analysis_run schema: %w", err)
	}
	return nil
}

func (r *analysisRunRepo) Create(ctx context.Context, run *domain.AnalysisRun) error {
	query := `
		INSERT INTO analysis_run
			(id, created_at, file_name, row_count, anomaly_count, verdict, model_bypassed, duration_ms)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`
	_, err := r.db.Exec(ctx, query,
		run.ID, run.CreatedAt, run.FileName,
		run.RowCount, run.AnomalyCount, string(run.Verdict),
		run.ModelBypassed, run.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("create analysis run: %w", err)
	}
	return nil
}

func (r *analysisRunRepo) ListRecent(ctx context.Context, limit int) ([]*domain.AnalysisRun, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	query := `
		SELECT id, created_at, file_name, row_count, anomaly_count, verdict, model_bypassed, duration_ms
		FROM analysis_run
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list analysis runs: %w", err)
	}
	defer rows.Close()

	runs := []*domain.AnalysisRun{}
	for rows.Next() {
		var (
			run     domain.AnalysisRun
			verdict string
		)
		if err := rows.Scan(
			&run.ID, &run.CreatedAt, &run.FileName,
			&run.RowCount, &run.AnomalyCount, &verdict,
			&run.ModelBypassed, &run.DurationMS,
		); err != nil {
			return nil, fmt.Errorf("scan analysis run row: %w", err)
		}
		run.Verdict = domain.DatasetVerdict(verdict)
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analysis run rows: %w", err)
	}

	return runs, nil
}
