package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"sensor-anomaly-service/internal/core/anomaly"
	"sensor-anomaly-service/internal/core/domain"
	ports "sensor-anomaly-service/internal/core/ports/output"
	"sensor-anomaly-service/internal/core/table"
)

// Pipeline stages, used to label failures.
const (
	StageLoad     = "load"
	StageClassify = "classify"
	StageWriteCSV = "write_csv"
	StageRender   = "render"
)

// AnalysisOptions fixes artifact names and model settings for a deployment.
type AnalysisOptions struct {
	AnnotatedCSVName string
	PlotName         string
	PreviewRows      int
	Seed             int64
	// ForceModel scores every upload with the statistical model, ignoring
	// the file name shortcut.
	ForceModel bool
}

// AnalysisService runs the load, score, annotate, plot and summarize
// pipeline. It keeps no state between calls; the only thing two requests
// share is the artifact store, where the last writer wins.
type AnalysisService struct {
	store    ports.ArtifactStore
	renderer ports.ChartRenderer
	runs     ports.RunRepository
	recorder ports.AnalysisRecorder
	opts     AnalysisOptions
	now      func() time.Time
}

// NewAnalysisService creates a new analysis service. runs and recorder may be nil.
func NewAnalysisService(
	store ports.ArtifactStore,
	renderer ports.ChartRenderer,
	runs ports.RunRepository,
	recorder ports.AnalysisRecorder,
	opts AnalysisOptions,
) *AnalysisService {
	if opts.AnnotatedCSVName == "" {
		opts.AnnotatedCSVName = domain.DefaultAnnotatedCSVName
	}
	if opts.PlotName == "" {
		opts.PlotName = domain.DefaultPlotName
	}
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = 20
	}
	if opts.Seed == 0 {
		opts.Seed = anomaly.DefaultForestConfig().Seed
	}
	return &AnalysisService{
		store:    store,
		renderer: renderer,
		runs:     runs,
		recorder: recorder,
		opts:     opts,
		now:      time.Now,
	}
}

// AnalysisResult is everything a caller needs to present one run.
type AnalysisResult struct {
	Run           *domain.AnalysisRun `json:"run"`
	Summary       string              `json:"summary"`
	Faulty        bool                `json:"faulty"`
	AnnotatedCSV  string              `json:"annotated_csv"`
	Plot          string              `json:"plot"`
	PreviewHeader []string            `json:"preview_header"`
	PreviewRows   [][]string          `json:"preview_rows"`
}

func (s *AnalysisService) AnnotatedCSVName() string { return s.opts.AnnotatedCSVName }
func (s *AnalysisService) PlotName() string         { return s.opts.PlotName }

// Analyze classifies the uploaded table and persists both artifacts. Any
// failure aborts the run; nothing is retried and no rows are skipped.
func (s *AnalysisService) Analyze(ctx context.Context, fileName string, r io.Reader) (*AnalysisResult, error) {
	if fileName == "" || r == nil {
		return nil, domain.ErrMissingFile
	}
	start := s.now()

	ds, err := table.Read(r, fileName)
	if err != nil {
		return nil, s.fail(StageLoad, err)
	}

	useModel := s.opts.ForceModel || anomaly.ShouldUseStatisticalModel(fileName)
	forest := anomaly.DefaultForestConfig()
	forest.Seed = s.opts.Seed

	annotated, err := anomaly.Classify(ds, anomaly.Options{UseStatisticalModel: useModel, Forest: forest})
	if err != nil {
		return nil, s.fail(StageClassify, err)
	}

	var csvBuf bytes.Buffer
	if err := table.WriteAnnotated(&csvBuf, annotated); err != nil {
		return nil, s.fail(StageWriteCSV, err)
	}
	if err := s.store.Put(ctx, s.opts.AnnotatedCSVName, "text/csv", csvBuf.Bytes()); err != nil {
		return nil, s.fail(StageWriteCSV, fmt.Errorf("store annotated csv: %w", err))
	}

	var pngBuf bytes.Buffer
	if err := s.renderer.Render(&pngBuf, annotated); err != nil {
		return nil, s.fail(StageRender, err)
	}
	if err := s.store.Put(ctx, s.opts.PlotName, "image/png", pngBuf.Bytes()); err != nil {
		return nil, s.fail(StageRender, fmt.Errorf("store plot: %w", err))
	}

	run := &domain.AnalysisRun{
		ID:            uuid.New(),
		CreatedAt:     start.UTC(),
		FileName:      fileName,
		RowCount:      annotated.Len(),
		AnomalyCount:  annotated.AnomalyCount,
		Verdict:       annotated.Verdict,
		ModelBypassed: annotated.ModelBypassed,
		DurationMS:    s.now().Sub(start).Milliseconds(),
	}

	if s.runs != nil {
		if err := s.runs.Create(ctx, run); err != nil {
			log.WithError(err).WithField("run_id", run.ID).Warn("record analysis run failed")
		}
	}
	if s.recorder != nil {
		s.recorder.ObserveAnalysis(run)
	}

	log.WithFields(log.Fields{
		"run_id":         run.ID,
		"file":           fileName,
		"rows":           run.RowCount,
		"anomalies":      run.AnomalyCount,
		"verdict":        run.Verdict,
		"model_bypassed": run.ModelBypassed,
		"duration_ms":    run.DurationMS,
	}).Info("analysis completed")

	header, rows := table.Preview(annotated, s.opts.PreviewRows)
	return &AnalysisResult{
		Run:           run,
		Summary:       domain.Summary(annotated.Verdict),
		Faulty:        annotated.Verdict == domain.DatasetFaulty,
		AnnotatedCSV:  s.opts.AnnotatedCSVName,
		Plot:          s.opts.PlotName,
		PreviewHeader: header,
		PreviewRows:   rows,
	}, nil
}

// Artifact opens a stored artifact by name for download.
func (s *AnalysisService) Artifact(ctx context.Context, name string) (io.ReadCloser, *ports.Artifact, error) {
	if err := domain.ValidateArtifactName(name); err != nil {
		return nil, nil, err
	}
	return s.store.Open(ctx, name)
}

// RecentRuns lists journaled runs, newest first.
func (s *AnalysisService) RecentRuns(ctx context.Context, limit int) ([]*domain.AnalysisRun, error) {
	if s.runs == nil {
		return nil, domain.ErrRunJournalDisabled
	}
	return s.runs.ListRecent(ctx, limit)
}

// JournalEnabled reports whether runs are being recorded.
func (s *AnalysisService) JournalEnabled() bool {
	return s.runs != nil
}

func (s *AnalysisService) fail(stage string, err error) error {
	if s.recorder != nil {
		s.recorder.ObserveFailure(stage)
	}
	return err
}
