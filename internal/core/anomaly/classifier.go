// Package anomaly flags sensor rows using a per-request isolation forest and
// fixed operating thresholds.
package anomaly

import (
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"sensor-anomaly-service/internal/core/domain"
)

// Options controls one classification.
type Options struct {
	// UseStatisticalModel enables the isolation forest. When false every row
	// is treated as an inlier by the model and only the rules apply.
	UseStatisticalModel bool
	Forest              ForestConfig
}

// ShouldUseStatisticalModel reports whether the outlier model runs for an
// upload with the given name. Demo files named "*normal*" or exactly
// "sensor_data.csv" (any case) skip it.
func ShouldUseStatisticalModel(fileName string) bool {
	base := strings.ToLower(filepath.Base(fileName))
	return !strings.Contains(base, "normal") && base != "sensor_data.csv"
}

// Classify scores every row of ds. Missing required columns and unreadable
// numbers fail the whole dataset before any scoring happens.
func Classify(ds *domain.Dataset, opts Options) (*domain.AnnotatedDataset, error) {
	readings, err := Readings(ds)
	if err != nil {
		return nil, err
	}

	modelFlags := make([]bool, len(readings))
	if opts.UseStatisticalModel {
		modelFlags = EvaluateModel(FeatureMatrix(ds), opts.Forest)
	}

	out := &domain.AnnotatedDataset{
		Dataset:       ds,
		Verdicts:      make([]domain.Verdict, len(readings)),
		ModelBypassed: !opts.UseStatisticalModel,
	}
	for i, r := range readings {
		v := domain.NewVerdict(modelFlags[i], EvaluateRules(r))
		if v.Final == domain.StatusAnomaly {
			out.AnomalyCount++
		}
		out.Verdicts[i] = v
	}
	out.Verdict = domain.VerdictFor(out.AnomalyCount)

	return out, nil
}

// EvaluateModel fits a fresh isolation forest on features and returns its
// outlier flags for the same rows.
func EvaluateModel(features [][]float64, cfg ForestConfig) []bool {
	forest := NewIsolationForest(cfg)
	forest.Fit(features)
	return forest.Predict(features)
}

// Readings extracts the three required measurements from every row.
func Readings(ds *domain.Dataset) ([]domain.Reading, error) {
	if err := CheckSchema(ds); err != nil {
		return nil, err
	}
	if ds.Len() == 0 {
		return nil, domain.ErrEmptyDataset
	}

	ti := ds.ColumnIndex(domain.ColumnTemperature)
	vi := ds.ColumnIndex(domain.ColumnVibration)
	pi := ds.ColumnIndex(domain.ColumnPressure)

	readings := make([]domain.Reading, len(ds.Rows))
	for i, row := range ds.Rows {
		var err error
		r := &readings[i]
		if r.Temperature, err = cell(row, ti, i, domain.ColumnTemperature); err != nil {
			return nil, err
		}
		if r.Vibration, err = cell(row, vi, i, domain.ColumnVibration); err != nil {
			return nil, err
		}
		if r.Pressure, err = cell(row, pi, i, domain.ColumnPressure); err != nil {
			return nil, err
		}
	}
	return readings, nil
}

// CheckSchema fails with a SchemaError naming every absent required column.
func CheckSchema(ds *domain.Dataset) error {
	present := sets.New[string]()
	if ds != nil {
		present.Insert(ds.Header...)
	}
	missing := sets.New(domain.RequiredColumns...).Difference(present)
	if missing.Len() > 0 {
		return &domain.SchemaError{Columns: sets.List(missing)}
	}
	return nil
}

// FeatureMatrix returns every column whose cells are all finite numbers, in
// header order. The required columns always qualify once Readings succeeded.
func FeatureMatrix(ds *domain.Dataset) [][]float64 {
	var cols [][]float64
	for c := range ds.Header {
		if col, ok := numericColumn(ds.Rows, c); ok {
			cols = append(cols, col)
		}
	}

	out := make([][]float64, len(ds.Rows))
	for i := range ds.Rows {
		vec := make([]float64, len(cols))
		for j, col := range cols {
			vec[j] = col[i]
		}
		out[i] = vec
	}
	return out
}

// numericColumn parses column c of every row, stopping at the first cell
// that is not a finite number.
func numericColumn(rows [][]string, c int) ([]float64, bool) {
	col := make([]float64, len(rows))
	for i, row := range rows {
		v, ok := parseFinite(row, c)
		if !ok {
			return nil, false
		}
		col[i] = v
	}
	return col, true
}

func cell(row []string, col, rowIdx int, name string) (float64, error) {
	v, ok := parseFinite(row, col)
	if !ok {
		raw := ""
		if col < len(row) {
			raw = row[col]
		}
		return 0, &domain.ParseError{Row: rowIdx + 1, Column: name, Value: raw}
	}
	return v, nil
}

func parseFinite(row []string, col int) (float64, bool) {
	if col < 0 || col >= len(row) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
