// Package table reads uploaded sensor tables and writes the annotated copy.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"sensor-anomaly-service/internal/core/domain"
)

// Columns appended to every annotated table, in output order.
const (
	ColumnModelAnomaly = "model_anomaly"
	ColumnModelStatus  = "model_status"
	ColumnRuleAnomaly  = "rule_anomaly"
	ColumnFinalStatus  = "final_status"
)

var AppendedColumns = []string{ColumnModelAnomaly, ColumnModelStatus, ColumnRuleAnomaly, ColumnFinalStatus}

// Read loads a header row plus records. Rows with a different field count
// than the header are rejected. Header names are trimmed; cells are kept as
// written.
func Read(r io.Reader, fileName string) (*domain.Dataset, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.ErrEmptyDataset
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedCSV, err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	ds := &domain.Dataset{FileName: fileName, Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedCSV, err)
		}
		ds.Rows = append(ds.Rows, rec)
	}
	return ds, nil
}

// WriteAnnotated writes the original table followed by the four verdict
// columns.
func WriteAnnotated(w io.Writer, a *domain.AnnotatedDataset) error {
	if len(a.Verdicts) != a.Len() {
		return fmt.Errorf("annotated dataset has %d rows but %d verdicts", a.Len(), len(a.Verdicts))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(AnnotatedHeader(a.Dataset)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range a.Rows {
		if err := cw.Write(AnnotatedRow(row, a.Verdicts[i])); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func AnnotatedHeader(ds *domain.Dataset) []string {
	out := make([]string, 0, len(ds.Header)+len(AppendedColumns))
	out = append(out, ds.Header...)
	return append(out, AppendedColumns...)
}

func AnnotatedRow(row []string, v domain.Verdict) []string {
	rule := "0"
	if v.RuleFlag {
		rule = "1"
	}
	out := make([]string, 0, len(row)+len(AppendedColumns))
	out = append(out, row...)
	return append(out,
		strconv.Itoa(v.ModelScore),
		string(v.ModelStatus()),
		rule,
		string(v.Final),
	)
}

// Preview returns the annotated header and at most n annotated rows.
func Preview(a *domain.AnnotatedDataset, n int) ([]string, [][]string) {
	if n > a.Len() || n < 0 {
		n = a.Len()
	}
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		rows[i] = AnnotatedRow(a.Rows[i], a.Verdicts[i])
	}
	return AnnotatedHeader(a.Dataset), rows
}
