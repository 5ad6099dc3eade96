package domain

import (
	"path/filepath"
	"strings"
)

// Default artifact names. Each analysis overwrites both.
const (
	DefaultAnnotatedCSVName = "sensor_data_with_anomaly.csv"
	DefaultPlotName         = "anomaly_plot.png"
)

// ValidateArtifactName accepts plain file names only.
func ValidateArtifactName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return ErrInvalidArtifactName
	}
	return nil
}
