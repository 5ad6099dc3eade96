package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensor-anomaly-service/internal/core/domain"
)

func TestClassifyCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "sensor_data.csv")
	require.NoError(t, os.WriteFile(in, []byte("temperature,vibration,pressure\n40,0.2,1000\n70,0.2,1000\n40,0.2,2500\n"), 0o644))
	outDir := filepath.Join(dir, "out")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"classify", in, "--out-dir", outDir})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), domain.SummaryFaulty)
	assert.Contains(t, out.String(), "anomalies: 2")
	assert.Contains(t, out.String(), "model bypassed: true")
	assert.FileExists(t, filepath.Join(outDir, domain.DefaultAnnotatedCSVName))
	assert.FileExists(t, filepath.Join(outDir, domain.DefaultPlotName))
}

func TestClassifyCommand_ForceModel(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "normal_run.csv")
	require.NoError(t, os.WriteFile(in, []byte("temperature,vibration,pressure\n40,0.2,1000\n41,0.2,1001\n"), 0o644))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"classify", in, "--out-dir", filepath.Join(dir, "out"), "--force-model"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "model bypassed: false")
}

func TestClassifyCommand_MissingFile(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"classify", filepath.Join(t.TempDir(), "nope.csv"), "--out-dir", t.TempDir()})
	assert.Error(t, cmd.Execute())
}
