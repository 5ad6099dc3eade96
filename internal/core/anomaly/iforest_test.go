package anomaly

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cluster(n int, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	data := make([][]float64, n)
	for i := range data {
		data[i] = []float64{
			40 + rng.NormFloat64(),
			0.25 + rng.NormFloat64()*0.01,
			1200 + rng.NormFloat64()*10,
		}
	}
	return data
}

func TestIsolationForest_FlagsIsolatedPoint(t *testing.T) {
	data := append(cluster(500, 1), []float64{90, 1.0, 5000})

	f := NewIsolationForest(DefaultForestConfig())
	f.Fit(data)
	flags := f.Predict(data)

	require.Len(t, flags, len(data))
	assert.True(t, flags[len(flags)-1])

	scores := f.Scores(data)
	last := scores[len(scores)-1]
	for _, s := range scores[:len(scores)-1] {
		assert.Less(t, s, last)
	}
}

func TestIsolationForest_ContaminationRate(t *testing.T) {
	data := cluster(1000, 5)

	flags := EvaluateModel(data, DefaultForestConfig())

	flagged := 0
	for _, f := range flags {
		if f {
			flagged++
		}
	}
	assert.GreaterOrEqual(t, flagged, 1)
	assert.LessOrEqual(t, flagged, 20)
}

func TestIsolationForest_SameSeedSameFlags(t *testing.T) {
	data := cluster(300, 9)

	a := EvaluateModel(data, DefaultForestConfig())
	b := EvaluateModel(data, DefaultForestConfig())
	assert.Equal(t, a, b)
}

func TestIsolationForest_SingleRowNeverFlagged(t *testing.T) {
	flags := EvaluateModel([][]float64{{40, 0.2, 1000}}, DefaultForestConfig())
	assert.Equal(t, []bool{false}, flags)
}

func TestIsolationForest_ConstantDataNeverFlagged(t *testing.T) {
	data := [][]float64{{1, 2}, {1, 2}, {1, 2}, {1, 2}}
	flags := EvaluateModel(data, DefaultForestConfig())
	assert.Equal(t, []bool{false, false, false, false}, flags)
}

func TestNewIsolationForest_Defaults(t *testing.T) {
	f := NewIsolationForest(ForestConfig{Seed: 7})
	assert.Equal(t, 200, f.cfg.Trees)
	assert.Equal(t, 256, f.cfg.MaxSamples)
	assert.Equal(t, 0.01, f.cfg.Contamination)
	assert.Equal(t, int64(7), f.cfg.Seed)
}

func TestPercentile(t *testing.T) {
	assert.Equal(t, 1.0, percentile([]float64{3, 1, 2}, 0))
	assert.Equal(t, 3.0, percentile([]float64{3, 1, 2}, 100))
	assert.Equal(t, 2.0, percentile([]float64{3, 1, 2}, 50))
	assert.InDelta(t, 1.02, percentile([]float64{3, 1, 2}, 1), 1e-9)
}

func TestAveragePathLength(t *testing.T) {
	assert.Equal(t, 0.0, averagePathLength(1))
	assert.Equal(t, 1.0, averagePathLength(2))
	assert.InDelta(t, 10.2448, averagePathLength(256), 1e-3)
}
