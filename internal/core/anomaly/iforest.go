package anomaly

import (
	"math"
	"math/rand"
	"sort"
)

const eulerGamma = 0.5772156649015329

// ForestConfig parameterises the isolation forest.
type ForestConfig struct {
	// Trees is the number of isolation trees in the ensemble.
	Trees int
	// MaxSamples caps the sub-sample drawn for each tree.
	MaxSamples int
	// Contamination is the expected share of outliers in the data.
	Contamination float64
	// Seed makes tree construction reproducible.
	Seed int64
}

// DefaultForestConfig mirrors the demo's model: 200 trees, 256-row
// sub-samples, about 1% contamination and seed 42.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		Trees:         200,
		MaxSamples:    256,
		Contamination: 0.01,
		Seed:          42,
	}
}

type node struct {
	feature     int
	split       float64
	left, right *node
	size        int
}

func (n *node) leaf() bool { return n.left == nil }

// IsolationForest scores rows by how quickly random axis-aligned splits
// isolate them. It is built per call and never shared.
type IsolationForest struct {
	cfg        ForestConfig
	trees      []*node
	sampleSize int
	offset     float64
}

// NewIsolationForest returns an unfitted forest. Zero fields in cfg fall back
// to DefaultForestConfig.
func NewIsolationForest(cfg ForestConfig) *IsolationForest {
	def := DefaultForestConfig()
	if cfg.Trees <= 0 {
		cfg.Trees = def.Trees
	}
	if cfg.MaxSamples <= 0 {
		cfg.MaxSamples = def.MaxSamples
	}
	if cfg.Contamination <= 0 || cfg.Contamination >= 0.5 {
		cfg.Contamination = def.Contamination
	}
	return &IsolationForest{cfg: cfg}
}

// Fit grows the ensemble on data and fixes the outlier cut-off at the
// contamination percentile of the training scores.
func (f *IsolationForest) Fit(data [][]float64) {
	n := len(data)
	f.trees = f.trees[:0]
	if n == 0 {
		return
	}

	rng := rand.New(rand.NewSource(f.cfg.Seed))
	f.sampleSize = f.cfg.MaxSamples
	if f.sampleSize > n {
		f.sampleSize = n
	}
	heightLimit := int(math.Ceil(math.Log2(math.Max(float64(f.sampleSize), 2))))

	for t := 0; t < f.cfg.Trees; t++ {
		idx := rng.Perm(n)[:f.sampleSize]
		f.trees = append(f.trees, grow(rng, data, idx, 0, heightLimit))
	}

	scores := f.Scores(data)
	neg := make([]float64, len(scores))
	for i, s := range scores {
		neg[i] = -s
	}
	f.offset = percentile(neg, 100*f.cfg.Contamination)
}

// Scores returns the anomaly score of each row in (0, 1]. Higher means more
// isolated.
func (f *IsolationForest) Scores(data [][]float64) []float64 {
	out := make([]float64, len(data))
	norm := averagePathLength(f.sampleSize)
	for i, x := range data {
		if len(f.trees) == 0 || norm == 0 {
			out[i] = 0.5
			continue
		}
		var total float64
		for _, t := range f.trees {
			total += pathLength(t, x, 0)
		}
		out[i] = math.Pow(2, -(total/float64(len(f.trees)))/norm)
	}
	return out
}

// Predict flags rows whose score lies strictly beyond the fitted cut-off.
func (f *IsolationForest) Predict(data [][]float64) []bool {
	scores := f.Scores(data)
	flags := make([]bool, len(scores))
	for i, s := range scores {
		flags[i] = -s < f.offset
	}
	return flags
}

func grow(rng *rand.Rand, data [][]float64, idx []int, depth, limit int) *node {
	if depth >= limit || len(idx) <= 1 {
		return &node{size: len(idx)}
	}

	dims := len(data[idx[0]])
	var candidates []int
	lows := make([]float64, dims)
	highs := make([]float64, dims)
	for d := 0; d < dims; d++ {
		lo, hi := data[idx[0]][d], data[idx[0]][d]
		for _, i := range idx[1:] {
			v := data[i][d]
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		lows[d], highs[d] = lo, hi
		if hi > lo {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		return &node{size: len(idx)}
	}

	feature := candidates[rng.Intn(len(candidates))]
	lo, hi := lows[feature], highs[feature]
	split := lo + rng.Float64()*(hi-lo)
	if split <= lo {
		split = lo + (hi-lo)/2
	}

	var left, right []int
	for _, i := range idx {
		if data[i][feature] < split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &node{
		feature: feature,
		split:   split,
		left:    grow(rng, data, left, depth+1, limit),
		right:   grow(rng, data, right, depth+1, limit),
		size:    len(idx),
	}
}

func pathLength(n *node, x []float64, depth int) float64 {
	for !n.leaf() {
		if x[n.feature] < n.split {
			n = n.left
		} else {
			n = n.right
		}
		depth++
	}
	return float64(depth) + averagePathLength(n.size)
}

// averagePathLength is the expected path length of an unsuccessful search in
// a binary search tree of n nodes.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	fn := float64(n)
	return 2*(math.Log(fn-1)+eulerGamma) - 2*(fn-1)/fn
}

// percentile uses linear interpolation between closest ranks.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}
