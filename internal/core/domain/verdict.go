package domain

type Status string

const (
	StatusNormal  Status = "Normal"
	StatusAnomaly Status = "Anomaly"
)

type DatasetVerdict string

const (
	DatasetNormal DatasetVerdict = "Normal"
	DatasetFaulty DatasetVerdict = "Faulty"
)

// FaultyThreshold is the number of anomalous rows at which a whole file is
// reported as faulty.
const FaultyThreshold = 2

// Raw statistical encodings written to the model_anomaly column.
const (
	ModelScoreInlier  = 1
	ModelScoreOutlier = -1
)

// Verdict is the per-row outcome of both signals.
type Verdict struct {
	ModelScore int    `json:"model_anomaly"`
	ModelFlag  bool   `json:"model_flag"`
	RuleFlag   bool   `json:"rule_flag"`
	Final      Status `json:"final_status"`
}

// NewVerdict combines the two signals. Either one alone is enough for Anomaly.
func NewVerdict(modelFlag, ruleFlag bool) Verdict {
	v := Verdict{
		ModelScore: ModelScoreInlier,
		ModelFlag:  modelFlag,
		RuleFlag:   ruleFlag,
		Final:      StatusNormal,
	}
	if modelFlag {
		v.ModelScore = ModelScoreOutlier
	}
	if modelFlag || ruleFlag {
		v.Final = StatusAnomaly
	}
	return v
}

func (v Verdict) ModelStatus() Status {
	if v.ModelFlag {
		return StatusAnomaly
	}
	return StatusNormal
}

// AnnotatedDataset is a Dataset plus one Verdict per row, in the same order.
type AnnotatedDataset struct {
	*Dataset
	Verdicts      []Verdict      `json:"verdicts"`
	AnomalyCount  int            `json:"anomaly_count"`
	Verdict       DatasetVerdict `json:"verdict"`
	ModelBypassed bool           `json:"model_bypassed"`
}

// Anomalies returns the row indexes whose final status is Anomaly.
func (a *AnnotatedDataset) Anomalies() []int {
	idx := make([]int, 0, a.AnomalyCount)
	for i, v := range a.Verdicts {
		if v.Final == StatusAnomaly {
			idx = append(idx, i)
		}
	}
	return idx
}

func VerdictFor(anomalyCount int) DatasetVerdict {
	if anomalyCount >= FaultyThreshold {
		return DatasetFaulty
	}
	return DatasetNormal
}
