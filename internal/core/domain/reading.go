package domain

// Required measurement columns. Every other column is carried through untouched.
const (
	ColumnTemperature = "temperature"
	ColumnVibration   = "vibration"
	ColumnPressure    = "pressure"
)

var RequiredColumns = []string{ColumnTemperature, ColumnVibration, ColumnPressure}

// Reading is the measured part of one input row.
type Reading struct {
	Temperature float64 `json:"temperature"`
	Vibration   float64 `json:"vibration"`
	Pressure    float64 `json:"pressure"`
}

// Dataset is an uploaded table in file order. Cells are kept as read,
// whitespace included, so passthrough columns keep their values.
type Dataset struct {
	FileName string
	Header   []string
	Rows     [][]string
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// ColumnIndex returns the position of name in the header, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, h := range d.Header {
		if h == name {
			return i
		}
	}
	return -1
}
