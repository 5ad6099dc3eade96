// Package plot draws the three-panel anomaly chart as a PNG.
package plot

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"sensor-anomaly-service/internal/core/domain"
)

const (
	DefaultWidth       = 1000
	DefaultPanelHeight = 270
)

// Panel is one stacked sub-chart.
type Panel struct {
	Title  string
	Column string
	Color  drawing.Color
	Min    float64
	Max    float64
}

// Panels are drawn top to bottom with fixed y ranges.
var Panels = []Panel{
	{Title: "Temperature", Column: domain.ColumnTemperature, Color: drawing.ColorFromHex("ffa500"), Min: 20, Max: 100},
	{Title: "Vibration", Column: domain.ColumnVibration, Color: chart.ColorGreen, Min: 0, Max: 1.2},
	{Title: "Pressure", Column: domain.ColumnPressure, Color: chart.ColorBlue, Min: 500, Max: 6000},
}

var anomalyColor = chart.ColorRed

// Renderer turns an annotated dataset into a PNG image.
type Renderer struct {
	Width       int
	PanelHeight int
}

func NewRenderer() *Renderer {
	return &Renderer{Width: DefaultWidth, PanelHeight: DefaultPanelHeight}
}

// Render writes a PNG with one panel per measured quantity. Rows whose final
// status is Anomaly get a larger red marker on every panel.
func (r *Renderer) Render(w io.Writer, a *domain.AnnotatedDataset) error {
	if a.Len() == 0 {
		return domain.ErrEmptyDataset
	}

	canvas := image.NewRGBA(image.Rect(0, 0, r.Width, r.PanelHeight*len(Panels)))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	for i, p := range Panels {
		img, err := r.renderPanel(p, a)
		if err != nil {
			return fmt.Errorf("render %s panel: %w", p.Title, err)
		}
		offset := image.Pt(0, i*r.PanelHeight)
		draw.Draw(canvas, img.Bounds().Add(offset), img, img.Bounds().Min, draw.Src)
	}

	if err := png.Encode(w, canvas); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func (r *Renderer) renderPanel(p Panel, a *domain.AnnotatedDataset) (image.Image, error) {
	col := a.ColumnIndex(p.Column)
	if col < 0 {
		return nil, &domain.SchemaError{Columns: []string{p.Column}}
	}

	xs := make([]float64, a.Len())
	ys := make([]float64, a.Len())
	var ax, ay []float64
	for i, row := range a.Rows {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil {
			return nil, &domain.ParseError{Row: i + 1, Column: p.Column, Value: row[col]}
		}
		xs[i], ys[i] = float64(i), v
		if a.Verdicts[i].Final == domain.StatusAnomaly {
			ax = append(ax, float64(i))
			ay = append(ay, v)
		}
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    p.Title,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: p.Color,
				StrokeWidth: 2,
				DotColor:    p.Color,
				DotWidth:    3,
			},
		},
	}
	if len(ax) > 0 {
		series = append(series, chart.ContinuousSeries{
			Name:    "Anomaly",
			XValues: ax,
			YValues: ay,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotColor:    anomalyColor,
				DotWidth:    7,
			},
		})
	}

	xMax := float64(a.Len() - 1)
	if xMax < 1 {
		xMax = 1
	}
	grid := chart.Style{StrokeColor: drawing.ColorFromHex("dddddd"), StrokeWidth: 1}

	ch := chart.Chart{
		Title:      p.Title,
		Width:      r.Width,
		Height:     r.PanelHeight,
		Background: chart.Style{Padding: chart.Box{Top: 30, Left: 16, Right: 16, Bottom: 10}},
		XAxis: chart.XAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: xMax},
			GridMajorStyle: grid,
		},
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: p.Min, Max: p.Max},
			GridMajorStyle: grid,
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}
