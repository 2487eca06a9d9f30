// Package chart renders bar charts of aggregation results.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/repasses-dev/repasses/internal/currency"
	"github.com/repasses-dev/repasses/internal/stats"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no data to chart")

// Bar is one labelled value.
type Bar struct {
	Label string
	Value float64
}

// Chart describes a bar chart with an optional line overlay. The overlay
// holds one value per bar; it is scaled onto the bar axis and each point is
// labelled with its own value.
type Chart struct {
	Title       string
	XLabel      string
	Bars        []Bar
	BarsName    string
	Overlay     []float64
	OverlayName string
}

// Years charts the total paid per year with the mean per disbursement
// drawn over it.
func Years(groups []stats.Group[int32]) Chart {
	c := Chart{
		Title:       "Total pago por exercício",
		XLabel:      "Exercício",
		BarsName:    "Total anual",
		OverlayName: "Média por repasse",
	}
	for _, g := range groups {
		c.Bars = append(c.Bars, Bar{Label: strconv.Itoa(int(g.Key)), Value: g.Sum.InexactFloat64()})
		c.Overlay = append(c.Overlay, g.Mean)
	}
	return c
}

// Functions charts the total paid per government function.
func Functions(groups []stats.Group[string]) Chart {
	c := Chart{Title: "Total pago por função de governo", XLabel: "Função"}
	for _, g := range groups {
		c.Bars = append(c.Bars, Bar{Label: g.Key, Value: g.Sum.InexactFloat64()})
	}
	return c
}

// Entities charts the total paid to each ranked beneficiary.
func Entities(entities []stats.EntityStats) Chart {
	c := Chart{Title: "Maiores beneficiários", XLabel: "Beneficiário"}
	for _, e := range entities {
		c.Bars = append(c.Bars, Bar{Label: shorten(e.Beneficiary, 24), Value: e.Sum.InexactFloat64()})
	}
	return c
}

// Plot builds the gonum plot for c.
func (c Chart) Plot() (*plot.Plot, error) {
	if len(c.Bars) == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = "Valor pago"

	values := make(plotter.Values, len(c.Bars))
	labels := make([]string, len(c.Bars))
	for i, b := range c.Bars {
		values[i] = b.Value
		labels[i] = b.Label
	}

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return nil, fmt.Errorf("building bars: %w", err)
	}
	bars.Color = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(plotter.NewGrid(), bars)

	p.NominalX(labels...)
	if len(labels) > 6 {
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}
	p.Y.Min = 0
	p.Y.Tick.Marker = currencyTicks{}

	if c.BarsName != "" {
		p.Legend.Add(c.BarsName, bars)
	}
	if pts, ok := c.overlayPoints(); ok {
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, fmt.Errorf("building overlay: %w", err)
		}
		line.Color = overlayColor
		line.Width = vg.Points(2)
		points.Color = overlayColor

		labels := make([]string, len(c.Overlay))
		for i, v := range c.Overlay {
			labels[i] = currency.Format(v)
		}
		values, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: labels})
		if err != nil {
			return nil, fmt.Errorf("labelling overlay: %w", err)
		}
		values.Offset = vg.Point{Y: vg.Points(6)}

		p.Add(line, points, values)
		p.Legend.Add(c.OverlayName, line, points)
	}
	p.Legend.Top = true
	return p, nil
}

var overlayColor = color.RGBA{R: 230, G: 126, B: 34, A: 255}

// overlayPoints scales the overlay so its peak meets the tallest bar.
// It reports false when there is no usable overlay.
func (c Chart) overlayPoints() (plotter.XYs, bool) {
	if len(c.Overlay) == 0 || len(c.Overlay) != len(c.Bars) {
		return nil, false
	}
	var peakBar, peakLine float64
	for i, v := range c.Overlay {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		peakLine = math.Max(peakLine, v)
		peakBar = math.Max(peakBar, c.Bars[i].Value)
	}
	if peakLine <= 0 || peakBar <= 0 {
		return nil, false
	}
	scale := peakBar / peakLine
	pts := make(plotter.XYs, len(c.Overlay))
	for i, v := range c.Overlay {
		pts[i] = plotter.XY{X: float64(i), Y: v * scale}
	}
	return pts, true
}

// Render renders c as format ("png", "svg" or "pdf") to w.
func (c Chart) Render(w io.Writer, format string) error {
	p, err := c.Plot()
	if err != nil {
		return err
	}
	width := 8 * vg.Inch
	if n := len(c.Bars); n > 8 {
		width = vg.Length(n) * vg.Inch
	}
	wt, err := p.WriterTo(width, 5*vg.Inch, format)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", format, err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// Save renders c into path, choosing the format from its extension.
func (c Chart) Save(path string) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "" {
		format = "png"
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := c.Render(f, format); err != nil {
		f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

type currencyTicks struct{}

func (currencyTicks) Ticks(lo, hi float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(lo, hi)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = currency.Format(ticks[i].Value)
		}
	}
	return ticks
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
