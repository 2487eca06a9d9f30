package chart

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repasses-dev/repasses/internal/stats"
)

func yearGroups() []stats.Group[int32] {
	return []stats.Group[int32]{
		{Key: 2021, Stats: stats.Stats{Count: 2, Sum: decimal.NewFromInt(1500000), Mean: 750000}},
		{Key: 2022, Stats: stats.Stats{Count: 1, Sum: decimal.NewFromInt(250000), Mean: 250000}},
	}
}

func TestYearsChart(t *testing.T) {
	c := Years(yearGroups())
	require.Len(t, c.Bars, 2)
	assert.Equal(t, "2021", c.Bars[0].Label)
	assert.InDelta(t, 1500000, c.Bars[0].Value, 1e-9)
	assert.Equal(t, []float64{750000, 250000}, c.Overlay)
	assert.Equal(t, "Média por repasse", c.OverlayName)
}

func TestOverlayScaledToBars(t *testing.T) {
	pts, ok := Years(yearGroups()).overlayPoints()
	require.True(t, ok)
	require.Len(t, pts, 2)
	assert.InDelta(t, 0, pts[0].X, 1e-9)
	assert.InDelta(t, 1500000, pts[0].Y, 1e-6)
	assert.InDelta(t, 1, pts[1].X, 1e-9)
	assert.InDelta(t, 500000, pts[1].Y, 1e-6)
}

func TestOverlaySkipped(t *testing.T) {
	bars := []Bar{{Label: "a", Value: 10}, {Label: "b", Value: 20}}
	tests := []struct {
		name    string
		overlay []float64
	}{
		{"none", nil},
		{"length mismatch", []float64{1}},
		{"nan", []float64{1, math.NaN()}},
		{"all zero", []float64{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Chart{Bars: bars, Overlay: tt.overlay}.overlayPoints()
			assert.False(t, ok)
		})
	}
	assert.Nil(t, Functions([]stats.Group[string]{{Key: "Saúde"}}).Overlay)
}

func TestEntitiesShortensLabels(t *testing.T) {
	c := Entities([]stats.EntityStats{{Beneficiary: "Associação Beneficente Hospitalar de Cotia", Sum: decimal.NewFromInt(1)}})
	require.Len(t, c.Bars, 1)
	assert.Len(t, []rune(c.Bars[0].Label), 24)
}

func TestRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Years(yearGroups()).Render(&buf, "png"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestEmptyChart(t *testing.T) {
	var buf bytes.Buffer
	err := Functions(nil).Render(&buf, "png")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anos.svg")
	require.NoError(t, Years(yearGroups()).Save(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")

	missing := filepath.Join(t.TempDir(), "vazio.png")
	assert.ErrorIs(t, Functions(nil).Save(missing), ErrNoData)
	_, err = os.Stat(missing)
	assert.True(t, os.IsNotExist(err))
}

func TestCurrencyTicks(t *testing.T) {
	ticks := currencyTicks{}.Ticks(0, 2000000)
	require.NotEmpty(t, ticks)
	for _, tk := range ticks {
		if tk.Label != "" {
			assert.Contains(t, tk.Label, "R$")
		}
	}
}
