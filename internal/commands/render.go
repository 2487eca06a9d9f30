package commands

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/repasses-dev/repasses/internal/currency"
	"github.com/repasses-dev/repasses/internal/model"
)

// NoData is printed in place of an empty table.
const NoData = "sem dados"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
)

// renderTable prints a titled table, or the placeholder when rows is empty.
// The first column is left aligned and the rest right aligned.
func renderTable(w io.Writer, title string, headers []string, rows [][]string) {
	if title != "" {
		fmt.Fprintln(w, titleStyle.Render(title))
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render(NoData))
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := cellStyle
			if row == table.HeaderRow {
				style = headerStyle
			}
			if col > 0 {
				return style.Align(lipgloss.Right)
			}
			return style
		})
	fmt.Fprintln(w, t.Render())
}

func municipalityLabel(ids []string) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = model.DisplayMunicipality(id)
	}
	return strings.Join(names, ", ")
}

func year(y int32) string {
	return strconv.Itoa(int(y))
}

func years(ys []int32) string {
	out := make([]string, len(ys))
	for i, y := range ys {
		out[i] = year(y)
	}
	return strings.Join(out, ", ")
}

// money formats a float statistic, showing "-" when it is undefined.
func money(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return currency.Format(v)
}
