package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/repasses-dev/repasses/internal/currency"
	"github.com/repasses-dev/repasses/internal/model"
	"github.com/repasses-dev/repasses/internal/stats"
)

func newCompareCommand(opts *globalOptions) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare municipalities side by side",
		Long:  "Compare two or more municipalities given with -m, or the configured defaults.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, q, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			ids := model.NormalizeMunicipalities(q.Municipalities)
			if len(ids) == 0 {
				ids = model.NormalizeMunicipalities(a.cfg.Municipalities)
			}
			if len(ids) < 2 {
				return fmt.Errorf("compare needs at least two municipalities, got %d", len(ids))
			}
			q.Municipalities = ids
			if !cmd.Flags().Changed("top") {
				top = a.cfg.TopN
			}

			cmp, err := a.svc.Compare(cmd.Context(), q, top)
			if err != nil {
				return err
			}
			renderComparison(cmd, cmp)
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 5, "beneficiaries listed per municipality")

	return cmd
}

func renderComparison(cmd *cobra.Command, cmp stats.Comparison) {
	out := cmd.OutOrStdout()

	headers := []string{"Município", "Repasses", "Total", "Média", "Mediana", "Beneficiários"}
	rows := make([][]string, 0, len(cmp.Municipalities))
	for _, m := range cmp.Municipalities {
		name := model.DisplayMunicipality(m.Municipality)
		if !m.HasData {
			rows = append(rows, []string{name, NoData, "", "", "", ""})
			continue
		}
		rows = append(rows, []string{
			name,
			currency.Count(m.Count),
			currency.Format(m.Sum),
			money(m.Mean),
			money(m.Median),
			currency.Count(m.Beneficiaries),
		})
	}
	renderTable(out, "Comparação", headers, rows)

	yearHeaders := []string{"Município"}
	for _, y := range cmp.Years {
		yearHeaders = append(yearHeaders, year(y))
	}
	var yearRows [][]string
	if len(cmp.Years) > 0 {
		for _, m := range cmp.Municipalities {
			byYear := make(map[int32]stats.Group[int32], len(m.Years))
			for _, g := range m.Years {
				byYear[g.Key] = g
			}
			row := []string{model.DisplayMunicipality(m.Municipality)}
			for _, y := range cmp.Years {
				if g, ok := byYear[y]; ok {
					row = append(row, currency.Format(g.Sum))
				} else {
					row = append(row, "-")
				}
			}
			yearRows = append(yearRows, row)
		}
	}
	fmt.Fprintln(out)
	renderTable(out, "Total por exercício", yearHeaders, yearRows)

	pivotHeaders := []string{"Função"}
	for _, m := range cmp.Municipalities {
		pivotHeaders = append(pivotHeaders, model.DisplayMunicipality(m.Municipality))
	}
	pivotRows := make([][]string, 0, len(cmp.Functions))
	for _, p := range cmp.Functions {
		row := []string{p.Function}
		for _, m := range cmp.Municipalities {
			if sum, ok := p.Sums[m.Municipality]; ok {
				row = append(row, currency.Format(sum))
			} else {
				row = append(row, "-")
			}
		}
		pivotRows = append(pivotRows, row)
	}
	fmt.Fprintln(out)
	renderTable(out, "Total por função de governo", pivotHeaders, pivotRows)

	for _, m := range cmp.Municipalities {
		rows := make([][]string, 0, len(m.TopEntities))
		for i, e := range m.TopEntities {
			rows = append(rows, []string{fmt.Sprint(i + 1), e.Beneficiary, currency.Format(e.Sum)})
		}
		fmt.Fprintln(out)
		renderTable(out, "Maiores beneficiários: "+model.DisplayMunicipality(m.Municipality), []string{"#", "Beneficiário", "Total"}, rows)
	}
}
