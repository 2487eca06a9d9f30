package commands

import (
	"github.com/spf13/cobra"

	"github.com/repasses-dev/repasses/internal/currency"
	"github.com/repasses-dev/repasses/internal/stats"
)

func newSummaryCommand(opts *globalOptions) *cobra.Command {
	var advanced bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show global statistics of the paid amounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, q, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			title := "Resumo: " + municipalityLabel(a.svc.ResolveMunicipalities(q.Municipalities))

			if !advanced {
				s, err := a.svc.Summary(ctx, q)
				if err != nil {
					return err
				}
				renderTable(cmd.OutOrStdout(), title, []string{"Indicador", "Valor"}, summaryRows(s))
				return nil
			}

			d, err := a.svc.Advanced(ctx, q)
			if err != nil {
				return err
			}
			rows := summaryRows(d.Summary)
			if len(rows) > 0 {
				rows = append(rows,
					[]string{"Assimetria", currency.Number(d.Skewness, 4)},
					[]string{"Curtose (excesso)", currency.Number(d.ExcessKurtosis, 4)},
				)
			}
			renderTable(cmd.OutOrStdout(), title, []string{"Indicador", "Valor"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&advanced, "advanced", false, "include skewness and excess kurtosis")

	return cmd
}

func summaryRows(s stats.Summary) [][]string {
	if s.Count == 0 {
		return nil
	}
	return [][]string{
		{"Total pago", currency.Full(s.Total)},
		{"Repasses", currency.Count(s.Count)},
		{"Beneficiários", currency.Count(s.Beneficiaries)},
		{"Média", money(s.Mean)},
		{"Mediana", money(s.Median)},
		{"Desvio padrão", money(s.StdDev)},
		{"Mínimo", money(s.Min)},
		{"Máximo", money(s.Max)},
		{"Exercícios", years(s.Years)},
		{"Funções", currency.Count(len(s.Functions))},
	}
}
