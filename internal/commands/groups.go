package commands

import (
	"github.com/spf13/cobra"

	"github.com/repasses-dev/repasses/internal/currency"
	"github.com/repasses-dev/repasses/internal/stats"
)

var groupHeaders = []string{"Repasses", "Total", "Média", "Mediana", "Desvio padrão", "Beneficiários"}

func newYearsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "years",
		Short: "Show statistics per fiscal year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, q, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			groups, err := a.svc.Years(cmd.Context(), q)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(groups))
			for _, g := range groups {
				rows = append(rows, groupRow(year(g.Key), g.Stats))
			}
			title := "Por exercício: " + municipalityLabel(a.svc.ResolveMunicipalities(q.Municipalities))
			renderTable(cmd.OutOrStdout(), title, append([]string{"Exercício"}, groupHeaders...), rows)
			return nil
		},
	}
}

func newFunctionsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "Show statistics per government function",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, q, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			groups, err := a.svc.Functions(cmd.Context(), q)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(groups))
			for _, g := range groups {
				rows = append(rows, groupRow(g.Key, g.Stats))
			}
			title := "Por função de governo: " + municipalityLabel(a.svc.ResolveMunicipalities(q.Municipalities))
			renderTable(cmd.OutOrStdout(), title, append([]string{"Função"}, groupHeaders...), rows)
			return nil
		},
	}
}

func groupRow(key string, s stats.Stats) []string {
	return []string{
		key,
		currency.Count(s.Count),
		currency.Format(s.Sum),
		money(s.Mean),
		money(s.Median),
		money(s.StdDev),
		currency.Count(s.Beneficiaries),
	}
}
