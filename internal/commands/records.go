package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/repasses-dev/repasses/internal/currency"
	"github.com/repasses-dev/repasses/internal/model"
)

func newRecordsCommand(opts *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List the disbursements that match the filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, q, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			recs, err := a.svc.Records(cmd.Context(), q)
			if err != nil {
				return err
			}
			shown := recs
			if limit > 0 && len(shown) > limit {
				shown = shown[:limit]
			}
			rows := make([][]string, 0, len(shown))
			for _, r := range shown {
				rows = append(rows, []string{
					strconv.Itoa(r.Row),
					model.DisplayMunicipality(r.Municipality),
					year(r.Year),
					currency.Full(r.AmountPaid),
					r.Beneficiary,
					r.Function,
				})
			}
			title := "Repasses: " + municipalityLabel(a.svc.ResolveMunicipalities(q.Municipalities))
			renderTable(cmd.OutOrStdout(), title, []string{"Linha", "Município", "Exercício", "Valor pago", "Beneficiário", "Função"}, rows)
			if len(shown) < len(recs) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s de %s repasses exibidos\n", currency.Count(len(shown)), currency.Count(len(recs)))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum rows to print (0 for all)")

	return cmd
}
