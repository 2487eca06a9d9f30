package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/repasses-dev/repasses/internal/currency"
)

func newEntitiesCommand(opts *globalOptions) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "entities",
		Short: "Rank beneficiaries by total amount received",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, q, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("top") {
				top = a.cfg.TopN
			}
			entities, err := a.svc.Entities(cmd.Context(), q, top)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(entities))
			for i, e := range entities {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					e.Beneficiary,
					currency.Count(e.Count),
					currency.Format(e.Sum),
					money(e.Mean),
					e.FunctionsLabel,
				})
			}
			title := "Maiores beneficiários: " + municipalityLabel(a.svc.ResolveMunicipalities(q.Municipalities))
			renderTable(cmd.OutOrStdout(), title, []string{"#", "Beneficiário", "Repasses", "Total", "Média", "Funções"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 10, "number of beneficiaries to show (0 for all)")

	return cmd
}
