package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/repasses-dev/repasses/internal/chart"
	"github.com/repasses-dev/repasses/internal/log"
)

func newChartCommand(opts *globalOptions) *cobra.Command {
	var kind, out string
	var top int

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render a bar chart (png, svg or pdf)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, q, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("top") {
				top = a.cfg.TopN
			}
			if out == "" {
				out = kind + ".png"
			}

			var c chart.Chart
			ctx := cmd.Context()
			switch kind {
			case "years":
				groups, err := a.svc.Years(ctx, q)
				if err != nil {
					return err
				}
				c = chart.Years(groups)
			case "functions":
				groups, err := a.svc.Functions(ctx, q)
				if err != nil {
					return err
				}
				c = chart.Functions(groups)
			case "entities":
				entities, err := a.svc.Entities(ctx, q, top)
				if err != nil {
					return err
				}
				c = chart.Entities(entities)
			default:
				return fmt.Errorf("unknown chart kind %q: must be years, functions or entities", kind)
			}
			c.Title += ": " + municipalityLabel(a.svc.ResolveMunicipalities(q.Municipalities))

			start := time.Now()
			if err := c.Save(out); err != nil {
				if errors.Is(err, chart.ErrNoData) {
					fmt.Fprintln(cmd.OutOrStdout(), NoData)
					return nil
				}
				return err
			}
			a.log.WithComponent(log.ComponentChart).Info("chart rendered",
				log.FieldOperation, log.OpRender,
				log.FieldOutput, out,
				log.FieldDuration, time.Since(start).Milliseconds())
			fmt.Fprintf(cmd.OutOrStdout(), "gráfico gravado em %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "years", "what to chart: years, functions or entities")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output image (default <kind>.png)")
	cmd.Flags().IntVar(&top, "top", 10, "beneficiaries in an entities chart")

	return cmd
}
