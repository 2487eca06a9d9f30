package commands

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/repasses-dev/repasses/internal/export"
	"github.com/repasses-dev/repasses/internal/log"
	"github.com/repasses-dev/repasses/internal/pipeline"
)

func newExportCommand(opts *globalOptions) *cobra.Command {
	var kind, out string
	var top int

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write an aggregation to a CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(export.Kinds, kind) {
				return fmt.Errorf("unknown export kind %q: must be one of %v", kind, export.Kinds)
			}
			a, q, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("top") {
				top = a.cfg.TopN
			}
			if out == "" {
				out = kind + ".csv"
			}

			start := time.Now()
			n, err := writeExport(cmd.Context(), a.svc, q, kind, top, out)
			if err != nil {
				return err
			}
			a.log.WithComponent(log.ComponentExport).Info("exported",
				log.FieldOperation, log.OpExport,
				log.FieldOutput, out,
				log.FieldRows, n,
				log.FieldDuration, time.Since(start).Milliseconds())
			fmt.Fprintf(cmd.OutOrStdout(), "%d linhas gravadas em %s\n", n, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", export.KindYears, "what to export: years, functions, entities, records or compare")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <kind>.csv)")
	cmd.Flags().IntVar(&top, "top", 10, "beneficiaries in an entities export (0 for all)")

	return cmd
}

func writeExport(ctx context.Context, svc *pipeline.Service, q pipeline.Query, kind string, top int, path string) (int, error) {
	switch kind {
	case export.KindYears:
		groups, err := svc.Years(ctx, q)
		if err != nil {
			return 0, err
		}
		return len(groups), export.WriteFile(path, export.YearRows(groups))
	case export.KindFunctions:
		groups, err := svc.Functions(ctx, q)
		if err != nil {
			return 0, err
		}
		return len(groups), export.WriteFile(path, export.FunctionRows(groups))
	case export.KindEntities:
		entities, err := svc.Entities(ctx, q, top)
		if err != nil {
			return 0, err
		}
		return len(entities), export.WriteFile(path, export.EntityRows(entities))
	case export.KindRecords:
		recs, err := svc.Records(ctx, q)
		if err != nil {
			return 0, err
		}
		return len(recs), export.WriteFile(path, export.RecordRows(recs))
	case export.KindCompare:
		cmp, err := svc.Compare(ctx, q, top)
		if err != nil {
			return 0, err
		}
		rows := export.CompareRows(cmp)
		return len(rows), export.WriteFile(path, rows)
	}
	return 0, fmt.Errorf("unknown export kind %q", kind)
}
