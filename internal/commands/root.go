package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/repasses-dev/repasses/internal/buildinfo"
	"github.com/repasses-dev/repasses/internal/config"
	"github.com/repasses-dev/repasses/internal/filter"
	"github.com/repasses-dev/repasses/internal/loader"
	"github.com/repasses-dev/repasses/internal/log"
	"github.com/repasses-dev/repasses/internal/pipeline"
	"github.com/repasses-dev/repasses/internal/source"
)

// globalOptions holds the persistent flags shared by every data command.
type globalOptions struct {
	configPath     string
	source         string
	format         string
	municipalities []string
	years          []string
	functions      []string
	minAmount      string
	maxAmount      string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "repasses",
		Short:   "Aggregate municipal disbursements to third-sector entities",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.FileName, "config file")
	flags.StringVar(&opts.source, "source", "", "data source (file path or sheets:<id>[!range])")
	flags.StringVar(&opts.format, "format", "", "source format: xlsx, csv, sheets or sqlite")
	flags.StringArrayVarP(&opts.municipalities, "municipality", "m", nil, "municipality to load (repeatable)")
	flags.StringArrayVar(&opts.years, "year", nil, "keep only this fiscal year (repeatable)")
	flags.StringArrayVar(&opts.functions, "function", nil, "keep only this government function (repeatable)")
	flags.StringVar(&opts.minAmount, "min", "", "minimum amount paid (needs --max)")
	flags.StringVar(&opts.maxAmount, "max", "", "maximum amount paid (needs --min)")

	rootCmd.AddCommand(
		newInitCommand(),
		newSummaryCommand(opts),
		newYearsCommand(opts),
		newFunctionsCommand(opts),
		newEntitiesCommand(opts),
		newRecordsCommand(opts),
		newCompareCommand(opts),
		newExportCommand(opts),
		newChartCommand(opts),
	)

	return rootCmd
}

// app is the resolved runtime of a data command.
type app struct {
	cfg *config.Config
	svc *pipeline.Service
	log *log.Logger
}

func (o *globalOptions) app(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Resolve(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.source != "" {
		cfg.Source.Path = o.source
	}
	if o.format != "" {
		cfg.Source.Format = o.format
	}

	format, err := cfg.SourceFormat()
	if err != nil {
		return nil, err
	}
	reader, err := source.DefaultRegistry(cfg.SourceOptions()).Lookup(format)
	if err != nil {
		return nil, err
	}

	logger := log.New(log.Config{Level: cfg.Log.Level, Output: cmd.ErrOrStderr()})
	log.SetDefault(logger)
	ld := loader.New(reader, cfg.Source.Path, logger)
	svc := pipeline.New(ld, pipeline.Options{
		Municipalities: cfg.Municipalities,
		MaxEntries:     cfg.Cache.MaxEntries,
		TTL:            cfg.Cache.TTL,
	}, logger)

	return &app{cfg: cfg, svc: svc, log: logger}, nil
}

func (o *globalOptions) query() (pipeline.Query, error) {
	years, err := filter.ParseYears(o.years)
	if err != nil {
		return pipeline.Query{}, err
	}
	lo, err := filter.ParseAmount(o.minAmount)
	if err != nil {
		return pipeline.Query{}, err
	}
	hi, err := filter.ParseAmount(o.maxAmount)
	if err != nil {
		return pipeline.Query{}, err
	}
	if lo != nil && hi != nil && lo.GreaterThan(*hi) {
		return pipeline.Query{}, fmt.Errorf("--min %s is greater than --max %s", lo, hi)
	}
	return pipeline.Query{
		Municipalities: o.municipalities,
		Criteria: filter.Criteria{
			Years:     years,
			Functions: o.functions,
			MinAmount: lo,
			MaxAmount: hi,
		},
	}, nil
}

// setup resolves both the runtime and the query of a data command.
func (o *globalOptions) setup(cmd *cobra.Command) (*app, pipeline.Query, error) {
	q, err := o.query()
	if err != nil {
		return nil, q, err
	}
	a, err := o.app(cmd)
	if err != nil {
		return nil, q, err
	}
	return a, q, nil
}
