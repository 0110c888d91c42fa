package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"macrocycle/internal/analysis"
	"macrocycle/internal/exporter"
	"macrocycle/internal/infrastructure"
	"macrocycle/internal/report"
	"macrocycle/internal/table"
	"macrocycle/internal/validation"
)

var errAllTasksFailed = errors.New("every analysis task failed")

type analyzeOptions struct {
	quarterly   string
	annual      string
	base        string
	out         string
	formats     []string
	sheet       string
	metricsFile string
	noExport    bool
}

func newAnalyzeCmd(global *globalOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the business-cycle, growth and productivity analyses",
		Example: `  macrocycle analyze --quarterly data/quarterly.csv
  macrocycle analyze --quarterly data/na.xlsx --sheet Quarterly --base "1995 1Q" --format csv
  macrocycle analyze --quarterly data/quarterly.csv --annual data/population.csv --out reports`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, global, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.quarterly, "quarterly", "q", "", "quarterly national-accounts table (.csv or .xlsx)")
	f.StringVarP(&opts.annual, "annual", "a", "", "annual population/employment table (enables productivity)")
	f.StringVarP(&opts.base, "base", "b", "", `base quarter for the deflator, e.g. "1990 1Q"`)
	f.StringVarP(&opts.out, "out", "o", "", "output directory")
	f.StringSliceVarP(&opts.formats, "format", "f", nil, "export formats (csv, xlsx)")
	f.StringVar(&opts.sheet, "sheet", "", "worksheet name for .xlsx inputs (default first sheet)")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")
	f.BoolVar(&opts.noExport, "no-export", false, "print the summary only")
	return cmd
}

func runAnalyze(cmd *cobra.Command, global *globalOptions, opts *analyzeOptions) error {
	ctx := cmd.Context()

	cfg, err := global.loadConfig()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("quarterly") {
		cfg.Input.QuarterlyFile = opts.quarterly
	}
	if flags.Changed("annual") {
		cfg.Input.AnnualFile = opts.annual
	}
	if flags.Changed("sheet") {
		cfg.Input.Sheet = opts.sheet
	}
	if flags.Changed("base") {
		cfg.Analysis.BaseQuarter = opts.base
	}
	if flags.Changed("out") {
		cfg.Output.Dir = opts.out
	}
	if flags.Changed("format") {
		cfg.Output.Formats = opts.formats
	}
	if flags.Changed("metrics-file") {
		cfg.Output.MetricsFile = opts.metricsFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Input.QuarterlyFile == "" {
		return fmt.Errorf("no quarterly table given (use --quarterly or input.quarterly_file)")
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer infrastructure.CloseLogFile()

	tel, err := infrastructure.InitializeOTel(cfg.Telemetry, Version, cmd.ErrOrStderr(), logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := tel.Shutdown(ctx); err != nil {
			logger.WarnContext(ctx, "telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	files := validation.NewFileValidator(logger)
	if err := files.ValidateTableFile(cfg.Input.QuarterlyFile); err != nil {
		return err
	}
	if cfg.Input.AnnualFile != "" {
		if err := files.ValidateTableFile(cfg.Input.AnnualFile); err != nil {
			return err
		}
	}

	in := analysis.Inputs{}
	in.Quarterly, err = table.ReadFile(cfg.Input.QuarterlyFile, cfg.Input.Sheet)
	if err != nil {
		return err
	}
	if cfg.Input.AnnualFile != "" {
		in.Annual, err = table.ReadFile(cfg.Input.AnnualFile, cfg.Input.Sheet)
		if err != nil {
			return err
		}
	}

	analyzer := analysis.NewAnalyzer(logger, tel.Metrics)
	res := analyzer.RunAll(ctx, in, analysis.OptionsFromConfig(cfg.Analysis, logger))
	rep := report.FromResults(res)

	printSummary(cmd.OutOrStdout(), res, rep)

	if !opts.noExport && !res.AllFailed() {
		if err := files.ValidateOutputDirectory(cfg.Output.Dir); err != nil {
			return err
		}
		written, err := exporter.NewReportExporter(cfg.Output.Dir, logger).Export(ctx, rep, cfg.Output.Formats)
		if err != nil {
			return err
		}
		printFiles(cmd.OutOrStdout(), written)
	}

	if cfg.Output.MetricsFile != "" {
		if err := tel.WriteTextfile(cfg.Output.MetricsFile); err != nil {
			logger.WarnContext(ctx, "metrics textfile not written", slog.String("error", err.Error()))
		}
	}

	if res.AllFailed() {
		return fmt.Errorf("%w: %v", errAllTasksFailed, res.Errors[res.Attempted[0]])
	}
	return nil
}
