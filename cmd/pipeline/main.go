package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"uidai-pipeline/internal/config"
	applog "uidai-pipeline/internal/logger"
	"uidai-pipeline/internal/model"
	"uidai-pipeline/internal/pipeline"
	"uidai-pipeline/internal/source"
	"uidai-pipeline/internal/store"
)

var (
	// Global flags
	verbose bool
	dataDir string
	files   []string
	timeout time.Duration
	noStore bool

	// Filter flags
	fromDate  string
	toDate    string
	states    []string
	districts []string
	pincode   string

	outPath string
	jsonOut bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Load, normalize and export UIDAI registration statistics",
	Long: `pipeline reads the enrolment, demographic and biometric CSV extracts,
normalizes them, derives totals and reconciles them into a combined view.

Source files are looked up in UIDAI_DATA_DIR (or --data-dir); without one the
fixed filenames are read from the working directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if dataDir != "" {
			cfg.Data.Dir = dataDir
		}

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger, err = applog.New(level)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var loadCmd = &cobra.Command{
	Use:       "load <kind>",
	Short:     "Run the pipeline for a dataset kind and print its summary",
	Example:   "  pipeline load enrolment\n  pipeline load combined --data-dir ./data\n  pipeline load biometric --file extract.csv",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"enrolment", "demographic", "biometric", "combined"},
	RunE:      runLoad,
}

var exportCmd = &cobra.Command{
	Use:       "export <kind>",
	Short:     "Write the filtered dataset to CSV or XLSX",
	Example:   "  pipeline export combined --out report.xlsx --state Karnataka --from 2025-03-01",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"enrolment", "demographic", "biometric", "combined"},
	RunE:      runExport,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "Directory holding the source CSVs (overrides UIDAI_DATA_DIR)")
	rootCmd.PersistentFlags().StringSliceVarP(&files, "file", "f", nil, "Read these files instead of the resolved ones (repeatable)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")
	rootCmd.PersistentFlags().BoolVar(&noStore, "no-history", false, "Do not record the load in the history database")

	for _, c := range []*cobra.Command{loadCmd, exportCmd} {
		c.Flags().StringVar(&fromDate, "from", "", "Earliest date to keep, YYYY-MM-DD")
		c.Flags().StringVar(&toDate, "to", "", "Latest date to keep, YYYY-MM-DD")
		c.Flags().StringSliceVar(&states, "state", nil, "States to keep (repeatable)")
		c.Flags().StringSliceVar(&districts, "district", nil, "Districts to keep (repeatable)")
		c.Flags().StringVar(&pincode, "pincode", "", "Keep pincodes containing this")
	}
	loadCmd.Flags().BoolVar(&jsonOut, "json", false, "Print the summary as JSON")
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file, .csv or .xlsx (default EXPORT_DIR/uidai_filtered.csv)")

	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	res, filter, err := loadFiltered(ctx, args[0])
	if err != nil {
		return err
	}
	summary := pipeline.Summarize(filter.Apply(res.Table), res.Metric, res.Totals)

	if jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Load     *model.LoadResult `json:"load"`
			Summary  model.Summary     `json:"summary"`
			Warnings []string          `json:"warnings"`
		}{res, summary, res.Warnings})
	}
	printSummary(cmd.OutOrStdout(), res, summary)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	res, filter, err := loadFiltered(ctx, args[0])
	if err != nil {
		return err
	}

	path := outPath
	if path == "" {
		path = filepath.Join(cfg.Export.Dir, "uidai_filtered.csv")
	}
	result, err := pipeline.ExportToFile(ctx, filter.Apply(res.Table), path)
	if err != nil {
		return err
	}

	logger.Info("export written",
		zap.String("kind", string(res.Kind)),
		zap.String("path", result.Path),
		zap.String("format", result.Type),
		zap.Int("rows", result.RecordCount))
	fmt.Fprintf(cmd.OutOrStdout(), "%d rows written to %s (%s)\n", result.RecordCount, result.Path, result.Type)
	return nil
}

// loadFiltered builds a loader from the configuration and runs it for kind
func loadFiltered(ctx context.Context, kindArg string) (*model.LoadResult, pipeline.Filter, error) {
	kind, err := model.ParseKind(kindArg)
	if err != nil {
		return nil, pipeline.Filter{}, err
	}
	filter, err := buildFilter()
	if err != nil {
		return nil, pipeline.Filter{}, err
	}

	var opts []pipeline.Option
	if !noStore {
		db, err := store.Open(cfg.Store.Path)
		if err != nil {
			logger.Warn("load history unavailable", zap.String("path", cfg.Store.Path), zap.Error(err))
		} else {
			defer db.Close()
			opts = append(opts, pipeline.WithRecorder(db))
		}
	}
	loader := pipeline.NewLoader(source.NewResolver(cfg.Data.Dir), cfg.Data.Datasets, logger, opts...)

	var res *model.LoadResult
	if len(files) > 0 {
		res, err = loader.LoadPaths(ctx, kind, files)
	} else {
		res, err = loader.Load(ctx, kind)
	}
	if err != nil {
		return nil, pipeline.Filter{}, err
	}
	return res, filter, nil
}

func buildFilter() (pipeline.Filter, error) {
	from, err := pipeline.ParseFilterDate(fromDate)
	if err != nil {
		return pipeline.Filter{}, err
	}
	to, err := pipeline.ParseFilterDate(toDate)
	if err != nil {
		return pipeline.Filter{}, err
	}
	if from != nil && to != nil && from.After(*to) {
		return pipeline.Filter{}, fmt.Errorf("--from %s is after --to %s", fromDate, toDate)
	}
	return pipeline.Filter{
		From:      from,
		To:        to,
		States:    states,
		Districts: districts,
		Pincode:   pincode,
	}, nil
}

func printSummary(w io.Writer, res *model.LoadResult, s model.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Kind\t%s\n", res.Kind)
	fmt.Fprintf(tw, "Files\t%s\n", strings.Join(res.Paths, ", "))
	fmt.Fprintf(tw, "Records\t%d\n", s.Records)
	fmt.Fprintf(tw, "%s\t%d\n", s.Metric, s.Total)
	for _, t := range res.Totals {
		if t != s.Metric {
			fmt.Fprintf(tw, "%s\t%d\n", t, s.Totals[t])
		}
	}
	fmt.Fprintf(tw, "States\t%d\n", s.States)
	fmt.Fprintf(tw, "Districts\t%d\n", s.Districts)
	if s.MinDate != nil && s.MaxDate != nil {
		fmt.Fprintf(tw, "Dates\t%s to %s\n", s.MinDate.Format(pipeline.FilterDateLayout), s.MaxDate.Format(pipeline.FilterDateLayout))
	}
	fmt.Fprintf(tw, "Mean per row\t%.2f\n", s.Mean)
	fmt.Fprintf(tw, "Median per row\t%.2f\n", s.Median)
	tw.Flush()

	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
}
