package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"volscope/internal/config"
	apperrors "volscope/internal/errors"
	"volscope/internal/exporter"
	"volscope/internal/frame"
	"volscope/internal/infrastructure"
	"volscope/internal/loader"
	"volscope/internal/validation"
	"volscope/internal/visualize"
	"volscope/pkg/contracts"
	"volscope/pkg/contracts/domain"
)

// Options are the command-line overrides applied on top of the loaded
// configuration. Zero values keep the configured setting.
type Options struct {
	ConfigPath   string
	DataRoot     string
	Rows         int
	ChartsDir    string
	Format       string
	ExportDir    string
	WorkbookPath string
	ShowVersion  bool

	// Out receives the human-readable report; stdout when nil
	Out io.Writer
	// Logger replaces the configured global logger
	Logger *slog.Logger
}

// Application wires the configured components of one run
type Application struct {
	Config     *config.Config
	Logger     *slog.Logger
	Telemetry  *infrastructure.Telemetry
	Loader     *loader.Loader
	Visualizer *visualize.Visualizer
	CSV        *exporter.CSVWriter
	Workbook   *exporter.Workbook
	Validator  *validation.FileValidator
	RunID      string

	out        io.Writer
	ownsLogger bool
}

// applyOverrides copies the non-zero options into cfg
func applyOverrides(cfg *config.Config, opts Options) {
	if opts.DataRoot != "" {
		cfg.Data.Root = opts.DataRoot
	}
	if opts.Rows > 0 {
		cfg.Sample.BookRows = opts.Rows
		cfg.Sample.TradeRows = opts.Rows
	}
	if opts.ChartsDir != "" {
		cfg.Plot.OutputDir = opts.ChartsDir
	}
	if opts.Format != "" {
		cfg.Plot.Format = opts.Format
	}
	if opts.ExportDir != "" {
		cfg.Export.CSVDir = opts.ExportDir
	}
	if opts.WorkbookPath != "" {
		cfg.Export.WorkbookPath = opts.WorkbookPath
	}
}

// NewApplication loads the configuration, applies the overrides and
// initializes logging, telemetry and the exploration components. Any
// error here is a startup failure.
func NewApplication(ctx context.Context, opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to load configuration", err)
	}
	applyOverrides(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigError("invalid configuration", err)
	}

	a := &Application{
		Config: cfg,
		RunID:  infrastructure.GenerateRunID(),
		out:    opts.Out,
	}
	if a.out == nil {
		a.out = os.Stdout
	}

	a.Logger = opts.Logger
	if a.Logger == nil {
		logger, err := infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		a.Logger, a.ownsLogger = logger, true
	}

	ctx = infrastructure.WithRunID(ctx, a.RunID)
	a.Logger.InfoContext(ctx, "Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.GetFullVersionString()),
		slog.String("data_root", cfg.Data.Root))

	a.Validator = validation.NewFileValidator(a.Logger)
	if err := a.validateOutputs(); err != nil {
		return a.abort(err)
	}
	if err := a.Validator.ValidateDataRoot(cfg.Data.Root, datasetNames()); err != nil {
		// a missing dataset is reported file by file during exploration
		a.Logger.WarnContext(ctx, "Data root check failed", slog.String("error", err.Error()))
	}

	a.Telemetry, err = infrastructure.InitializeTelemetry(ctx, cfg.Telemetry, a.RunID, a.Logger)
	if err != nil {
		return a.abort(fmt.Errorf("failed to initialize telemetry: %w", err))
	}

	a.Loader = loader.New(cfg.Data.Root,
		loader.WithOutput(a.out),
		loader.WithLogger(a.Logger),
		loader.WithTelemetry(a.Telemetry))

	vopts := []visualize.Option{
		visualize.WithOutput(a.out),
		visualize.WithLogger(a.Logger),
		visualize.WithTelemetry(a.Telemetry),
	}
	if cfg.Export.CSVDir != "" {
		a.CSV = exporter.NewCSVWriter(cfg.Export.CSVDir, a.Logger)
		vopts = append(vopts, visualize.WithRecordSink(a.CSV))
	}
	if cfg.Export.WorkbookPath != "" {
		a.Workbook, err = exporter.NewWorkbook(cfg.Export.WorkbookPath, a.Logger)
		if err != nil {
			_ = a.Telemetry.Shutdown(ctx)
			return a.abort(err)
		}
		vopts = append(vopts, visualize.WithRecordSink(a.Workbook))
	}
	a.Visualizer = visualize.New(cfg.Plot, vopts...)

	return a, nil
}

// abort releases the log file opened for this application and returns err
func (a *Application) abort(err error) (*Application, error) {
	if a.ownsLogger {
		_ = infrastructure.CloseLogFile()
	}
	return nil, err
}

func datasetNames() []string {
	return []string{
		config.BookTrainFile, config.BookTestFile,
		config.TradeTrainFile, config.TradeTestFile,
		config.TrainCSVFile, config.TestCSVFile,
	}
}

// validateOutputs checks every directory the run writes to
func (a *Application) validateOutputs() error {
	if err := a.Validator.ValidateOutputDirectory(a.Config.Plot.OutputDir); err != nil {
		return err
	}
	if dir := a.Config.Export.CSVDir; dir != "" {
		if err := a.Validator.ValidateOutputDirectory(dir); err != nil {
			return err
		}
	}
	if path := a.Config.Export.WorkbookPath; path != "" {
		if err := a.Validator.ValidateWorkbookPath(path); err != nil {
			return err
		}
	}
	return nil
}

// Context returns ctx carrying the run id of this application
func (a *Application) Context(ctx context.Context) context.Context {
	return infrastructure.WithRunID(ctx, a.RunID)
}

func (a *Application) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// Datasets are the tables loaded for one run; nil means absent
type Datasets struct {
	Book    *frame.Table
	Trades  *frame.Table
	Targets *frame.Table
}

// LoadDatasets loads the book and trade train samples and the targets
func (a *Application) LoadDatasets(ctx context.Context) Datasets {
	return Datasets{
		Book:    a.Loader.LoadSample(ctx, domain.KindBook, domain.SplitTrain, a.Config.Sample.BookRows),
		Trades:  a.Loader.LoadSample(ctx, domain.KindTrade, domain.SplitTrain, a.Config.Sample.TradeRows),
		Targets: a.Loader.LoadTargets(ctx),
	}
}

// ExploreResult lists what the exploration walkthrough produced
type ExploreResult struct {
	Availability loader.Availability
	Schemas      []*loader.SchemaInfo
	Datasets     Datasets
	TestIndex    *frame.Table
	Summaries    []*loader.Summary
	Exports      []string
	Workbook     string
}

// Explore runs the loader walkthrough: availability, schema inspection of
// the train datasets, sample loading and summaries. The summaries are
// written to the workbook when one is configured.
func (a *Application) Explore(ctx context.Context) (*ExploreResult, error) {
	ctx = a.Context(ctx)
	ctx, span := a.Telemetry.StartSpan(ctx, "app.explore")
	defer span.End()

	res := &ExploreResult{}
	a.printf("=== INITIAL DATA EXPLORATION ===\n\n")

	a.printf("1. Checking available files:\n")
	res.Availability = a.Loader.CheckAvailability(ctx)

	a.printf("\n2. Inspecting file structure:\n")
	paths := a.Loader.Paths()
	for _, np := range []config.NamedPath{
		{Name: "book_train", Path: paths.BookTrain},
		{Name: "trade_train", Path: paths.TradeTrain},
	} {
		if !res.Availability.Has(np.Name) {
			continue
		}
		if info := a.Loader.InspectSchema(ctx, np.Path); info != nil {
			res.Schemas = append(res.Schemas, info)
		}
	}

	steps := []struct {
		banner string
		label  string
		load   func() *frame.Table
		keep   func(*frame.Table)
	}{
		{"3. Exploring book data:", "Book Train Sample",
			func() *frame.Table {
				return a.Loader.LoadSample(ctx, domain.KindBook, domain.SplitTrain, a.Config.Sample.BookRows)
			},
			func(t *frame.Table) { res.Datasets.Book = t }},
		{"4. Exploring trade data:", "Trade Train Sample",
			func() *frame.Table {
				return a.Loader.LoadSample(ctx, domain.KindTrade, domain.SplitTrain, a.Config.Sample.TradeRows)
			},
			func(t *frame.Table) { res.Datasets.Trades = t }},
		{"5. Exploring targets:", "Train Targets",
			func() *frame.Table { return a.Loader.LoadTargets(ctx) },
			func(t *frame.Table) { res.Datasets.Targets = t }},
		{"6. Exploring test index:", "Test Index",
			func() *frame.Table { return a.Loader.LoadTestIndex(ctx) },
			func(t *frame.Table) { res.TestIndex = t }},
	}
	for _, step := range steps {
		a.printf("\n%s\n", step.banner)
		tbl := step.load()
		step.keep(tbl)
		if s := a.Loader.Summarize(ctx, tbl, step.label); s != nil {
			res.Summaries = append(res.Summaries, s)
		}
	}

	a.printf("\n=== EXPLORATION DONE ===\n")

	if a.CSV != nil {
		for _, s := range res.Summaries {
			if len(s.Stats) == 0 {
				continue
			}
			path, err := a.CSV.WriteTable(ctx, describeTableName(s.Label), exporter.DescribeHeader, exporter.DescribeRecords(s.Stats))
			if err != nil {
				return res, err
			}
			res.Exports = append(res.Exports, path)
		}
	}

	if a.Workbook != nil {
		path, err := a.writeWorkbook(func(wb *exporter.Workbook) error {
			for _, s := range res.Summaries {
				if err := wb.AddSummary(s); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return res, err
		}
		res.Workbook = path
	}
	return res, nil
}

// Visualize loads the datasets, renders every figure and prints the
// synthesis report. The report is written to the workbook when one is
// configured.
func (a *Application) Visualize(ctx context.Context) (*visualize.RunResult, error) {
	ctx = a.Context(ctx)
	ctx, span := a.Telemetry.StartSpan(ctx, "app.visualize")
	defer span.End()

	ds := a.LoadDatasets(ctx)
	res := a.Visualizer.RunAll(ctx, ds.Book, ds.Trades, ds.Targets)

	if a.Workbook != nil {
		if _, err := a.writeWorkbook(func(wb *exporter.Workbook) error {
			return wb.AddReport(res.Report)
		}); err != nil {
			return res, err
		}
	}
	return res, nil
}

// describeTableName names the statistics export of a summary, e.g.
// "Train Targets" becomes train_targets_describe
func describeTableName(label string) string {
	name := strings.ToLower(strings.Join(strings.Fields(label), "_"))
	return name + "_describe"
}

func (a *Application) writeWorkbook(fill func(*exporter.Workbook) error) (string, error) {
	wb := a.Workbook
	if err := fill(wb); err != nil {
		return "", err
	}
	if err := wb.Save(); err != nil {
		return "", err
	}
	a.printf("Workbook saved: %s\n", wb.Path())
	return wb.Path(), nil
}

// Stop flushes telemetry and closes the log file
func (a *Application) Stop(ctx context.Context) error {
	ctx = a.Context(ctx)
	a.Logger.InfoContext(ctx, "Shutting down application")

	var errs []error
	if err := a.Telemetry.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
	}
	if a.Workbook != nil {
		if err := a.Workbook.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close workbook: %w", err))
		}
	}
	if a.ownsLogger {
		if err := infrastructure.CloseLogFile(); err != nil {
			errs = append(errs, fmt.Errorf("close log file: %w", err))
		}
	}
	return errors.Join(errs...)
}
