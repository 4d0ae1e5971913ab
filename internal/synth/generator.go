package synth

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"volscope/internal/config"
	apperrors "volscope/internal/errors"
	"volscope/internal/exporter"
	"volscope/internal/validation"
	"volscope/pkg/contracts/domain"
)

// bucketSeconds is the length of one time bucket
const bucketSeconds = 600

// partFile is the file name written inside every stock partition
const partFile = "part-0.parquet"

// maxBuckets keeps every generated time_id within the int16 file column
const maxBuckets = (math.MaxInt16 - 5) / 6

// Options shape the generated dataset
type Options struct {
	Stocks         []int  `yaml:"stocks"`
	TrainBuckets   int    `yaml:"train_buckets"`
	TestBuckets    int    `yaml:"test_buckets"`
	BookPerBucket  int    `yaml:"book_per_bucket"`
	TradePerBucket int    `yaml:"trade_per_bucket"`
	Seed           uint64 `yaml:"seed"`
}

// DefaultOptions returns a small dataset that renders every figure
func DefaultOptions() Options {
	return Options{
		Stocks:         []int{0, 1, 2, 3},
		TrainBuckets:   24,
		TestBuckets:    1,
		BookPerBucket:  120,
		TradePerBucket: 40,
		Seed:           42,
	}
}

func (o Options) validate() error {
	switch {
	case len(o.Stocks) == 0:
		return apperrors.NewValidationError("at least one stock is required")
	case o.TrainBuckets < 1 || o.TrainBuckets > maxBuckets:
		return apperrors.NewValidationError(fmt.Sprintf("train buckets must be in [1, %d]", maxBuckets))
	case o.TestBuckets < 0 || o.TestBuckets > maxBuckets:
		return apperrors.NewValidationError(fmt.Sprintf("test buckets must be in [0, %d]", maxBuckets))
	case o.BookPerBucket < 2 || o.BookPerBucket > bucketSeconds:
		return apperrors.NewValidationError(fmt.Sprintf("book rows per bucket must be in [2, %d]", bucketSeconds))
	case o.TradePerBucket < 0 || o.TradePerBucket > o.BookPerBucket:
		return apperrors.NewValidationError("trade rows per bucket must be in [0, book rows per bucket]")
	}
	return nil
}

// Result describes what Generate wrote
type Result struct {
	Paths     config.DatasetPaths
	BookRows  int
	TradeRows int
	Targets   int
	TestRows  int
	Files     []string
}

// Generator writes a deterministic synthetic dataset
type Generator struct {
	opts      Options
	logger    *slog.Logger
	validator *validation.FileValidator
}

// New creates a generator
func New(opts Options, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		opts:      opts,
		logger:    logger.With(slog.String("component", "synth")),
		validator: validation.NewFileValidator(logger),
	}
}

// bucket is the simulated activity of one stock in one time bucket
type bucket struct {
	book   []domain.OrderBookRow
	trades []domain.TradeRow
	target float64
}

// Generate writes book and trade partitions, train.csv and test.csv
// below root. The same options always produce the same files.
func (g *Generator) Generate(ctx context.Context, root string) (*Result, error) {
	if err := g.opts.validate(); err != nil {
		return nil, err
	}
	paths := config.NewDatasetPaths(root)
	res := &Result{Paths: paths}

	stocks := append([]int(nil), g.opts.Stocks...)
	sort.Ints(stocks)

	trainIDs := timeIDs(5, g.opts.TrainBuckets)
	testIDs := timeIDs(4, g.opts.TestBuckets)

	var targets []domain.TargetRow
	var tests []domain.TestRow
	for _, stock := range stocks {
		rng := newRand(g.opts.Seed, uint64(stock)+1)
		level := 0.9 + 0.2*rng.Float64()

		var book []domain.OrderBookRow
		var trades []domain.TradeRow
		for _, id := range trainIDs {
			b := g.simulate(rng, stock, id, level)
			book = append(book, b.book...)
			trades = append(trades, b.trades...)
			targets = append(targets, domain.TargetRow{StockID: stock, TimeID: int(id), Target: b.target})
		}
		if err := writePartition(paths.BookTrain, stock, book, domain.WriteOrderBook, res); err != nil {
			return nil, err
		}
		if err := writePartition(paths.TradeTrain, stock, trades, domain.WriteTrades, res); err != nil {
			return nil, err
		}
		res.BookRows += len(book)
		res.TradeRows += len(trades)

		for _, id := range testIDs {
			tests = append(tests, domain.TestRow{StockID: stock, TimeID: int(id), RowID: fmt.Sprintf("%d-%d", stock, id)})
		}
	}

	if err := g.writeTestPartitions(paths, stocks[0], testIDs, res); err != nil {
		return nil, err
	}

	if err := g.validator.ValidateTargets(targets); err != nil {
		return nil, err
	}
	if err := g.writeLabels(paths, targets, tests, res); err != nil {
		return nil, err
	}
	res.Targets = len(targets)
	res.TestRows = len(tests)

	g.logger.InfoContext(ctx, "Synthetic dataset generated",
		slog.String("root", root),
		slog.Int("stocks", len(stocks)),
		slog.Int("book_rows", res.BookRows),
		slog.Int("trade_rows", res.TradeRows),
		slog.Int("targets", res.Targets))
	return res, nil
}

// writeTestPartitions writes the test halves of the columnar datasets. As
// in the real layout only the first stock carries test rows.
func (g *Generator) writeTestPartitions(paths config.DatasetPaths, stock int, ids []int32, res *Result) error {
	if len(ids) == 0 {
		return nil
	}
	rng := newRand(g.opts.Seed^0x9e3779b97f4a7c15, uint64(stock)+1)
	var book []domain.OrderBookRow
	var trades []domain.TradeRow
	for _, id := range ids {
		b := g.simulate(rng, stock, id, 1)
		book = append(book, b.book...)
		trades = append(trades, b.trades...)
	}
	if err := writePartition(paths.BookTest, stock, book, domain.WriteOrderBook, res); err != nil {
		return err
	}
	return writePartition(paths.TradeTest, stock, trades, domain.WriteTrades, res)
}

func newRand(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}

func timeIDs(first, n int) []int32 {
	ids := make([]int32, n)
	for i := range ids {
		ids[i] = int32(first + 6*i)
	}
	return ids
}

// simulate draws one bucket: a random walk of the mid price quoted with a
// two level book, trades at a subset of the quote times, and the realized
// volatility of the weighted average price as target
func (g *Generator) simulate(rng *rand.Rand, stock int, timeID int32, level float64) bucket {
	n := g.opts.BookPerBucket
	secs := rng.Perm(bucketSeconds)[:n]
	sort.Ints(secs)

	vol := 0.0002 + 0.0008*rng.Float64()
	tick := 0.0001 * (1 + float64(stock%3))
	mid := level

	b := bucket{book: make([]domain.OrderBookRow, n)}
	var sumSq float64
	var prevWAP float64
	for i, s := range secs {
		mid *= math.Exp(vol * rng.NormFloat64() / math.Sqrt(float64(n)) * 4)
		half := tick * float64(1+rng.IntN(3)) / 2
		row := domain.OrderBookRow{
			StockID:         stock,
			TimeID:          timeID,
			SecondsInBucket: int32(s),
			BidPrice1:       float32(mid - half),
			AskPrice1:       float32(mid + half),
			BidPrice2:       float32(mid - half - tick),
			AskPrice2:       float32(mid + half + tick),
			BidSize1:        int32(1 + rng.IntN(500)),
			AskSize1:        int32(1 + rng.IntN(500)),
			BidSize2:        int32(1 + rng.IntN(800)),
			AskSize2:        int32(1 + rng.IntN(800)),
		}
		b.book[i] = row

		wap := (float64(row.BidPrice1)*float64(row.AskSize1) + float64(row.AskPrice1)*float64(row.BidSize1)) /
			float64(row.BidSize1+row.AskSize1)
		if i > 0 {
			r := math.Log(wap / prevWAP)
			sumSq += r * r
		}
		prevWAP = wap
	}
	b.target = math.Sqrt(sumSq)

	picks := rng.Perm(n)[:g.opts.TradePerBucket]
	sort.Ints(picks)
	for _, p := range picks {
		q := b.book[p]
		b.trades = append(b.trades, domain.TradeRow{
			StockID:         stock,
			TimeID:          timeID,
			SecondsInBucket: q.SecondsInBucket,
			Price:           (q.BidPrice1 + q.AskPrice1) / 2,
			Size:            int32(1 + rng.ExpFloat64()*150),
			OrderCount:      int32(1 + rng.IntN(8)),
		})
	}
	return b
}

// writePartition writes rows into <dataset>/stock_id=<stock>/part-0.parquet
func writePartition[T any](dataset string, stock int, rows []T, write func(string, []T) error, res *Result) error {
	dir := filepath.Join(dataset, domain.ColStockID+"="+strconv.Itoa(stock))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewStorageError("failed to create partition directory", err).WithContext("path", dir)
	}
	path := filepath.Join(dir, partFile)
	if err := write(path, rows); err != nil {
		return apperrors.NewStorageError("failed to write parquet file", err).WithContext("path", path)
	}
	res.Files = append(res.Files, path)
	return nil
}

// writeLabels writes train.csv and test.csv
func (g *Generator) writeLabels(paths config.DatasetPaths, targets []domain.TargetRow, tests []domain.TestRow, res *Result) error {
	w := exporter.NewCSVWriter("", g.logger)

	records := make([][]string, len(targets))
	for i, t := range targets {
		records[i] = t.Record()
	}
	if err := w.WriteCSV(paths.TrainCSV, domain.TargetHeader, records); err != nil {
		return err
	}
	res.Files = append(res.Files, paths.TrainCSV)

	records = make([][]string, len(tests))
	for i, t := range tests {
		records[i] = t.Record()
	}
	if err := w.WriteCSV(paths.TestCSV, domain.TestHeader, records); err != nil {
		return err
	}
	res.Files = append(res.Files, paths.TestCSV)
	return nil
}
