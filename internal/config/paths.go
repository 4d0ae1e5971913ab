package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"volscope/pkg/contracts/domain"
)

// DatasetPaths holds the six well-known dataset locations under one root.
// This is the single source of truth for input file paths.
type DatasetPaths struct {
	Root       string
	BookTrain  string
	BookTest   string
	TradeTrain string
	TradeTest  string
	TrainCSV   string
	TestCSV    string
}

// NamedPath pairs a dataset file with its short display name
type NamedPath struct {
	Name string
	Path string
}

// NewDatasetPaths derives every dataset path from root
func NewDatasetPaths(root string) DatasetPaths {
	if root == "" {
		root = DefaultDataRoot
	}
	return DatasetPaths{
		Root:       root,
		BookTrain:  filepath.Join(root, BookTrainFile),
		BookTest:   filepath.Join(root, BookTestFile),
		TradeTrain: filepath.Join(root, TradeTrainFile),
		TradeTest:  filepath.Join(root, TradeTestFile),
		TrainCSV:   filepath.Join(root, TrainCSVFile),
		TestCSV:    filepath.Join(root, TestCSVFile),
	}
}

// All returns the dataset files in their fixed reporting order
func (p DatasetPaths) All() []NamedPath {
	return []NamedPath{
		{Name: "book_train", Path: p.BookTrain},
		{Name: "book_test", Path: p.BookTest},
		{Name: "trade_train", Path: p.TradeTrain},
		{Name: "trade_test", Path: p.TradeTest},
		{Name: "train_csv", Path: p.TrainCSV},
		{Name: "test_csv", Path: p.TestCSV},
	}
}

// Columnar returns the parquet location for a kind and split, or false
// when the combination is unknown.
func (p DatasetPaths) Columnar(kind domain.DatasetKind, split domain.Split) (string, bool) {
	switch {
	case kind == domain.KindBook && split == domain.SplitTrain:
		return p.BookTrain, true
	case kind == domain.KindBook && split == domain.SplitTest:
		return p.BookTest, true
	case kind == domain.KindTrade && split == domain.SplitTrain:
		return p.TradeTrain, true
	case kind == domain.KindTrade && split == domain.SplitTest:
		return p.TradeTest, true
	}
	return "", false
}

// LogPathResolution logs every resolved path at debug level
func (p DatasetPaths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, _ := filepath.Abs(p.Root)
	attrs := []any{slog.String("root", p.Root), slog.String("root_abs", abs)}
	for _, np := range p.All() {
		attrs = append(attrs, slog.String(np.Name, np.Path))
	}
	logger.Debug("Dataset path resolution", attrs...)
}

// EnsureDir creates dir and its parents when dir is not empty
func EnsureDir(dir string) error {
	if dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
