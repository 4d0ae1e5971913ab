package synth

import (
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volscope/internal/config"
	apperrors "volscope/internal/errors"
	"volscope/internal/loader"
	"volscope/pkg/contracts/domain"
)

func smallOptions() Options {
	return Options{
		Stocks:         []int{3, 1},
		TrainBuckets:   3,
		TestBuckets:    1,
		BookPerBucket:  20,
		TradePerBucket: 5,
		Seed:           7,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGenerate(t *testing.T) {
	root := t.TempDir()
	res, err := New(smallOptions(), quietLogger()).Generate(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 2*3*20, res.BookRows)
	assert.Equal(t, 2*3*5, res.TradeRows)
	assert.Equal(t, 6, res.Targets)
	assert.Equal(t, 2, res.TestRows)
	for _, f := range res.Files {
		assert.FileExists(t, f)
	}
	assert.FileExists(t, filepath.Join(root, config.BookTrainFile, "stock_id=1", partFile))
	assert.FileExists(t, filepath.Join(root, config.BookTestFile, "stock_id=1", partFile))
	assert.NoDirExists(t, filepath.Join(root, config.BookTestFile, "stock_id=3"))

	l := loader.New(root, loader.WithOutput(io.Discard), loader.WithLogger(quietLogger()))
	avail := l.CheckAvailability(context.Background())
	for _, f := range avail {
		assert.True(t, f.Exists, f.Name)
	}

	book := l.LoadSample(context.Background(), domain.KindBook, domain.SplitTrain, 1000)
	require.NotNil(t, book)
	assert.Equal(t, 120, book.Len())
	stocks, ok := book.Floats(domain.ColStockID)
	require.True(t, ok)
	assert.Equal(t, 1.0, stocks[0])
	assert.Equal(t, 3.0, stocks[len(stocks)-1])

	targets := l.LoadTargets(context.Background())
	require.NotNil(t, targets)
	assert.Equal(t, 6, targets.Len())
	values, ok := targets.Floats(domain.ColTarget)
	require.True(t, ok)
	for _, v := range values {
		assert.Greater(t, v, 0.0)
	}

	test := l.LoadTestIndex(context.Background())
	require.NotNil(t, test)
	rowIDs, ok := test.Strings(domain.ColRowID)
	require.True(t, ok)
	assert.Equal(t, []string{"1-4", "3-4"}, rowIDs)
}

func TestGenerateDefaultsReload(t *testing.T) {
	root := t.TempDir()
	res, err := New(DefaultOptions(), quietLogger()).Generate(context.Background(), root)
	require.NoError(t, err)

	l := loader.New(root, loader.WithOutput(io.Discard), loader.WithLogger(quietLogger()))
	ctx := context.Background()

	info := l.InspectSchema(ctx, res.Paths.BookTrain)
	require.NotNil(t, info)
	assert.Equal(t, int64(res.BookRows), info.Rows)
	dtypes := make(map[string]string)
	for _, c := range info.Columns {
		dtypes[c.Name] = c.DType
	}
	assert.Equal(t, "int16", dtypes[domain.ColTimeID])
	assert.Equal(t, "int16", dtypes[domain.ColSecondsInBucket])
	assert.Equal(t, "float32", dtypes[domain.ColBidPrice1])
	assert.Equal(t, "int32", dtypes[domain.ColBidSize1])

	trades := l.LoadSample(ctx, domain.KindTrade, domain.SplitTrain, res.TradeRows)
	require.NotNil(t, trades)
	assert.Equal(t, res.TradeRows, trades.Len())
	assert.Equal(t, "int16", trades.DType(domain.ColOrderCount))
	counts, ok := trades.Floats(domain.ColOrderCount)
	require.True(t, ok)
	for _, c := range counts {
		assert.GreaterOrEqual(t, c, 1.0)
		assert.LessOrEqual(t, c, 8.0)
	}

	ids, ok := trades.Floats(domain.ColTimeID)
	require.True(t, ok)
	assert.Equal(t, 5.0, ids[0])
	assert.Equal(t, float64(5+6*(DefaultOptions().TrainBuckets-1)), ids[len(ids)-1])
}

func TestTimeIDsStayInInt16Range(t *testing.T) {
	ids := timeIDs(5, maxBuckets)
	assert.LessOrEqual(t, ids[len(ids)-1], int32(math.MaxInt16))
	assert.Equal(t, int32(5), ids[0])
	assert.Equal(t, int32(11), ids[1])
}

func TestGenerateIsDeterministic(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	_, err := New(smallOptions(), quietLogger()).Generate(context.Background(), a)
	require.NoError(t, err)
	_, err = New(smallOptions(), quietLogger()).Generate(context.Background(), b)
	require.NoError(t, err)

	for _, name := range []string{config.TrainCSVFile, config.TestCSVFile} {
		want, err := os.ReadFile(filepath.Join(a, name))
		require.NoError(t, err)
		got, err := os.ReadFile(filepath.Join(b, name))
		require.NoError(t, err)
		assert.Equal(t, string(want), string(got), name)
	}

	other := smallOptions()
	other.Seed = 8
	c := t.TempDir()
	_, err = New(other, quietLogger()).Generate(context.Background(), c)
	require.NoError(t, err)
	want, _ := os.ReadFile(filepath.Join(a, config.TrainCSVFile))
	got, _ := os.ReadFile(filepath.Join(c, config.TrainCSVFile))
	assert.NotEqual(t, string(want), string(got))
}

func TestSimulateBucket(t *testing.T) {
	g := New(smallOptions(), quietLogger())
	b := g.simulate(newRand(1, 1), 2, 5, 1)

	require.Len(t, b.book, 20)
	require.Len(t, b.trades, 5)
	for i, row := range b.book {
		assert.Less(t, row.BidPrice1, row.AskPrice1)
		assert.Less(t, row.BidPrice2, row.BidPrice1)
		assert.Greater(t, row.AskPrice2, row.AskPrice1)
		if i > 0 {
			assert.Greater(t, row.SecondsInBucket, b.book[i-1].SecondsInBucket)
		}
	}
	for _, tr := range b.trades {
		assert.GreaterOrEqual(t, tr.Size, int32(1))
		assert.GreaterOrEqual(t, tr.OrderCount, int32(1))
	}
	assert.Greater(t, b.target, 0.0)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"no stocks", func(o *Options) { o.Stocks = nil }},
		{"no train buckets", func(o *Options) { o.TrainBuckets = 0 }},
		{"negative test buckets", func(o *Options) { o.TestBuckets = -1 }},
		{"train time ids overflow int16", func(o *Options) { o.TrainBuckets = maxBuckets + 1 }},
		{"test time ids overflow int16", func(o *Options) { o.TestBuckets = maxBuckets + 1 }},
		{"too many book rows", func(o *Options) { o.BookPerBucket = bucketSeconds + 1 }},
		{"more trades than quotes", func(o *Options) { o.TradePerBucket = o.BookPerBucket + 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := smallOptions()
			tt.modify(&opts)
			_, err := New(opts, quietLogger()).Generate(context.Background(), t.TempDir())
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
		})
	}
	assert.NoError(t, DefaultOptions().validate())
}
