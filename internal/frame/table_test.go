package frame

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func targetsTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := FromSeries(
		series.New([]int{1, 1, 2}, series.Int, "stock_id"),
		series.New([]int{1, 2, 1}, series.Int, "time_id"),
		series.New([]float64{0.01, 0.02, 0.03}, series.Float, "target"),
	)
	require.NoError(t, err)
	return tbl
}

func TestTableBasics(t *testing.T) {
	tbl := targetsTable(t)

	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, 3, tbl.Width())
	assert.False(t, tbl.Empty())
	assert.Equal(t, []string{"stock_id", "time_id", "target"}, tbl.Columns())
	assert.True(t, tbl.Has("stock_id", "target"))
	assert.False(t, tbl.Has("stock_id", "price"))
	assert.Equal(t, []string{"price", "size"}, tbl.Missing("target", "price", "size"))
	assert.Equal(t, "int64", tbl.DType("stock_id"))
	assert.Equal(t, "float64", tbl.DType("target"))
	assert.Equal(t, []string{"stock_id", "time_id", "target"}, tbl.NumericColumns())

	typed := tbl.WithDTypes(map[string]string{"time_id": "int16"})
	assert.Equal(t, "int16", typed.DType("time_id"))
	assert.Equal(t, "int64", tbl.DType("time_id"), "original table is unchanged")
}

func TestNilTable(t *testing.T) {
	var tbl *Table
	assert.Equal(t, 0, tbl.Len())
	assert.True(t, tbl.Empty())
	assert.Nil(t, tbl.Columns())
	assert.False(t, tbl.Has("target"))
	assert.Nil(t, tbl.Head(5))
	assert.Equal(t, "<nil>", tbl.String())
	_, ok := tbl.Floats("target")
	assert.False(t, ok)
}

func TestHeadAndSubset(t *testing.T) {
	tbl := targetsTable(t)

	head := tbl.Head(2)
	assert.Equal(t, 2, head.Len())
	vals, ok := head.Floats("target")
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{0.01, 0.02}, vals, 1e-12)

	assert.Same(t, tbl, tbl.Head(3))
	assert.Same(t, tbl, tbl.Head(10))

	empty := tbl.Subset(nil)
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, tbl.Columns(), empty.Columns())

	assert.Equal(t, []int{0, 1}, tbl.RowsWhereEqual("stock_id", 1))
}

func TestNullCounts(t *testing.T) {
	t.Run("no missing values", func(t *testing.T) {
		for _, nc := range targetsTable(t).NullCounts() {
			assert.Zero(t, nc.Count, nc.Column)
		}
	})

	t.Run("csv with gaps", func(t *testing.T) {
		csv := "stock_id,time_id,target\n1,5,0.1\n2,,0.2\n3,7,\n"
		tbl, err := ReadCSV(strings.NewReader(csv))
		require.NoError(t, err)

		got := map[string]int{}
		for _, nc := range tbl.NullCounts() {
			got[nc.Column] = nc.Count
		}
		assert.Equal(t, map[string]int{"stock_id": 0, "time_id": 1, "target": 1}, got)
	})

	t.Run("built column with nulls", func(t *testing.T) {
		b := NewColumnBuilder("price", KindFloat)
		b.AppendFloat(1.5)
		b.AppendNull()
		b.AppendFloat(math.NaN())
		tbl, err := FromSeries(b.Series())
		require.NoError(t, err)
		assert.Equal(t, 2, tbl.NullCounts()[0].Count)
	})
}

func TestReadCSVDetectsTypes(t *testing.T) {
	csv := "stock_id,time_id,row_id\n0,4,0-4\n0,32,0-32\n"
	tbl, err := ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, series.Int, tbl.Type("stock_id"))
	assert.Equal(t, series.String, tbl.Type("row_id"))
	assert.Equal(t, "object", tbl.DType("row_id"))
	rows, ok := tbl.Strings("row_id")
	require.True(t, ok)
	assert.Equal(t, []string{"0-4", "0-32"}, rows)
}

func TestColumnBuilder(t *testing.T) {
	t.Run("int promoted to float", func(t *testing.T) {
		b := NewColumnBuilder("size", KindInt)
		b.AppendInt(3)
		b.AppendFloat(2.5)
		assert.Equal(t, KindFloat, b.Kind())
		s := b.Series()
		assert.Equal(t, series.Float, s.Type())
		assert.Equal(t, []float64{3, 2.5}, s.Float())
	})

	t.Run("int with null", func(t *testing.T) {
		b := NewColumnBuilder("stock_id", KindInt)
		b.AppendInt(7)
		b.AppendNull()
		s := b.Series()
		assert.Equal(t, series.Int, s.Type())
		assert.Equal(t, []bool{false, true}, s.IsNaN())
	})

	t.Run("string", func(t *testing.T) {
		b := NewColumnBuilder("row_id", KindString)
		b.AppendString("0-4")
		b.AppendInt(5)
		assert.Equal(t, []string{"0-4", "5"}, b.Series().Records())
	})

	t.Run("bool", func(t *testing.T) {
		b := NewColumnBuilder("flag", KindBool)
		b.AppendBool(true)
		b.AppendBool(false)
		assert.Equal(t, 2, b.Len())
		assert.Equal(t, series.Bool, b.Series().Type())
	})
}
