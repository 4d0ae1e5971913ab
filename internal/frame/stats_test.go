package frame

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	d := Describe("x", []float64{1, 2, 3, 4, math.NaN()})

	assert.Equal(t, 4, d.Count)
	assert.InDelta(t, 2.5, d.Mean, 1e-12)
	assert.InDelta(t, 1.2909944487, d.Std, 1e-9)
	assert.Equal(t, 1.0, d.Min)
	assert.InDelta(t, 1.75, d.Q25, 1e-12)
	assert.InDelta(t, 2.5, d.Q50, 1e-12)
	assert.InDelta(t, 3.25, d.Q75, 1e-12)
	assert.Equal(t, 4.0, d.Max)

	empty := Describe("e", nil)
	assert.Zero(t, empty.Count)
	assert.True(t, math.IsNaN(empty.Mean))
}

func TestTableDescribeSkipsText(t *testing.T) {
	tbl := targetsTable(t)
	desc := tbl.Describe()
	require.Len(t, desc, 3)
	assert.Equal(t, "target", desc[2].Column)
	assert.InDelta(t, 0.02, desc[2].Mean, 1e-12)
	assert.InDelta(t, 0.01, desc[2].Std, 1e-12)
}

func TestMomentStatistics(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 10}

	assert.InDelta(t, 4.0, Mean(xs), 1e-12)
	assert.InDelta(t, 20.0, Sum(xs), 1e-12)
	assert.InDelta(t, 3.5355339059, Std(xs), 1e-9)
	assert.InDelta(t, 1.6970563, Skew(xs), 1e-6)
	assert.InDelta(t, 3.152, Kurtosis(xs), 1e-9)
	assert.Equal(t, 3.0, Median(xs))

	assert.True(t, math.IsNaN(Skew([]float64{1, 2})))
	assert.True(t, math.IsNaN(Kurtosis([]float64{1, 2, 3})))
	assert.Equal(t, 0.0, Skew([]float64{5, 5, 5}))
	assert.True(t, math.IsNaN(Std([]float64{1})))
	assert.True(t, math.IsNaN(Mean(nil)))
	assert.True(t, math.IsNaN(Min([]float64{math.NaN()})))
}

func TestQuantileInterpolation(t *testing.T) {
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 10},
		{0.25, 17.5},
		{0.5, 25},
		{0.9, 37},
		{1, 40},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Quantile([]float64{40, 10, 30, 20}, tt.p), 1e-12, "p=%v", tt.p)
	}
}

func TestUniqueAndCounts(t *testing.T) {
	keys := []float64{3, 1, 3, 2, 1, 3, math.NaN()}

	assert.Equal(t, []float64{1, 2, 3}, Unique(keys))
	assert.Equal(t, 3, CountUnique(keys))
	assert.Equal(t, []KeyCount{{3, 3}, {1, 2}, {2, 1}}, ValueCounts(keys))
	assert.Equal(t, []float64{3, 1}, TopKeys(keys, 2))
	assert.Equal(t, []float64{1, 2}, TopKeys([]float64{2, 1}, 10), "ties ordered by key")
}

func TestGroupMeans(t *testing.T) {
	keys := []float64{5, 2, 5, 2, math.NaN()}
	spread := []float64{0.1, 0.2, 0.3, math.NaN(), 9}
	size := []float64{10, 20, 30, 40, 50}

	groups := GroupMeans(keys, spread, size)
	require.Len(t, groups, 2)

	assert.Equal(t, 2.0, groups[0].Key)
	assert.Equal(t, 2, groups[0].Count)
	assert.InDelta(t, 0.2, groups[0].Means[0], 1e-12)
	assert.InDelta(t, 30.0, groups[0].Means[1], 1e-12)

	assert.Equal(t, 5.0, groups[1].Key)
	assert.InDelta(t, 0.2, groups[1].Means[0], 1e-12)
	assert.InDelta(t, 20.0, groups[1].Means[1], 1e-12)
}

func TestCorr(t *testing.T) {
	tbl := targetsTable(t)
	m := tbl.Corr("stock_id", "target", "missing")

	assert.Equal(t, []string{"stock_id", "target"}, m.Columns)
	assert.InDelta(t, 1.0, m.Values[0][0], 1e-12)
	assert.InDelta(t, 0.8660254, m.Values[0][1], 1e-6)
	assert.Equal(t, m.Values[0][1], m.Values[1][0])

	assert.True(t, math.IsNaN(Correlation([]float64{1, math.NaN()}, []float64{2, 3})))
}

func TestElementWise(t *testing.T) {
	assert.Equal(t, []float64{0.5, -1}, Sub([]float64{100.5, 1}, []float64{100, 2}))
	assert.InDelta(t, math.Log(2), Log1p([]float64{1})[0], 1e-12)
	assert.Equal(t, []float64{1, 2}, Finite([]float64{1, math.Inf(1), math.NaN(), 2}))
}
