package frame

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DropNaN returns xs without its NaN values
func DropNaN(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

// Finite returns the values of xs that are neither NaN nor infinite
func Finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out = append(out, x)
		}
	}
	return out
}

// Mean is the arithmetic mean skipping NaN; NaN when nothing remains
func Mean(xs []float64) float64 {
	vals := DropNaN(xs)
	if len(vals) == 0 {
		return math.NaN()
	}
	return stat.Mean(vals, nil)
}

// Sum adds the non-NaN values
func Sum(xs []float64) float64 {
	var s float64
	for _, x := range DropNaN(xs) {
		s += x
	}
	return s
}

// Std is the sample standard deviation (n-1 denominator) skipping NaN
func Std(xs []float64) float64 {
	vals := DropNaN(xs)
	if len(vals) < 2 {
		return math.NaN()
	}
	return stat.StdDev(vals, nil)
}

// Min returns the smallest non-NaN value
func Min(xs []float64) float64 {
	vals := DropNaN(xs)
	if len(vals) == 0 {
		return math.NaN()
	}
	m := vals[0]
	for _, v := range vals[1:] {
		m = math.Min(m, v)
	}
	return m
}

// Max returns the largest non-NaN value
func Max(xs []float64) float64 {
	vals := DropNaN(xs)
	if len(vals) == 0 {
		return math.NaN()
	}
	m := vals[0]
	for _, v := range vals[1:] {
		m = math.Max(m, v)
	}
	return m
}

// Skew is the bias-corrected sample skewness skipping NaN. It needs at
// least three values and is zero for constant data.
func Skew(xs []float64) float64 {
	vals := DropNaN(xs)
	if len(vals) < 3 {
		return math.NaN()
	}
	if stat.Variance(vals, nil) == 0 {
		return 0
	}
	return stat.Skew(vals, nil)
}

// Kurtosis is the bias-corrected sample excess kurtosis skipping NaN. It
// needs at least four values and is zero for constant data.
func Kurtosis(xs []float64) float64 {
	vals := DropNaN(xs)
	if len(vals) < 4 {
		return math.NaN()
	}
	if stat.Variance(vals, nil) == 0 {
		return 0
	}
	return stat.ExKurtosis(vals, nil)
}

// Quantile returns the p-quantile of xs skipping NaN, interpolating
// linearly between the two nearest ranks
func Quantile(xs []float64, p float64) float64 {
	vals := DropNaN(xs)
	if len(vals) == 0 {
		return math.NaN()
	}
	sort.Float64s(vals)
	return quantileSorted(vals, p)
}

func quantileSorted(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// Median is the 0.5 quantile
func Median(xs []float64) float64 {
	return Quantile(xs, 0.5)
}

// Unique returns the distinct non-NaN values in ascending order
func Unique(xs []float64) []float64 {
	seen := make(map[float64]bool)
	var out []float64
	for _, x := range DropNaN(xs) {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	sort.Float64s(out)
	return out
}

// CountUnique is the number of distinct non-NaN values
func CountUnique(xs []float64) int {
	return len(Unique(xs))
}

// Description holds the descriptive statistics of one numeric column
type Description struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Q50    float64
	Q75    float64
	Max    float64
}

// Describe computes count, mean, std, min, quartiles and max of xs
func Describe(name string, xs []float64) Description {
	vals := DropNaN(xs)
	d := Description{Column: name, Count: len(vals)}
	if len(vals) == 0 {
		nan := math.NaN()
		d.Mean, d.Std, d.Min, d.Q25, d.Q50, d.Q75, d.Max = nan, nan, nan, nan, nan, nan, nan
		return d
	}
	sort.Float64s(vals)
	d.Mean = stat.Mean(vals, nil)
	d.Std = Std(vals)
	d.Min = vals[0]
	d.Q25 = quantileSorted(vals, 0.25)
	d.Q50 = quantileSorted(vals, 0.5)
	d.Q75 = quantileSorted(vals, 0.75)
	d.Max = vals[len(vals)-1]
	return d
}

// Describe computes descriptive statistics for every numeric column
func (t *Table) Describe() []Description {
	var out []Description
	for _, name := range t.NumericColumns() {
		vals, _ := t.Floats(name)
		out = append(out, Describe(name, vals))
	}
	return out
}

// Correlation returns the Pearson correlation of x and y over the rows
// where both are present. NaN when fewer than two such rows exist.
func Correlation(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// CorrMatrix is a square correlation matrix labelled by column
type CorrMatrix struct {
	Columns []string
	Values  [][]float64
}

// Corr computes pairwise Pearson correlations between the named columns
// that are present in t
func (t *Table) Corr(names ...string) CorrMatrix {
	var cols []string
	var data [][]float64
	for _, n := range names {
		if vals, ok := t.Floats(n); ok {
			cols = append(cols, n)
			data = append(data, vals)
		}
	}
	m := CorrMatrix{Columns: cols, Values: make([][]float64, len(cols))}
	for i := range cols {
		m.Values[i] = make([]float64, len(cols))
		for j := range cols {
			if j < i {
				m.Values[i][j] = m.Values[j][i]
				continue
			}
			m.Values[i][j] = Correlation(data[i], data[j])
		}
	}
	return m
}

// KeyCount is a value and the number of rows holding it
type KeyCount struct {
	Key   float64
	Count int
}

// ValueCounts counts each distinct non-NaN value, most frequent first and
// ties in ascending key order
func ValueCounts(xs []float64) []KeyCount {
	counts := make(map[float64]int)
	for _, x := range DropNaN(xs) {
		counts[x]++
	}
	out := make([]KeyCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, KeyCount{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// TopKeys returns the n most frequent values
func TopKeys(xs []float64, n int) []float64 {
	counts := ValueCounts(xs)
	if n < len(counts) {
		counts = counts[:n]
	}
	keys := make([]float64, len(counts))
	for i, kc := range counts {
		keys[i] = kc.Key
	}
	return keys
}

// Group is the aggregate of the rows sharing one key
type Group struct {
	Key   float64
	Count int
	Means []float64
}

// GroupMeans groups rows by key and averages each values column, skipping
// NaN per column. Groups are ordered by ascending key; rows with a NaN key
// are dropped.
func GroupMeans(keys []float64, values ...[]float64) []Group {
	type acc struct {
		count int
		sums  []float64
		ns    []int
	}
	groups := make(map[float64]*acc)
	for i, k := range keys {
		if math.IsNaN(k) {
			continue
		}
		a, ok := groups[k]
		if !ok {
			a = &acc{sums: make([]float64, len(values)), ns: make([]int, len(values))}
			groups[k] = a
		}
		a.count++
		for c, col := range values {
			if i < len(col) && !math.IsNaN(col[i]) {
				a.sums[c] += col[i]
				a.ns[c]++
			}
		}
	}

	out := make([]Group, 0, len(groups))
	for k, a := range groups {
		g := Group{Key: k, Count: a.count, Means: make([]float64, len(values))}
		for c := range values {
			if a.ns[c] == 0 {
				g.Means[c] = math.NaN()
			} else {
				g.Means[c] = a.sums[c] / float64(a.ns[c])
			}
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Log1p applies log(1+x) element-wise
func Log1p(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = math.Log1p(x)
	}
	return out
}

// Sub returns a-b element-wise; NaN propagates
func Sub(a, b []float64) []float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = a[i] - b[i]
	}
	return out
}
