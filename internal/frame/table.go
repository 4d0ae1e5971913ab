package frame

import (
	"fmt"
	"io"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	apperrors "volscope/internal/errors"
)

// NaNValues are the CSV cells read as missing
var NaNValues = []string{"", "NA", "NaN", "nan", "N/A", "null", "<nil>"}

// Table is an immutable in-memory table backed by a gota DataFrame. A nil
// *Table stands for an absent dataset; every read method tolerates it.
type Table struct {
	df     dataframe.DataFrame
	dtypes map[string]string
}

// New wraps df, reporting any error gota recorded while building it
func New(df dataframe.DataFrame) (*Table, error) {
	if df.Err != nil {
		return nil, apperrors.NewParsingError("invalid dataframe", df.Err)
	}
	return &Table{df: df, dtypes: map[string]string{}}, nil
}

// FromSeries builds a table from columns of equal length
func FromSeries(cols ...series.Series) (*Table, error) {
	if len(cols) == 0 {
		return nil, apperrors.NewValidationError("table needs at least one column")
	}
	for _, c := range cols {
		if c.Err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("column %s", c.Name), c.Err)
		}
	}
	return New(dataframe.New(cols...))
}

// ReadCSV parses delimited text with a header row, detecting column types
func ReadCSV(r io.Reader) (*Table, error) {
	return New(dataframe.ReadCSV(r, dataframe.NaNValues(NaNValues)))
}

// WithDTypes records source storage types (e.g. "int16") per column, shown
// by DType in place of the in-memory type
func (t *Table) WithDTypes(dtypes map[string]string) *Table {
	if t == nil {
		return nil
	}
	merged := make(map[string]string, len(t.dtypes)+len(dtypes))
	for k, v := range t.dtypes {
		merged[k] = v
	}
	for k, v := range dtypes {
		merged[k] = v
	}
	return &Table{df: t.df, dtypes: merged}
}

// DataFrame returns the underlying gota DataFrame
func (t *Table) DataFrame() dataframe.DataFrame {
	return t.df
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.df.Nrow()
}

// Width returns the number of columns
func (t *Table) Width() int {
	if t == nil {
		return 0
	}
	return t.df.Ncol()
}

// Empty reports whether t is absent or has no rows
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Columns returns the column names in order
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	return t.df.Names()
}

// Has reports whether every named column is present
func (t *Table) Has(names ...string) bool {
	return len(t.Missing(names...)) == 0
}

// Missing returns the names not present in t, in argument order
func (t *Table) Missing(names ...string) []string {
	present := make(map[string]bool)
	for _, c := range t.Columns() {
		present[c] = true
	}
	var missing []string
	for _, n := range names {
		if !present[n] {
			missing = append(missing, n)
		}
	}
	return missing
}

// Type returns the in-memory type of a column
func (t *Table) Type(name string) series.Type {
	if !t.Has(name) {
		return ""
	}
	return t.df.Col(name).Type()
}

// DType returns the display type of a column: the recorded source type
// when known, otherwise the in-memory type
func (t *Table) DType(name string) string {
	if t == nil {
		return ""
	}
	if dt, ok := t.dtypes[name]; ok {
		return dt
	}
	switch t.Type(name) {
	case series.Int:
		return "int64"
	case series.Float:
		return "float64"
	case series.Bool:
		return "bool"
	default:
		return "object"
	}
}

// IsNumeric reports whether a column holds int or float values
func (t *Table) IsNumeric(name string) bool {
	typ := t.Type(name)
	return typ == series.Int || typ == series.Float
}

// Floats returns a column as float64 values with missing entries as NaN
func (t *Table) Floats(name string) ([]float64, bool) {
	if !t.Has(name) {
		return nil, false
	}
	return t.df.Col(name).Float(), true
}

// Strings returns a column formatted as text
func (t *Table) Strings(name string) ([]string, bool) {
	if !t.Has(name) {
		return nil, false
	}
	return t.df.Col(name).Records(), true
}

// NullMask reports, per row, whether the column value is missing
func (t *Table) NullMask(name string) ([]bool, bool) {
	if !t.Has(name) {
		return nil, false
	}
	col := t.df.Col(name)
	mask := col.IsNaN()
	if col.Type() == series.Float {
		for i, v := range col.Float() {
			if math.IsNaN(v) {
				mask[i] = true
			}
		}
	}
	return mask, true
}

// NullCount is the number of missing values in one column
type NullCount struct {
	Column string
	Count  int
}

// NullCounts returns the missing-value count of every column in order
func (t *Table) NullCounts() []NullCount {
	counts := make([]NullCount, 0, t.Width())
	for _, name := range t.Columns() {
		mask, _ := t.NullMask(name)
		n := 0
		for _, missing := range mask {
			if missing {
				n++
			}
		}
		counts = append(counts, NullCount{Column: name, Count: n})
	}
	return counts
}

// Head returns the first n rows, or t itself when it is not longer
func (t *Table) Head(n int) *Table {
	if t == nil || n >= t.Len() {
		return t
	}
	if n < 0 {
		n = 0
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return t.Subset(idx)
}

// Subset returns the rows at the given positions, in that order
func (t *Table) Subset(idx []int) *Table {
	if t == nil {
		return nil
	}
	if len(idx) == 0 {
		cols := make([]series.Series, 0, t.Width())
		for _, name := range t.Columns() {
			col := t.df.Col(name)
			cols = append(cols, series.New([]string{}, col.Type(), name))
		}
		return &Table{df: dataframe.New(cols...), dtypes: t.dtypes}
	}
	return &Table{df: t.df.Subset(idx), dtypes: t.dtypes}
}

// RowsWhereEqual returns the positions of the rows whose column equals v
func (t *Table) RowsWhereEqual(name string, v float64) []int {
	vals, ok := t.Floats(name)
	if !ok {
		return nil
	}
	var idx []int
	for i, x := range vals {
		if x == v {
			idx = append(idx, i)
		}
	}
	return idx
}

// Records returns the header followed by every row as text
func (t *Table) Records() [][]string {
	if t == nil {
		return nil
	}
	return t.df.Records()
}

// NumericColumns returns the int and float columns in order
func (t *Table) NumericColumns() []string {
	var cols []string
	for _, name := range t.Columns() {
		if t.IsNumeric(name) {
			cols = append(cols, name)
		}
	}
	return cols
}

// String renders the table the way gota prints DataFrames
func (t *Table) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.df.String()
}
