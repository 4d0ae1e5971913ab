package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gota/gota/series"
	"github.com/parquet-go/parquet-go"

	apperrors "volscope/internal/errors"
	"volscope/internal/files"
	"volscope/internal/frame"
)

// pandas writes its RangeIndex as a column with this prefix
const pandasIndexPrefix = "__index_level_"

// readBatch is the number of rows pulled from a row group per call
const readBatch = 512

// openParquet opens path and parses its footer. The caller closes the
// returned file.
func openParquet(path string, opts ...parquet.FileOption) (*parquet.File, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, apperrors.NewStorageError("failed to open parquet file", err).WithContext("path", path)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, apperrors.NewStorageError("failed to stat parquet file", err).WithContext("path", path)
	}
	pf, err := parquet.OpenFile(f, st.Size(), opts...)
	if err != nil {
		f.Close()
		return nil, nil, apperrors.NewParsingError("failed to read parquet metadata", err).WithContext("path", path)
	}
	return pf, f, nil
}

// metadataOnly skips the optional index structures when only the footer is needed
var metadataOnly = []parquet.FileOption{parquet.SkipPageIndex(true), parquet.SkipBloomFilters(true)}

// countRows sums the row counts recorded in every file footer
func countRows(ds *files.Dataset) (int64, error) {
	var total int64
	for _, df := range ds.Files {
		pf, f, err := openParquet(df.Path, metadataOnly...)
		if err != nil {
			return 0, err
		}
		total += pf.NumRows()
		f.Close()
	}
	return total, nil
}

// dtypeOf names the pandas dtype a parquet leaf column maps to
func dtypeOf(node parquet.Node) string {
	typ := node.Type()
	if lt := typ.LogicalType(); lt != nil && lt.Integer != nil {
		prefix := "int"
		if !lt.Integer.IsSigned {
			prefix = "uint"
		}
		return fmt.Sprintf("%s%d", prefix, lt.Integer.BitWidth)
	}
	switch typ.Kind() {
	case parquet.Boolean:
		return "bool"
	case parquet.Int32:
		return "int32"
	case parquet.Int64:
		return "int64"
	case parquet.Float:
		return "float32"
	case parquet.Double:
		return "float64"
	default:
		return "object"
	}
}

func kindOf(node parquet.Node) frame.Kind {
	switch node.Type().Kind() {
	case parquet.Boolean:
		return frame.KindBool
	case parquet.Int32, parquet.Int64:
		return frame.KindInt
	case parquet.Float, parquet.Double:
		return frame.KindFloat
	default:
		return frame.KindString
	}
}

func appendValue(b *frame.ColumnBuilder, v parquet.Value) {
	if v.IsNull() {
		b.AppendNull()
		return
	}
	switch v.Kind() {
	case parquet.Boolean:
		b.AppendBool(v.Boolean())
	case parquet.Int32:
		b.AppendInt(int64(v.Int32()))
	case parquet.Int64:
		b.AppendInt(v.Int64())
	case parquet.Float:
		b.AppendFloat(float64(v.Float()))
	case parquet.Double:
		b.AppendFloat(v.Double())
	case parquet.ByteArray, parquet.FixedLenByteArray:
		b.AppendString(string(v.ByteArray()))
	default:
		b.AppendString(v.String())
	}
}

// tableBuilder assembles a table from several files whose schemas may
// differ; a column absent from a file is null for that file's rows
type tableBuilder struct {
	order     []*frame.ColumnBuilder
	byName    map[string]*frame.ColumnBuilder
	dtypes    map[string]string
	partition *frame.ColumnBuilder
	rows      int
}

func newTableBuilder(ds *files.Dataset) *tableBuilder {
	tb := &tableBuilder{
		byName: make(map[string]*frame.ColumnBuilder),
		dtypes: make(map[string]string),
	}
	if key := ds.PartitionKey(); key != "" {
		kind := frame.KindInt
		for _, p := range ds.Partitions {
			if _, err := strconv.ParseInt(p.Value, 10, 64); err != nil {
				kind = frame.KindString
				break
			}
		}
		tb.partition = frame.NewColumnBuilder(key, kind)
		if kind == frame.KindInt {
			tb.dtypes[key] = "int64"
		}
	}
	return tb
}

func (tb *tableBuilder) column(name string, node parquet.Node) *frame.ColumnBuilder {
	if b, ok := tb.byName[name]; ok {
		return b
	}
	b := frame.NewColumnBuilder(name, kindOf(node))
	for b.Len() < tb.rows {
		b.AppendNull()
	}
	tb.byName[name] = b
	tb.order = append(tb.order, b)
	tb.dtypes[name] = dtypeOf(node)
	return b
}

func (tb *tableBuilder) endRow(df files.DataFile) {
	tb.rows++
	for _, b := range tb.order {
		for b.Len() < tb.rows {
			b.AppendNull()
		}
	}
	if tb.partition == nil {
		return
	}
	switch {
	case !df.HasPartition:
		tb.partition.AppendNull()
	case tb.partition.Kind() == frame.KindInt:
		v, _ := strconv.ParseInt(df.PartitionValue, 10, 64)
		tb.partition.AppendInt(v)
	default:
		tb.partition.AppendString(df.PartitionValue)
	}
}

func (tb *tableBuilder) build() (*frame.Table, error) {
	cols := make([]series.Series, 0, len(tb.order)+1)
	for _, b := range tb.order {
		if dt := tb.dtypes[b.Name()]; b.Kind() == frame.KindFloat && strings.Contains(dt, "int") {
			tb.dtypes[b.Name()] = "float64"
		}
		cols = append(cols, b.Series())
	}
	if tb.partition != nil {
		cols = append(cols, tb.partition.Series())
	}
	if len(cols) == 0 {
		return nil, apperrors.NewParsingError("dataset has no readable columns", nil)
	}
	tbl, err := frame.FromSeries(cols...)
	if err != nil {
		return nil, err
	}
	return tbl.WithDTypes(tb.dtypes), nil
}

// readDataset reads the dataset files in order, stopping once limit rows
// are materialized. A negative limit reads everything.
func readDataset(ds *files.Dataset, limit int) (*frame.Table, error) {
	tb := newTableBuilder(ds)
	for _, df := range ds.Files {
		if limit >= 0 && tb.rows >= limit {
			break
		}
		if err := tb.readFile(df, limit); err != nil {
			return nil, err
		}
	}
	return tb.build()
}

func (tb *tableBuilder) readFile(df files.DataFile, limit int) error {
	pf, f, err := openParquet(df.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	schema := pf.Schema()
	leaves := schema.Columns()
	targets := make([]*frame.ColumnBuilder, len(leaves))
	for i, path := range leaves {
		name := strings.Join(path, ".")
		if strings.HasPrefix(name, pandasIndexPrefix) {
			continue
		}
		leaf, ok := schema.Lookup(path...)
		if !ok {
			continue
		}
		targets[i] = tb.column(name, leaf.Node)
	}

	buf := make([]parquet.Row, readBatch)
	seen := make([]bool, len(targets))
	for _, rg := range pf.RowGroups() {
		done, err := tb.readRowGroup(rg, df, targets, buf, seen, limit)
		if err != nil {
			return apperrors.NewParsingError("failed to read parquet rows", err).WithContext("path", df.Path)
		}
		if done {
			break
		}
	}
	return nil
}

func (tb *tableBuilder) readRowGroup(rg parquet.RowGroup, df files.DataFile, targets []*frame.ColumnBuilder, buf []parquet.Row, seen []bool, limit int) (bool, error) {
	rows := rg.Rows()
	defer rows.Close()

	for {
		want := len(buf)
		if limit >= 0 {
			remaining := limit - tb.rows
			if remaining <= 0 {
				return true, nil
			}
			want = min(want, remaining)
		}

		n, err := rows.ReadRows(buf[:want])
		for _, row := range buf[:n] {
			for i := range seen {
				seen[i] = false
			}
			for _, v := range row {
				c := v.Column()
				if c < 0 || c >= len(targets) || targets[c] == nil || seen[c] {
					continue
				}
				seen[c] = true
				appendValue(targets[c], v)
			}
			tb.endRow(df)
		}
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if n == 0 {
			return false, nil
		}
	}
}
