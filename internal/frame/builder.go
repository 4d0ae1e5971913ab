package frame

import (
	"strconv"

	"github.com/go-gota/gota/series"
)

// Kind is the in-memory kind of a column being built
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindString
	KindBool
)

// nullToken is how gota spells a missing element when parsing text
const nullToken = "NaN"

// ColumnBuilder accumulates the values of one column row by row.
// Appending a float to an int column promotes the column to float.
type ColumnBuilder struct {
	name    string
	kind    Kind
	ints    []int
	floats  []float64
	strs    []string
	bools   []bool
	nulls   []bool
	hasNull bool
}

// NewColumnBuilder creates an empty builder
func NewColumnBuilder(name string, kind Kind) *ColumnBuilder {
	return &ColumnBuilder{name: name, kind: kind}
}

// Name returns the column name
func (b *ColumnBuilder) Name() string { return b.name }

// Kind returns the current column kind
func (b *ColumnBuilder) Kind() Kind { return b.kind }

// Len returns the number of values appended so far
func (b *ColumnBuilder) Len() int { return len(b.nulls) }

// AppendNull appends a missing value
func (b *ColumnBuilder) AppendNull() {
	switch b.kind {
	case KindInt:
		b.ints = append(b.ints, 0)
	case KindFloat:
		b.floats = append(b.floats, 0)
	case KindString:
		b.strs = append(b.strs, "")
	case KindBool:
		b.bools = append(b.bools, false)
	}
	b.nulls = append(b.nulls, true)
	b.hasNull = true
}

// AppendInt appends an integer value
func (b *ColumnBuilder) AppendInt(v int64) {
	switch b.kind {
	case KindInt:
		b.ints = append(b.ints, int(v))
	case KindFloat:
		b.floats = append(b.floats, float64(v))
	case KindString:
		b.strs = append(b.strs, strconv.FormatInt(v, 10))
	case KindBool:
		b.bools = append(b.bools, v != 0)
	}
	b.nulls = append(b.nulls, false)
}

// AppendFloat appends a floating point value
func (b *ColumnBuilder) AppendFloat(v float64) {
	switch b.kind {
	case KindInt:
		b.promote()
		b.floats = append(b.floats, v)
	case KindFloat:
		b.floats = append(b.floats, v)
	case KindString:
		b.strs = append(b.strs, strconv.FormatFloat(v, 'g', -1, 64))
	case KindBool:
		b.bools = append(b.bools, v != 0)
	}
	b.nulls = append(b.nulls, false)
}

// AppendString appends a text value
func (b *ColumnBuilder) AppendString(v string) {
	switch b.kind {
	case KindString:
		b.strs = append(b.strs, v)
	default:
		b.toString()
		b.strs = append(b.strs, v)
	}
	b.nulls = append(b.nulls, false)
}

// AppendBool appends a boolean value
func (b *ColumnBuilder) AppendBool(v bool) {
	switch b.kind {
	case KindBool:
		b.bools = append(b.bools, v)
		b.nulls = append(b.nulls, false)
	case KindString:
		b.AppendString(strconv.FormatBool(v))
	default:
		if v {
			b.AppendInt(1)
		} else {
			b.AppendInt(0)
		}
	}
}

func (b *ColumnBuilder) promote() {
	b.floats = make([]float64, len(b.ints))
	for i, v := range b.ints {
		b.floats[i] = float64(v)
	}
	b.ints = nil
	b.kind = KindFloat
}

func (b *ColumnBuilder) toString() {
	strs := make([]string, b.Len())
	for i := range strs {
		switch b.kind {
		case KindInt:
			strs[i] = strconv.Itoa(b.ints[i])
		case KindFloat:
			strs[i] = strconv.FormatFloat(b.floats[i], 'g', -1, 64)
		case KindBool:
			strs[i] = strconv.FormatBool(b.bools[i])
		}
	}
	b.ints, b.floats, b.bools = nil, nil, nil
	b.strs = strs
	b.kind = KindString
}

// Series returns the built column as a gota Series
func (b *ColumnBuilder) Series() series.Series {
	if !b.hasNull {
		switch b.kind {
		case KindInt:
			return series.New(b.ints, series.Int, b.name)
		case KindFloat:
			return series.New(b.floats, series.Float, b.name)
		case KindBool:
			return series.New(b.bools, series.Bool, b.name)
		default:
			return series.New(b.strs, series.String, b.name)
		}
	}

	// gota only marks elements missing when they are parsed from text
	text := make([]string, b.Len())
	var typ series.Type
	for i := range text {
		if b.nulls[i] {
			text[i] = nullToken
			continue
		}
		switch b.kind {
		case KindInt:
			text[i] = strconv.Itoa(b.ints[i])
		case KindFloat:
			text[i] = strconv.FormatFloat(b.floats[i], 'g', -1, 64)
		case KindBool:
			text[i] = strconv.FormatBool(b.bools[i])
		default:
			text[i] = b.strs[i]
		}
	}
	switch b.kind {
	case KindInt:
		typ = series.Int
	case KindFloat:
		typ = series.Float
	case KindBool:
		typ = series.Bool
	default:
		typ = series.String
	}
	return series.New(text, typ, b.name)
}
