package column

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/kkraus14/pygdf/core"
	"github.com/kkraus14/pygdf/mem"
)

// Int64Builder accumulates int64 elements and finishes into an owned
// column.
type Int64Builder struct {
	values []int64
	valid  []bool
	nulls  int
}

func NewInt64Builder() *Int64Builder {
	return &Int64Builder{}
}

func (b *Int64Builder) Append(v int64) {
	b.values = append(b.values, v)
	b.valid = append(b.valid, true)
}

func (b *Int64Builder) AppendNull() {
	b.values = append(b.values, 0)
	b.valid = append(b.valid, false)
	b.nulls++
}

func (b *Int64Builder) Len() int {
	return len(b.values)
}

// Finish allocates the column's buffers from pool and returns the
// constructed column. The builder is reset and can be reused.
func (b *Int64Builder) Finish(pool mem.Pool) (*Column, error) {
	n := len(b.values)
	data, err := pool.Allocate(arrow.Int64Traits.BytesRequired(n))
	if err != nil {
		return nil, err
	}
	copy(arrow.Int64Traits.CastFromBytes(data.Bytes()), b.values)

	validity, err := packValidity(pool, b.valid, b.nulls)
	if err != nil {
		data.Release()
		return nil, err
	}

	col := New(core.Int64, n, data, validity, b.nulls)
	*b = Int64Builder{}
	return col, nil
}

// Float64Builder accumulates float64 elements.
type Float64Builder struct {
	values []float64
	valid  []bool
	nulls  int
}

func NewFloat64Builder() *Float64Builder {
	return &Float64Builder{}
}

func (b *Float64Builder) Append(v float64) {
	b.values = append(b.values, v)
	b.valid = append(b.valid, true)
}

func (b *Float64Builder) AppendNull() {
	b.values = append(b.values, 0)
	b.valid = append(b.valid, false)
	b.nulls++
}

func (b *Float64Builder) Len() int {
	return len(b.values)
}

func (b *Float64Builder) Finish(pool mem.Pool) (*Column, error) {
	n := len(b.values)
	data, err := pool.Allocate(arrow.Float64Traits.BytesRequired(n))
	if err != nil {
		return nil, err
	}
	copy(arrow.Float64Traits.CastFromBytes(data.Bytes()), b.values)

	validity, err := packValidity(pool, b.valid, b.nulls)
	if err != nil {
		data.Release()
		return nil, err
	}

	col := New(core.Float64, n, data, validity, b.nulls)
	*b = Float64Builder{}
	return col, nil
}

// BoolBuilder accumulates boolean elements, one byte per value.
type BoolBuilder struct {
	values []bool
	valid  []bool
	nulls  int
}

func NewBoolBuilder() *BoolBuilder {
	return &BoolBuilder{}
}

func (b *BoolBuilder) Append(v bool) {
	b.values = append(b.values, v)
	b.valid = append(b.valid, true)
}

func (b *BoolBuilder) AppendNull() {
	b.values = append(b.values, false)
	b.valid = append(b.valid, false)
	b.nulls++
}

func (b *BoolBuilder) Len() int {
	return len(b.values)
}

func (b *BoolBuilder) Finish(pool mem.Pool) (*Column, error) {
	n := len(b.values)
	data, err := pool.Allocate(n)
	if err != nil {
		return nil, err
	}
	for i, v := range b.values {
		if v {
			data.Bytes()[i] = 1
		}
	}

	validity, err := packValidity(pool, b.valid, b.nulls)
	if err != nil {
		data.Release()
		return nil, err
	}

	col := New(core.Bool, n, data, validity, b.nulls)
	*b = BoolBuilder{}
	return col, nil
}

// StringBuilder accumulates variable-length string elements. The
// finished column holds an int32 offsets child and a raw bytes child.
type StringBuilder struct {
	values []string
	valid  []bool
	nulls  int
	size   int
}

func NewStringBuilder() *StringBuilder {
	return &StringBuilder{}
}

func (b *StringBuilder) Append(v string) {
	b.values = append(b.values, v)
	b.valid = append(b.valid, true)
	b.size += len(v)
}

func (b *StringBuilder) AppendNull() {
	b.values = append(b.values, "")
	b.valid = append(b.valid, false)
	b.nulls++
}

func (b *StringBuilder) Len() int {
	return len(b.values)
}

func (b *StringBuilder) Finish(pool mem.Pool) (*Column, error) {
	n := len(b.values)

	offsetsBuf, err := pool.Allocate(arrow.Int32Traits.BytesRequired(n + 1))
	if err != nil {
		return nil, err
	}
	bytesBuf, err := pool.Allocate(b.size)
	if err != nil {
		offsetsBuf.Release()
		return nil, err
	}

	offsets := arrow.Int32Traits.CastFromBytes(offsetsBuf.Bytes())
	pos := int32(0)
	for i, v := range b.values {
		offsets[i] = pos
		copy(bytesBuf.Bytes()[pos:], v)
		pos += int32(len(v))
	}
	offsets[n] = pos

	validity, err := packValidity(pool, b.valid, b.nulls)
	if err != nil {
		offsetsBuf.Release()
		bytesBuf.Release()
		return nil, err
	}

	col := New(core.String, n, nil, validity, b.nulls,
		New(core.Int32, n+1, offsetsBuf, nil, 0),
		New(core.Int8, b.size, bytesBuf, nil, 0))
	*b = StringBuilder{}
	return col, nil
}

// packValidity packs a per-row validity slice into an arrow-order
// bitmap. Columns with no nulls carry no validity buffer.
func packValidity(pool mem.Pool, valid []bool, nulls int) (*memory.Buffer, error) {
	if nulls == 0 {
		return nil, nil
	}
	buf, err := pool.Allocate(int(bitutil.BytesForBits(int64(len(valid)))))
	if err != nil {
		return nil, err
	}
	for i, ok := range valid {
		if ok {
			bitutil.SetBit(buf.Bytes(), i)
		}
	}
	return buf, nil
}
