package column

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/bitutil"

	"github.com/kkraus14/pygdf/core"
)

// View is a non-owning, read-only descriptor of a column's data. It
// references the owning column's buffers directly and is only valid
// for the lifetime of that column.
type View struct {
	dtype     core.DType
	length    int
	nullCount int
	data      []byte
	validity  []byte
	children  []View
}

// View returns a non-owning view of the column.
func (c *Column) View() View {
	v := View{
		dtype:     c.dtype,
		length:    c.length,
		nullCount: c.nullCount,
	}
	if c.data != nil {
		v.data = c.data.Bytes()
	}
	if c.validity != nil {
		v.validity = c.validity.Bytes()
	}
	for _, child := range c.children {
		v.children = append(v.children, child.View())
	}
	return v
}

// Len returns the row count.
func (v View) Len() int {
	return v.length
}

// DataType returns the element type.
func (v View) DataType() core.DType {
	return v.dtype
}

// NullCount returns the number of null elements.
func (v View) NullCount() int {
	return v.nullCount
}

// IsNull reports whether the element at row i is null.
func (v View) IsNull(i int) bool {
	if v.validity == nil {
		return false
	}
	return !bitutil.BitIsSet(v.validity, i)
}

// NumChildren returns the number of child views.
func (v View) NumChildren() int {
	return len(v.children)
}

// Child returns the view of child column i.
func (v View) Child(i int) View {
	return v.children[i]
}

// Data returns the raw data bytes. Callers must treat the slice as
// read-only; it aliases the owning column's buffer.
func (v View) Data() []byte {
	return v.data
}

// Validity returns the raw validity bitmap bytes, or nil when the
// column has no nulls recorded.
func (v View) Validity() []byte {
	return v.validity
}

// Int64s reinterprets the data buffer as int64 elements.
func (v View) Int64s() []int64 {
	return arrow.Int64Traits.CastFromBytes(v.data)[:v.length]
}

// Int32s reinterprets the data buffer as int32 elements.
func (v View) Int32s() []int32 {
	return arrow.Int32Traits.CastFromBytes(v.data)[:v.length]
}

// Float64s reinterprets the data buffer as float64 elements.
func (v View) Float64s() []float64 {
	return arrow.Float64Traits.CastFromBytes(v.data)[:v.length]
}

// Bools decodes the data buffer as one-byte boolean elements.
func (v View) Bools() []bool {
	out := make([]bool, v.length)
	for i := range out {
		out[i] = v.data[i] != 0
	}
	return out
}

// Str returns the string element at row i of a string column.
func (v View) Str(i int) string {
	offsets := arrow.Int32Traits.CastFromBytes(v.children[0].data)
	bytes := v.children[1].data
	return string(bytes[offsets[i]:offsets[i+1]])
}
