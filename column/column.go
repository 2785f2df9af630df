package column

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/kkraus14/pygdf/core"
	"github.com/kkraus14/pygdf/mem"
)

// Column exclusively owns one typed data buffer, an optional
// bit-packed validity buffer, and zero or more child columns.
// Variable-length string columns carry no parent data buffer; their
// payload lives in two children, an int32 offsets column of length
// n+1 and a raw bytes column.
type Column struct {
	dtype     core.DType
	length    int
	nullCount int
	data      *memory.Buffer
	validity  *memory.Buffer
	children  []*Column
}

// New constructs a column that takes ownership of the given buffers
// and children. The caller must not retain or release them afterwards.
func New(dtype core.DType, length int, data, validity *memory.Buffer, nullCount int, children ...*Column) *Column {
	return &Column{
		dtype:     dtype,
		length:    length,
		nullCount: nullCount,
		data:      data,
		validity:  validity,
		children:  children,
	}
}

// Len returns the row count. Never triggers a copy.
func (c *Column) Len() int {
	return c.length
}

// DataType returns the column's element type.
func (c *Column) DataType() core.DType {
	return c.dtype
}

// NullCount returns the number of null elements.
func (c *Column) NullCount() int {
	return c.nullCount
}

// Nullable reports whether the column carries a validity buffer.
func (c *Column) Nullable() bool {
	return c.validity != nil
}

// Valid reports whether the element at row i is non-null.
func (c *Column) Valid(i int) bool {
	if c.validity == nil {
		return true
	}
	return bitutil.BitIsSet(c.validity.Bytes(), i)
}

// NumChildren returns the number of child columns.
func (c *Column) NumChildren() int {
	return len(c.children)
}

// Child returns a borrowed reference to child column i. Ownership
// stays with the parent.
func (c *Column) Child(i int) *Column {
	return c.children[i]
}

// DeepCopy produces a fully independent column sharing no storage
// with the receiver, recursively through validity and children.
// Allocation goes through pool; on failure all buffers cloned so far
// are released and no partial column is observable.
func (c *Column) DeepCopy(pool mem.Pool) (*Column, error) {
	data, err := copyBuffer(pool, c.data)
	if err != nil {
		return nil, fmt.Errorf("copying %s column data: %w", c.dtype, err)
	}

	validity, err := copyBuffer(pool, c.validity)
	if err != nil {
		releaseBuffer(data)
		return nil, fmt.Errorf("copying %s column validity: %w", c.dtype, err)
	}

	children := make([]*Column, 0, len(c.children))
	for i, child := range c.children {
		clone, err := child.DeepCopy(pool)
		if err != nil {
			releaseBuffer(data)
			releaseBuffer(validity)
			for _, done := range children {
				done.Release()
			}
			return nil, fmt.Errorf("copying child column %d: %w", i, err)
		}
		children = append(children, clone)
	}

	return &Column{
		dtype:     c.dtype,
		length:    c.length,
		nullCount: c.nullCount,
		data:      data,
		validity:  validity,
		children:  children,
	}, nil
}

// Release frees the column's buffers and recursively releases its
// children. Safe to call more than once.
func (c *Column) Release() {
	releaseBuffer(c.data)
	releaseBuffer(c.validity)
	c.data = nil
	c.validity = nil
	for _, child := range c.children {
		child.Release()
	}
	c.children = nil
	c.length = 0
	c.nullCount = 0
}

func copyBuffer(pool mem.Pool, src *memory.Buffer) (*memory.Buffer, error) {
	if src == nil {
		return nil, nil
	}
	dst, err := pool.Allocate(src.Len())
	if err != nil {
		return nil, err
	}
	copy(dst.Bytes(), src.Bytes())
	return dst, nil
}

func releaseBuffer(buf *memory.Buffer) {
	if buf != nil {
		buf.Release()
	}
}
