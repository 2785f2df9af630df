// Package column provides the owning column type underlying pygdf
// tables.
//
// A Column exclusively owns one typed data buffer, an optional
// bit-packed validity bitmap, and zero or more child columns. String
// columns follow the offsets-plus-bytes layout: the parent holds no
// data buffer and two children carry int32 offsets and raw bytes.
//
// # Building columns
//
// Builders accumulate values and allocate the final buffers from a
// mem.Pool:
//
//	b := column.NewInt64Builder()
//	b.Append(1)
//	b.AppendNull()
//	b.Append(3)
//	col, err := b.Finish(pool)
//	defer col.Release()
//
// # Ownership
//
// Columns are exclusively owned: New takes ownership of its buffers,
// DeepCopy produces a fully independent clone (recursively through
// validity and children), and Release frees all owned storage. A
// Column is never shared between two owners.
//
// # Views
//
// View returns a non-owning, read-only descriptor over the column's
// buffers for traversal by downstream consumers:
//
//	v := col.View()
//	for i, x := range v.Int64s() {
//	    if !v.IsNull(i) {
//	        sum += x
//	    }
//	}
//
// A view is only valid for the lifetime of the column it was taken
// from.
package column
