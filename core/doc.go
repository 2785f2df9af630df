// Package core provides core types used throughout pygdf.
//
// The package defines fundamental types like Identity, DType, Field,
// and Schema shared by the column, table, persistence and interop
// layers.
//
// # Identity
//
// Identity identifies the author of snapshot commits (Git commit
// author):
//
//	identity := core.Identity{
//	    Name:  "John Doe",
//	    Email: "john@example.com",
//	}
//
// # Column Types
//
// Supported physical column types:
//   - Int8, Int16, Int32, Int64: signed integers
//   - Float32, Float64: floating point numbers
//   - Bool: boolean values, one byte per element
//   - String: variable-length UTF-8, stored as offsets + bytes
//
// # Schema
//
// A Schema names the columns of a table in column order:
//
//	schema := core.Schema{
//	    Fields: []core.Field{
//	        {Name: "id", Type: core.Int64},
//	        {Name: "name", Type: core.String, Nullable: true},
//	        {Name: "active", Type: core.Bool},
//	    },
//	}
package core
