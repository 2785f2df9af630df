package interop

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"

	"github.com/kkraus14/pygdf/column"
	"github.com/kkraus14/pygdf/core"
	"github.com/kkraus14/pygdf/mem"
	"github.com/kkraus14/pygdf/table"
)

// QueryTable runs a query against any database/sql source and
// materializes the full result set as an owned table. Integer columns
// map to int64, floating point to float64, booleans to bool and
// everything else to string. NULLs are carried into the columns'
// validity bitmaps.
//
// The returned table is exclusively owned by the caller and must be
// released.
func QueryTable(ctx context.Context, db *sql.DB, query string, pool mem.Pool) (core.Schema, *table.Table, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return core.Schema{}, nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return core.Schema{}, nil, fmt.Errorf("failed to read column types: %w", err)
	}

	schema := core.Schema{Fields: make([]core.Field, len(colTypes))}
	builders := make([]rowBuilder, len(colTypes))
	for i, ct := range colTypes {
		dtype := dtypeForScanType(ct.ScanType())
		nullable, _ := ct.Nullable()
		schema.Fields[i] = core.Field{Name: ct.Name(), Type: dtype, Nullable: nullable}
		builders[i] = newRowBuilder(dtype)
	}

	values := make([]any, len(colTypes))
	for i := range values {
		values[i] = new(any)
	}

	for rows.Next() {
		if err := rows.Scan(values...); err != nil {
			return core.Schema{}, nil, fmt.Errorf("scan failed: %w", err)
		}
		for i, raw := range values {
			v := *(raw.(*any))
			if v == nil {
				builders[i].appendNull()
				continue
			}
			if err := builders[i].append(v); err != nil {
				return core.Schema{}, nil, fmt.Errorf("column %s: %w", colTypes[i].Name(), err)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return core.Schema{}, nil, fmt.Errorf("row iteration failed: %w", err)
	}

	cols := make([]*column.Column, 0, len(builders))
	for i, b := range builders {
		col, err := b.finish(pool)
		if err != nil {
			for _, done := range cols {
				done.Release()
			}
			return core.Schema{}, nil, fmt.Errorf("building column %s: %w", colTypes[i].Name(), err)
		}
		cols = append(cols, col)
	}

	tbl, err := table.NewTable(cols)
	if err != nil {
		for _, col := range cols {
			if col != nil {
				col.Release()
			}
		}
		return core.Schema{}, nil, err
	}

	return schema, tbl, nil
}

// dtypeForScanType maps a driver's scan type onto a column type.
// Unknown types fall back to string.
func dtypeForScanType(t reflect.Type) core.DType {
	if t == nil {
		return core.String
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return core.Int64
	case reflect.Float32, reflect.Float64:
		return core.Float64
	case reflect.Bool:
		return core.Bool
	default:
		return core.String
	}
}

// rowBuilder adapts a typed column builder to scanned values.
type rowBuilder interface {
	append(v any) error
	appendNull()
	finish(pool mem.Pool) (*column.Column, error)
}

func newRowBuilder(dtype core.DType) rowBuilder {
	switch dtype {
	case core.Int64:
		return &int64RowBuilder{b: column.NewInt64Builder()}
	case core.Float64:
		return &float64RowBuilder{b: column.NewFloat64Builder()}
	case core.Bool:
		return &boolRowBuilder{b: column.NewBoolBuilder()}
	default:
		return &stringRowBuilder{b: column.NewStringBuilder()}
	}
}

type int64RowBuilder struct {
	b *column.Int64Builder
}

func (rb *int64RowBuilder) append(v any) error {
	switch x := v.(type) {
	case int64:
		rb.b.Append(x)
	case int:
		rb.b.Append(int64(x))
	case int8:
		rb.b.Append(int64(x))
	case int16:
		rb.b.Append(int64(x))
	case int32:
		rb.b.Append(int64(x))
	case uint8:
		rb.b.Append(int64(x))
	case uint16:
		rb.b.Append(int64(x))
	case uint32:
		rb.b.Append(int64(x))
	case uint64:
		rb.b.Append(int64(x))
	default:
		return fmt.Errorf("cannot store %T in an int64 column", v)
	}
	return nil
}

func (rb *int64RowBuilder) appendNull() { rb.b.AppendNull() }

func (rb *int64RowBuilder) finish(pool mem.Pool) (*column.Column, error) {
	return rb.b.Finish(pool)
}

type float64RowBuilder struct {
	b *column.Float64Builder
}

func (rb *float64RowBuilder) append(v any) error {
	switch x := v.(type) {
	case float64:
		rb.b.Append(x)
	case float32:
		rb.b.Append(float64(x))
	default:
		return fmt.Errorf("cannot store %T in a float64 column", v)
	}
	return nil
}

func (rb *float64RowBuilder) appendNull() { rb.b.AppendNull() }

func (rb *float64RowBuilder) finish(pool mem.Pool) (*column.Column, error) {
	return rb.b.Finish(pool)
}

type boolRowBuilder struct {
	b *column.BoolBuilder
}

func (rb *boolRowBuilder) append(v any) error {
	x, ok := v.(bool)
	if !ok {
		return fmt.Errorf("cannot store %T in a bool column", v)
	}
	rb.b.Append(x)
	return nil
}

func (rb *boolRowBuilder) appendNull() { rb.b.AppendNull() }

func (rb *boolRowBuilder) finish(pool mem.Pool) (*column.Column, error) {
	return rb.b.Finish(pool)
}

type stringRowBuilder struct {
	b *column.StringBuilder
}

func (rb *stringRowBuilder) append(v any) error {
	switch x := v.(type) {
	case string:
		rb.b.Append(x)
	case []byte:
		rb.b.Append(string(x))
	default:
		rb.b.Append(fmt.Sprintf("%v", x))
	}
	return nil
}

func (rb *stringRowBuilder) appendNull() { rb.b.AppendNull() }

func (rb *stringRowBuilder) finish(pool mem.Pool) (*column.Column, error) {
	return rb.b.Finish(pool)
}
