// Package interop materializes owned tables from external data
// sources.
//
// QueryTable works against any database/sql driver. With DuckDB:
//
//	db, _ := sql.Open("duckdb", "")
//	schema, tbl, err := interop.QueryTable(ctx, db,
//	    "SELECT id, name, price FROM trades", pool)
//	defer tbl.Release()
//
// The result set is scanned row by row into column builders; the
// returned table exclusively owns the resulting buffers and shares
// nothing with the driver.
package interop
