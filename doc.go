// Package pygdf provides a columnar table engine core with exclusive
// ownership semantics and Git-backed snapshot persistence.
//
// A table owns a fixed, ordered collection of independently typed
// columns. Tables are created by transferring ownership of pre-built
// columns or by deep-copying an existing table; they are never
// mutated into holding a different column set.
//
// # Quick Start
//
// Build a table and snapshot it to an in-memory store:
//
//	persistence, _ := ps.NewMemoryPersistence()
//	gdf := pygdf.Open(persistence)
//	pool := mem.Default()
//
//	ids := column.NewInt64Builder()
//	ids.Append(1)
//	ids.Append(2)
//	idCol, _ := ids.Finish(pool)
//
//	tbl, _ := table.NewTable([]*column.Column{idCol})
//	defer tbl.Release()
//
//	schema := core.Schema{Fields: []core.Field{{Name: "id", Type: core.Int64}}}
//	gdf.Save("trades", schema, tbl, core.Identity{Name: "App", Email: "app@example.com"})
//
// # Ownership model
//
//   - table.NewTable transfers column ownership in, O(width)
//   - table.CopyTable deep-clones, O(data), atomically
//   - table.Move transfers between tables in O(1)
//   - Release destroys a table and all owned storage
//
// Non-owning views (table.View, column.View) give read access bounded
// by the owner's lifetime.
//
// # Layers
//
//	Facade (pygdf)
//	     |
//	Ownership core (table/, column/, mem/)
//	     |
//	Persistence (ps/)
//	     |
//	Git storage (go-git) / remote archives (S3, HTTP)
//
// SQL result sets can be materialized into owned tables with the
// interop package, using DuckDB or any other database/sql driver.
package pygdf
