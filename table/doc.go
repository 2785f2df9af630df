// Package table provides the ownership core of pygdf: a container
// holding a fixed, ordered collection of independently typed columns
// under exclusive ownership.
//
// A Table is created one of two ways:
//
//	t, err := table.NewTable(cols)        // ownership transfer, O(width)
//	t2, err := table.CopyTable(t, pool)   // deep clone, O(data size)
//
// There is no default construction and no assignment-style mutation;
// replacing a table's column set means constructing a new table.
//
// # Ownership transfer
//
// Move transfers all columns between tables in O(1):
//
//	dst := table.Move(src) // src is left with zero columns
//
// Detach moves the columns out of a table entirely, for handing them
// to another owner. After either operation the source is inert:
// width and row queries return degenerate answers and only Release
// remains meaningful.
//
// # Invariants
//
// Every construction path validates that all columns agree on row
// count, failing with ErrRowCountMismatch otherwise. Deep copies are
// atomic: a clone failure releases all partially cloned columns and
// no table is observable. Zero-width tables and zero-row tables are
// both valid, distinct degenerate states.
//
// # Views
//
// View yields a non-owning descriptor over the columns for read-only
// traversal by compute code. Views are bounded by the table's
// lifetime and must never outlive it.
package table
