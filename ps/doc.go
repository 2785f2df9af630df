// Package ps provides the persistence layer for pygdf tables.
//
// The persistence layer is backed by Git, using go-git for storage.
// Every snapshot save is a Git commit, providing full version control,
// history tracking and point-in-time recovery of table data.
//
// # Memory Persistence
//
// For testing or ephemeral stores:
//
//	persistence, err := ps.NewMemoryPersistence()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # File Persistence
//
// For durable storage:
//
//	persistence, err := ps.NewFilePersistence("/path/to/data", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Snapshots
//
// A snapshot persists a table's buffers plus a JSON manifest under a
// name; loading rebuilds a fully owned table:
//
//	txn, _ := persistence.SaveSnapshot("trades", schema, tbl.View(), identity)
//	schema, tbl2, _ := persistence.LoadSnapshot("trades", pool)
//	defer tbl2.Release()
//
// # Remote Archives
//
// Snapshots can be exported to and imported from S3, HTTP or local
// files as single-file archives:
//
//	persistence.ExportSnapshot("trades", "s3://bucket/trades.gdf", cfg)
//	persistence.ImportSnapshot("trades", "https://host/trades.gdf", nil, identity)
package ps
