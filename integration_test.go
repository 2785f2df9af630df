package pygdf

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/kkraus14/pygdf/column"
	"github.com/kkraus14/pygdf/core"
	"github.com/kkraus14/pygdf/interop"
	"github.com/kkraus14/pygdf/mem"
	"github.com/kkraus14/pygdf/ps"
	"github.com/kkraus14/pygdf/table"
)

var testIdentity = core.Identity{Name: "Test User", Email: "test@example.com"}

// runWithBothPersistence runs the same scenario against memory-backed
// and file-backed stores.
func runWithBothPersistence(t *testing.T, run func(t *testing.T, instance *Instance)) {
	t.Run("Memory", func(t *testing.T) {
		persistence, err := ps.NewMemoryPersistence()
		if err != nil {
			t.Fatalf("Failed to create memory persistence: %v", err)
		}
		run(t, Open(persistence))
	})

	t.Run("File", func(t *testing.T) {
		persistence, err := ps.NewFilePersistence(t.TempDir(), nil)
		if err != nil {
			t.Fatalf("Failed to create file persistence: %v", err)
		}
		run(t, Open(persistence))
	})
}

func buildEventsTable(t testing.TB, pool mem.Pool) (core.Schema, *table.Table) {
	t.Helper()

	ids := column.NewInt64Builder()
	labels := column.NewStringBuilder()
	for i := int64(0); i < 8; i++ {
		ids.Append(i)
		if i%3 == 0 {
			labels.AppendNull()
		} else {
			labels.Append("event")
		}
	}

	idCol, err := ids.Finish(pool)
	if err != nil {
		t.Fatalf("Failed to build id column: %v", err)
	}
	labelCol, err := labels.Finish(pool)
	if err != nil {
		t.Fatalf("Failed to build label column: %v", err)
	}

	tbl, err := table.NewTable([]*column.Column{idCol, labelCol})
	if err != nil {
		t.Fatalf("Failed to build table: %v", err)
	}

	schema := core.Schema{Fields: []core.Field{
		{Name: "id", Type: core.Int64},
		{Name: "label", Type: core.String, Nullable: true},
	}}
	return schema, tbl
}

func TestSaveLoadDropLifecycle(t *testing.T) {
	runWithBothPersistence(t, func(t *testing.T, instance *Instance) {
		pool := mem.Default()
		schema, tbl := buildEventsTable(t, pool)
		defer tbl.Release()

		if _, err := instance.Save("events", schema, tbl, testIdentity); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}

		// Saving only reads the table; the caller still owns it.
		if tbl.NumColumns() != 2 || tbl.NumRows() != 8 {
			t.Fatalf("Expected caller to keep a 2x8 table, got %dx%d", tbl.NumColumns(), tbl.NumRows())
		}

		names := instance.Snapshots()
		if len(names) != 1 || names[0] != "events" {
			t.Fatalf("Expected snapshot list [events], got %v", names)
		}

		loadedSchema, loaded, err := instance.Load("events", pool)
		if err != nil {
			t.Fatalf("Failed to load: %v", err)
		}
		defer loaded.Release()

		if loadedSchema.FieldNames()[1] != "label" {
			t.Errorf("Unexpected field names: %v", loadedSchema.FieldNames())
		}
		view := loaded.View()
		if got := view.Column(0).Int64s()[7]; got != 7 {
			t.Errorf("Expected id 7, got %d", got)
		}
		if !view.Column(1).IsNull(0) || view.Column(1).IsNull(1) {
			t.Error("Expected label nulls at rows divisible by 3 only")
		}

		if _, err := instance.Drop("events", testIdentity); err != nil {
			t.Fatalf("Failed to drop: %v", err)
		}
		if _, _, err := instance.Load("events", pool); !errors.Is(err, ps.ErrSnapshotNotFound) {
			t.Fatalf("Expected ErrSnapshotNotFound after drop, got %v", err)
		}
	})
}

// TestQueryToArchivePipeline runs the full path: query rows out of an
// embedded database, persist them as a snapshot, export the snapshot
// to an archive and import it into a second store.
func TestQueryToArchivePipeline(t *testing.T) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	stmts := []string{
		`CREATE TABLE readings (sensor BIGINT, value DOUBLE)`,
		`INSERT INTO readings VALUES (1, 0.5), (2, NULL), (3, 2.25)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("Failed to execute %q: %v", stmt, err)
		}
	}

	pool := mem.Default()
	schema, tbl, err := interop.QueryTable(ctx, db, `SELECT * FROM readings ORDER BY sensor`, pool)
	if err != nil {
		t.Fatalf("Failed to query table: %v", err)
	}
	defer tbl.Release()

	sourceStore, err := ps.NewMemoryPersistence()
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}
	source := Open(sourceStore)
	if _, err := source.Save("readings", schema, tbl, testIdentity); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	archivePath := filepath.Join(t.TempDir(), "readings.gdf")
	if err := sourceStore.ExportSnapshot("readings", archivePath, nil); err != nil {
		t.Fatalf("Failed to export: %v", err)
	}

	targetStore, err := ps.NewMemoryPersistence()
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}
	if _, err := targetStore.ImportSnapshot("readings", archivePath, nil, testIdentity); err != nil {
		t.Fatalf("Failed to import: %v", err)
	}

	_, loaded, err := Open(targetStore).Load("readings", pool)
	if err != nil {
		t.Fatalf("Failed to load imported snapshot: %v", err)
	}
	defer loaded.Release()

	view := loaded.View()
	if loaded.NumRows() != 3 {
		t.Fatalf("Expected 3 rows, got %d", loaded.NumRows())
	}
	if !view.Column(1).IsNull(1) {
		t.Error("Expected NULL reading to survive the pipeline")
	}
	if got := view.Column(1).Float64s()[2]; got != 2.25 {
		t.Errorf("Expected value 2.25, got %v", got)
	}
}

func BenchmarkCopyTable(b *testing.B) {
	pool := mem.Default()
	_, tbl := buildEventsTable(b, pool)
	defer tbl.Release()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		clone, err := table.CopyTable(tbl, pool)
		if err != nil {
			b.Fatalf("Failed to copy: %v", err)
		}
		clone.Release()
	}
}

func BenchmarkMove(b *testing.B) {
	pool := mem.Default()
	_, tbl := buildEventsTable(b, pool)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tbl = table.Move(tbl)
	}
	b.StopTimer()
	tbl.Release()
}

func BenchmarkSaveSnapshot(b *testing.B) {
	persistence, err := ps.NewMemoryPersistence()
	if err != nil {
		b.Fatalf("Failed to create persistence: %v", err)
	}
	instance := Open(persistence)

	pool := mem.Default()
	schema, tbl := buildEventsTable(b, pool)
	defer tbl.Release()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := instance.Save("bench", schema, tbl, testIdentity); err != nil {
			b.Fatalf("Failed to save: %v", err)
		}
	}
}
