//go:build comparative

package interop

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/kkraus14/pygdf/mem"
)

// Compares materializing a result set into an owned table against
// scanning the same rows directly through database/sql. Run with:
//
//	go test -tags comparative -bench . ./interop
func benchmarkDB(b *testing.B, rows int) *sql.DB {
	b.Helper()
	db, err := sql.Open("duckdb", "")
	if err != nil {
		b.Fatalf("Failed to open database: %v", err)
	}
	b.Cleanup(func() { db.Close() })

	ctx := context.Background()
	stmt := fmt.Sprintf(
		`CREATE TABLE bench AS
		 SELECT range AS id, range * 1.5 AS value, 'row-' || range AS label
		 FROM range(%d)`, rows)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		b.Fatalf("Failed to seed table: %v", err)
	}
	return db
}

func BenchmarkQueryTable10k(b *testing.B) {
	db := benchmarkDB(b, 10_000)
	pool := mem.Default()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, tbl, err := QueryTable(context.Background(), db, `SELECT * FROM bench`, pool)
		if err != nil {
			b.Fatalf("Failed to query table: %v", err)
		}
		tbl.Release()
	}
}

func BenchmarkDirectScan10k(b *testing.B) {
	db := benchmarkDB(b, 10_000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rows, err := db.QueryContext(context.Background(), `SELECT * FROM bench`)
		if err != nil {
			b.Fatalf("Failed to query: %v", err)
		}
		var (
			id    int64
			value float64
			label string
		)
		for rows.Next() {
			if err := rows.Scan(&id, &value, &label); err != nil {
				rows.Close()
				b.Fatalf("Failed to scan: %v", err)
			}
		}
		rows.Close()
	}
}
