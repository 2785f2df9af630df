package ps

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/kkraus14/pygdf/mem"
)

func TestExportImportRoundTrip(t *testing.T) {
	source, err := NewMemoryPersistence()
	if err != nil {
		t.Fatalf("Failed to create source persistence: %v", err)
	}

	pool := mem.Default()
	schema, tbl := sampleTable(t, pool)
	defer tbl.Release()

	if _, err := source.SaveSnapshot("metrics", schema, tbl.View(), testIdentity); err != nil {
		t.Fatalf("Failed to save snapshot: %v", err)
	}

	archivePath := filepath.Join(t.TempDir(), "metrics.gdf")
	if err := source.ExportSnapshot("metrics", archivePath, nil); err != nil {
		t.Fatalf("Failed to export snapshot: %v", err)
	}

	raw, err := os.ReadFile(archivePath)
	if err != nil {
		t.Fatalf("Failed to read archive: %v", err)
	}
	if !bytes.HasPrefix(raw, archiveMagic) {
		t.Fatalf("Archive does not start with magic bytes: %x", raw[:4])
	}

	// Import into a fresh store and verify the data survived the trip.
	target, err := NewMemoryPersistence()
	if err != nil {
		t.Fatalf("Failed to create target persistence: %v", err)
	}

	txn, err := target.ImportSnapshot("imported", archivePath, nil, testIdentity)
	if err != nil {
		t.Fatalf("Failed to import snapshot: %v", err)
	}
	if txn.Id == "" {
		t.Error("Expected transaction id to be set")
	}

	loadedSchema, loaded, err := target.LoadSnapshot("imported", pool)
	if err != nil {
		t.Fatalf("Failed to load imported snapshot: %v", err)
	}
	defer loaded.Release()

	if loadedSchema.NumFields() != 3 {
		t.Errorf("Expected 3 fields, got %d", loadedSchema.NumFields())
	}
	if loaded.NumColumns() != 3 || loaded.NumRows() != 4 {
		t.Fatalf("Expected 3x4 table, got %dx%d", loaded.NumColumns(), loaded.NumRows())
	}

	view := loaded.View()
	if got := view.Column(0).Int64s()[3]; got != 40 {
		t.Errorf("Expected id 40, got %d", got)
	}
	if got := view.Column(1).Str(0); got != "alpha" {
		t.Errorf("Expected 'alpha', got %q", got)
	}
	if !view.Column(1).IsNull(2) {
		t.Error("Expected row 2 of name column to be null")
	}
}

func TestExportMissingSnapshot(t *testing.T) {
	persistence, err := NewMemoryPersistence()
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}

	archivePath := filepath.Join(t.TempDir(), "missing.gdf")
	if err := persistence.ExportSnapshot("missing", archivePath, nil); err == nil {
		t.Fatal("Expected error exporting a missing snapshot")
	}
}

func TestImportRejectsCorruptArchive(t *testing.T) {
	persistence, err := NewMemoryPersistence()
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}

	archivePath := filepath.Join(t.TempDir(), "bogus.gdf")
	if err := os.WriteFile(archivePath, []byte("not an archive"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if _, err := persistence.ImportSnapshot("bogus", archivePath, nil, testIdentity); err == nil {
		t.Fatal("Expected error importing a corrupt archive")
	}
}

func TestDetectScheme(t *testing.T) {
	cases := map[string]urlScheme{
		"s3://bucket/key":           schemeS3,
		"https://example.com/a.gdf": schemeHTTPS,
		"http://example.com/a.gdf":  schemeHTTP,
		"file:///tmp/a.gdf":         schemeFile,
		"/tmp/a.gdf":                schemeLocal,
		"relative/a.gdf":            schemeLocal,
	}
	for input, want := range cases {
		if got := detectScheme(input); got != want {
			t.Errorf("detectScheme(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestParseS3URL(t *testing.T) {
	bucket, key, err := parseS3URL("s3://my-bucket/path/to/archive.gdf")
	if err != nil {
		t.Fatalf("Failed to parse S3 URL: %v", err)
	}
	if bucket != "my-bucket" || key != "path/to/archive.gdf" {
		t.Errorf("Unexpected parse result: %s / %s", bucket, key)
	}

	if _, _, err := parseS3URL("s3://bucket-only"); err == nil {
		t.Error("Expected error for URL without a key")
	}
}
