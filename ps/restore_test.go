package ps

import (
	"testing"

	"github.com/kkraus14/pygdf/mem"
)

func TestTagRecoverRoundTrip(t *testing.T) {
	persistence, err := NewMemoryPersistence()
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}

	pool := mem.Default()
	schema, tbl := sampleTable(t, pool)
	defer tbl.Release()

	if _, err := persistence.SaveSnapshot("metrics", schema, tbl.View(), testIdentity); err != nil {
		t.Fatalf("Failed to save snapshot: %v", err)
	}
	if err := persistence.Tag("stable", nil); err != nil {
		t.Fatalf("Failed to tag: %v", err)
	}

	if _, err := persistence.DropSnapshot("metrics", testIdentity); err != nil {
		t.Fatalf("Failed to drop snapshot: %v", err)
	}
	if persistence.HasSnapshot("metrics") {
		t.Fatal("Expected snapshot to be gone before recover")
	}

	if err := persistence.Recover("stable"); err != nil {
		t.Fatalf("Failed to recover: %v", err)
	}

	_, loaded, err := persistence.LoadSnapshot("metrics", pool)
	if err != nil {
		t.Fatalf("Failed to load snapshot after recover: %v", err)
	}
	defer loaded.Release()

	if loaded.NumRows() != 4 {
		t.Errorf("Expected 4 rows after recover, got %d", loaded.NumRows())
	}
}

func TestRecoverUnknownTag(t *testing.T) {
	persistence, err := NewMemoryPersistence()
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}

	if err := persistence.Recover("no-such-tag"); err == nil {
		t.Fatal("Expected error recovering an unknown tag")
	}
}

func TestTagEmptyStore(t *testing.T) {
	persistence, err := NewMemoryPersistence()
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}

	if err := persistence.Tag("stable", nil); err == nil {
		t.Fatal("Expected error tagging a store with no commits")
	}
}

func TestTagTransaction(t *testing.T) {
	persistence, err := NewMemoryPersistence()
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}

	pool := mem.Default()
	schema, tbl := sampleTable(t, pool)
	defer tbl.Release()

	txn, err := persistence.SaveSnapshot("metrics", schema, tbl.View(), testIdentity)
	if err != nil {
		t.Fatalf("Failed to save snapshot: %v", err)
	}

	narrowSchema, narrow := sampleTable(t, pool)
	defer narrow.Release()
	if _, err := persistence.SaveSnapshot("other", narrowSchema, narrow.View(), testIdentity); err != nil {
		t.Fatalf("Failed to save second snapshot: %v", err)
	}

	// Tag the first transaction explicitly, not HEAD.
	if err := persistence.Tag("v1", &txn); err != nil {
		t.Fatalf("Failed to tag transaction: %v", err)
	}
	if err := persistence.Recover("v1"); err != nil {
		t.Fatalf("Failed to recover tagged transaction: %v", err)
	}

	if persistence.HasSnapshot("other") {
		t.Error("Expected second snapshot to be gone after recovering the first tag")
	}
	if !persistence.HasSnapshot("metrics") {
		t.Error("Expected first snapshot to survive recovery")
	}
}
