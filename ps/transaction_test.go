package ps

import (
	"testing"
	"time"

	"github.com/kkraus14/pygdf/mem"
)

func TestTransactionHistory(t *testing.T) {
	persistence, err := NewMemoryPersistence()
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}

	pool := mem.Default()
	schema, tbl := sampleTable(t, pool)
	defer tbl.Release()

	var txns []Transaction
	for _, name := range []string{"first", "second", "third"} {
		txn, err := persistence.SaveSnapshot(name, schema, tbl.View(), testIdentity)
		if err != nil {
			t.Fatalf("Failed to save snapshot %s: %v", name, err)
		}
		txns = append(txns, txn)
	}

	latest := persistence.LatestTransaction()
	if latest.Id != txns[2].Id {
		t.Errorf("Expected latest transaction %s, got %s", txns[2].Id, latest.Id)
	}
	if latest.Author != "Test User <test@example.com>" {
		t.Errorf("Unexpected author: %q", latest.Author)
	}

	since := persistence.TransactionsSince(time.Time{})
	if len(since) != 3 {
		t.Fatalf("Expected 3 transactions, got %d", len(since))
	}
	if since[0].Id != txns[2].Id {
		t.Errorf("Expected newest first, got %s", since[0].Id)
	}

	// Walking from the middle commit yields only it and its ancestors.
	from := persistence.TransactionsFrom(txns[1].Id)
	if len(from) != 2 {
		t.Fatalf("Expected 2 transactions from the middle commit, got %d", len(from))
	}
	if from[0].Id != txns[1].Id || from[1].Id != txns[0].Id {
		t.Errorf("Unexpected ancestor walk: %s, %s", from[0].Id, from[1].Id)
	}
	if from[0].Author != "Test User <test@example.com>" {
		t.Errorf("Unexpected author in history: %q", from[0].Author)
	}
}
