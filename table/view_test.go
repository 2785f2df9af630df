package table

import (
	"testing"

	"github.com/kkraus14/pygdf/mem"
)

func TestViewReflectsTable(t *testing.T) {
	pool := mem.Default()
	tbl, err := NewTable(sequenceColumns(t, pool, 3, 4))
	if err != nil {
		t.Fatalf("Failed to construct table: %v", err)
	}
	defer tbl.Release()

	v := tbl.View()
	if v.NumColumns() != 3 {
		t.Errorf("Expected view width 3, got %d", v.NumColumns())
	}
	if v.NumRows() != 4 {
		t.Errorf("Expected view rows 4, got %d", v.NumRows())
	}

	got := v.Column(1).Int64s()
	for r := 0; r < 4; r++ {
		if got[r] != int64(4+r) {
			t.Errorf("Row %d: expected %d, got %d", r, 4+r, got[r])
		}
	}
}

func TestViewSelect(t *testing.T) {
	pool := mem.Default()
	tbl, err := NewTable(sequenceColumns(t, pool, 4, 2))
	if err != nil {
		t.Fatalf("Failed to construct table: %v", err)
	}
	defer tbl.Release()

	narrow := tbl.View().Select(3, 1)
	if narrow.NumColumns() != 2 {
		t.Fatalf("Expected narrowed width 2, got %d", narrow.NumColumns())
	}
	if narrow.NumRows() != 2 {
		t.Errorf("Expected narrowed rows 2, got %d", narrow.NumRows())
	}
	if got := narrow.Column(0).Int64s()[0]; got != 6 {
		t.Errorf("Expected column 3 data first, got %d", got)
	}
	if got := narrow.Column(1).Int64s()[0]; got != 2 {
		t.Errorf("Expected column 1 data second, got %d", got)
	}
}

func TestViewZeroWidth(t *testing.T) {
	tbl, err := NewTable(nil)
	if err != nil {
		t.Fatalf("Failed to construct zero-width table: %v", err)
	}
	defer tbl.Release()

	v := tbl.View()
	if v.NumColumns() != 0 || v.NumRows() != 0 {
		t.Errorf("Expected empty view, got %dx%d", v.NumColumns(), v.NumRows())
	}
}
