package favorites

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"StockWatch/internal/model"
)

func codes(list []model.FavoriteEntry) []string {
	out := make([]string, len(list))
	for i, f := range list {
		out[i] = f.Code
	}
	return out
}

func equalCodes(t *testing.T, got []model.FavoriteEntry, want ...string) {
	t.Helper()
	g := codes(got)
	if len(g) != len(want) {
		t.Fatalf("expected %v, got %v", want, g)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, g)
		}
	}
}

var testDefaults = []model.FavoriteEntry{
	{Code: "600000", Name: "浦发银行"},
	{Code: "000001", Name: "平安银行"},
	{Code: "600519", Name: "贵州茅台"},
}

// exerciseStore runs the shared behaviour checks against any Store.
func exerciseStore(t *testing.T, open func() Store) {
	ctx := context.Background()
	s := open()

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	equalCodes(t, list, "600000", "000001", "600519")

	list, err = s.Add(ctx, model.FavoriteEntry{Code: "000002", Name: "万科A"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	equalCodes(t, list, "600000", "000001", "600519", "000002")

	if _, err := s.Add(ctx, model.FavoriteEntry{Code: "600519", Name: "贵州茅台"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if _, err := s.Add(ctx, model.FavoriteEntry{Code: " ", Name: "x"}); !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("expected ErrInvalidEntry, got %v", err)
	}

	list, err = s.Remove(ctx, "000001")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	equalCodes(t, list, "600000", "600519", "000002")

	list, err = s.Remove(ctx, "999999")
	if err != nil {
		t.Fatalf("remove missing: %v", err)
	}
	equalCodes(t, list, "600000", "600519", "000002")

	list, err = s.Reorder(ctx, []string{"000002", "unknown", "600000", "000002"})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	equalCodes(t, list, "000002", "600000")
	if list[0].Name != "万科A" {
		t.Errorf("reorder should keep names, got %+v", list[0])
	}

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopening must see the persisted order and must not reseed.
	s = open()
	list, err = s.List(ctx)
	if err != nil {
		t.Fatalf("list after reopen: %v", err)
	}
	equalCodes(t, list, "000002", "600000")

	list, err = s.Reorder(ctx, nil)
	if err != nil {
		t.Fatalf("reorder empty: %v", err)
	}
	equalCodes(t, list)
	s.Close()

	s = open()
	defer s.Close()
	list, err = s.List(ctx)
	if err != nil {
		t.Fatalf("list after emptying: %v", err)
	}
	equalCodes(t, list)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "favorites.json")
	exerciseStore(t, func() Store { return NewFileStore(path, testDefaults) })
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.db")
	exerciseStore(t, func() Store {
		s, err := NewSQLiteStore(path, testDefaults, zerolog.Nop())
		if err != nil {
			t.Fatalf("open sqlite store: %v", err)
		}
		return s
	})
}

func TestFileStore_SeedsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.json")
	s := NewFileStore(path, nil)
	list, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != len(DefaultEntries) {
		t.Fatalf("expected %d default entries, got %d", len(DefaultEntries), len(list))
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected favorites file to be written: %v", err)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path, nil).List(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestReorder_Intersection(t *testing.T) {
	list := []model.FavoriteEntry{{Code: "a", Name: "A"}, {Code: "b", Name: "B"}, {Code: "c", Name: "C"}}
	got := reorder(list, []string{"c", "x", "a"})
	equalCodes(t, got, "c", "a")
	if len(reorder(list, nil)) != 0 {
		t.Error("expected empty result for empty input")
	}
}
