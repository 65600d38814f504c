package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rcliao/libime-history-merge/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testHistory() *model.History {
	return model.NewHistory([model.PoolCount]model.Pool{
		{{"音乐", "好听"}, {"hello", "world"}},
		{{"with space", ""}},
		{{"oldest"}, nil},
	})
}

func TestPutAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	h := testHistory()
	snap, err := s.Put(ctx, PutParams{Name: "laptop", Source: "/home/u/user.history", History: h})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if snap.ID == "" {
		t.Error("expected non-empty ID")
	}
	if snap.PoolSizes != [model.PoolCount]int{2, 1, 2} {
		t.Errorf("PoolSizes = %v, want [2 1 2]", snap.PoolSizes)
	}
	if snap.Sentences != 5 {
		t.Errorf("Sentences = %d, want 5", snap.Sentences)
	}

	got, err := s.Get(ctx, snap.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "laptop" || got.Source != "/home/u/user.history" {
		t.Errorf("got name %q source %q", got.Name, got.Source)
	}
	if !got.History.Equal(h) {
		t.Errorf("history mismatch:\ngot  %+v\nwant %+v", got.History, h)
	}
}

func TestGetKeepsCompressedVersion(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	h := testHistory().WithVersion(model.VersionCompressed)
	snap, err := s.Put(ctx, PutParams{Name: "v3", History: h})
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, snap.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.History.Version != model.VersionCompressed {
		t.Errorf("Version = %d, want %d", got.History.Version, model.VersionCompressed)
	}
}

func TestGetByPrefix(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	snap, _ := s.Put(ctx, PutParams{Name: "a", History: testHistory()})

	got, err := s.Get(ctx, strings.ToLower(snap.ID[:20]))
	if err != nil {
		t.Fatalf("get by prefix: %v", err)
	}
	if got.ID != snap.ID {
		t.Errorf("got %s, want %s", got.ID, snap.ID)
	}
}

func TestGetAmbiguousPrefix(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Put(ctx, PutParams{Name: "a", History: testHistory()})
	s.Put(ctx, PutParams{Name: "b", History: testHistory()})

	// Every ULID minted before the year 3000 starts with 0.
	_, err := s.Get(ctx, "0")
	if err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Fatalf("got %v, want ambiguous error", err)
	}
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "01NOPE")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("got %v, want not found", err)
	}
}

func TestPutDefaultName(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	snap, err := s.Put(ctx, PutParams{Source: "/tmp/x/user.history", History: testHistory()})
	if err != nil {
		t.Fatal(err)
	}
	if snap.Name != "user.history" {
		t.Errorf("Name = %q, want user.history", snap.Name)
	}

	snap, err = s.Put(ctx, PutParams{History: testHistory()})
	if err != nil {
		t.Fatal(err)
	}
	if snap.Name != "snapshot" {
		t.Errorf("Name = %q, want snapshot", snap.Name)
	}
}

func TestPutRequiresHistory(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Put(context.Background(), PutParams{Name: "x"}); err == nil {
		t.Fatal("expected error for missing history")
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, _ := s.Put(ctx, PutParams{Name: "laptop", History: testHistory()})
	second, _ := s.Put(ctx, PutParams{Name: "desktop", History: testHistory()})
	third, _ := s.Put(ctx, PutParams{Name: "laptop", History: testHistory()})

	all, err := s.List(ctx, ListParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(all))
	}
	if all[0].ID != third.ID || all[1].ID != second.ID || all[2].ID != first.ID {
		t.Errorf("expected newest first, got %s %s %s", all[0].ID, all[1].ID, all[2].ID)
	}
	if all[0].Sentences != 5 {
		t.Errorf("Sentences = %d, want 5", all[0].Sentences)
	}

	laptops, _ := s.List(ctx, ListParams{Name: "laptop"})
	if len(laptops) != 2 {
		t.Errorf("expected 2 laptop snapshots, got %d", len(laptops))
	}

	limited, _ := s.List(ctx, ListParams{Limit: 1})
	if len(limited) != 1 {
		t.Errorf("expected 1 with limit, got %d", len(limited))
	}
}

func TestRm(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	snap, _ := s.Put(ctx, PutParams{Name: "gone", History: testHistory()})
	keep, _ := s.Put(ctx, PutParams{Name: "kept", History: testHistory()})

	if err := s.Rm(ctx, snap.ID); err != nil {
		t.Fatalf("rm: %v", err)
	}
	if _, err := s.Get(ctx, snap.ID); err == nil {
		t.Error("expected removed snapshot to be gone")
	}
	if _, err := s.Get(ctx, keep.ID); err != nil {
		t.Errorf("other snapshot should survive: %v", err)
	}

	var orphans int
	s.db.QueryRow(`SELECT COUNT(*) FROM sentences WHERE snapshot_id = ?`, snap.ID).Scan(&orphans)
	if orphans != 0 {
		t.Errorf("expected sentences to be removed, %d left", orphans)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "stats.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer s.Close()

	s.Put(ctx, PutParams{Name: "laptop", History: testHistory()})
	s.Put(ctx, PutParams{Name: "laptop", History: testHistory()})
	s.Put(ctx, PutParams{Name: "desktop", History: testHistory()})

	st, err := s.Stats(ctx, dbPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Snapshots != 3 {
		t.Errorf("Snapshots = %d, want 3", st.Snapshots)
	}
	if st.Sentences != 15 {
		t.Errorf("Sentences = %d, want 15", st.Sentences)
	}
	if st.DistinctTexts != 5 {
		t.Errorf("DistinctTexts = %d, want 5", st.DistinctTexts)
	}
	if len(st.Names) != 2 || st.Names[0].Name != "laptop" || st.Names[0].Snapshots != 2 {
		t.Errorf("Names = %+v", st.Names)
	}
	if st.DBSizeBytes == 0 {
		t.Error("expected non-zero db size")
	}
}

func TestArchiveFilesOwnerOnly(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "archive.db")

	// A loose pre-existing file is tightened as well.
	if err := os.WriteFile(dbPath, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer s.Close()

	if _, err := s.Put(ctx, PutParams{Name: "secret", History: model.NewHistory([model.PoolCount]model.Pool{
		{{"secret", "typing"}},
	})}); err != nil {
		t.Fatal(err)
	}

	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		info, err := os.Stat(p)
		if os.IsNotExist(err) && p != dbPath {
			continue
		}
		if err != nil {
			t.Fatalf("stat %s: %v", p, err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("%s mode = %o, want 600", filepath.Base(p), perm)
		}
	}
}

func TestStatsReportsQueryErrors(t *testing.T) {
	s := newTestStore(t)
	s.Close()

	if _, err := s.Stats(context.Background(), "closed.db"); err == nil {
		t.Fatal("expected error from a closed archive")
	}
}
