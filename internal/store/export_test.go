package store

import (
	"context"
	"encoding/json"
	"testing"
)

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)

	first, _ := src.Put(ctx, PutParams{Name: "laptop", Source: "/a/user.history", History: testHistory()})
	src.Put(ctx, PutParams{Name: "desktop", History: testHistory()})

	all, err := src.ExportAll(ctx, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 exports, got %d", len(all))
	}
	if all[0].ID != first.ID {
		t.Errorf("expected oldest first, got %s", all[0].ID)
	}

	laptops, _ := src.ExportAll(ctx, "laptop")
	if len(laptops) != 1 {
		t.Fatalf("expected 1 laptop export, got %d", len(laptops))
	}

	b, err := json.Marshal(all)
	if err != nil {
		t.Fatal(err)
	}
	var decoded []Export
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}

	dst := newTestStore(t)
	n, err := dst.Import(ctx, decoded)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Errorf("imported %d, want 2", n)
	}

	snaps, _ := dst.List(ctx, ListParams{Name: "laptop"})
	if len(snaps) != 1 {
		t.Fatalf("expected 1 imported laptop snapshot, got %d", len(snaps))
	}
	if snaps[0].Source != "/a/user.history" {
		t.Errorf("Source = %q", snaps[0].Source)
	}
	got, err := dst.Get(ctx, snaps[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.History.Equal(testHistory()) {
		t.Errorf("imported history differs:\ngot  %+v\nwant %+v", got.History, testHistory())
	}
}

func TestImportRejectsUnknownVersion(t *testing.T) {
	s := newTestStore(t)
	e := Export{}
	e.Name = "bad"
	e.Version = 9
	if _, err := s.Import(context.Background(), []Export{e}); err == nil {
		t.Fatal("expected error for unknown format version")
	}
}
