package database

import (
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	bolt "go.etcd.io/bbolt"

	sdb "aoa/internal/database"
	"aoa/internal/dataset/model"
	"aoa/internal/table"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir, err := ioutil.TempDir("", "aoa-dataset-test")
	if err != nil {
		t.Fatalf("temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	db, err := bolt.Open(filepath.Join(dir, "test.db"), 0600, nil)
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(&sdb.DB{DB: db})
}

func testDataset(name string) model.Dataset {
	return model.New(
		name,
		[]model.Column{
			{Name: "elev", Kind: uint8(table.KindNumeric), Numeric: []float64{10, 20, 30}},
			{Name: "soil", Kind: uint8(table.KindCategorical), Levels: []string{"A", "B", "A"}},
		},
		[]string{"f1", "f2", "f1"},
		map[string]float64{"elev": 2, "soil": 1},
	)
}

func TestSaveFind(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	stored := testDataset("meuse")
	if err := db.Save(ctx, stored); err != nil {
		t.Fatalf("save: %v", err)
	}

	found, err := db.Find(ctx, "meuse")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.ID != stored.ID || found.Name != stored.Name {
		t.Errorf("identity mismatch, got: %v %q", found.ID, found.Name)
	}
	if found.ContentHash() != stored.ContentHash() {
		t.Errorf("content hash changed across the store round-trip")
	}

	tbl, err := found.Table()
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	if tbl.Rows() != 3 {
		t.Errorf("rows, got: %d, expected: 3", tbl.Rows())
	}
	folds := found.Folds()
	if !folds.Same(0, 2) || folds.Same(0, 1) {
		t.Errorf("fold labels decoded wrong: %v", folds)
	}
}

func TestFindMissing(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.Find(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got: %v, expected ErrNotFound", err)
	}
}

func TestNamesDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b"} {
		if err := db.Save(ctx, testDataset(name)); err != nil {
			t.Fatalf("save %q: %v", name, err)
		}
	}
	names, err := db.Names()
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("names, got: %v", names)
	}

	if err := db.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := db.Find(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted dataset still found: %v", err)
	}
}
