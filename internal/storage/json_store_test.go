package storage

import (
	"os"
	"path/filepath"
	"testing"
)

type snapshot struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	store, err := NewJSONStore(t.TempDir(), "donors.json")
	if err != nil {
		t.Fatal(err)
	}

	var data []snapshot
	if err := store.Load(&data); err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("got %d entries, want 0", len(data))
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewJSONStore(dir, "donors.json")
	if err != nil {
		t.Fatal(err)
	}

	in := []snapshot{{ID: "1", Name: "Karim"}, {ID: "2", Name: "Rahima"}}
	if err := store.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// The temp file must be gone after the rename.
	if _, err := os.Stat(filepath.Join(dir, "donors.json.tmp")); !os.IsNotExist(err) {
		t.Error("temp file left behind after Save")
	}

	var out []snapshot
	if err := store.Load(&out); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 2 || out[0].Name != "Karim" || out[1].Name != "Rahima" {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestNewJSONStoreCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	store, err := NewJSONStore(dir, "donors.json")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save([]snapshot{{ID: "1"}}); err != nil {
		t.Fatalf("Save into created dir: %v", err)
	}
}
