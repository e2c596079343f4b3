package chain

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	const doc = `[
		{
			"name": "near",
			"ir_len": 6,
			"idcode": 305419896,
			"registers": [
				{"name": "BYPASS", "address": 63, "width": 1},
				{"name": "IDCODE", "address": 9, "width": 32}
			]
		},
		{
			"name": "far",
			"ir_len": 4,
			"idcode": 2271560481,
			"registers": [
				{"name": "BYPASS", "address": 15, "width": 1}
			]
		}
	]`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if c[0].Name != "near" || c[0].IRLen != 6 {
		t.Fatalf("c[0] = %+v, want near/6", c[0])
	}
	if c[1].Name != "far" || c[1].BypassAddress() != 0xf {
		t.Fatalf("c[1] = %+v, want far with bypass 0xf", c[1])
	}
}

func TestLoadCatalogMissingBypassIsRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	const doc = `[{"name": "dev", "ir_len": 4, "idcode": 1, "registers": [{"name": "IDCODE", "address": 9, "width": 32}]}]`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadCatalog(path); err == nil {
		t.Fatal("expected an error for a catalog entry missing BYPASS")
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "does-not-exist.json")); err == nil {
		t.Fatal("expected an error for a missing catalog file")
	}
}
