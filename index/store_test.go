package index

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	tmp := t.TempDir()
	path := Path(tmp)

	ix := New()
	ix.Entries["hello-demo"] = &Entry{
		Path:      "hello-demo",
		Hash:      "abc123",
		ModTime:   1700000000,
		IndexedAt: time.Now().Unix(),
		Dump:      shadowDump(),
	}

	if err := ix.SaveBinary(path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}
	if !Exists(path) {
		t.Fatal("index file missing after SaveBinary")
	}

	loaded, err := LoadBinary(path)
	if err != nil {
		t.Fatalf("LoadBinary: %v", err)
	}

	entry, ok := loaded.Get("hello-demo")
	if !ok {
		t.Fatal("entry missing after round trip")
	}
	if entry.Hash != "abc123" {
		t.Errorf("entry hash = %q, want %q", entry.Hash, "abc123")
	}
	if entry.Dump == nil || len(entry.Dump.Scopes) != 5 {
		t.Fatalf("dump did not survive round trip: %+v", entry.Dump)
	}
	if entry.Dump.Scopes[1].Name != "main.shadow" {
		t.Errorf("scope 1 name = %q, want main.shadow", entry.Dump.Scopes[1].Name)
	}

	refs := ShadowChain(entry.Dump, "s")
	if len(refs) != 3 {
		t.Errorf("ShadowChain on loaded dump returned %d refs, want 3", len(refs))
	}
}

func TestLoadBinaryMissingFile(t *testing.T) {
	if _, err := LoadBinary(filepath.Join(t.TempDir(), "nope.gob")); err == nil {
		t.Error("LoadBinary succeeded on a missing file")
	}
}

func TestEntryIsStale(t *testing.T) {
	tmp := t.TempDir()
	binPath := filepath.Join(tmp, "prog")
	if err := os.WriteFile(binPath, []byte("original contents"), 0755); err != nil {
		t.Fatalf("write: %v", err)
	}

	hash, err := HashFile(binPath)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	info, err := os.Stat(binPath)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	entry := &Entry{Path: binPath, Hash: hash, ModTime: info.ModTime().Unix()}
	if entry.IsStale() {
		t.Error("fresh entry reported stale")
	}

	// Touch with new contents and a clearly different mod time.
	if err := os.WriteFile(binPath, []byte("rebuilt contents!"), 0755); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	later := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(binPath, later, later); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if !entry.IsStale() {
		t.Error("rebuilt binary not reported stale")
	}

	entry.Path = filepath.Join(tmp, "gone")
	if !entry.IsStale() {
		t.Error("missing binary not reported stale")
	}
}

func TestRemove(t *testing.T) {
	ix := New()
	ix.Entries["a"] = &Entry{Path: "a"}
	ix.Remove("a")
	if _, ok := ix.Get("a"); ok {
		t.Error("entry still present after Remove")
	}
}
