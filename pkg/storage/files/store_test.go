package files

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRemoveDeletesExistingFile(t *testing.T) {
	root := t.TempDir()
	store, err := NewStore(root)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	full := filepath.Join(root, "photo.jpg")
	if err := os.WriteFile(full, []byte("img"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if err := store.Remove("/uploads/photo.jpg"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(full); !os.IsNotExist(err) {
		t.Fatalf("expected file gone, stat err=%v", err)
	}
}

func TestRemoveMissingFileIsNotAnError(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.Remove("/uploads/never-existed.jpg"); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
}

func TestResolveRejectsEscapes(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	for _, path := range []string{"../etc/passwd", "/uploads/../../etc/passwd", "/elsewhere/x"} {
		if _, err := store.Resolve(path); err == nil {
			t.Fatalf("expected rejection for %q", path)
		}
	}
}
