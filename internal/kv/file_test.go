package kv

import (
	"errors"
	"os"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	if err := store.Set("activities", []byte(`{"activities":[]}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := store.Get("activities")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"activities":[]}` {
		t.Fatalf("unexpected value: %s", got)
	}
}

func TestFileStoreMissingKey(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if _, err := store.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestFileStoreOverwriteReplacesValue(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if err := store.Set("k", []byte("first")); err != nil {
		t.Fatalf("set first: %v", err)
	}
	if err := store.Set("k", []byte("second")); err != nil {
		t.Fatalf("set second: %v", err)
	}
	got, err := store.Get("k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("expected second, got %s", got)
	}
	// No temp files should survive a completed write.
	entries, err := os.ReadDir(store.root)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 file in store dir, got %d", len(entries))
	}
}

func TestSanitizeKey(t *testing.T) {
	if got := sanitizeKey("alarm settings/2"); got != "alarm_settings_2" {
		t.Fatalf("unexpected sanitized key: %q", got)
	}
}
