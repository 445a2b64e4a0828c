package storage

import (
	"path/filepath"
	"testing"
)

func TestLocalSetAndGet(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if err := store.Set("platformTokens", `[{"id":"t1"}]`); err != nil {
		t.Fatalf("Failed to set value: %v", err)
	}

	value, ok, err := store.Get("platformTokens")
	if err != nil {
		t.Fatalf("Failed to get value: %v", err)
	}
	if !ok {
		t.Fatal("Expected key to be present")
	}
	if value != `[{"id":"t1"}]` {
		t.Errorf("Expected stored value, got %s", value)
	}
}

func TestLocalGetAbsentKey(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	value, ok, err := store.Get("missing")
	if err != nil {
		t.Fatalf("Absent key should not be an error: %v", err)
	}
	if ok {
		t.Error("Expected absent key to report not present")
	}
	if value != "" {
		t.Errorf("Expected empty value for absent key, got %q", value)
	}
}

func TestLocalRemove(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if err := store.Set("cachedRepositories", "{}"); err != nil {
		t.Fatalf("Failed to set value: %v", err)
	}

	if err := store.Remove("cachedRepositories"); err != nil {
		t.Fatalf("Failed to remove key: %v", err)
	}

	if _, ok, _ := store.Get("cachedRepositories"); ok {
		t.Error("Expected key to be gone after remove")
	}
}

func TestLocalRemoveAbsentKey(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if err := store.Remove("missing"); err != nil {
		t.Errorf("Removing an absent key should be a no-op, got %v", err)
	}
}

func TestLocalKeySanitization(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if err := store.Set("a/b:c", "x"); err != nil {
		t.Fatalf("Failed to set value: %v", err)
	}

	expectedPath := filepath.Join(dir, "a_b_c.json")
	if store.path("a/b:c") != expectedPath {
		t.Errorf("Expected path %s, got %s", expectedPath, store.path("a/b:c"))
	}

	value, ok, err := store.Get("a/b:c")
	if err != nil || !ok || value != "x" {
		t.Errorf("Round trip through sanitized key failed: %q %v %v", value, ok, err)
	}
}
