package gis

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestScratchStorePutResolveRelease(t *testing.T) {
	store := NewScratchStore(t.TempDir(), time.Hour)

	workDir, err := store.NewWorkDir()
	if err != nil {
		t.Fatalf("NewWorkDir: %v", err)
	}
	gdbPath := filepath.Join(workDir, "data.gdb")
	if err := os.MkdirAll(gdbPath, 0755); err != nil {
		t.Fatal(err)
	}

	id := store.Put(workDir, gdbPath)

	resolved, err := store.Resolve(id)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved != gdbPath {
		t.Errorf("Resolve = %q, want %q", resolved, gdbPath)
	}

	store.Release(id)
	if _, err := store.Resolve(id); !errors.Is(err, ErrScratchNotFound) {
		t.Errorf("Resolve after Release = %v, want ErrScratchNotFound", err)
	}
	if _, err := os.Stat(workDir); !os.IsNotExist(err) {
		t.Error("Release left the work directory behind")
	}
}

func TestScratchStoreUnknownID(t *testing.T) {
	store := NewScratchStore(t.TempDir(), time.Hour)
	if _, err := store.Resolve("no-such-id"); !errors.Is(err, ErrScratchNotFound) {
		t.Errorf("got %v, want ErrScratchNotFound", err)
	}
}

func TestScratchStoreExpiry(t *testing.T) {
	store := NewScratchStore(t.TempDir(), 10*time.Millisecond)

	workDir, err := store.NewWorkDir()
	if err != nil {
		t.Fatal(err)
	}
	id := store.Put(workDir, workDir)

	time.Sleep(30 * time.Millisecond)

	if _, err := store.Resolve(id); !errors.Is(err, ErrScratchNotFound) {
		t.Fatalf("expired entry resolved: %v", err)
	}
	if _, err := os.Stat(workDir); !os.IsNotExist(err) {
		t.Error("expired work directory not removed")
	}
}

func TestScratchStoreCleanupSweep(t *testing.T) {
	store := NewScratchStore(t.TempDir(), 10*time.Millisecond)

	workDir, err := store.NewWorkDir()
	if err != nil {
		t.Fatal(err)
	}
	store.Put(workDir, workDir)

	time.Sleep(30 * time.Millisecond)
	store.cleanup()

	if _, err := os.Stat(workDir); !os.IsNotExist(err) {
		t.Error("sweep left expired directory behind")
	}
	store.mu.RLock()
	remaining := len(store.items)
	store.mu.RUnlock()
	if remaining != 0 {
		t.Errorf("%d entries left after sweep, want 0", remaining)
	}
}
