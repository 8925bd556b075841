package download

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAcquireCacheLock(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "entry")

	lock, err := acquireCacheLock(dir)
	if err != nil {
		t.Fatalf("acquireCacheLock() error = %v", err)
	}

	// Second acquisition must fail while the lock is held.
	if _, err := acquireCacheLock(dir); !errors.Is(err, ErrCacheLocked) {
		t.Errorf("second acquireCacheLock() error = %v, want ErrCacheLocked", err)
	}

	if err := lock.release(); err != nil {
		t.Fatalf("release() error = %v", err)
	}

	// Released lock can be reacquired.
	lock2, err := acquireCacheLock(dir)
	if err != nil {
		t.Fatalf("reacquire error = %v", err)
	}
	lock2.release()
}

func TestReleaseIsIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "entry")
	lock, err := acquireCacheLock(dir)
	if err != nil {
		t.Fatalf("acquireCacheLock() error = %v", err)
	}
	if err := lock.release(); err != nil {
		t.Fatalf("first release() error = %v", err)
	}
	if err := lock.release(); err != nil {
		t.Errorf("second release() error = %v", err)
	}
}

func TestStaleLockIsReplaced(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "entry")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	lockPath := filepath.Join(dir, "download.lock")
	if err := os.WriteFile(lockPath, []byte("pid=1\n"), 0o600); err != nil {
		t.Fatalf("write stale lock: %v", err)
	}
	old := time.Now().Add(-staleLockThreshold - time.Minute)
	if err := os.Chtimes(lockPath, old, old); err != nil {
		t.Fatalf("age lock file: %v", err)
	}

	lock, err := acquireCacheLock(dir)
	if err != nil {
		t.Fatalf("acquireCacheLock() over stale lock error = %v", err)
	}
	lock.release()
}
