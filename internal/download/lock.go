package download

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// staleLockThreshold is the maximum age of a cache lock before it is
// treated as left behind by a dead process.
const staleLockThreshold = 10 * time.Minute

// ErrCacheLocked means another process is downloading into the same
// cache entry.
var ErrCacheLocked = errors.New("cache entry locked: another download may be in progress")

// cacheLock guards one cache entry directory against concurrent
// writers. Locking uses O_CREATE|O_EXCL so acquisition is atomic.
type cacheLock struct {
	path string
	file *os.File
}

// acquireCacheLock locks the cache entry at dir. A lock older than
// staleLockThreshold is removed and acquisition retried once.
func acquireCacheLock(dir string) (*cacheLock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache entry dir: %w", err)
	}

	lockPath := filepath.Join(dir, "download.lock")

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}
		if stale, _ := isLockStale(lockPath); !stale {
			return nil, ErrCacheLocked
		}
		os.Remove(lockPath)
		file, err = os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
		if err != nil {
			return nil, ErrCacheLocked
		}
	}

	lockData := fmt.Sprintf("pid=%d\ntimestamp=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	if _, err := file.WriteString(lockData); err != nil {
		file.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("write lock data: %w", err)
	}

	return &cacheLock{path: lockPath, file: file}, nil
}

// release removes the lock. Safe to call on an already-released lock.
func (l *cacheLock) release() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
	if l.path != "" {
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove lock file: %w", err)
		}
		l.path = ""
	}
	return nil
}

func isLockStale(lockPath string) (bool, error) {
	info, err := os.Stat(lockPath)
	if err != nil {
		return false, err
	}
	return time.Since(info.ModTime()) > staleLockThreshold, nil
}
