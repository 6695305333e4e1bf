package sync

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/sohfix/prx/internal/domain"
)

// lockFileName is the advisory lock taken in each output directory.
// A single session owns a directory at a time; concurrent sessions on the
// same directory are refused rather than left undefined.
const lockFileName = ".prx.lock"

// lockDir takes a non-blocking advisory lock on dir.
// Returns an unlock func, or domain.ErrDirectoryLocked when another
// session holds the lock.
func lockDir(dir string) (func(), error) {
	fl := flock.New(filepath.Join(dir, lockFileName))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", dir, err)
	}
	if !ok {
		return nil, domain.ErrDirectoryLocked
	}
	return func() { _ = fl.Unlock() }, nil
}
