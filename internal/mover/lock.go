package mover

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockDataset takes an advisory lock on the dataset so two live mutations
// cannot interleave. The returned release function must be called when the
// mutation finishes; dry runs never lock.
func LockDataset(root, lockFile string) (func() error, error) {
	lock := flock.New(filepath.Join(root, lockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock dataset: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("dataset is locked by another bidskit invocation (%s)", lock.Path())
	}
	return lock.Unlock, nil
}
