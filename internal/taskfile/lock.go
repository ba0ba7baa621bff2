package taskfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gofrs/flock"

	"github.com/comandaflow/timetrack/internal/debug"
)

// lockFileName coordinates concurrent tt processes writing the same task tree.
const lockFileName = ".tt.lock"

// LockTimeout bounds how long Lock waits for another process.
var LockTimeout = 10 * time.Second

// ErrLocked is returned when the lock is still held after LockTimeout.
var ErrLocked = errors.New("task directory is locked by another process")

// Lock takes an exclusive advisory lock on the task tree. The returned
// function releases it and is safe to call more than once.
func (s *Store) Lock(ctx context.Context) (func() error, error) {
	if err := os.MkdirAll(s.BaseDir, dirPerms); err != nil {
		return nil, fmt.Errorf("failed to create task directory: %w", err)
	}

	fl := flock.New(filepath.Join(s.BaseDir, lockFileName))

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 25 * time.Millisecond
	bo.MaxInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = LockTimeout

	start := time.Now()
	err := backoff.Retry(func() error {
		locked, err := fl.TryLock()
		if err != nil {
			return backoff.Permanent(err)
		}
		if !locked {
			return ErrLocked
		}
		return nil
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		if errors.Is(err, ErrLocked) {
			return nil, fmt.Errorf("%w (waited %v)", ErrLocked, time.Since(start).Round(time.Millisecond))
		}
		return nil, fmt.Errorf("failed to lock task directory: %w", err)
	}

	debug.Logf("acquired task lock: %s", fl.Path())
	return func() error {
		if !fl.Locked() {
			return nil
		}
		debug.Logf("releasing task lock: %s", fl.Path())
		return fl.Unlock()
	}, nil
}
