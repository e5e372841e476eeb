package store

import (
	"context"
	"time"

	"github.com/roach88/teachsync/internal/model"
)

// lockRetryDelay is how often a contended file lock is retried.
const lockRetryDelay = 25 * time.Millisecond

// withWriteLock runs fn holding both the in-process mutex and the file lock
// beside the document. Waiting is bounded by LockTimeout; expiry is a
// PersistenceFailure.
func (s *Store) withWriteLock(ctx context.Context, op string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lockCtx, cancel := context.WithTimeout(ctx, s.cfg.LockTimeout)
	defer cancel()

	locked, err := s.flock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil || !locked {
		return model.Wrap(model.CodePersistence, op, err,
			"writer lock %s not acquired within %s", s.flock.Path(), s.cfg.LockTimeout)
	}
	defer func() {
		if err := s.flock.Unlock(); err != nil {
			s.log.Error().Err(err).Str("op", op).Msg("release writer lock")
		}
	}()

	return fn()
}
