package store

import (
	"context"
	"sync"
)

// Store serializes all access to the entity state behind one lock and
// flushes a snapshot after every successful mutation. Reads run under a
// shared lock and never observe a partially applied mutation.
type Store struct {
	mu    sync.RWMutex
	state *State
	snap  *Snapshot
}

// Open loads the snapshot (seeding the bootstrap dataset when it is
// missing or unreadable) and returns a ready store.
func Open(ctx context.Context, snap *Snapshot) (*Store, error) {
	st, err := snap.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Store{state: st, snap: snap}, nil
}

// View runs fn under a shared lock. fn must not retain the *State.
func (s *Store) View(fn func(*State) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

// Update runs fn under the exclusive lock and persists the snapshot when
// fn succeeds. Read-the-rule, apply, write and persist all happen inside
// one critical section, so two concurrent mutations cannot interleave a
// read-modify-write and the snapshot never serializes a half-applied
// state. A persistence failure is returned to the caller but does not
// roll back the in-memory mutation; the prior on-disk snapshot remains
// valid.
func (s *Store) Update(ctx context.Context, fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.state); err != nil {
		return err
	}
	return s.snap.Save(ctx, s.state)
}
