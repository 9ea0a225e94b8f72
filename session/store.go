package session

import (
	"sync"

	"github.com/google/uuid"
)

// Store owns the session state aggregate. All mutations go through Store
// methods, are applied atomically under one mutex, and are published to
// subscribers as snapshot copies.
type Store struct {
	mu     sync.RWMutex
	snap   Snapshot
	subs   map[uint64]chan Snapshot
	nextID uint64
}

// NewStore creates a Store in the unauthenticated baseline state.
func NewStore() *Store {
	return &Store{
		subs: make(map[uint64]chan Snapshot),
	}
}

// Snapshot returns a copy of the current aggregate.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe registers a state observer. The returned channel receives a
// snapshot after every mutation; slow consumers lose intermediate snapshots
// rather than blocking mutators. Callers must Unsubscribe when done.
func (s *Store) Subscribe() (uint64, <-chan Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	ch := make(chan Snapshot, 1)
	s.subs[id] = ch
	return id, ch
}

// Unsubscribe removes an observer and closes its channel.
func (s *Store) Unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

// SubscriberCount reports the number of registered observers.
func (s *Store) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// publish must be called with s.mu held.
func (s *Store) publish() {
	for _, ch := range s.subs {
		select {
		case ch <- s.snap:
		default:
			// Replace the stale pending snapshot with the current one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s.snap:
			default:
			}
		}
	}
}

// Episode returns the current session episode identifier.
func (s *Store) Episode() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Episode
}

// SetBootstrapping flips the first-acquisition flag.
func (s *Store) SetBootstrapping(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Bootstrapping = v
	s.publish()
}

// BeginEpisode transitions the aggregate to authenticated with the given
// credential and a fresh episode identifier, returning the episode.
func (s *Store) BeginEpisode(credential string) uuid.UUID {
	episode := uuid.New()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Credential = credential
	s.snap.Authenticated = true
	s.snap.Bootstrapping = false
	s.snap.Episode = episode
	s.publish()
	return episode
}

// SetCredential replaces the credential if the given episode is still
// current. It reports whether the write was applied; a false return means the
// caller's work belongs to a torn-down or superseded episode and must be
// discarded.
func (s *Store) SetCredential(episode uuid.UUID, credential string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap.Episode != episode || !s.snap.Authenticated {
		return false
	}
	s.snap.Credential = credential
	s.publish()
	return true
}

// SetProfileLoading flips the outstanding-profile-request flag if the episode
// is still current.
func (s *Store) SetProfileLoading(episode uuid.UUID, v bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap.Episode != episode {
		return false
	}
	s.snap.ProfileLoading = v
	s.publish()
	return true
}

// SetProfile replaces the profile wholesale and clears profileLoading if the
// episode is still current.
func (s *Store) SetProfile(episode uuid.UUID, profile *Profile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap.Episode != episode {
		return false
	}
	s.snap.Profile = profile
	s.snap.ProfileLoading = false
	s.publish()
	return true
}

// Reset returns the aggregate to the unauthenticated baseline and invalidates
// the episode. Subscribers observe exactly one reset snapshot.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap = Snapshot{}
	s.publish()
}
