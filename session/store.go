package session

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
)

// Store keeps sessions in memory only. The least recently used session is
// evicted once capacity is reached.
type Store struct {
	mu      sync.Mutex
	cache   *lru.Cache
	idleTTL time.Duration
	now     func() time.Time
}

func NewStore(capacity int, idleTTL time.Duration) (*Store, error) {
	cache, err := lru.New(capacity)
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}
	return &Store{cache: cache, idleTTL: idleTTL, now: time.Now}, nil
}

// Get returns the session for id, creating a fresh one when id is unknown
// or expired. The bool reports whether a new session was created.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	if id != "" {
		if v, ok := st.cache.Get(id); ok {
			s := v.(*Session)
			if now.Sub(s.lastSeen) <= st.idleTTL {
				s.touch(now)
				return s, false
			}
			st.cache.Remove(id)
		}
	}

	s := New(uuid.NewString(), now)
	st.cache.Add(s.ID, s)
	return s, true
}

func (st *Store) Len() int {
	return st.cache.Len()
}

// PurgeIdle drops sessions not seen within the idle timeout.
func (st *Store) PurgeIdle() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	removed := 0
	for _, key := range st.cache.Keys() {
		v, ok := st.cache.Peek(key)
		if !ok {
			continue
		}
		if now.Sub(v.(*Session).lastSeen) > st.idleTTL {
			st.cache.Remove(key)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("Purged %d idle sessions, %d remaining", removed, st.cache.Len())
	}
	return removed
}
