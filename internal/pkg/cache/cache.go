package cache

import (
	"strings"
	"sync"
	"time"
)

// Standard lifetimes.
const (
	BriefTTL  = 5 * time.Minute
	ShortTTL  = 30 * time.Minute
	MediumTTL = time.Hour
	LongTTL   = 24 * time.Hour
)

// Observer receives hit/miss notifications per namespace.
type Observer interface {
	Hit(namespace string)
	Miss(namespace string)
}

type entry struct {
	value     any
	createdAt time.Time
	ttl       time.Duration
}

func (e entry) expired(now time.Time) bool {
	return e.ttl > 0 && now.Sub(e.createdAt) > e.ttl
}

// Store is a namespaced TTL memo store safe for concurrent use.
// Entries expire lazily on read. A namespace with a configured lifetime is
// dropped as a whole once that lifetime has passed since it was last cleared.
type Store struct {
	mu        sync.RWMutex
	entries   map[string]entry
	lastClear map[string]time.Time
	nsTTL     map[string]time.Duration
	now       func() time.Time
	observer  Observer
}

type Option func(*Store)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

// WithNamespaceTTL sets the periodic sweep lifetime of one namespace.
func WithNamespaceTTL(namespace string, ttl time.Duration) Option {
	return func(s *Store) { s.nsTTL[namespace] = ttl }
}

func New(opts ...Option) *Store {
	s := &Store{
		entries:   make(map[string]entry),
		lastClear: make(map[string]time.Time),
		nsTTL:     make(map[string]time.Duration),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Namespace returns the key prefix up to the first ':'.
func Namespace(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}

// Get returns the cached value for key if present and not expired.
func (s *Store) Get(key string) (any, bool) {
	ns := Namespace(key)
	now := s.now()

	s.mu.RLock()
	e, ok := s.entries[key]
	sweep := s.sweepDue(ns, now)
	s.mu.RUnlock()

	if sweep {
		s.mu.Lock()
		if s.sweepDue(ns, now) {
			s.clearLocked(ns, now)
		}
		s.mu.Unlock()
		ok = false
	} else if ok && e.expired(now) {
		s.mu.Lock()
		if cur, still := s.entries[key]; still && cur.expired(now) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		ok = false
	}

	if s.observer != nil {
		if ok {
			s.observer.Hit(ns)
		} else {
			s.observer.Miss(ns)
		}
	}
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key. A ttl of zero never expires on its own.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	ns := Namespace(key)
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lastClear[ns]; !ok {
		s.lastClear[ns] = now
	}
	s.entries[key] = entry{value: value, createdAt: now, ttl: ttl}
}

func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// DeletePrefix removes every key starting with prefix.
func (s *Store) DeletePrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
			n++
		}
	}
	return n
}

// Clear drops one namespace, or everything when namespace is empty.
func (s *Store) Clear(namespace string) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if namespace == "" {
		s.entries = make(map[string]entry)
		for ns := range s.lastClear {
			s.lastClear[ns] = now
		}
		return
	}
	s.clearLocked(namespace, now)
}

// Len returns the number of stored entries, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) sweepDue(ns string, now time.Time) bool {
	ttl, ok := s.nsTTL[ns]
	if !ok || ttl <= 0 {
		return false
	}
	last, ok := s.lastClear[ns]
	return ok && now.Sub(last) > ttl
}

func (s *Store) clearLocked(ns string, now time.Time) {
	prefix := ns + ":"
	for key := range s.entries {
		if key == ns || strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	s.lastClear[ns] = now
}

// GetOrLoad returns the cached T for key, calling load on a miss.
// Load errors are returned and nothing is cached.
func GetOrLoad[T any](s *Store, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if v, ok := s.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	v, err := load()
	if err != nil {
		var zero T
		return zero, err
	}
	s.Set(key, v, ttl)
	return v, nil
}
