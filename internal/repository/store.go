package repository

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Store keeps entries in memory and drops them after ttl without access.
type Store[E any] struct {
	cache    *cache.Cache
	notFound error
}

func newStore[E any](ttl time.Duration, notFound error, onEvict func(E)) *Store[E] {
	c := cache.New(ttl, cleanupInterval(ttl))
	if onEvict != nil {
		c.OnEvicted(func(_ string, v any) {
			if e, ok := v.(E); ok {
				onEvict(e)
			}
		})
	}

	return &Store[E]{
		cache:    c,
		notFound: notFound,
	}
}

// Add stores a new entry. It fails if the id is already taken.
func (s *Store[E]) Add(id string, e E) error {
	return s.cache.Add(id, e, cache.DefaultExpiration)
}

// Get returns the entry and extends its lifetime.
func (s *Store[E]) Get(id string) (E, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		var zero E
		return zero, s.notFound
	}

	e, ok := v.(E)
	if !ok {
		var zero E
		return zero, s.notFound
	}

	s.cache.Set(id, e, cache.DefaultExpiration)
	return e, nil
}

func (s *Store[E]) Delete(id string) {
	s.cache.Delete(id)
}

func (s *Store[E]) Len() int {
	return s.cache.ItemCount()
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return time.Minute
	}
	interval := ttl / 2
	if interval > 10*time.Minute {
		interval = 10 * time.Minute
	}
	return interval
}
