// Package observe keeps subscriber callbacks for state snapshots.
package observe

import (
	"slices"
	"sync"
)

// Registry fans a snapshot out to every subscriber. Callbacks run on the
// notifying goroutine, outside any lock held by the publisher.
type Registry[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(T)
}

// Subscribe registers fn and returns a func that removes it.
func (r *Registry[T]) Subscribe(fn func(T)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.subs == nil {
		r.subs = map[int]func(T){}
	}
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs, id)
	}
}

func (r *Registry[T]) Notify(snapshot T) {
	r.mu.Lock()
	ids := make([]int, 0, len(r.subs))
	for id := range r.subs {
		ids = append(ids, id)
	}
	fns := make([]func(T), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, r.subs[id])
	}
	r.mu.Unlock()
	for _, fn := range fns {
		fn(snapshot)
	}
}
