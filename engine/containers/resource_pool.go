package containers

import "sync"

type resourceEntry[V any] struct {
	value V
	refs  int
}

// ResourcePool shares values by key and counts references to them. It is
// safe for concurrent use; create runs under the pool lock.
type ResourcePool[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*resourceEntry[V]
}

func NewResourcePool[K comparable, V any]() *ResourcePool[K, V] {
	return &ResourcePool[K, V]{entries: make(map[K]*resourceEntry[V])}
}

// Get returns the value for key without taking a reference.
func (p *ResourcePool[K, V]) Get(key K) (V, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Acquire returns the shared value for key, creating it on first use.
// Failed creations are not cached.
func (p *ResourcePool[K, V]) Acquire(key K, create func() (V, error)) (V, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.entries[key]; ok {
		e.refs++
		return e.value, nil
	}
	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	p.entries[key] = &resourceEntry[V]{value: v, refs: 1}
	return v, nil
}

// Release drops a reference and reports whether the value was evicted.
func (p *ResourcePool[K, V]) Release(key K) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[key]
	if !ok {
		return false
	}
	e.refs--
	if e.refs > 0 {
		return false
	}
	delete(p.entries, key)
	return true
}

// Evict drops key regardless of outstanding references and returns its value.
func (p *ResourcePool[K, V]) Evict(key K) (V, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	delete(p.entries, key)
	return e.value, true
}

// Clear empties the pool and returns every value it held.
func (p *ResourcePool[K, V]) Clear() []V {
	p.mu.Lock()
	defer p.mu.Unlock()

	values := make([]V, 0, len(p.entries))
	for _, e := range p.entries {
		values = append(values, e.value)
	}
	clear(p.entries)
	return values
}

func (p *ResourcePool[K, V]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
