package containers

import "fmt"

// State is the lifecycle state of a pooled component.
type State uint8

const (
	// Active components take part in the frame.
	Active State = iota
	// Passive components are kept but skipped by the renderer.
	Passive
	// Terminated slots are free and may be reused by the next Add.
	Terminated
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Passive:
		return "passive"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

type slot[T any] struct {
	state State
	value T
}

/**
 * @brief ProxyPool is a growable store of components with slot reuse.
 * Removing a component only marks its slot Terminated; the next Add takes
 * the first Terminated slot in storage order before growing. Handles are
 * pool plus index, so they stay valid when the backing storage moves.
 * NOTE: not safe for concurrent use.
 */
type ProxyPool[T any] struct {
	slots []slot[T]
}

func NewProxyPool[T any](capacity int) *ProxyPool[T] {
	return &ProxyPool[T]{slots: make([]slot[T], 0, capacity)}
}

// Add stores value as Active and returns its handle.
func (p *ProxyPool[T]) Add(value T) ProxyPtr[T] {
	for i := range p.slots {
		if p.slots[i].state == Terminated {
			p.slots[i] = slot[T]{state: Active, value: value}
			return ProxyPtr[T]{pool: p, index: i}
		}
	}
	p.slots = append(p.slots, slot[T]{state: Active, value: value})
	return ProxyPtr[T]{pool: p, index: len(p.slots) - 1}
}

// Len returns the number of slots, Terminated ones included.
func (p *ProxyPool[T]) Len() int {
	return len(p.slots)
}

// Count returns the number of slots in the given state.
func (p *ProxyPool[T]) Count(state State) int {
	n := 0
	for i := range p.slots {
		if p.slots[i].state == state {
			n++
		}
	}
	return n
}

// At returns the handle of the i-th slot.
func (p *ProxyPool[T]) At(i int) ProxyPtr[T] {
	if i < 0 || i >= len(p.slots) {
		panic(fmt.Sprintf("proxy pool: index %d out of range [0,%d)", i, len(p.slots)))
	}
	return ProxyPtr[T]{pool: p, index: i}
}

// ForEach visits every non-Terminated component in storage order. The
// callback must not add to the pool.
func (p *ProxyPool[T]) ForEach(fn func(ptr ProxyPtr[T], value *T)) {
	for i := range p.slots {
		if p.slots[i].state == Terminated {
			continue
		}
		fn(ProxyPtr[T]{pool: p, index: i}, &p.slots[i].value)
	}
}

// ForEachActive visits only Active components in storage order.
func (p *ProxyPool[T]) ForEachActive(fn func(ptr ProxyPtr[T], value *T)) {
	for i := range p.slots {
		if p.slots[i].state != Active {
			continue
		}
		fn(ProxyPtr[T]{pool: p, index: i}, &p.slots[i].value)
	}
}

// Clear terminates every slot without releasing storage.
func (p *ProxyPool[T]) Clear() {
	var zero T
	for i := range p.slots {
		p.slots[i] = slot[T]{state: Terminated, value: zero}
	}
}

// ProxyPtr is a stable handle to a pooled component. The zero value is a
// null handle.
type ProxyPtr[T any] struct {
	pool  *ProxyPool[T]
	index int
}

// Valid reports whether the handle refers to a pool slot at all.
func (ptr ProxyPtr[T]) Valid() bool {
	return ptr.pool != nil
}

func (ptr ProxyPtr[T]) Index() int {
	return ptr.index
}

// Get resolves the handle. The pointer is only valid until the pool grows,
// so resolve again instead of keeping it.
func (ptr ProxyPtr[T]) Get() *T {
	return &ptr.slot().value
}

func (ptr ProxyPtr[T]) State() State {
	return ptr.slot().state
}

func (ptr ProxyPtr[T]) SetState(state State) {
	ptr.slot().state = state
}

// Remove marks the slot Terminated. Other handles are not affected.
func (ptr ProxyPtr[T]) Remove() {
	var zero T
	s := ptr.slot()
	s.state = Terminated
	s.value = zero
}

func (ptr ProxyPtr[T]) slot() *slot[T] {
	if ptr.pool == nil {
		panic("proxy pool: dereferencing a null handle")
	}
	return &ptr.pool.slots[ptr.index]
}
