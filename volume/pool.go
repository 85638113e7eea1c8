package volume

import "sync/atomic"

// Pool is a fixed-capacity free-index stack plus an atomic counter, shared
// by the brick pool and the layer pool (spec.md §3). Index 0 is never
// stored here — every value the stack holds or Alloc returns is a 1-based
// pool index, ready to drop straight into a root or layer slot.
type Pool struct {
	capacity uint32
	free     atomic.Int32 // remaining free slots; stays within [0, capacity] once a contended Alloc restores its speculative decrement
	stack    []atomic.Uint32
}

// NewPool builds a pool of the given capacity with its free stack
// initialized to 1..=capacity and its counter to capacity, per spec.md §3.
func NewPool(capacity uint32) *Pool {
	p := &Pool{
		capacity: capacity,
		stack:    make([]atomic.Uint32, capacity),
	}
	for i := range p.stack {
		p.stack[i].Store(uint32(i + 1))
	}
	p.free.Store(int32(capacity))
	return p
}

// Capacity returns the pool's fixed size.
func (p *Pool) Capacity() uint32 { return p.capacity }

// FreeCount returns the number of currently free slots.
func (p *Pool) FreeCount() int32 { return p.free.Load() }

// Alloc implements the device-side allocation contract of spec.md §4.3:
// atomically decrement the counter; if the post-decrement value is >= 0,
// the free-stack entry at that offset is the allocated 1-based index. A
// failed attempt restores its speculative decrement so the counter never
// drifts outside [0, capacity] (invariant 5), matching the standard
// atomic-counter allocator idiom this contract describes.
func (p *Pool) Alloc() (index uint32, ok bool) {
	post := p.free.Add(-1)
	if post < 0 {
		p.free.Add(1)
		return 0, false
	}
	return p.stack[post].Load(), true
}

// Release implements the device-side deallocation contract: atomically
// increment the counter, then write the freed 1-based index into the
// free stack at the pre-increment offset.
func (p *Pool) Release(index uint32) {
	pre := p.free.Add(1) - 1
	p.stack[pre].Store(index)
}
