package volume

// UsageFlags is host-side shadow state for a pooled brick: a dirty/in-use
// debug byte, kept only for observability. It is never consulted by the
// allocator itself — allocation decisions come from the atomic pool counters
// and free stacks, and deallocation from the owning layer slot — but it
// lets a CPU-backed world report which slots are live without walking the
// root map.
type UsageFlags uint8

const (
	flagDirty UsageFlags = 1 << iota
	flagInUse
)

func (f *UsageFlags) setBit(bit UsageFlags, val bool) {
	if val {
		*f |= bit
	} else {
		*f &^= bit
	}
}

// SetDirty marks or clears the dirty bit.
func (f *UsageFlags) SetDirty(dirty bool) { f.setBit(flagDirty, dirty) }

// Dirty reports the dirty bit.
func (f UsageFlags) Dirty() bool { return f&flagDirty != 0 }

// SetInUse marks or clears the in-use bit.
func (f *UsageFlags) SetInUse(inUse bool) { f.setBit(flagInUse, inUse) }

// InUse reports the in-use bit.
func (f UsageFlags) InUse() bool { return f&flagInUse != 0 }
