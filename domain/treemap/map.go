package treemap

import "cmp"

// Map is an ordered key-value container. The zero Map is not usable;
// construct with New or NewWithArena.
type Map[K cmp.Ordered, V any] struct {
	arena *Arena[K, V]
	root  uint32
	size  int
}

// New creates a map with its own private arena.
func New[K cmp.Ordered, V any]() *Map[K, V] {
	return NewWithArena(NewArena[K, V]())
}

// NewWithArena creates a map bound to a shared arena. All maps bound to
// one arena draw from and recycle into the same segments; access across
// them must stay single-threaded.
func NewWithArena[K cmp.Ordered, V any](a *Arena[K, V]) *Map[K, V] {
	return &Map[K, V]{arena: a, root: nilSlot}
}

func (m *Map[K, V]) at(h uint32) *slot[K, V] { return m.arena.at(h) }

// Arena returns the bound arena.
func (m *Map[K, V]) Arena() *Arena[K, V] { return m.arena }

// Upsert returns a pointer to the value stored under key, inserting a
// zero value first if the key is absent. The pointer stays valid until
// the key is removed or the map is cleared.
func (m *Map[K, V]) Upsert(key K) *V {
	y := nilSlot
	x := m.root
	for x != nilSlot {
		y = x
		s := m.at(x)
		if key < s.key {
			x = s.left
		} else if key > s.key {
			x = s.right
		} else {
			return &s.value
		}
	}

	var zero V
	z := m.arena.alloc(key, zero)
	zs := m.at(z)
	zs.parent = y
	zs.color = red

	if y == nilSlot {
		m.root = z
	} else if key < m.at(y).key {
		m.at(y).left = z
	} else {
		m.at(y).right = z
	}
	m.insertFixup(z)
	m.size++
	return &m.at(z).value
}

// Lookup returns a copy of the value stored under key, or the zero
// value if the key is absent. Absent and stored-as-zero are not
// distinguishable here; use Get when that matters.
func (m *Map[K, V]) Lookup(key K) V {
	if h := m.searchNode(key); h != nilSlot {
		return m.at(h).value
	}
	var zero V
	return zero
}

// Get returns the value stored under key and whether it was present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	if h := m.searchNode(key); h != nilSlot {
		return m.at(h).value, true
	}
	var zero V
	return zero, false
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	return m.searchNode(key) != nilSlot
}

// Remove deletes key and returns the number of removed entries (0 or 1).
// The vacated slot goes back to the arena free list immediately.
func (m *Map[K, V]) Remove(key K) int {
	z := m.searchNode(key)
	if z == nilSlot {
		return 0
	}
	m.deleteNode(z)
	m.size--
	return 1
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int { return m.size }

// Empty reports whether the map has no entries.
func (m *Map[K, V]) Empty() bool { return m.size == 0 }

// Min returns the smallest key, or false on an empty map.
func (m *Map[K, V]) Min() (K, bool) {
	h := m.minNode(m.root)
	if h == nilSlot {
		var zero K
		return zero, false
	}
	return m.at(h).key, true
}

// Max returns the largest key, or false on an empty map.
func (m *Map[K, V]) Max() (K, bool) {
	h := m.maxNode(m.root)
	if h == nilSlot {
		var zero K
		return zero, false
	}
	return m.at(h).key, true
}

// Ascend walks the map in ascending key order. The value pointer may be
// mutated in place; returning false stops the walk. The walk itself is
// iterative, so stack use does not grow with tree height.
func (m *Map[K, V]) Ascend(fn func(key K, value *V) bool) {
	for h := m.minNode(m.root); h != nilSlot; h = m.next(h) {
		s := m.at(h)
		if !fn(s.key, &s.value) {
			return
		}
	}
}

// Clear recycles every node back to the arena and empties the map.
// Handles are collected first: freeing under a successor walk would
// tear the links the walk still needs.
func (m *Map[K, V]) Clear() {
	if m.size == 0 {
		m.root = nilSlot
		return
	}
	nodes := make([]uint32, 0, m.size)
	for h := m.minNode(m.root); h != nilSlot; h = m.next(h) {
		nodes = append(nodes, h)
	}
	for _, h := range nodes {
		m.arena.free(h)
	}
	m.root = nilSlot
	m.size = 0
}
