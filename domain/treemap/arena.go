package treemap

import (
	"cmp"
	"math"
)

// SlotsPerSegment is the fixed capacity of one arena segment.
const SlotsPerSegment = 1024

// nilSlot is handle 0: the reserved sentinel slot. It is permanently
// black and doubles as the "no node" value everywhere links appear.
const nilSlot uint32 = 0

type slot[K cmp.Ordered, V any] struct {
	key    K
	value  V
	left   uint32
	right  uint32
	parent uint32
	color  color
}

// Arena owns the node storage for one or more maps of the same K/V
// instantiation. Segments are append-only; recycled slots are chained
// into an intrusive free list threaded through their left link.
type Arena[K cmp.Ordered, V any] struct {
	segments [][]slot[K, V]
	next     uint32 // watermark: first never-used handle
	freeHead uint32
	live     int
}

// NewArena creates an arena with one segment. Slot 0 is reserved as
// the sentinel and is never handed out.
func NewArena[K cmp.Ordered, V any]() *Arena[K, V] {
	a := &Arena[K, V]{}
	a.segments = append(a.segments, make([]slot[K, V], SlotsPerSegment))
	a.segments[0][0].color = black
	a.next = 1
	return a
}

func (a *Arena[K, V]) at(h uint32) *slot[K, V] {
	return &a.segments[h/SlotsPerSegment][h%SlotsPerSegment]
}

// alloc hands out a slot initialized to (key, value) with nil links
// and red color. Order of preference: free list head, watermark in the
// newest segment, then a brand-new segment.
func (a *Arena[K, V]) alloc(key K, value V) uint32 {
	if a.freeHead != nilSlot {
		h := a.freeHead
		s := a.at(h)
		a.freeHead = s.left
		*s = slot[K, V]{key: key, value: value}
		a.live++
		return h
	}
	if a.next == math.MaxUint32 {
		panic("treemap: arena handle space exhausted")
	}
	if int(a.next) == len(a.segments)*SlotsPerSegment {
		a.segments = append(a.segments, make([]slot[K, V], SlotsPerSegment))
	}
	h := a.next
	a.next++
	s := a.at(h)
	s.key = key
	s.value = value
	a.live++
	return h
}

// free zeroes the slot payload and pushes the handle onto the free
// list. The memory stays owned by the arena until the arena itself is
// collected.
func (a *Arena[K, V]) free(h uint32) {
	if h == nilSlot {
		panic("treemap: slot 0 is reserved and cannot be freed")
	}
	*a.at(h) = slot[K, V]{left: a.freeHead}
	a.freeHead = h
	a.live--
}

// Used returns the number of live slots across all maps sharing the arena.
func (a *Arena[K, V]) Used() int { return a.live }

// Size returns the high-water slot count, including the reserved
// sentinel slot. It only grows when the free list is empty.
func (a *Arena[K, V]) Size() int { return int(a.next) }

// Cap returns the total slot capacity of all segments.
func (a *Arena[K, V]) Cap() int { return len(a.segments) * SlotsPerSegment }

// Segments returns the number of segments allocated so far.
func (a *Arena[K, V]) Segments() int { return len(a.segments) }
