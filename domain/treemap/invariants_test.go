package treemap

import (
	"cmp"
	"testing"
)

// checkInvariants verifies the red-black properties and the BST order
// over the whole tree: root black, no red node with a red parent, equal
// black count on every root-to-nil path, strictly ascending keys.
func checkInvariants[K cmp.Ordered, V any](t *testing.T, m *Map[K, V]) {
	t.Helper()

	if m.root == nilSlot {
		if m.size != 0 {
			t.Fatalf("empty tree but size=%d", m.size)
		}
		return
	}
	if m.at(m.root).color != black {
		t.Fatal("root is not black")
	}
	if m.at(m.root).parent != nilSlot {
		t.Fatal("root has a parent link")
	}

	counted := 0
	blackHeight(t, m, m.root, &counted)
	if counted != m.size {
		t.Fatalf("reachable nodes %d != size %d", counted, m.size)
	}

	prev, first := m.root, true
	for h := m.minNode(m.root); h != nilSlot; h = m.next(h) {
		if !first && m.at(h).key <= m.at(prev).key {
			t.Fatal("keys not strictly ascending")
		}
		prev, first = h, false
	}
}

func blackHeight[K cmp.Ordered, V any](t *testing.T, m *Map[K, V], h uint32, counted *int) int {
	t.Helper()

	if h == nilSlot {
		return 1
	}
	*counted++
	s := m.at(h)

	if s.color == red {
		if m.at(s.left).color == red || m.at(s.right).color == red {
			t.Fatal("red node has a red child")
		}
	}
	if s.left != nilSlot {
		if m.at(s.left).parent != h {
			t.Fatal("broken parent link on left child")
		}
		if m.at(s.left).key >= s.key {
			t.Fatal("left child key out of order")
		}
	}
	if s.right != nilSlot {
		if m.at(s.right).parent != h {
			t.Fatal("broken parent link on right child")
		}
		if m.at(s.right).key <= s.key {
			t.Fatal("right child key out of order")
		}
	}

	lh := blackHeight(t, m, s.left, counted)
	rh := blackHeight(t, m, s.right, counted)
	if lh != rh {
		t.Fatalf("black height mismatch: left %d, right %d", lh, rh)
	}
	if s.color == black {
		return lh + 1
	}
	return lh
}
