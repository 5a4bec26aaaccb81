package treemap

type color uint8

const (
	red   color = 0
	black color = 1
)

/******************** Internal tree operations ********************/

func (m *Map[K, V]) searchNode(key K) uint32 {
	h := m.root
	for h != nilSlot {
		s := m.at(h)
		if key < s.key {
			h = s.left
		} else if key > s.key {
			h = s.right
		} else {
			return h
		}
	}
	return nilSlot
}

func (m *Map[K, V]) minNode(h uint32) uint32 {
	if h == nilSlot {
		return nilSlot
	}
	for m.at(h).left != nilSlot {
		h = m.at(h).left
	}
	return h
}

func (m *Map[K, V]) maxNode(h uint32) uint32 {
	if h == nilSlot {
		return nilSlot
	}
	for m.at(h).right != nilSlot {
		h = m.at(h).right
	}
	return h
}

// next returns the in-order successor of h, or nilSlot past the maximum.
func (m *Map[K, V]) next(h uint32) uint32 {
	if h == nilSlot {
		return nilSlot
	}
	if m.at(h).right != nilSlot {
		return m.minNode(m.at(h).right)
	}
	p := m.at(h).parent
	for p != nilSlot && h == m.at(p).right {
		h = p
		p = m.at(p).parent
	}
	return p
}

func (m *Map[K, V]) leftRotate(x uint32) {
	xs := m.at(x)
	y := xs.right
	ys := m.at(y)
	xs.right = ys.left
	if ys.left != nilSlot {
		m.at(ys.left).parent = x
	}
	ys.parent = xs.parent
	if xs.parent == nilSlot {
		m.root = y
	} else if x == m.at(xs.parent).left {
		m.at(xs.parent).left = y
	} else {
		m.at(xs.parent).right = y
	}
	ys.left = x
	xs.parent = y
}

func (m *Map[K, V]) rightRotate(y uint32) {
	ys := m.at(y)
	x := ys.left
	xs := m.at(x)
	ys.left = xs.right
	if xs.right != nilSlot {
		m.at(xs.right).parent = y
	}
	xs.parent = ys.parent
	if ys.parent == nilSlot {
		m.root = x
	} else if y == m.at(ys.parent).right {
		m.at(ys.parent).right = x
	} else {
		m.at(ys.parent).left = x
	}
	xs.right = y
	ys.parent = x
}

func (m *Map[K, V]) insertFixup(z uint32) {
	for m.at(m.at(z).parent).color == red {
		zp := m.at(z).parent
		zg := m.at(zp).parent
		if zp == m.at(zg).left {
			y := m.at(zg).right // uncle
			if m.at(y).color == red {
				m.at(zp).color = black
				m.at(y).color = black
				m.at(zg).color = red
				z = zg
			} else {
				if z == m.at(zp).right {
					z = zp
					m.leftRotate(z)
					zp = m.at(z).parent
					zg = m.at(zp).parent
				}
				m.at(zp).color = black
				m.at(zg).color = red
				m.rightRotate(zg)
			}
		} else {
			y := m.at(zg).left
			if m.at(y).color == red {
				m.at(zp).color = black
				m.at(y).color = black
				m.at(zg).color = red
				z = zg
			} else {
				if z == m.at(zp).left {
					z = zp
					m.rightRotate(z)
					zp = m.at(z).parent
					zg = m.at(zp).parent
				}
				m.at(zp).color = black
				m.at(zg).color = red
				m.leftRotate(zg)
			}
		}
	}
	m.at(m.root).color = black
}

// transplant replaces the subtree rooted at u with the one rooted at v.
// v may be the sentinel; deleteNode relies on its parent being set.
func (m *Map[K, V]) transplant(u, v uint32) {
	up := m.at(u).parent
	if up == nilSlot {
		m.root = v
	} else if u == m.at(up).left {
		m.at(up).left = v
	} else {
		m.at(up).right = v
	}
	m.at(v).parent = up
}

func (m *Map[K, V]) deleteNode(z uint32) {
	y := z
	yOrigColor := m.at(y).color
	var x uint32

	zLeft, zRight := m.at(z).left, m.at(z).right
	if zLeft == nilSlot {
		x = zRight
		m.transplant(z, zRight)
	} else if zRight == nilSlot {
		x = zLeft
		m.transplant(z, zLeft)
	} else {
		y = m.minNode(zRight)
		yOrigColor = m.at(y).color
		x = m.at(y).right
		if m.at(y).parent == z {
			m.at(x).parent = y
		} else {
			m.transplant(y, m.at(y).right)
			m.at(y).right = zRight
			m.at(zRight).parent = y
		}
		m.transplant(z, y)
		m.at(y).left = zLeft
		m.at(zLeft).parent = y
		m.at(y).color = m.at(z).color
	}

	m.arena.free(z)

	if yOrigColor == black {
		m.deleteFixup(x)
	}
}

func (m *Map[K, V]) deleteFixup(x uint32) {
	for x != m.root && m.at(x).color == black {
		xp := m.at(x).parent
		if x == m.at(xp).left {
			w := m.at(xp).right // sibling
			if m.at(w).color == red {
				m.at(w).color = black
				m.at(xp).color = red
				m.leftRotate(xp)
				w = m.at(xp).right
			}
			if m.at(m.at(w).left).color == black && m.at(m.at(w).right).color == black {
				m.at(w).color = red
				x = xp
			} else {
				if m.at(m.at(w).right).color == black {
					m.at(m.at(w).left).color = black
					m.at(w).color = red
					m.rightRotate(w)
					w = m.at(xp).right
				}
				m.at(w).color = m.at(xp).color
				m.at(xp).color = black
				m.at(m.at(w).right).color = black
				m.leftRotate(xp)
				x = m.root
			}
		} else {
			w := m.at(xp).left
			if m.at(w).color == red {
				m.at(w).color = black
				m.at(xp).color = red
				m.rightRotate(xp)
				w = m.at(xp).left
			}
			if m.at(m.at(w).right).color == black && m.at(m.at(w).left).color == black {
				m.at(w).color = red
				x = xp
			} else {
				if m.at(m.at(w).left).color == black {
					m.at(m.at(w).right).color = black
					m.at(w).color = red
					m.leftRotate(w)
					w = m.at(xp).left
				}
				m.at(w).color = m.at(xp).color
				m.at(xp).color = black
				m.at(m.at(w).left).color = black
				m.rightRotate(xp)
				x = m.root
			}
		}
	}
	m.at(x).color = black
}
