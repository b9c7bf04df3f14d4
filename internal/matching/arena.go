package matching

import "github.com/PxPatel/matching-core/internal/types"

// slot is a stable handle into the order arena. Zero is never allocated.
type slot uint32

const noSlot slot = 0

// orderNode is one arena cell. prev/next link the node into the FIFO
// queue of its price level.
type orderNode struct {
	order types.Order
	prev  slot
	next  slot
}

// orderArena stores resting orders in a flat slice and recycles released
// slots through a free list, so steady order flow stops allocating.
type orderArena struct {
	nodes []orderNode
	free  []slot
	live  int
}

func newOrderArena(capacity int) *orderArena {
	if capacity < 0 {
		capacity = 0
	}
	a := &orderArena{
		nodes: make([]orderNode, 1, capacity+1),
		free:  make([]slot, 0, capacity/4),
	}
	return a
}

func (a *orderArena) alloc(order types.Order) slot {
	var s slot
	if n := len(a.free); n > 0 {
		s = a.free[n-1]
		a.free = a.free[:n-1]
		a.nodes[s] = orderNode{order: order}
	} else {
		s = slot(len(a.nodes))
		a.nodes = append(a.nodes, orderNode{order: order})
	}
	a.live++
	return s
}

func (a *orderArena) release(s slot) {
	a.nodes[s] = orderNode{}
	a.free = append(a.free, s)
	a.live--
}

// node returns a pointer into the arena. It must not be held across alloc,
// which may grow the backing slice.
func (a *orderArena) node(s slot) *orderNode {
	return &a.nodes[s]
}

func (a *orderArena) len() int {
	return a.live
}
