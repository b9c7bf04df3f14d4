package matching

import (
	"github.com/google/btree"

	"github.com/PxPatel/matching-core/internal/types"
)

const levelTreeDegree = 32

// priceLevel is the FIFO queue of resting orders at one price.
// head is the oldest order and fills first.
type priceLevel struct {
	price  int64
	head   slot
	tail   slot
	count  int
	volume int64
}

func (l *priceLevel) empty() bool {
	return l.head == noSlot
}

func (l *priceLevel) pushBack(a *orderArena, s slot) {
	n := a.node(s)
	n.prev = l.tail
	n.next = noSlot
	if l.tail != noSlot {
		a.node(l.tail).next = s
	} else {
		l.head = s
	}
	l.tail = s
	l.count++
	l.volume += n.order.Quantity
}

// unlink removes s from the queue in O(1). The order's remaining quantity is
// subtracted from the level volume.
func (l *priceLevel) unlink(a *orderArena, s slot) {
	n := a.node(s)
	if n.prev != noSlot {
		a.node(n.prev).next = n.next
	} else {
		l.head = n.next
	}
	if n.next != noSlot {
		a.node(n.next).prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = noSlot, noSlot
	l.count--
	l.volume -= n.order.Quantity
}

// moveToBack sends s to the tail, giving up its time priority
func (l *priceLevel) moveToBack(a *orderArena, s slot) {
	if l.tail == s {
		return
	}
	l.unlink(a, s)
	l.pushBack(a, s)
}

// priceLevels is one side of the book: price levels ordered best first.
// Bids sort high to low, asks low to high, so Min is always the best level.
type priceLevels struct {
	side  types.SideType
	tree  *btree.BTreeG[*priceLevel]
	best  *priceLevel
	probe priceLevel
}

func newPriceLevels(side types.SideType) *priceLevels {
	less := func(a, b *priceLevel) bool { return a.price < b.price }
	if side == types.Buy {
		less = func(a, b *priceLevel) bool { return a.price > b.price }
	}
	return &priceLevels{
		side: side,
		tree: btree.NewG[*priceLevel](levelTreeDegree, less),
	}
}

func (p *priceLevels) find(price int64) *priceLevel {
	p.probe.price = price
	level, ok := p.tree.Get(&p.probe)
	if !ok {
		return nil
	}
	return level
}

func (p *priceLevels) getOrCreate(price int64) *priceLevel {
	if level := p.find(price); level != nil {
		return level
	}
	level := &priceLevel{price: price}
	p.tree.ReplaceOrInsert(level)
	if p.best == nil || p.better(price, p.best.price) {
		p.best = level
	}
	return level
}

// removeIfEmpty drops the level once its queue has drained
func (p *priceLevels) removeIfEmpty(level *priceLevel) bool {
	if !level.empty() {
		return false
	}
	p.tree.Delete(level)
	if p.best == level {
		p.best, _ = p.tree.Min()
	}
	return true
}

func (p *priceLevels) bestLevel() *priceLevel {
	return p.best
}

// ascend walks levels from the best price outward until fn returns false
func (p *priceLevels) ascend(fn func(*priceLevel) bool) {
	p.tree.Ascend(fn)
}

func (p *priceLevels) len() int {
	return p.tree.Len()
}

func (p *priceLevels) better(a, b int64) bool {
	if p.side == types.Buy {
		return a > b
	}
	return a < b
}
