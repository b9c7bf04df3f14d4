package matching

import (
	"fmt"

	"github.com/PxPatel/matching-core/internal/types"
)

// OrderBook holds the resting state of one instrument: both sides' price
// levels, the order arena and the id index. It is mutated only by Engine;
// the exported methods are read-only.
type OrderBook struct {
	bids  *priceLevels
	asks  *priceLevels
	arena *orderArena
	index *orderIndex
}

// LevelSummary is an aggregated view of one price level
type LevelSummary struct {
	Price    int64
	Quantity int64
	Orders   int
}

func newOrderBook(capacity int) *OrderBook {
	return &OrderBook{
		bids:  newPriceLevels(types.Buy),
		asks:  newPriceLevels(types.Sell),
		arena: newOrderArena(capacity),
		index: newOrderIndex(capacity),
	}
}

func (ob *OrderBook) side(side types.SideType) *priceLevels {
	if side == types.Buy {
		return ob.bids
	}
	return ob.asks
}

// add rests order at the tail of its price level
func (ob *OrderBook) add(order types.Order) orderRef {
	s := ob.arena.alloc(order)
	level := ob.side(order.Side).getOrCreate(order.Price)
	level.pushBack(ob.arena, s)
	ref := orderRef{slot: s, level: level}
	ob.index.insert(order.ID, ref)
	return ref
}

// remove takes a resting order out of its level, the arena and the index,
// dropping the level if it is left empty. It returns the removed order.
func (ob *OrderBook) remove(ref orderRef) types.Order {
	order := ob.arena.node(ref.slot).order
	ref.level.unlink(ob.arena, ref.slot)
	ob.side(order.Side).removeIfEmpty(ref.level)
	ob.arena.release(ref.slot)
	ob.index.erase(order.ID)
	return order
}

// BestBid returns the highest bid price, if any
func (ob *OrderBook) BestBid() (int64, bool) {
	return bestPrice(ob.bids)
}

// BestAsk returns the lowest ask price, if any
func (ob *OrderBook) BestAsk() (int64, bool) {
	return bestPrice(ob.asks)
}

func bestPrice(p *priceLevels) (int64, bool) {
	level := p.bestLevel()
	if level == nil {
		return 0, false
	}
	return level.price, true
}

// Order returns the resting state of id
func (ob *OrderBook) Order(id uint64) (types.Order, bool) {
	ref, ok := ob.index.find(id)
	if !ok {
		return types.Order{}, false
	}
	return ob.arena.node(ref.slot).order, true
}

// Orders lists the resting orders of one side in priority order
func (ob *OrderBook) Orders(side types.SideType) []types.Order {
	out := make([]types.Order, 0)
	ob.side(side).ascend(func(level *priceLevel) bool {
		for s := level.head; s != noSlot; s = ob.arena.node(s).next {
			out = append(out, ob.arena.node(s).order)
		}
		return true
	})
	return out
}

// Depth aggregates up to n levels of one side, best first. n <= 0 means all.
func (ob *OrderBook) Depth(side types.SideType, n int) []LevelSummary {
	out := make([]LevelSummary, 0)
	ob.side(side).ascend(func(level *priceLevel) bool {
		if n > 0 && len(out) >= n {
			return false
		}
		out = append(out, LevelSummary{Price: level.price, Quantity: level.volume, Orders: level.count})
		return true
	})
	return out
}

// RestingCount returns the number of live orders on both sides
func (ob *OrderBook) RestingCount() int {
	return ob.index.len()
}

// LevelCount returns the number of distinct prices on one side
func (ob *OrderBook) LevelCount(side types.SideType) int {
	return ob.side(side).len()
}

// RestingQuantity sums the open quantity on both sides
func (ob *OrderBook) RestingQuantity() int64 {
	var total int64
	for _, p := range []*priceLevels{ob.bids, ob.asks} {
		p.ascend(func(level *priceLevel) bool {
			total += level.volume
			return true
		})
	}
	return total
}

// CheckInvariants walks the whole book and reports the first structural
// inconsistency found. It is meant for tests and debugging.
func (ob *OrderBook) CheckInvariants() error {
	seen := 0
	for _, p := range []*priceLevels{ob.bids, ob.asks} {
		var err error
		var prev *priceLevel
		p.ascend(func(level *priceLevel) bool {
			if err = ob.checkLevel(p, level, prev); err != nil {
				return false
			}
			seen += level.count
			prev = level
			return true
		})
		if err != nil {
			return err
		}
		if first, ok := p.tree.Min(); ok != (p.best != nil) || (ok && first != p.best) {
			return fmt.Errorf("%s: cached best level is stale", p.side)
		}
	}

	if seen != ob.index.len() {
		return fmt.Errorf("levels hold %d orders, index holds %d", seen, ob.index.len())
	}
	if ob.arena.len() != ob.index.len() {
		return fmt.Errorf("arena holds %d live orders, index holds %d", ob.arena.len(), ob.index.len())
	}

	bid, hasBid := ob.BestBid()
	ask, hasAsk := ob.BestAsk()
	if hasBid && hasAsk && bid >= ask {
		return fmt.Errorf("book is crossed: bid %d >= ask %d", bid, ask)
	}
	return nil
}

func (ob *OrderBook) checkLevel(p *priceLevels, level, prev *priceLevel) error {
	if level.empty() {
		return fmt.Errorf("%s level %d is empty", p.side, level.price)
	}
	if prev != nil && !p.better(prev.price, level.price) {
		return fmt.Errorf("%s level %d out of order after %d", p.side, level.price, prev.price)
	}

	count := 0
	var volume int64
	back := noSlot
	for s := level.head; s != noSlot; s = ob.arena.node(s).next {
		n := ob.arena.node(s)
		if n.prev != back {
			return fmt.Errorf("order %d has a broken back link", n.order.ID)
		}
		if n.order.Quantity <= 0 {
			return fmt.Errorf("order %d rests with quantity %d", n.order.ID, n.order.Quantity)
		}
		if n.order.Price != level.price || n.order.Side != p.side {
			return fmt.Errorf("order %d sits in the wrong level %s %d", n.order.ID, p.side, level.price)
		}
		ref, ok := ob.index.find(n.order.ID)
		if !ok {
			return fmt.Errorf("order %d is queued but not indexed", n.order.ID)
		}
		if ref.slot != s || ref.level != level {
			return fmt.Errorf("order %d index entry points elsewhere", n.order.ID)
		}
		count++
		volume += n.order.Quantity
		back = s
	}
	if back != level.tail {
		return fmt.Errorf("%s level %d tail mismatch", p.side, level.price)
	}
	if count != level.count || volume != level.volume {
		return fmt.Errorf("%s level %d totals %d/%d, walked %d/%d",
			p.side, level.price, level.count, level.volume, count, volume)
	}
	return nil
}
