package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PxPatel/matching-core/internal/types"
)

func TestArenaReusesReleasedSlots(t *testing.T) {
	a := newOrderArena(2)

	s1 := a.alloc(types.Order{ID: 1})
	s2 := a.alloc(types.Order{ID: 2})
	require.NotEqual(t, noSlot, s1)
	require.NotEqual(t, s1, s2)
	assert.Equal(t, 2, a.len())

	a.release(s1)
	assert.Equal(t, 1, a.len())
	assert.Equal(t, types.Order{}, a.node(s1).order)

	s3 := a.alloc(types.Order{ID: 3})
	assert.Equal(t, s1, s3)
	assert.Equal(t, uint64(3), a.node(s3).order.ID)
	assert.Equal(t, uint64(2), a.node(s2).order.ID)
}

func TestPriceLevelsOrdering(t *testing.T) {
	bids := newPriceLevels(types.Buy)
	asks := newPriceLevels(types.Sell)
	for _, p := range []int64{101, 99, 105, 100} {
		bids.getOrCreate(p)
		asks.getOrCreate(p)
	}

	assert.Equal(t, int64(105), bids.bestLevel().price)
	assert.Equal(t, int64(99), asks.bestLevel().price)

	var bidOrder, askOrder []int64
	bids.ascend(func(l *priceLevel) bool {
		bidOrder = append(bidOrder, l.price)
		return true
	})
	asks.ascend(func(l *priceLevel) bool {
		askOrder = append(askOrder, l.price)
		return true
	})
	assert.Equal(t, []int64{105, 101, 100, 99}, bidOrder)
	assert.Equal(t, []int64{99, 100, 101, 105}, askOrder)

	assert.Same(t, bids.find(101), bids.getOrCreate(101))
	assert.Nil(t, bids.find(102))
	assert.Equal(t, 4, bids.len())
}

func TestPriceLevelQueue(t *testing.T) {
	a := newOrderArena(4)
	levels := newPriceLevels(types.Sell)
	level := levels.getOrCreate(100)

	var slots []slot
	for id := uint64(1); id <= 3; id++ {
		s := a.alloc(types.Order{ID: id, Side: types.Sell, Price: 100, Quantity: int64(id)})
		level.pushBack(a, s)
		slots = append(slots, s)
	}
	assert.Equal(t, 3, level.count)
	assert.Equal(t, int64(6), level.volume)

	level.moveToBack(a, slots[0])
	assert.Equal(t, slots[1], level.head)
	assert.Equal(t, slots[0], level.tail)

	level.unlink(a, slots[2])
	assert.Equal(t, slots[0], a.node(slots[1]).next)
	assert.Equal(t, int64(3), level.volume)

	level.unlink(a, slots[1])
	level.unlink(a, slots[0])
	assert.True(t, level.empty())
	assert.True(t, levels.removeIfEmpty(level))
	assert.Nil(t, levels.bestLevel())
	assert.Equal(t, 0, levels.len())
}

func TestRemoveBestLevelPromotesNext(t *testing.T) {
	levels := newPriceLevels(types.Buy)
	best := levels.getOrCreate(110)
	levels.getOrCreate(100)
	levels.getOrCreate(105)

	require.True(t, levels.removeIfEmpty(best))
	assert.Equal(t, int64(105), levels.bestLevel().price)
}
