package matching

// orderRef locates a resting order: its arena slot, which is also its
// position in the level queue, and the level that owns it.
type orderRef struct {
	slot  slot
	level *priceLevel
}

type orderIndex struct {
	refs map[uint64]orderRef
}

func newOrderIndex(capacity int) *orderIndex {
	return &orderIndex{refs: make(map[uint64]orderRef, capacity)}
}

func (x *orderIndex) insert(id uint64, ref orderRef) {
	x.refs[id] = ref
}

func (x *orderIndex) find(id uint64) (orderRef, bool) {
	ref, ok := x.refs[id]
	return ref, ok
}

func (x *orderIndex) erase(id uint64) {
	delete(x.refs, id)
}

func (x *orderIndex) len() int {
	return len(x.refs)
}
