package storage

import "sync/atomic"

// exclusiveBorrow is the counter value marking a live exclusive borrow.
const exclusiveBorrow = int32(-1)

// borrowFlag is a per-column shared/exclusive access counter. A column is
// free at 0, shared-borrowed at positive counts, and exclusively borrowed at
// the sentinel. Acquisition never blocks: a conflicting acquisition fails
// immediately and the caller reports ErrComponentAlreadyBorrowed.
type borrowFlag struct {
	n atomic.Int32
}

// acquireShared registers a shared borrow. It fails only while an exclusive
// borrow is live.
func (b *borrowFlag) acquireShared() bool {
	for {
		cur := b.n.Load()
		if cur == exclusiveBorrow {
			return false
		}
		if b.n.CompareAndSwap(cur, cur+1) {
			return true
		}
	}
}

func (b *borrowFlag) releaseShared() {
	if b.n.Add(-1) < 0 {
		panic("shared borrow released while not held")
	}
}

// acquireExclusive registers the sole exclusive borrow. It fails unless the
// column is completely free.
func (b *borrowFlag) acquireExclusive() bool {
	return b.n.CompareAndSwap(0, exclusiveBorrow)
}

func (b *borrowFlag) releaseExclusive() {
	if !b.n.CompareAndSwap(exclusiveBorrow, 0) {
		panic("exclusive borrow released while not held")
	}
}
