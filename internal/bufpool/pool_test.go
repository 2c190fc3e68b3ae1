package bufpool

import "testing"

func TestBytePoolReturnsRequestedLength(t *testing.T) {
	sizes := []int{8, 64, 256, 1024, 4096}
	pool := NewBytePool(256)

	for _, size := range sizes {
		buf := pool.Get(size)
		if len(buf) != size {
			t.Fatalf("Get(%d) returned len %d", size, len(buf))
		}
		pool.Put(buf)
	}
}

func TestBytePoolRecyclesBackingArray(t *testing.T) {
	pool := NewBytePool(64)

	first := pool.Get(64)
	first[0] = 0xAB
	pool.Put(first)

	second := pool.Get(32)
	if cap(second) < 32 {
		t.Fatalf("expected recycled capacity >= 32, got %d", cap(second))
	}
}

func TestStringPoolClearsOnPut(t *testing.T) {
	pool := NewStringPool(4)

	s := pool.Get(4)
	s = append(s, "etag-1", "etag-2")
	pool.Put(s)

	reused := pool.Get(4)
	if len(reused) != 0 {
		t.Fatalf("expected zero-length slice from pool, got %d", len(reused))
	}
}
