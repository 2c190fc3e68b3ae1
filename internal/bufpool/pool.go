// Package bufpool provides process-wide array pools and a stack-first
// growable string builder used to keep the signing and URL-building hot
// paths allocation-free.
package bufpool

import "sync"

// BytePool hands out []byte slices of at least a requested length and takes
// them back. The default instance is bucketed by sync.Pool the way
// stanford-rc-s3up's bufferPool does, but Get never shrinks below the
// requested length and Put never inspects capacity beyond what sync.Pool
// already recycles.
type BytePool struct {
	pool sync.Pool
}

// NewBytePool builds a pool whose New func seeds slices of seedLen bytes.
func NewBytePool(seedLen int) *BytePool {
	return &BytePool{
		pool: sync.Pool{
			New: func() any {
				b := make([]byte, seedLen)
				return &b
			},
		},
	}
}

// Get returns a slice with length exactly minLen. The backing array may be
// larger; callers that need to distinguish should use cap().
func (p *BytePool) Get(minLen int) []byte {
	ptr := p.pool.Get().(*[]byte)
	buf := *ptr
	if cap(buf) < minLen {
		buf = make([]byte, minLen)
	} else {
		buf = buf[:minLen]
	}
	return buf
}

// Put returns b to the pool. The caller must not use b afterwards.
func (p *BytePool) Put(b []byte) {
	p.pool.Put(&b)
}

// StringPool recycles []string slices used for multipart ETag accounting.
type StringPool struct {
	pool sync.Pool
}

// NewStringPool builds a pool seeded with slices of seedLen capacity.
func NewStringPool(seedLen int) *StringPool {
	return &StringPool{
		pool: sync.Pool{
			New: func() any {
				s := make([]string, 0, seedLen)
				return &s
			},
		},
	}
}

// Get returns a zero-length slice with at least minCap capacity.
func (p *StringPool) Get(minCap int) []string {
	ptr := p.pool.Get().(*[]string)
	s := (*ptr)[:0]
	if cap(s) < minCap {
		s = make([]string, 0, minCap)
	}
	return s
}

// Put returns s to the pool, clearing its contents first so dropped
// references don't keep large strings alive.
func (p *StringPool) Put(s []string) {
	for i := range s {
		s[i] = ""
	}
	s = s[:0]
	p.pool.Put(&s)
}

// Default process-wide pools. Bucket sizes are picked around the library's
// own hot-path needs: 256 bytes covers most header/query scratch, 8KiB
// covers a UTF-8-encoded object key or canonical request, and 16 covers the
// initial part-ETag fan-out before doubling.
var (
	Bytes       = NewBytePool(256)
	BigBytes    = NewBytePool(8 * 1024)
	PartStrings = NewStringPool(16)
)
