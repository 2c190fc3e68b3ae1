package bufpool

import (
	"strconv"
	"time"
)

// inlineCap is the size of the stack-resident backing array a CharBuffer
// starts with. Canonical requests, query strings, and authorization headers
// for this client's verb set comfortably fit under this without ever
// touching the pool.
const inlineCap = 512

// growCap is the ceiling on geometric growth, matching the spec's literal
// "min(current*2, 2_147_483_591)" growth policy translated to Go's int.
const growCap = 2147483591

// CharBuffer is a value-typed, stack-first growable byte/char accumulator.
// The zero value is not usable; construct with NewCharBuffer. A CharBuffer
// must not be shared across goroutines and must be Flushed or Released on
// every exit path.
type CharBuffer struct {
	inline [inlineCap]byte
	span   []byte // either inline[:0:inlineCap] or a pooled slice
	pool   *BytePool
	pooled bool
}

// NewCharBuffer builds a buffer backed by pool for overflow growth. A nil
// pool falls back to the package Bytes pool.
func NewCharBuffer(pool *BytePool) *CharBuffer {
	if pool == nil {
		pool = Bytes
	}
	b := &CharBuffer{pool: pool}
	b.span = b.inline[:0]
	return b
}

func (b *CharBuffer) grow(extra int) {
	need := len(b.span) + extra
	if need <= cap(b.span) {
		return
	}
	next := cap(b.span) * 2
	if next > growCap {
		next = growCap
	}
	if next < need {
		next = need
	}
	fresh := b.pool.Get(next)[:len(b.span)]
	copy(fresh, b.span)
	if b.pooled {
		b.pool.Put(b.span[:cap(b.span)])
	}
	b.span = fresh
	b.pooled = true
}

// AppendByte appends a single byte.
func (b *CharBuffer) AppendByte(c byte) {
	b.grow(1)
	b.span = append(b.span, c)
}

// AppendString appends s verbatim.
func (b *CharBuffer) AppendString(s string) {
	b.grow(len(s))
	b.span = append(b.span, s...)
}

// AppendBytes appends p verbatim.
func (b *CharBuffer) AppendBytes(p []byte) {
	b.grow(len(p))
	b.span = append(b.span, p...)
}

// AppendInt appends the base-10 representation of n using a small stack
// scratch, matching the spec's 10-char integer scratch.
func (b *CharBuffer) AppendInt(n int64) {
	var scratch [10]byte
	s := strconv.AppendInt(scratch[:0], n, 10)
	b.AppendBytes(s)
}

// AppendFloat appends the shortest round-trippable representation of f
// using a 32-char stack scratch, matching the spec's float scratch size.
func (b *CharBuffer) AppendFloat(f float64) {
	var scratch [32]byte
	s := strconv.AppendFloat(scratch[:0], f, 'g', -1, 64)
	b.AppendBytes(s)
}

// AppendTime appends t formatted with layout, using invariant (UTC) time.
func (b *CharBuffer) AppendTime(t time.Time, layout string) {
	var scratch [40]byte
	s := t.UTC().AppendFormat(scratch[:0], layout)
	b.AppendBytes(s)
}

// RemoveLast drops the final byte, used to trim a trailing '&'.
func (b *CharBuffer) RemoveLast() {
	if n := len(b.span); n > 0 {
		b.span = b.span[:n-1]
	}
}

// Len reports the current logical length.
func (b *CharBuffer) Len() int {
	return len(b.span)
}

// Bytes exposes the accumulated content without materializing a string or
// invalidating the buffer. The returned slice is only valid until the next
// Append* call.
func (b *CharBuffer) Bytes() []byte {
	return b.span
}

// Flush materializes the accumulated content as a string, returns any
// pooled array, and invalidates the buffer for further use.
func (b *CharBuffer) Flush() string {
	s := string(b.span)
	b.Release()
	return s
}

// Release returns any pooled array without materializing a string.
func (b *CharBuffer) Release() {
	if b.pooled {
		b.pool.Put(b.span[:cap(b.span)])
		b.pooled = false
	}
	b.span = nil
}
