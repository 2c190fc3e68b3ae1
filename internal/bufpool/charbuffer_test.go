package bufpool

import (
	"strings"
	"testing"
	"time"
)

func TestCharBufferStaysInlineForSmallContent(t *testing.T) {
	b := NewCharBuffer(nil)
	b.AppendString("GET\n/bucket/key\n")
	b.AppendInt(42)
	if b.pooled {
		t.Fatal("buffer should not have overflowed into the pool yet")
	}
	if got := b.Flush(); got != "GET\n/bucket/key\n42" {
		t.Fatalf("unexpected flush result %q", got)
	}
}

func TestCharBufferGrowsPastInlineCapacity(t *testing.T) {
	b := NewCharBuffer(nil)
	big := strings.Repeat("x", inlineCap+128)
	b.AppendString(big)
	if !b.pooled {
		t.Fatal("expected buffer to have grown into a pooled array")
	}
	if got := b.Flush(); got != big {
		t.Fatal("content mismatch after growth")
	}
}

func TestCharBufferRemoveLastDropsTrailingSeparator(t *testing.T) {
	b := NewCharBuffer(nil)
	b.AppendString("a&b&")
	b.RemoveLast()
	if got := b.Flush(); got != "a&b" {
		t.Fatalf("got %q", got)
	}
}

func TestCharBufferReleaseWithoutFlush(t *testing.T) {
	b := NewCharBuffer(nil)
	b.AppendString(strings.Repeat("y", inlineCap*2))
	b.Release()
	if b.span != nil {
		t.Fatal("expected span to be cleared after release")
	}
}

func TestCharBufferAppendTimeUsesUTC(t *testing.T) {
	b := NewCharBuffer(nil)
	ts := time.Date(2026, 7, 30, 12, 0, 0, 0, time.FixedZone("X", 3600))
	b.AppendTime(ts, "20060102T150405Z")
	if got := b.Flush(); got != "20260730T110000Z" {
		t.Fatalf("got %q", got)
	}
}
