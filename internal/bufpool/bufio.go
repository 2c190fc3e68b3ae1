package bufpool

import (
	"bufio"
	"io"
	"sync"
)

var bufioReaders = sync.Pool{
	New: func() any { return bufio.NewReaderSize(nil, 4096) },
}

// GetByteReader returns a pooled *bufio.Reader reset onto r, giving
// xmlscan.ReadScalar the io.ByteReader it needs without allocating one per
// call.
func GetByteReader(r io.Reader) *bufio.Reader {
	br := bufioReaders.Get().(*bufio.Reader)
	br.Reset(r)
	return br
}

// PutByteReader returns br to the pool. The caller must not use br
// afterwards.
func PutByteReader(br *bufio.Reader) {
	br.Reset(nil)
	bufioReaders.Put(br)
}
