package pool

import (
	"bufio"
	"io"
)

var br1kPool = NewSyncPool[bufio.Reader](
	func() *bufio.Reader { return bufio.NewReaderSize(nil, 1024) },
	func(br *bufio.Reader) { br.Reset(nil) },
)

func NewBR1K(r io.Reader) *bufio.Reader {
	br := br1kPool.Get()
	br.Reset(r)
	return br
}

func ReleaseBR1K(br *bufio.Reader) {
	br1kPool.Release(br)
}
