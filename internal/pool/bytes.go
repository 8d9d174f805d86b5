package pool

import (
	"fmt"
	"math/bits"
	"sync"
)

// Buffer is a reusable byte buffer. B is the usable window, its capacity
// is owned by the pool and must not be grown by callers.
type Buffer struct {
	B []byte
}

const (
	minClassBits = 6  // 64
	maxClassBits = 16 // 65536
	classNum     = maxClassBits - minClassBits + 1
)

// GetBuf returns a buffer with len(B) == size. Buffers above the largest
// class are allocated directly and ReleaseBuf drops them.
func GetBuf(size int) *Buffer {
	return _bytesPool.get(size)
}

func ReleaseBuf(b *Buffer) {
	_bytesPool.release(b)
}

var _bytesPool = newBytesPool()

type bytesPool struct {
	classes [classNum]sync.Pool
}

func newBytesPool() *bytesPool {
	p := new(bytesPool)
	for i := range p.classes {
		size := classSize(i)
		p.classes[i].New = func() any {
			return &Buffer{B: make([]byte, size)}
		}
	}
	return p
}

func classIdx(size int) int {
	b := bits.Len(uint(size - 1))
	if b < minClassBits {
		return 0
	}
	return b - minClassBits
}

func classSize(idx int) int {
	return 1 << (idx + minClassBits)
}

func (p *bytesPool) get(size int) *Buffer {
	if size <= 0 {
		return &Buffer{}
	}
	if size > classSize(classNum-1) {
		return &Buffer{B: make([]byte, size)}
	}
	b := p.classes[classIdx(size)].Get().(*Buffer)
	b.B = b.B[:size]
	return b
}

func (p *bytesPool) release(b *Buffer) {
	if b == nil {
		return
	}
	c := cap(b.B)
	if c == 0 || c > classSize(classNum-1) {
		return
	}
	i := classIdx(c)
	if c != classSize(i) {
		panic(fmt.Sprintf("buf release: cap %d does not belong to pool %d", c, i))
	}
	b.B = b.B[:c]
	p.classes[i].Put(b)
}
