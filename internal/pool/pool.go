package pool

import "sync"

// SyncPool is a typed wrapper around sync.Pool. reset, if not nil, is
// applied to every value before it is put back.
type SyncPool[T any] struct {
	reset func(*T)
	sp    sync.Pool
}

func NewSyncPool[T any](newFn func() *T, reset func(*T)) *SyncPool[T] {
	if newFn == nil {
		newFn = func() *T { return new(T) }
	}
	return &SyncPool[T]{
		reset: reset,
		sp:    sync.Pool{New: func() any { return newFn() }},
	}
}

func (p *SyncPool[T]) Get() *T {
	return p.sp.Get().(*T)
}

func (p *SyncPool[T]) Release(v *T) {
	if p.reset != nil {
		p.reset(v)
	}
	p.sp.Put(v)
}
