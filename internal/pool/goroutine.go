package pool

import (
	"sync"
	"sync/atomic"
	"time"
)

// workerIdleTimeout is how long a worker may sit idle before it exits.
const workerIdleTimeout = time.Minute

var _globalGoPool = NewGoPool()

// Go runs fn on the shared pool.
func Go(fn func()) {
	_globalGoPool.Go(fn)
}

func GoPoolSize() int {
	return _globalGoPool.Size()
}

func GoPoolGoCreated() uint64 {
	return _globalGoPool.GoCreated()
}

func GoPoolGoReused() uint64 {
	return _globalGoPool.GoReused()
}

// GoPool reuses goroutines for short lived jobs. Idle workers time out
// on their own, so an unused pool costs nothing but its idle slice.
type GoPool struct {
	m      sync.Mutex
	idle   []*goWorker
	closed bool

	goCreated atomic.Uint64
	goReused  atomic.Uint64
}

func NewGoPool() *GoPool {
	return new(GoPool)
}

// Go runs fn on an idle worker, spawning a new one if none is available.
// After the pool is closed Go falls back to a plain goroutine.
func (p *GoPool) Go(fn func()) {
	if w := p.popIdle(); w != nil {
		p.goReused.Add(1)
		w.job <- fn
		return
	}
	p.goCreated.Add(1)
	w := &goWorker{p: p, job: make(chan func(), 1)}
	go w.loop(fn)
}

func (p *GoPool) Size() int {
	p.m.Lock()
	defer p.m.Unlock()
	return len(p.idle)
}

func (p *GoPool) GoCreated() uint64 {
	return p.goCreated.Load()
}

func (p *GoPool) GoReused() uint64 {
	return p.goReused.Load()
}

// Close releases all idle workers. Workers busy with a job exit once the
// job returns.
func (p *GoPool) Close() {
	p.m.Lock()
	idle := p.idle
	p.idle = nil
	p.closed = true
	p.m.Unlock()
	for _, w := range idle {
		close(w.job)
	}
}

func (p *GoPool) popIdle() *goWorker {
	p.m.Lock()
	defer p.m.Unlock()
	if len(p.idle) == 0 {
		return nil
	}
	w := p.idle[len(p.idle)-1]
	p.idle[len(p.idle)-1] = nil
	p.idle = p.idle[:len(p.idle)-1]
	return w
}

func (p *GoPool) putIdle(w *goWorker) bool {
	p.m.Lock()
	defer p.m.Unlock()
	if p.closed {
		return false
	}
	p.idle = append(p.idle, w)
	return true
}

// removeIdle takes w off the idle list. It fails if a Go call already
// popped w, in which case a job is about to arrive on w.job.
func (p *GoPool) removeIdle(w *goWorker) bool {
	p.m.Lock()
	defer p.m.Unlock()
	for i, iw := range p.idle {
		if iw == w {
			p.idle[i] = p.idle[len(p.idle)-1]
			p.idle[len(p.idle)-1] = nil
			p.idle = p.idle[:len(p.idle)-1]
			return true
		}
	}
	return false
}

type goWorker struct {
	p   *GoPool
	job chan func()
}

func (w *goWorker) loop(fn func()) {
	fn()
	t := time.NewTimer(workerIdleTimeout)
	defer t.Stop()
	for {
		if !w.p.putIdle(w) {
			return
		}
		if !t.Stop() {
			select {
			case <-t.C:
			default:
			}
		}
		t.Reset(workerIdleTimeout)
		select {
		case fn, ok := <-w.job:
			if !ok {
				return
			}
			fn()
		case <-t.C:
			if w.p.removeIdle(w) {
				return
			}
			// Lost the race with a Go call, serve the incoming job.
			fn, ok := <-w.job
			if !ok {
				return
			}
			fn()
		}
	}
}
