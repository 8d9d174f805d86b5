package limiter

import (
	"net/netip"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/time/rate"
)

const (
	gcInterval = time.Minute
	entryTtl   = time.Minute
)

// Opts configures a ClientLimiter. Clients are keyed by their masked
// address so one host cannot dodge the limit by hopping through a small
// subnet.
type Opts struct {
	Qps    float64 // default 20
	Burst  int     // default Qps
	V4Mask int     // default 24
	V6Mask int     // default 48
}

func (opts *Opts) setDefault() {
	if opts.Qps <= 0 {
		opts.Qps = 20
	}
	if opts.Burst <= 0 {
		opts.Burst = int(opts.Qps)
	}
	if m := opts.V4Mask; m <= 0 || m > 32 {
		opts.V4Mask = 24
	}
	if m := opts.V6Mask; m <= 0 || m > 128 {
		opts.V6Mask = 48
	}
}

// ClientLimiter is a per client token bucket. Idle clients are collected
// in the background, Close stops the collector.
type ClientLimiter struct {
	opts Opts
	m    *xsync.MapOf[netip.Addr, *client]

	closeOnce   sync.Once
	closeNotify chan struct{}
}

type client struct {
	m        sync.Mutex
	l        *rate.Limiter
	lastSeen time.Time
}

func New(opts Opts) *ClientLimiter {
	opts.setDefault()
	cl := &ClientLimiter{
		opts:        opts,
		m:           xsync.NewMapOf[netip.Addr, *client](),
		closeNotify: make(chan struct{}),
	}
	go cl.gcLoop()
	return cl
}

// Allow reports whether addr may send one more query now.
func (cl *ClientLimiter) Allow(addr netip.Addr) bool {
	now := time.Now()
	c, _ := cl.m.LoadOrCompute(cl.mask(addr), func() *client {
		return &client{l: rate.NewLimiter(rate.Limit(cl.opts.Qps), cl.opts.Burst)}
	})
	c.m.Lock()
	c.lastSeen = now
	ok := c.l.AllowN(now, 1)
	c.m.Unlock()
	return ok
}

// Close stops the gc goroutine. The limiter must not be used after it
// was closed.
func (cl *ClientLimiter) Close() error {
	cl.closeOnce.Do(func() { close(cl.closeNotify) })
	return nil
}

func (cl *ClientLimiter) mask(addr netip.Addr) netip.Addr {
	addr = addr.Unmap()
	if addr.Is4() {
		return netip.PrefixFrom(addr, cl.opts.V4Mask).Masked().Addr()
	}
	if addr.Is6() {
		return netip.PrefixFrom(addr, cl.opts.V6Mask).Masked().Addr()
	}
	return netip.Addr{}
}

func (cl *ClientLimiter) gcLoop() {
	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()
	for {
		select {
		case <-cl.closeNotify:
			return
		case now := <-ticker.C:
			cl.gc(now)
		}
	}
}

func (cl *ClientLimiter) gc(now time.Time) {
	ddl := now.Add(-entryTtl)
	cl.m.Range(func(key netip.Addr, c *client) bool {
		c.m.Lock()
		lastSeen := c.lastSeen
		c.m.Unlock()
		if lastSeen.Before(ddl) {
			cl.m.Delete(key)
		}
		return true
	})
}
